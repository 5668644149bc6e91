package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/fatcatfablab/autodoh/runner"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const defaultSchedule = "30 5 * * 0-4"

var (
	cronExpr string

	cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily cycle on a cron schedule",
		Long: "Stays in the foreground and runs the same cycle as `run` every " +
			"time the cron expression fires. The config is re-read before each run",
		Args: cobra.NoArgs,
		RunE: scheduleServe,
	}
)

func scheduleFlags(fs *pflag.FlagSet) {
	fs.StringVar(&cronExpr, "cron", fromEnvOr("cron", "AUTODOH_SCHEDULE", defaultSchedule), "Five field cron expression, in --timezone")
}

func init() {
	f := scheduleCmd.Flags()
	scheduleFlags(f)
	runnerFlags(f)
	rootCmd.AddCommand(scheduleCmd)
}

// scheduler fires run at every activation of sched, reloading the config
// first. Failed runs are logged and the loop carries on.
type scheduler struct {
	sched  cron.Schedule
	reload func() error
	run    func(context.Context) (runner.Result, error)
	now    func() time.Time
	wait   func(context.Context, time.Duration) error
}

func parseSchedule(expr string) (cron.Schedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("bad cron expression %q: %w", expr, err)
	}
	return s, nil
}

func waitFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// loop doesn't return until ctx is done.
func (s scheduler) loop(ctx context.Context) {
	for {
		t := s.now()
		next := s.sched.Next(t)
		zap.S().Infof("Next run at %s", next.Format(time.DateTime))
		if err := s.wait(ctx, next.Sub(t)); err != nil {
			zap.S().Info("scheduler stopped")
			return
		}

		if err := s.reload(); err != nil {
			zap.S().Errorf("Not running, config unusable: %s", err)
			continue
		}
		res, err := s.run(ctx)
		if err != nil {
			zap.S().Errorf("Run failed: %s", err)
			continue
		}
		zap.S().Infof("Run finished: %s", res)
	}
}

func newScheduler(store *config.Store) (scheduler, error) {
	sched, err := parseSchedule(cronExpr)
	if err != nil {
		return scheduler{}, err
	}
	r, err := newRunner(store)
	if err != nil {
		return scheduler{}, err
	}
	return scheduler{
		sched:  sched,
		reload: store.Reload,
		run:    r.Run,
		now:    func() time.Time { return time.Now().In(loc) },
		wait:   waitFor,
	}, nil
}

func scheduleServe(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	s, err := newScheduler(store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	s.loop(ctx)
	return nil
}
