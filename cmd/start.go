package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start duties",
	Long: "Runs the web panel, the scheduler and, when both Slack tokens " +
		"are set, the Slack bot, all on one config",
	Args: cobra.NoArgs,
	RunE: start,
}

func init() {
	f := startCmd.Flags()
	runnerFlags(f)
	httpFlags(f)
	scheduleFlags(f)
	appTokenFlag(f)

	rootCmd.AddCommand(startCmd)
}

func start(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}

	sched, err := newScheduler(store)
	if err != nil {
		return err
	}
	httpServer, err := newHttpServer(store)
	if err != nil {
		return err
	}
	serve, err := initBot(store)
	if err != nil {
		return err
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	wg := sync.WaitGroup{}

	// any of the three failing for good stops the others too
	failed := make(chan error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listen(httpServer); err != nil {
			failed <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.loop(ctx)
	}()

	if serve != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serve(ctx); err != nil {
				failed <- err
			}
		}()
	}

	select {
	case s := <-done:
		zap.S().Info("Received signal ", s)
	case err = <-failed:
		zap.S().Errorf("shutting down: %s", err)
	}

	if cerr := httpServer.Close(); cerr != nil {
		zap.S().Errorf("error closing http server: %s", cerr)
	}
	cancel()
	wg.Wait()
	return err
}

// initBot returns nil when the bot isn't configured.
func initBot(store *config.Store) (func(context.Context) error, error) {
	if !botConfigured() {
		zap.S().Info("Slack tokens not set, not starting the bot")
		return nil, nil
	}
	b, api, err := newBot(store)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error { return serveBot(ctx, b, api) }, nil
}
