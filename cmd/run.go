package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/fatcatfablab/autodoh/reporter"
	"github.com/fatcatfablab/autodoh/runner"
	"github.com/fatcatfablab/autodoh/sender"
	"github.com/fatcatfablab/autodoh/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var errMissing = errors.New("missing required setting")

var (
	// flags
	reportURL    string
	cookie       string
	iftttKey     string
	iftttEvent   string
	maxJitter    int
	disable      bool
	slackToken   string
	slackChannel string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Report PRESENT once, unless disabled or today is a skip date",
		Long: "Runs one daily cycle: checks the config, waits a random delay, " +
			"reports PRESENT and notifies the result. Meant to be started by cron",
		Args: cobra.NoArgs,
		RunE: runOnce,
	}
)

func reportFlags(fs *pflag.FlagSet) {
	fs.StringVar(&reportURL, "url", fromEnv("url", "AUTODOH_URL"), "Report endpoint url")
	fs.StringVar(&cookie, "cookie", fromEnv("cookie", "AUTODOH_COOKIE"), "Session cookie sent with every report")
}

func slackTokenFlag(fs *pflag.FlagSet) {
	fs.StringVar(&slackToken, "slackToken", fromEnv("slackToken", "AUTODOH_SLACK_BOT_TOKEN"), "Slack bot token")
}

// runnerFlags registers everything newRunner reads.
func runnerFlags(fs *pflag.FlagSet) {
	reportFlags(fs)
	slackTokenFlag(fs)
	fs.StringVar(&iftttKey, "iftttKey", fromEnv("iftttKey", "AUTODOH_IFTTT_KEY"), "IFTTT webhook key")
	fs.StringVar(&iftttEvent, "iftttEvent", sender.DefaultIFTTTEvent, "IFTTT event name")
	fs.IntVar(&maxJitter, "maxJitter", int(runner.DefaultMaxJitter/time.Second), "Upper bound of the random delay, in seconds")
	fs.BoolVar(&disable, "disable", fromEnvBool("disable", "AUTODOH_DISABLE"), "Never report, whatever the config says")
	fs.StringVar(&slackChannel, "slackChannel", fromEnv("slackChannel", "AUTODOH_SLACK_CHANNEL"), "Slack channel for results")
}

func init() {
	runnerFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

// required names the flag and its environment variable, never the value.
func required(flag, value string) error {
	if value != "" {
		return nil
	}
	if env := envs[flag]; env != "" {
		return fmt.Errorf("%w: --%s (or %s)", errMissing, flag, env)
	}
	return fmt.Errorf("%w: --%s", errMissing, flag)
}

func newReporter() (*reporter.Client, error) {
	if err := errors.Join(required("url", reportURL), required("cookie", cookie)); err != nil {
		return nil, err
	}
	return reporter.New(reportURL, cookie, nil)
}

func newSenders() []types.Sender {
	var senders []types.Sender
	if iftttKey != "" {
		senders = append(senders, sender.NewIFTTT(iftttEvent, iftttKey))
	}
	if slackToken != "" && slackChannel != "" {
		senders = append(senders, sender.NewSlack(slackChannel, slackToken))
	}
	return senders
}

func newRunner(store *config.Store) (*runner.Runner, error) {
	client, err := newReporter()
	if err != nil {
		return nil, err
	}
	return runner.New(
		store,
		client,
		runner.WithSenders(newSenders()...),
		runner.WithMaxJitter(time.Duration(maxJitter)*time.Second),
		runner.WithDisabled(disable),
		runner.WithLocation(loc),
	), nil
}

func runOnce(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	r, err := newRunner(store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := r.Run(ctx)
	if err != nil {
		return err
	}
	zap.S().Infof("Run finished: %s", res)
	return nil
}
