package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatcatfablab/autodoh/chatbot"
	"github.com/fatcatfablab/autodoh/config"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	slackAppToken string

	botCmd = &cobra.Command{
		Use:   "bot",
		Short: "Run the Slack bot",
		Long: "Connects to Slack in Socket Mode and answers /start, /skip, " +
			"/list_all_skipdates and /help",
		Args: cobra.NoArgs,
		RunE: botServe,
	}
)

func appTokenFlag(fs *pflag.FlagSet) {
	fs.StringVar(&slackAppToken, "slackAppToken", fromEnv("slackAppToken", "AUTODOH_SLACK_APP_TOKEN"), "Slack app-level token (xapp-…)")
}

func init() {
	f := botCmd.Flags()
	slackTokenFlag(f)
	appTokenFlag(f)
	rootCmd.AddCommand(botCmd)
}

func botConfigured() bool {
	return slackToken != "" && slackAppToken != ""
}

func newBot(store *config.Store) (*chatbot.Bot, *slack.Client, error) {
	if err := errors.Join(required("slackToken", slackToken), required("slackAppToken", slackAppToken)); err != nil {
		return nil, nil, err
	}
	api := slack.New(slackToken, slack.OptionAppLevelToken(slackAppToken))
	return chatbot.New(store, loc), api, nil
}

// serveBot blocks until ctx is done. Cancellation isn't an error.
func serveBot(ctx context.Context, b *chatbot.Bot, api *slack.Client) error {
	err := b.Run(ctx, api)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func botServe(cmd *cobra.Command, _ []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	b, api, err := newBot(store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serveBot(ctx, b, api)
}
