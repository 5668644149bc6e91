// Package chatbot exposes the config store as a Slack app: a few slash
// commands and a button menu.
package chatbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const (
	cmdStart     = "/start"
	cmdSkip      = "/skip"
	cmdListSkips = "/list_all_skipdates"
	cmdHelp      = "/help"

	actionCheckStatus    = "CHECK_STATUS"
	actionEnable         = "ENABLE"
	actionDisable        = "DISABLE"
	actionListSkipDates  = "LIST_SKIPDATES"
	actionOfferSkipDates = "OFFER_SKIPDATES"
	actionMenu           = "MENU"
	actionSkipDatePrefix = "SKIPDATE_"

	// How many calendar days back the button list of skip dates reaches.
	listLookbackDays = 10

	helpText = "*HELP*\n\n" +
		"`/start`\n*Start the buttons menu* (has most functionality)\n\n" +
		"`/skip dd/mm/yyyy`\nSkip a *specific date*\n\n" +
		"`/list_all_skipdates`\nView *all* skipdates\n\n" +
		"`/help`\nView this help message"
)

// Reply is what the bot answers with. Blocks, when present, carry buttons;
// Text is always set so notifications have something to show.
type Reply struct {
	Text   string
	Blocks []slack.Block
}

func (r Reply) options() []slack.MsgOption {
	opts := []slack.MsgOption{slack.MsgOptionText(r.Text, false)}
	if len(r.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(r.Blocks...))
	}
	return opts
}

type Bot struct {
	store *config.Store
	now   func() time.Time
}

// New returns a Bot over store. loc decides what "today" is.
func New(store *config.Store, loc *time.Location) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		store: store,
		now:   func() time.Time { return time.Now().In(loc) },
	}
}

// HandleCommand answers a slash command. text is whatever followed it.
func (b *Bot) HandleCommand(command, text string) Reply {
	switch command {
	case cmdStart:
		return b.menu()
	case cmdSkip:
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return Reply{Text: "No argument received, send '/skip dd/mm/yyyy'"}
		}
		return b.skip(fields[0])
	case cmdListSkips:
		return b.listSkipDates(b.store.SkipDays(), "All skipdates")
	default:
		return Reply{Text: helpText}
	}
}

// HandleAction answers a button click.
func (b *Bot) HandleAction(actionID, value string) Reply {
	switch {
	case actionID == actionCheckStatus:
		return Reply{Text: fmt.Sprintf("Status is *%s*", statusText(b.store.IsEnabled()))}
	case actionID == actionEnable:
		return b.setEnabled(true)
	case actionID == actionDisable:
		return b.setEnabled(false)
	case actionID == actionListSkipDates:
		from := b.now().AddDate(0, 0, -listLookbackDays)
		return b.listSkipDates(config.FilterFrom(b.store.SkipDays(), from), "Skipdates")
	case actionID == actionOfferSkipDates:
		return b.offerSkipDates()
	case actionID == actionMenu:
		return b.menu()
	case strings.HasPrefix(actionID, actionSkipDatePrefix):
		return b.skip(value)
	}
	zap.S().Infof("ignoring unknown action %q", actionID)
	return Reply{Text: helpText}
}

func statusText(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

func (b *Bot) setEnabled(enabled bool) Reply {
	if err := b.store.SetEnabled(enabled); err != nil {
		zap.S().Errorf("error updating config: %s", err)
		return Reply{Text: "Failed to update config"}
	}
	zap.S().Infof("%s from slack", statusText(enabled))
	return Reply{Text: fmt.Sprintf("*%s* successfully", statusText(enabled))}
}

func (b *Bot) skip(raw string) Reply {
	day, err := config.ParseDate(raw)
	if err != nil {
		return Reply{Text: "Enter a date in the right format (dd/mm/yyyy)"}
	}
	if config.IsPast(day, b.now()) {
		return Reply{Text: "Date received has already passed"}
	}

	if err := b.store.AddSkipDate(day); err != nil {
		zap.S().Errorf("error adding skip date %s: %s", raw, err)
		return Reply{Text: "Failed to save skip date"}
	}
	stored := day.Format(config.DateLayout)
	zap.S().Infof("Added skip date %s from slack", stored)
	return Reply{Text: fmt.Sprintf("Added %s to skipdates", stored)}
}

func (b *Bot) listSkipDates(days []time.Time, title string) Reply {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", title)
	if len(days) == 0 {
		sb.WriteString("\nNo skipdates")
	}
	for _, d := range days {
		fmt.Fprintf(&sb, "\n%s", config.FormatWithWeekday(d))
	}
	return Reply{Text: sb.String()}
}
