package chatbot

import (
	"fmt"
	"time"

	"github.com/fatcatfablab/autodoh/config"
	"github.com/slack-go/slack"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

const (
	offerPerRow = 2
	offerRows   = 4

	menuText  = "Choose:"
	offerText = "Choose one of the following days to skip, " +
		"or use /skip dd/mm/yyyy to skip a specific day"
)

// Friday and Saturday are the weekend.
var workdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH}

func button(actionID, value, text string) *slack.ButtonBlockElement {
	return slack.NewButtonBlockElement(
		actionID,
		value,
		slack.NewTextBlockObject(slack.PlainTextType, text, false, false),
	)
}

func (b *Bot) menu() Reply {
	return Reply{
		Text: menuText,
		Blocks: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, menuText, false, false),
				nil,
				nil,
			),
			slack.NewActionBlock("menu_offer",
				button(actionOfferSkipDates, actionOfferSkipDates, "Offer skipdates"),
			),
			slack.NewActionBlock("menu_check",
				button(actionListSkipDates, actionListSkipDates, "Check skipdates"),
				button(actionCheckStatus, actionCheckStatus, "Check status"),
			),
			slack.NewActionBlock("menu_toggle",
				button(actionEnable, actionEnable, "Enable"),
				button(actionDisable, actionDisable, "Disable"),
			),
		},
	}
}

// nextWorkdays returns the first n workdays starting with the date of now.
func nextWorkdays(now time.Time, n int) ([]time.Time, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   config.Day(now),
		Byweekday: workdays,
		Count:     n,
	})
	if err != nil {
		return nil, err
	}
	return r.All(), nil
}

func (b *Bot) offerSkipDates() Reply {
	days, err := nextWorkdays(b.now(), offerPerRow*offerRows)
	if err != nil {
		zap.S().Errorf("error computing dates to offer: %s", err)
		return Reply{Text: "Failed to compute dates"}
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, offerText, false, false),
			nil,
			nil,
		),
	}
	for row := 0; row*offerPerRow < len(days); row++ {
		end := min((row+1)*offerPerRow, len(days))
		var elems []slack.BlockElement
		for _, d := range days[row*offerPerRow : end] {
			value := d.Format(config.DateLayout)
			elems = append(elems, button(
				actionSkipDatePrefix+d.Format("20060102"),
				value,
				config.FormatWithWeekday(d),
			))
		}
		blocks = append(blocks, slack.NewActionBlock(fmt.Sprintf("offer_row_%d", row), elems...))
	}
	blocks = append(blocks, slack.NewActionBlock("offer_menu", button(actionMenu, actionMenu, "Menu")))

	return Reply{Text: offerText, Blocks: blocks}
}
