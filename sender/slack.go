package sender

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fatcatfablab/autodoh/types"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type SlackSender struct {
	client  slackPoster
	channel string
}

func NewSlack(channel, token string) *SlackSender {
	return &SlackSender{client: slack.New(token), channel: channel}
}

func (s *SlackSender) Post(ctx context.Context, o types.Outcome) error {
	c, ts, err := s.client.PostMessageContext(
		ctx,
		s.channel,
		slack.MsgOptionText(outcomeToString(o), false),
	)
	if err != nil {
		return fmt.Errorf("error posting msg to slack: %w", err)
	}
	zap.S().Infof("Msg posted to %s (%s) at %s", s.channel, c, ts)
	return nil
}

func outcomeToString(o types.Outcome) string {
	icon := ":white_check_mark:"
	if !o.Ok() {
		icon = ":x:"
	}
	text := http.StatusText(o.StatusCode)
	if text == "" {
		text = "unknown status"
	}
	return fmt.Sprintf("%s %s: %s (%d %s)", icon, o.Kind, Message(o), o.StatusCode, text)
}
