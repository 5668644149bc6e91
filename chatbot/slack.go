package chatbot

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

const responseTypeEphemeral = "ephemeral"

type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Run connects to Slack in socket mode and serves until ctx is done.
func (b *Bot) Run(ctx context.Context, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-client.Events:
				b.dispatch(ctx, client, api, evt)
			}
		}
	}()

	zap.S().Info("Slack bot connecting via Socket Mode")
	return client.RunContext(ctx)
}

func (b *Bot) dispatch(ctx context.Context, client *socketmode.Client, api poster, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnected:
		zap.S().Info("Slack bot connected")
	case socketmode.EventTypeSlashCommand:
		client.Ack(*evt.Request)
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		zap.S().Infof("Slash command received: %s from user=%s", cmd.Command, cmd.UserID)
		b.respondCommand(ctx, api, cmd)
	case socketmode.EventTypeInteractive:
		client.Ack(*evt.Request)
		cb, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		b.respondAction(ctx, api, cb)
	case socketmode.EventTypeEventsAPI:
		client.Ack(*evt.Request)
		event, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.respondEvent(ctx, api, event)
	}
}

func (b *Bot) respondCommand(ctx context.Context, api poster, cmd slack.SlashCommand) {
	reply := b.HandleCommand(cmd.Command, cmd.Text)
	opts := append(
		[]slack.MsgOption{slack.MsgOptionResponseURL(cmd.ResponseURL, responseTypeEphemeral)},
		reply.options()...,
	)
	if _, _, err := api.PostMessageContext(ctx, cmd.ChannelID, opts...); err != nil {
		zap.S().Errorf("error replying to %s: %s", cmd.Command, err)
	}
}

func (b *Bot) respondAction(ctx context.Context, api poster, cb slack.InteractionCallback) {
	if cb.Type != slack.InteractionTypeBlockActions || len(cb.ActionCallback.BlockActions) == 0 {
		return
	}
	act := cb.ActionCallback.BlockActions[0]
	zap.S().Infof("Button %s pressed by user=%s", act.ActionID, cb.User.ID)

	reply := b.HandleAction(act.ActionID, act.Value)
	channelID := cb.Channel.ID
	if channelID == "" {
		channelID = cb.Container.ChannelID
	}
	opts := append(
		[]slack.MsgOption{slack.MsgOptionReplaceOriginal(cb.ResponseURL)},
		reply.options()...,
	)
	if _, _, err := api.PostMessageContext(ctx, channelID, opts...); err != nil {
		zap.S().Errorf("error answering %s: %s", act.ActionID, err)
	}
}

// Direct messages that aren't commands get the help text.
func (b *Bot) respondEvent(ctx context.Context, api poster, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	ev, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || ev.BotID != "" || ev.SubType != "" || ev.ChannelType != "im" {
		return
	}
	reply := b.HandleCommand(cmdHelp, "")
	if _, _, err := api.PostMessageContext(ctx, ev.Channel, reply.options()...); err != nil {
		zap.S().Errorf("error sending help: %s", err)
	}
}
