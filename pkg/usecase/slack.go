package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sleuth/pkg/domain/model/command"
	"github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	slacksvc "github.com/secmon-lab/sleuth/pkg/service/slack"
	"github.com/secmon-lab/sleuth/pkg/utils/errutil"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
	goslack "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// SlackUseCases handles Slack-related business logic
type SlackUseCases struct {
	command      *CommandUseCase
	slackService slacksvc.Service
	now          func() time.Time
}

// NewSlackUseCases creates a new SlackUseCases instance
func NewSlackUseCases(commandUC *CommandUseCase, slackService slacksvc.Service) *SlackUseCases {
	return &SlackUseCases{
		command:      commandUC,
		slackService: slackService,
		now:          time.Now,
	}
}

// HandleSlackEvent processes Slack Events API events
func (uc *SlackUseCases) HandleSlackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	logger := logging.From(ctx)

	// Convert event to domain model
	msg := slack.NewMessage(ctx, event)
	if msg == nil {
		// Unsupported event type, log warning but don't return error
		logger.Warn("unsupported slack event type", "type", event.Type, "innerType", event.InnerEvent.Type)
		return nil
	}

	return uc.HandleSlackMessage(ctx, msg)
}

// HandleSlackMessage answers msg if it is a command addressed to the bot
func (uc *SlackUseCases) HandleSlackMessage(ctx context.Context, msg *slack.Message) error {
	if msg == nil {
		return goerr.New("message is nil")
	}

	// Edits, joins and other subtypes never carry a new command
	if msg.IsFromBot() || msg.SubType() != "" {
		return nil
	}
	if uc.isOwnMessage(ctx, msg) {
		return nil
	}

	cmd, ok := command.Parse(msg.Text(), uc.command.Prefix())
	if !ok {
		return nil
	}

	logging.From(ctx).Info("received command",
		"channel_id", msg.ChannelID(),
		"user_id", msg.UserID(),
		"keyword", cmd.Keyword,
		"trigger", msg.ID(),
	)

	return uc.command.Execute(ctx, Invocation{
		ChannelID: msg.ChannelID(),
		TriggerID: msg.ID(),
		UserID:    msg.UserID(),
		Command:   cmd,
	})
}

func (uc *SlackUseCases) isOwnMessage(ctx context.Context, msg *slack.Message) bool {
	if uc.slackService == nil {
		return false
	}
	botUserID, err := uc.slackService.GetBotUserID(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to get bot user ID")
		return false
	}
	return msg.UserID() != "" && msg.UserID() == botUserID
}

// HandleSlashCommand answers a slash command. Its text is the part after
// the command name, so "/s exact foo" is handled like "<prefix> exact foo".
// The history searched is everything before the moment the command arrived.
func (uc *SlackUseCases) HandleSlashCommand(ctx context.Context, sc goslack.SlashCommand) error {
	prefix := uc.command.Prefix()
	cmd, ok := command.Parse(prefix+" "+sc.Text, prefix)
	if !ok {
		return goerr.New("prefix cannot contain spaces", goerr.V(CommandKey, sc.Command))
	}

	logging.From(ctx).Info("received slash command",
		"channel_id", sc.ChannelID,
		"user_id", sc.UserID,
		"command", sc.Command,
		"keyword", cmd.Keyword,
	)

	return uc.command.Execute(ctx, Invocation{
		ChannelID: sc.ChannelID,
		TriggerID: slack.FormatTS(uc.now()),
		UserID:    sc.UserID,
		Command:   cmd,
	})
}
