package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sleuth/pkg/domain/model/command"
	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
	"github.com/secmon-lab/sleuth/pkg/service/metrics"
	slacksvc "github.com/secmon-lab/sleuth/pkg/service/slack"
	"github.com/secmon-lab/sleuth/pkg/utils/errutil"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
)

const (
	pongText         = "Pong!"
	searchFailedText = "Search failed. Please try again later."
	timeoutText      = "Search did not finish in time. Please try again later."
)

const defaultHelpText = "Command list:\n" +
	"\t`allbut`: Displays all messages that don't match the input.\n\t\tExample: `%[1]s allbut Melee HD`\n" +
	"\t`and`: Displays all messages that include every comma-separated term.\n\t\tExample: `%[1]s and dogs, cats, pigs and bats`\n" +
	"\t`exact`: Displays all messages that include the exact term entered.\n\t\tExample: `%[1]s exact Specifically this`\n" +
	"\t`or`: Displays all messages that include one or more of the comma-separated terms.\n\t\tExample: `%[1]s or cats, dogs, pigs, bats`\n" +
	"\t`ping`: Checks that the bot is listening.\n" +
	"\t`help`: Shows this list."

var usageFormats = map[search.Kind]string{
	search.KindAllBut: "Usage: `%s allbut <text>`",
	search.KindAnd:    "Usage: `%s and <term>,<term>,...`",
	search.KindExact:  "Usage: `%s exact <text>`",
	search.KindOr:     "Usage: `%s or <term>,<term>,...`",
}

// Invocation is a parsed command together with where it was issued.
type Invocation struct {
	ChannelID string
	// TriggerID is the ts of the invoking message. Only history strictly
	// before it is searched.
	TriggerID string
	UserID    string
	Command   *command.Command
}

// CommandConfig holds the tunables of CommandUseCase.
type CommandConfig struct {
	Prefix   string
	HelpText string
	Metrics  *metrics.Metrics
}

// CommandUseCase answers bot commands in the channel they were issued in.
type CommandUseCase struct {
	search       *SearchUseCase
	slackService slacksvc.Service
	prefix       string
	helpText     string
	metrics      *metrics.Metrics
}

// NewCommandUseCase creates a CommandUseCase.
func NewCommandUseCase(searchUC *SearchUseCase, slackService slacksvc.Service, cfg CommandConfig) *CommandUseCase {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = command.DefaultPrefix
	}
	helpText := cfg.HelpText
	if helpText == "" {
		helpText = defaultHelpText
	}

	return &CommandUseCase{
		search:       searchUC,
		slackService: slackService,
		prefix:       prefix,
		helpText:     helpText,
		metrics:      cfg.Metrics,
	}
}

// Prefix returns the token messages must start with.
func (uc *CommandUseCase) Prefix() string {
	return uc.prefix
}

// HelpText returns the command list with the prefix filled in.
func (uc *CommandUseCase) HelpText() string {
	return strings.ReplaceAll(uc.helpText, "%[1]s", uc.prefix)
}

// UnrecognizedText returns the hint posted for unknown keywords.
func (uc *CommandUseCase) UnrecognizedText() string {
	return fmt.Sprintf("Command not recognized. Try `%s help` instead.", uc.prefix)
}

// UsageText returns the usage line of a search keyword.
func (uc *CommandUseCase) UsageText(kind search.Kind) string {
	format, ok := usageFormats[kind]
	if !ok {
		return uc.UnrecognizedText()
	}
	return fmt.Sprintf(format, uc.prefix)
}

// Execute answers inv. Failures the user can act on are answered in the
// channel and not returned, as are timeouts and cancellations; other search
// failures are answered and also returned so the caller can report them.
func (uc *CommandUseCase) Execute(ctx context.Context, inv Invocation) error {
	if uc.slackService == nil {
		return goerr.Wrap(ErrSlackServiceRequired, "cannot answer command")
	}
	if inv.Command == nil {
		return goerr.New("command is nil", goerr.V(ChannelIDKey, inv.ChannelID))
	}

	keyword := inv.Command.Keyword
	ctx = logging.With(ctx, logging.From(ctx).With(
		"channel_id", inv.ChannelID,
		"keyword", string(keyword),
	))

	if keyword.IsKnown() {
		uc.metrics.ObserveCommand(string(keyword))
	} else {
		uc.metrics.ObserveCommand("unrecognized")
	}

	switch keyword {
	case command.KeywordPing:
		return uc.post(ctx, inv.ChannelID, pongText)

	case command.KeywordHelp:
		return uc.post(ctx, inv.ChannelID, uc.HelpText())

	case command.KeywordAllBut, command.KeywordAnd, command.KeywordExact, command.KeywordOr:
		kind, _ := keyword.SearchKind()
		return uc.runSearch(ctx, inv, kind)

	default:
		err := goerr.Wrap(ErrUnrecognizedCommand, "cannot answer command", goerr.V(KeywordKey, string(keyword)))
		logging.From(ctx).Info("unrecognized command", "error", err)
		return uc.post(ctx, inv.ChannelID, uc.UnrecognizedText())
	}
}

func (uc *CommandUseCase) runSearch(ctx context.Context, inv Invocation, kind search.Kind) error {
	req, err := search.NewRequest(inv.ChannelID, inv.TriggerID, inv.UserID, kind, inv.Command.Argument)
	if err != nil {
		if errors.Is(err, search.ErrMissingArgument) {
			return uc.post(ctx, inv.ChannelID, uc.UsageText(kind))
		}
		return goerr.Wrap(err, "invalid search command", goerr.V(ChannelIDKey, inv.ChannelID))
	}

	rs, record, err := uc.search.Search(ctx, req)
	if err != nil {
		// The user is told and the record says cancelled; nothing to report
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logging.From(ctx).Warn("search did not finish",
				"error", err.Error(),
				"record_id", record.ID,
				"scanned", record.Scanned,
			)
			return uc.post(context.WithoutCancel(ctx), inv.ChannelID, timeoutText)
		}
		if postErr := uc.post(ctx, inv.ChannelID, searchFailedText); postErr != nil {
			errutil.Handle(ctx, postErr, "failed to post search failure notice")
		}
		return goerr.Wrap(err, "search command failed",
			goerr.V(ChannelIDKey, inv.ChannelID),
			goerr.V(CommandKey, string(kind)),
		)
	}

	pages := RenderResults(rs, ResolveAuthors(ctx, uc.slackService, rs.Messages))
	if len(pages) == 0 {
		return uc.post(ctx, inv.ChannelID, noMatchText)
	}

	for _, page := range pages {
		if _, err := uc.slackService.PostMessage(ctx, inv.ChannelID, page.Blocks, page.Text); err != nil {
			return goerr.Wrap(err, "failed to post search results",
				goerr.V(ChannelIDKey, inv.ChannelID),
				goerr.V("page", page.Text),
			)
		}
	}
	return nil
}

func (uc *CommandUseCase) post(ctx context.Context, channelID, text string) error {
	if _, err := uc.slackService.PostMessage(ctx, channelID, nil, text); err != nil {
		return goerr.Wrap(err, "failed to post reply", goerr.V(ChannelIDKey, channelID))
	}
	return nil
}
