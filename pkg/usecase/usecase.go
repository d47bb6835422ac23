package usecase

import (
	"time"

	"github.com/secmon-lab/sleuth/pkg/domain/interfaces"
	"github.com/secmon-lab/sleuth/pkg/domain/model/command"
	"github.com/secmon-lab/sleuth/pkg/service/metrics"
	slacksvc "github.com/secmon-lab/sleuth/pkg/service/slack"
)

// DefaultSearchTimeout bounds one history walk.
const DefaultSearchTimeout = 5 * time.Minute

type UseCases struct {
	repo          interfaces.Repository
	slackService  slacksvc.Service
	metrics       *metrics.Metrics
	prefix        string
	searchTimeout time.Duration
	pageLimit     int
	helpText      string

	Search  *SearchUseCase
	Command *CommandUseCase
	Slack   *SlackUseCases
}

type Option func(*UseCases)

func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

// WithPrefix sets the token channel messages must start with. Empty keeps
// the default.
func WithPrefix(prefix string) Option {
	return func(uc *UseCases) {
		if prefix != "" {
			uc.prefix = prefix
		}
	}
}

// WithSearchTimeout bounds each search. Zero or negative disables the bound.
func WithSearchTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.searchTimeout = d
	}
}

// WithPageLimit sets the number of messages requested per history page.
func WithPageLimit(limit int) Option {
	return func(uc *UseCases) {
		uc.pageLimit = limit
	}
}

// WithHelpText replaces the built-in command list. "%[1]s" in text is
// replaced with the prefix.
func WithHelpText(text string) Option {
	return func(uc *UseCases) {
		uc.helpText = text
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:          repo,
		prefix:        command.DefaultPrefix,
		searchTimeout: DefaultSearchTimeout,
		helpText:      defaultHelpText,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Search = NewSearchUseCase(repo, uc.slackService, SearchConfig{
		Timeout:   uc.searchTimeout,
		PageLimit: uc.pageLimit,
		Metrics:   uc.metrics,
	})
	uc.Command = NewCommandUseCase(uc.Search, uc.slackService, CommandConfig{
		Prefix:   uc.prefix,
		HelpText: uc.helpText,
		Metrics:  uc.metrics,
	})
	uc.Slack = NewSlackUseCases(uc.Command, uc.slackService)

	return uc
}

// Prefix returns the configured command prefix.
func (uc *UseCases) Prefix() string {
	return uc.prefix
}
