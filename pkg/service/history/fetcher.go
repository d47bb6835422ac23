package history

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	"github.com/secmon-lab/sleuth/pkg/service/metrics"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
)

// PageLimit is the maximum number of messages Slack returns per history call.
const PageLimit = 100

// HistoryClient is the part of the Slack service used to read history.
type HistoryClient interface {
	// GetHistoryBefore returns up to limit messages of channelID strictly
	// older than latest, newest first.
	GetHistoryBefore(ctx context.Context, channelID, latest string, limit int) ([]*slack.Message, error)
}

// Fetcher reads single history pages from Slack.
type Fetcher struct {
	client  HistoryClient
	limit   int
	metrics *metrics.Metrics
}

var _ PageFetcher = &Fetcher{}

// FetcherOption is a functional option for Fetcher
type FetcherOption func(*Fetcher)

// WithPageLimit overrides the page size. Values outside 1..PageLimit are ignored.
func WithPageLimit(limit int) FetcherOption {
	return func(f *Fetcher) {
		if limit > 0 && limit <= PageLimit {
			f.limit = limit
		}
	}
}

// WithMetrics records fetched pages on m.
func WithMetrics(m *metrics.Metrics) FetcherOption {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher creates a Fetcher over client.
func NewFetcher(client HistoryClient, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: client,
		limit:  PageLimit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchBefore returns the page of messages strictly older than beforeID,
// newest first. An empty page means the history is exhausted.
func (f *Fetcher) FetchBefore(ctx context.Context, channelID, beforeID string) ([]*slack.Message, error) {
	page, err := f.client.GetHistoryBefore(ctx, channelID, beforeID, f.limit)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(ErrFetch, err), "history request failed",
			goerr.V(ChannelIDKey, channelID),
			goerr.V(CursorKey, beforeID),
		)
	}

	f.metrics.ObservePage(len(page))
	logging.From(ctx).Debug("fetched history page",
		"channel_id", channelID,
		"cursor", beforeID,
		"size", len(page),
	)

	return page, nil
}
