package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sleuth/pkg/domain/interfaces"
	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
	"github.com/secmon-lab/sleuth/pkg/service/history"
	"github.com/secmon-lab/sleuth/pkg/service/metrics"
	"github.com/secmon-lab/sleuth/pkg/utils/errutil"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
)

// SearchConfig holds the tunables of SearchUseCase.
type SearchConfig struct {
	Timeout   time.Duration
	PageLimit int
	Metrics   *metrics.Metrics
}

// SearchUseCase runs one history search per call and records it.
type SearchUseCase struct {
	repo    interfaces.Repository
	client  history.HistoryClient
	timeout time.Duration
	fetcher *history.Fetcher
	metrics *metrics.Metrics
}

// NewSearchUseCase creates a SearchUseCase. repo may be nil, in which case
// searches are not recorded.
func NewSearchUseCase(repo interfaces.Repository, client history.HistoryClient, cfg SearchConfig) *SearchUseCase {
	uc := &SearchUseCase{
		repo:    repo,
		client:  client,
		timeout: cfg.Timeout,
		metrics: cfg.Metrics,
	}
	if client != nil {
		uc.fetcher = history.NewFetcher(client,
			history.WithPageLimit(cfg.PageLimit),
			history.WithMetrics(cfg.Metrics),
		)
	}
	return uc
}

// Search scans the history before req.TriggerID and returns the matches,
// oldest first. The returned record is always non-nil and has already been
// saved; on error it carries the failure status and no ResultSet is returned.
func (uc *SearchUseCase) Search(ctx context.Context, req search.Request) (*search.ResultSet, *search.Record, error) {
	startedAt := time.Now()
	record := search.NewRecord(req, startedAt.UTC())

	if uc.fetcher == nil {
		err := goerr.Wrap(ErrSlackServiceRequired, "cannot search history", goerr.V(ChannelIDKey, req.ChannelID))
		record.Finish(nil, err, 0)
		return nil, record, err
	}

	walkCtx := ctx
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		walkCtx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	rs, err := history.Scan(walkCtx, uc.fetcher, req)
	record.Finish(rs, err, time.Since(startedAt))
	uc.metrics.ObserveSearch(string(req.Kind), string(record.Status), record.Duration)

	// the walk context may be done already; the record is still saved
	uc.save(context.WithoutCancel(ctx), record)

	logging.From(ctx).Info("search finished",
		"record_id", record.ID,
		"channel_id", req.ChannelID,
		"kind", req.Kind,
		"status", record.Status,
		"scanned", record.Scanned,
		"matches", record.Matches,
		"pages", record.Pages,
		"duration", record.Duration,
	)

	if err != nil {
		return nil, record, goerr.Wrap(err, "search failed",
			goerr.V(ChannelIDKey, req.ChannelID),
			goerr.V(KeywordKey, req.Kind),
			goerr.V(RecordIDKey, record.ID),
		)
	}
	return rs, record, nil
}

func (uc *SearchUseCase) save(ctx context.Context, record *search.Record) {
	if uc.repo == nil {
		return
	}
	if err := uc.repo.SearchLog().Put(ctx, record); err != nil {
		errutil.Handle(ctx, err, "failed to save search record")
	}
}

// ListRecords returns up to limit search records of channelID, newest first.
func (uc *SearchUseCase) ListRecords(ctx context.Context, channelID string, limit int) ([]*search.Record, error) {
	if uc.repo == nil {
		return nil, goerr.New("repository is not configured")
	}

	records, err := uc.repo.SearchLog().List(ctx, channelID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list search records", goerr.V(ChannelIDKey, channelID))
	}
	return records, nil
}

// GetRecord returns one search record.
func (uc *SearchUseCase) GetRecord(ctx context.Context, id search.RecordID) (*search.Record, error) {
	if uc.repo == nil {
		return nil, goerr.New("repository is not configured")
	}

	record, err := uc.repo.SearchLog().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get search record", goerr.V(RecordIDKey, id))
	}
	return record, nil
}
