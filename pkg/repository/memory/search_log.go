package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
)

type searchLogRepository struct {
	mu      sync.RWMutex
	records map[search.RecordID]*search.Record
}

func newSearchLogRepository() *searchLogRepository {
	return &searchLogRepository{
		records: make(map[search.RecordID]*search.Record),
	}
}

func copyRecord(r *search.Record) *search.Record {
	c := *r
	return &c
}

func (r *searchLogRepository) Put(ctx context.Context, record *search.Record) error {
	if record.ID == "" {
		return goerr.New("search record ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.ID] = copyRecord(record)
	return nil
}

func (r *searchLogRepository) Get(ctx context.Context, id search.RecordID) (*search.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "search record not found", goerr.V("id", id))
	}
	return copyRecord(rec), nil
}

func (r *searchLogRepository) List(ctx context.Context, channelID string, limit int) ([]*search.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*search.Record, 0)
	for _, rec := range r.records {
		if channelID != "" && rec.ChannelID != channelID {
			continue
		}
		matched = append(matched, rec)
	}

	// Sort by StartedAt descending, ID breaks ties
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartedAt.Equal(matched[j].StartedAt) {
			return matched[i].StartedAt.After(matched[j].StartedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	result := make([]*search.Record, 0, len(matched))
	for _, rec := range matched {
		result = append(result, copyRecord(rec))
	}
	return result, nil
}
