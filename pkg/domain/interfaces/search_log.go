package interfaces

import (
	"context"

	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
)

// SearchLogRepository defines the interface for search record persistence
type SearchLogRepository interface {
	// Put saves a search record (upsert by ID)
	Put(ctx context.Context, record *search.Record) error

	// Get retrieves a search record by ID
	Get(ctx context.Context, id search.RecordID) (*search.Record, error)

	// List retrieves up to limit records of a channel, newest first.
	// An empty channelID lists records of all channels.
	List(ctx context.Context, channelID string, limit int) ([]*search.Record, error)
}
