package search

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RecordID is a UUID-based identifier for Record
type RecordID string

// NewRecordID generates a new UUID v7 RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.Must(uuid.NewV7()).String())
}

// Status is the outcome of a search invocation
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Record describes one search invocation. It never holds message text other
// than the requester's own argument.
type Record struct {
	ID        RecordID
	ChannelID string
	UserID    string
	Kind      Kind
	Argument  string
	Scanned   int
	Pages     int
	Matches   int
	Status    Status
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// NewRecord starts a record for req.
func NewRecord(req Request, startedAt time.Time) *Record {
	return &Record{
		ID:        NewRecordID(),
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
		Kind:      req.Kind,
		Argument:  req.Argument,
		StartedAt: startedAt,
	}
}

// Finish fills the outcome from the result or error of the search.
func (r *Record) Finish(rs *ResultSet, err error, duration time.Duration) {
	r.Duration = duration

	switch {
	case err == nil:
		r.Status = StatusSucceeded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.Status = StatusCancelled
		r.Error = err.Error()
	default:
		r.Status = StatusFailed
		r.Error = err.Error()
	}

	if rs != nil {
		r.Scanned = rs.Scanned
		r.Pages = rs.Pages
		r.Matches = rs.Len()
	}
}
