package history_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/secmon-lab/sleuth/pkg/domain/model/slack"
)

const testChannel = "C0TEST"

// tsOf returns the ts of the i-th message of a synthetic history.
func tsOf(i int) string {
	return fmt.Sprintf("1700000000.%06d", i+1)
}

// newHistory builds messages in chronological order with the given texts.
func newHistory(texts ...string) []*slack.Message {
	msgs := make([]*slack.Message, len(texts))
	for i, text := range texts {
		msgs[i] = slack.NewMessageFromData(tsOf(i), testChannel, fmt.Sprintf("U%d", i%3), "", text)
	}
	return msgs
}

func numberedHistory(n int) []*slack.Message {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("message %d", i)
	}
	return newHistory(texts...)
}

// fakeStore serves a chronological history the way conversations.history
// does: newest first, strictly before the cursor, at most pageSize items.
type fakeStore struct {
	mu       sync.Mutex
	history  []*slack.Message
	pageSize int
	calls    []string

	failOnCall int   // 1-based; 0 disables
	failErr    error
	onFetch    func(call int)
}

func (s *fakeStore) FetchBefore(ctx context.Context, channelID, beforeID string) ([]*slack.Message, error) {
	s.mu.Lock()
	s.calls = append(s.calls, beforeID)
	call := len(s.calls)
	s.mu.Unlock()

	if s.onFetch != nil {
		s.onFetch(call)
	}
	if s.failOnCall != 0 && call == s.failOnCall {
		return nil, s.failErr
	}

	var page []*slack.Message
	for i := len(s.history) - 1; i >= 0 && len(page) < s.pageSize; i-- {
		if slack.CompareTS(s.history[i].ID(), beforeID) < 0 {
			page = append(page, s.history[i])
		}
	}
	return page, nil
}

// fakeClient adapts fakeStore to HistoryClient and records the limits asked for.
type fakeClient struct {
	store  *fakeStore
	limits []int
}

func (c *fakeClient) GetHistoryBefore(ctx context.Context, channelID, latest string, limit int) ([]*slack.Message, error) {
	c.limits = append(c.limits, limit)
	c.store.pageSize = limit
	return c.store.FetchBefore(ctx, channelID, latest)
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
