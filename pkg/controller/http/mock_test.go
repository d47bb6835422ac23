package http_test

import (
	"context"
	"sync"
	"testing"
	"time"

	slackmodel "github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	goslack "github.com/slack-go/slack"
)

type postedMessage struct {
	channelID string
	text      string
}

// mockSlackService is a mock implementation of slack.Service for testing
type mockSlackService struct {
	mu      sync.Mutex
	history []*slackmodel.Message
	posted  []postedMessage
	latest  []string
}

func newMockSlackService(history ...*slackmodel.Message) *mockSlackService {
	return &mockSlackService{history: history}
}

func (m *mockSlackService) GetHistoryBefore(ctx context.Context, channelID, latest string, limit int) ([]*slackmodel.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = append(m.latest, latest)

	var page []*slackmodel.Message
	for i := len(m.history) - 1; i >= 0 && len(page) < limit; i-- {
		if slackmodel.CompareTS(m.history[i].ID(), latest) < 0 {
			page = append(page, m.history[i])
		}
	}
	return page, nil
}

func (m *mockSlackService) GetUserNames(ctx context.Context, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (m *mockSlackService) GetBotUserID(ctx context.Context) (string, error) {
	return "UBOT", nil
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, postedMessage{channelID: channelID, text: text})
	return "1800000000.000001", nil
}

// waitPosted waits until at least n messages were posted by async handlers.
func (m *mockSlackService) waitPosted(t *testing.T, n int) []postedMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		if len(m.posted) >= n {
			posted := append([]postedMessage(nil), m.posted...)
			m.mu.Unlock()
			return posted
		}
		m.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d posted messages", n)
	return nil
}
