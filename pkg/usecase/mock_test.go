package usecase_test

import (
	"context"
	"fmt"
	"sync"

	slackmodel "github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	goslack "github.com/slack-go/slack"
)

const (
	testChannelID = "C001"
	testUserID    = "U001"
	testBotUserID = "UBOT"
)

// postedMessage records one PostMessage call
type postedMessage struct {
	ChannelID string
	Blocks    []goslack.Block
	Text      string
}

// mockSlackService is a mock implementation of slack.Service for testing.
// History is kept in chronological order and served newest first.
type mockSlackService struct {
	mu sync.Mutex

	history []*slackmodel.Message
	names   map[string]string

	getHistoryBeforeFn func(ctx context.Context, channelID, latest string, limit int) ([]*slackmodel.Message, error)
	getUserNamesFn     func(ctx context.Context, ids []string) (map[string]string, error)
	postMessageFn      func(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error)

	historyCalls int
	posted       []postedMessage
}

func (m *mockSlackService) GetHistoryBefore(ctx context.Context, channelID, latest string, limit int) ([]*slackmodel.Message, error) {
	m.mu.Lock()
	m.historyCalls++
	m.mu.Unlock()

	if m.getHistoryBeforeFn != nil {
		return m.getHistoryBeforeFn(ctx, channelID, latest, limit)
	}

	var page []*slackmodel.Message
	for i := len(m.history) - 1; i >= 0 && len(page) < limit; i-- {
		msg := m.history[i]
		if msg.ChannelID() == channelID && slackmodel.CompareTS(msg.ID(), latest) < 0 {
			page = append(page, msg)
		}
	}
	return page, nil
}

func (m *mockSlackService) GetUserNames(ctx context.Context, ids []string) (map[string]string, error) {
	if m.getUserNamesFn != nil {
		return m.getUserNamesFn(ctx, ids)
	}
	result := make(map[string]string)
	for _, id := range ids {
		if name, ok := m.names[id]; ok {
			result[id] = name
		}
	}
	return result, nil
}

func (m *mockSlackService) GetBotUserID(ctx context.Context) (string, error) {
	return testBotUserID, nil
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	if m.postMessageFn != nil {
		return m.postMessageFn(ctx, channelID, blocks, text)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, postedMessage{ChannelID: channelID, Blocks: blocks, Text: text})
	return fmt.Sprintf("1800000000.%06d", len(m.posted)), nil
}

func (m *mockSlackService) postedTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, len(m.posted))
	for i, p := range m.posted {
		texts[i] = p.Text
	}
	return texts
}

func testTS(i int) string {
	return fmt.Sprintf("1700000000.%06d", i+1)
}

// newTestHistory builds a chronological channel history, one message per text.
func newTestHistory(texts ...string) []*slackmodel.Message {
	msgs := make([]*slackmodel.Message, len(texts))
	for i, text := range texts {
		msgs[i] = slackmodel.NewMessageFromData(testTS(i), testChannelID, fmt.Sprintf("U%03d", i%2+1), "", text)
	}
	return msgs
}
