package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	slackmodel "github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	"github.com/secmon-lab/sleuth/pkg/service/slack"
	goslack "github.com/slack-go/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

// fakeAPI is a minimal Slack Web API serving canned JSON per method.
type fakeAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	requests map[string][]map[string]string
	handlers map[string]func(form map[string]string) any
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{
		calls:    make(map[string]int),
		requests: make(map[string][]map[string]string),
		handlers: make(map[string]func(form map[string]string) any),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, r.ParseForm())
		method := r.URL.Path[1:]

		form := make(map[string]string)
		for k := range r.Form {
			form[k] = r.Form.Get(k)
		}

		api.mu.Lock()
		api.calls[method]++
		api.requests[method] = append(api.requests[method], form)
		handler, ok := api.handlers[method]
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "unknown_method"})
			return
		}
		_ = json.NewEncoder(w).Encode(handler(form))
	}))
	t.Cleanup(srv.Close)

	return api, srv
}

func (a *fakeAPI) count(method string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[method]
}

func TestGetHistoryBefore(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handlers["conversations.history"] = func(form map[string]string) any {
		return map[string]any{
			"ok": true,
			"messages": []map[string]any{
				{"type": "message", "user": "U2", "text": "newer", "ts": "1700000000.000200"},
				{"type": "message", "user": "U1", "text": "older", "ts": "1700000000.000100"},
			},
			"has_more": true,
		}
	}

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	msgs, err := svc.GetHistoryBefore(context.Background(), "C001", "1700000000.000300", 100)
	gt.NoError(t, err).Required()
	gt.A(t, msgs).Length(2).Required()
	gt.Value(t, msgs[0].ID()).Equal("1700000000.000200")
	gt.Value(t, msgs[0].Text()).Equal("newer")
	gt.Value(t, msgs[1].UserID()).Equal("U1")
	gt.Value(t, msgs[1].ChannelID()).Equal("C001")

	req := api.requests["conversations.history"][0]
	gt.Value(t, req["channel"]).Equal("C001")
	gt.Value(t, req["latest"]).Equal("1700000000.000300")
	gt.Value(t, req["limit"]).Equal("100")
}

func TestGetHistoryBefore_Error(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handlers["conversations.history"] = func(form map[string]string) any {
		return map[string]any{"ok": false, "error": "not_in_channel"}
	}

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	msgs, err := svc.GetHistoryBefore(context.Background(), "C001", "1700000000.000300", 100)
	gt.Value(t, msgs).Nil()
	gt.Value(t, err).NotNil()
	gt.String(t, err.Error()).Contains("not_in_channel")
}

func TestGetUserNames(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handlers["users.info"] = func(form map[string]string) any {
		switch form["user"] {
		case "U1":
			return map[string]any{"ok": true, "user": map[string]any{
				"id": "U1", "name": "alice", "real_name": "Alice Liddell",
				"profile": map[string]any{"display_name": "ali"},
			}}
		case "U2":
			return map[string]any{"ok": true, "user": map[string]any{
				"id": "U2", "name": "bob", "real_name": "Bob",
				"profile": map[string]any{"display_name": ""},
			}}
		default:
			return map[string]any{"ok": false, "error": "user_not_found"}
		}
	}

	svc, err := slack.New("test-token",
		slack.WithAPIURL(srv.URL+"/"),
		slack.WithCacheTTL(time.Hour),
	)
	gt.NoError(t, err).Required()

	t.Run("resolves display names and skips unknown users", func(t *testing.T) {
		names, err := svc.GetUserNames(context.Background(), []string{"U1", "U2", "U404"})
		gt.NoError(t, err).Required()
		gt.Value(t, names["U1"]).Equal("ali")
		gt.Value(t, names["U2"]).Equal("Bob")
		_, ok := names["U404"]
		gt.Bool(t, ok).False()
	})

	t.Run("uses cache on second call", func(t *testing.T) {
		before := api.count("users.info")
		names, err := svc.GetUserNames(context.Background(), []string{"U1", "U2"})
		gt.NoError(t, err).Required()
		gt.Value(t, names["U1"]).Equal("ali")
		gt.Value(t, api.count("users.info")).Equal(before)
	})

	t.Run("empty input returns empty map", func(t *testing.T) {
		names, err := svc.GetUserNames(context.Background(), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, len(names)).Equal(0)
	})
}

func TestGetUserNames_CacheExpires(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handlers["users.info"] = func(form map[string]string) any {
		return map[string]any{"ok": true, "user": map[string]any{"id": form["user"], "name": "carol"}}
	}

	svc, err := slack.New("test-token",
		slack.WithAPIURL(srv.URL+"/"),
		slack.WithCacheTTL(0),
	)
	gt.NoError(t, err).Required()

	_, err = svc.GetUserNames(context.Background(), []string{"U3"})
	gt.NoError(t, err).Required()
	_, err = svc.GetUserNames(context.Background(), []string{"U3"})
	gt.NoError(t, err).Required()
	gt.Value(t, api.count("users.info")).Equal(2)
}

func TestGetBotUserID(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handlers["auth.test"] = func(form map[string]string) any {
		return map[string]any{"ok": true, "user_id": "UBOT", "user": "sleuth"}
	}

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	for range 3 {
		id, err := svc.GetBotUserID(context.Background())
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal("UBOT")
	}
	gt.Value(t, api.count("auth.test")).Equal(1)
}

func TestPostMessage(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handlers["chat.postMessage"] = func(form map[string]string) any {
		return map[string]any{"ok": true, "channel": form["channel"], "ts": "1700000001.000100"}
	}

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	blocks := []goslack.Block{
		goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType, "*hi*", false, false), nil, nil),
	}
	ts, err := svc.PostMessage(context.Background(), "C001", blocks, "Results 1/1:")
	gt.NoError(t, err).Required()
	gt.Value(t, ts).Equal("1700000001.000100")

	req := api.requests["chat.postMessage"][0]
	gt.Value(t, req["channel"]).Equal("C001")
	gt.Value(t, req["text"]).Equal("Results 1/1:")
	gt.String(t, req["blocks"]).Contains("*hi*")
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	if token == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN is not set")
	}
	channelID := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if channelID == "" {
		t.Skip("TEST_SLACK_CHANNEL_ID is not set")
	}

	ctx := context.Background()

	svc, err := slack.New(token)
	gt.NoError(t, err).Required()

	t.Run("GetBotUserID returns the bot user", func(t *testing.T) {
		id, err := svc.GetBotUserID(ctx)
		gt.NoError(t, err).Required()
		gt.String(t, id).NotEqual("")
	})

	t.Run("GetHistoryBefore returns messages older than now", func(t *testing.T) {
		now := time.Now().UTC()
		msgs, err := svc.GetHistoryBefore(ctx, channelID, slackmodel.FormatTS(now), 10)
		gt.NoError(t, err).Required()
		gt.Bool(t, len(msgs) <= 10).True()

		for _, msg := range msgs {
			gt.Bool(t, msg.Timestamp().Before(now)).True()
			t.Logf("Found message: %s by %s", msg.ID(), msg.UserID())
		}
	})
}
