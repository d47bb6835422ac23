package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	slackmodel "github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for user name cache
	DefaultCacheTTL = 10 * time.Minute
)

// cacheEntry holds a cached user name with expiration
type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api        *slack.Client
	apiOptions []slack.Option
	cacheTTL   time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry

	botMu     sync.Mutex
	botUserID string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for user name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithAPIURL points the client at another Slack API endpoint. The URL must
// end with a slash.
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiOptions = append(c.apiOptions, slack.OptionAPIURL(url))
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.api = slack.New(token, c.apiOptions...)

	return c, nil
}

// GetHistoryBefore reads one page of conversations.history ending before latest
func (c *client) GetHistoryBefore(ctx context.Context, channelID, latest string, limit int) ([]*slackmodel.Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Latest:    latest,
		Inclusive: false,
		Limit:     limit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get conversation history",
			goerr.V("channel_id", channelID),
			goerr.V("latest", latest),
			goerr.V("limit", limit),
		)
	}

	msgs := make([]*slackmodel.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		msgs = append(msgs, slackmodel.NewMessageFromHistory(channelID, m))
	}
	return msgs, nil
}

// GetUserNames retrieves user display names for the given IDs with caching
func (c *client) GetUserNames(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string)
	var missingIDs []string

	now := time.Now()

	// Check cache first
	c.mu.RLock()
	for _, id := range ids {
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			result[id] = entry.name
		} else {
			missingIDs = append(missingIDs, id)
		}
	}
	c.mu.RUnlock()

	if len(missingIDs) == 0 {
		return result, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range missingIDs {
		// Double-check cache after acquiring write lock
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			result[id] = entry.name
			continue
		}

		user, err := c.getUser(ctx, id)
		if err != nil {
			// The caller falls back to the raw user ID
			logging.From(ctx).Debug("failed to resolve user name", "user_id", id, "error", err)
			continue
		}

		name := user.PreferredName()
		result[id] = name
		c.cache[id] = cacheEntry{
			name:      name,
			expiresAt: now.Add(c.cacheTTL),
		}
	}

	return result, nil
}

func (c *client) getUser(ctx context.Context, userID string) (*User, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}

	return &User{
		ID:          user.ID,
		Name:        user.Name,
		RealName:    user.RealName,
		DisplayName: user.Profile.DisplayName,
	}, nil
}

// GetBotUserID retrieves the bot's own user ID via auth.test
func (c *client) GetBotUserID(ctx context.Context) (string, error) {
	c.botMu.Lock()
	defer c.botMu.Unlock()

	if c.botUserID != "" {
		return c.botUserID, nil
	}

	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call auth.test")
	}

	c.botUserID = resp.UserID
	return c.botUserID, nil
}

// PostMessage posts a Block Kit message to a channel
func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message",
			goerr.V("channel_id", channelID),
			goerr.V("blocks", len(blocks)),
		)
	}
	return ts, nil
}
