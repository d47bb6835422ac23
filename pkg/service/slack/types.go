package slack

import (
	"context"

	slackmodel "github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	"github.com/slack-go/slack"
)

// Service provides interface to Slack API for the search bot
type Service interface {
	// GetHistoryBefore returns up to limit messages of channelID strictly
	// older than latest, newest first. An empty slice means nothing older
	// exists.
	GetHistoryBefore(ctx context.Context, channelID, latest string, limit int) ([]*slackmodel.Message, error)

	// GetUserNames resolves display names for the given user IDs (with caching).
	// IDs that cannot be resolved are omitted from the result.
	GetUserNames(ctx context.Context, ids []string) (map[string]string, error)

	// GetBotUserID returns the user ID of the bot itself.
	// The result is cached for the lifetime of the service instance.
	GetBotUserID(ctx context.Context) (string, error)

	// PostMessage posts a Block Kit message to a channel and returns the message timestamp.
	// The text parameter is used as a fallback for notifications.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)
}

// User represents a Slack user
type User struct {
	ID          string
	Name        string
	RealName    string
	DisplayName string
}

// PreferredName returns the name Slack shows for the user.
func (u *User) PreferredName() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.RealName != "":
		return u.RealName
	case u.Name != "":
		return u.Name
	default:
		return u.ID
	}
}
