package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// ErrUnrecognizedCommand is returned for keywords the bot does not answer
	ErrUnrecognizedCommand = goerr.New("command not recognized")

	// ErrSlackServiceRequired is returned when a Slack-facing operation is
	// called on use cases built without a Slack service
	ErrSlackServiceRequired = goerr.New("slack service is not configured")
)

// Context keys for error values
const (
	ChannelIDKey = "channel_id"
	CommandKey   = "command"
	KeywordKey   = "keyword"
	RecordIDKey  = "record_id"
)
