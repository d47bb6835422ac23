package search

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for search requests
var (
	ErrMissingArgument = goerr.New("search argument is required")
	ErrUnknownKind     = goerr.New("unknown search kind")
	ErrMissingChannel  = goerr.New("channel ID is required")
	ErrMissingTrigger  = goerr.New("trigger message ID is required")
)

// Context keys for error values
const (
	KindKey      = "kind"
	ChannelIDKey = "channel_id"
	TriggerIDKey = "trigger_id"
)
