package history

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for history walks
var (
	// ErrFetch marks a failure of the remote store. The store's own error
	// stays in the chain.
	ErrFetch = goerr.New("failed to fetch history page")

	// ErrCursorStalled is returned when a page holds a message that is not
	// strictly older than the cursor it was requested with.
	ErrCursorStalled = goerr.New("history cursor did not advance")
)

// Context keys for error values
const (
	ChannelIDKey = "channel_id"
	CursorKey    = "cursor"
	MessageIDKey = "message_id"
)
