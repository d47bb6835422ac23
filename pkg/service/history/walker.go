package history

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
	"google.golang.org/api/iterator"
)

// PageFetcher returns the page of messages strictly older than beforeID,
// newest first. An empty page means nothing older exists.
type PageFetcher interface {
	FetchBefore(ctx context.Context, channelID, beforeID string) ([]*slack.Message, error)
}

// State is the phase of a Walker.
type State int

const (
	// StatePriming fetches pages backward until the store runs dry.
	StatePriming State = iota
	// StateDraining emits buffered messages, oldest first.
	StateDraining
	// StateExhausted is terminal.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePriming:
		return "priming"
	case StateDraining:
		return "draining"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Walker enumerates a channel's history strictly before a trigger message,
// oldest message first, without gaps or duplicates.
//
// Slack only serves pages older than a cursor, newest first, so the oldest
// message is known only after the store returns an empty page. The walker
// therefore fetches every page while priming (each fetch is a blocking call
// that honours ctx) and then drains them in chronological order. A Walker is
// single use.
type Walker struct {
	fetcher   PageFetcher
	channelID string
	cursor    string

	state   State
	pages   [][]*slack.Message
	buffer  []*slack.Message
	fetches int
	err     error
}

// NewWalker creates a walker for channelID starting before triggerID.
func NewWalker(fetcher PageFetcher, channelID, triggerID string) *Walker {
	return &Walker{
		fetcher:   fetcher,
		channelID: channelID,
		cursor:    triggerID,
		state:     StatePriming,
	}
}

// State returns the current phase.
func (w *Walker) State() State {
	return w.state
}

// Cursor returns the ID the next fetch would be made before.
func (w *Walker) Cursor() string {
	return w.cursor
}

// Fetches returns the number of fetch calls made, including the final
// empty one.
func (w *Walker) Fetches() int {
	return w.fetches
}

// Next returns the next message in chronological order. It returns
// iterator.Done once the history is exhausted. After a fetch failure or
// cancellation the buffer is released and the same error is returned from
// every later call.
func (w *Walker) Next(ctx context.Context) (*slack.Message, error) {
	for {
		switch w.state {
		case StatePriming:
			if err := w.refill(ctx); err != nil {
				w.abort(err)
				return nil, err
			}

		case StateDraining:
			if err := ctx.Err(); err != nil {
				w.abort(goerr.Wrap(err, "history walk cancelled", goerr.V(ChannelIDKey, w.channelID)))
				return nil, w.err
			}

			msg := w.buffer[0]
			w.buffer[0] = nil
			w.buffer = w.buffer[1:]
			if len(w.buffer) == 0 {
				w.buffer = nil
				w.state = StateExhausted
			}
			return msg, nil

		default:
			if w.err != nil {
				return nil, w.err
			}
			return nil, iterator.Done
		}
	}
}

// refill performs one fetch with the current cursor.
func (w *Walker) refill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "history walk cancelled",
			goerr.V(ChannelIDKey, w.channelID),
			goerr.V(CursorKey, w.cursor),
		)
	}

	page, err := w.fetcher.FetchBefore(ctx, w.channelID, w.cursor)
	w.fetches++
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return goerr.Wrap(ctxErr, "history walk cancelled",
				goerr.V(ChannelIDKey, w.channelID),
				goerr.V(CursorKey, w.cursor),
			)
		}
		return goerr.Wrap(err, "history walk aborted",
			goerr.V(ChannelIDKey, w.channelID),
			goerr.V(CursorKey, w.cursor),
		)
	}

	if len(page) == 0 {
		w.drain(ctx)
		return nil
	}

	for _, msg := range page {
		if slack.CompareTS(msg.ID(), w.cursor) >= 0 {
			return goerr.Wrap(ErrCursorStalled, "history page is not older than its cursor",
				goerr.V(ChannelIDKey, w.channelID),
				goerr.V(CursorKey, w.cursor),
				goerr.V(MessageIDKey, msg.ID()),
			)
		}
	}

	w.pages = append(w.pages, page)
	w.cursor = page[len(page)-1].ID()
	return nil
}

// drain turns the fetched pages into one oldest-first buffer.
func (w *Walker) drain(ctx context.Context) {
	total := 0
	for _, page := range w.pages {
		total += len(page)
	}

	buffer := make([]*slack.Message, 0, total)
	for i := len(w.pages) - 1; i >= 0; i-- {
		page := w.pages[i]
		for j := len(page) - 1; j >= 0; j-- {
			buffer = append(buffer, page[j])
		}
	}
	w.pages = nil

	logging.From(ctx).Debug("history walk primed",
		"channel_id", w.channelID,
		"fetches", w.fetches,
		"messages", total,
	)

	if len(buffer) == 0 {
		w.state = StateExhausted
		return
	}
	w.buffer = buffer
	w.state = StateDraining
}

func (w *Walker) abort(err error) {
	w.err = err
	w.pages = nil
	w.buffer = nil
	w.state = StateExhausted
}
