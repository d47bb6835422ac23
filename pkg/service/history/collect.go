package history

import (
	"context"
	"errors"

	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
	"google.golang.org/api/iterator"
)

// Collect drains w and keeps the messages matching req in walk order. On
// error no partial result is returned.
func Collect(ctx context.Context, w *Walker, req search.Request) (*search.ResultSet, error) {
	rs := &search.ResultSet{}

	for {
		msg, err := w.Next(ctx)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}

		rs.Scanned++
		if req.Matches(msg.Text()) {
			rs.Add(msg)
		}
	}

	rs.Pages = w.Fetches()
	return rs, nil
}

// Scan searches the history of req.ChannelID before req.TriggerID.
func Scan(ctx context.Context, fetcher PageFetcher, req search.Request) (*search.ResultSet, error) {
	return Collect(ctx, NewWalker(fetcher, req.ChannelID, req.TriggerID), req)
}
