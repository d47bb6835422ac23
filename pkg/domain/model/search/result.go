package search

import (
	"fmt"

	"github.com/secmon-lab/sleuth/pkg/domain/model/slack"
)

// DisplayPageSize is the number of results rendered per posted message.
const DisplayPageSize = 25

// ResultSet holds the matches of one search, oldest match first.
type ResultSet struct {
	Messages []*slack.Message
	Scanned  int
	Pages    int
}

// Add appends a match.
func (r *ResultSet) Add(msg *slack.Message) {
	r.Messages = append(r.Messages, msg)
}

// Len returns the number of matches.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Messages)
}

// DisplayPage is one batch of results rendered as a single message.
type DisplayPage struct {
	Index    int // 1-based
	Total    int
	Messages []*slack.Message
}

// Label returns "Results i/N:".
func (p DisplayPage) Label() string {
	return fmt.Sprintf("Results %d/%d:", p.Index, p.Total)
}

// Paginate splits msgs into pages of at most size entries, keeping order.
// An empty input yields no pages.
func Paginate(msgs []*slack.Message, size int) []DisplayPage {
	if size <= 0 {
		size = DisplayPageSize
	}
	if len(msgs) == 0 {
		return nil
	}

	total := (len(msgs) + size - 1) / size
	pages := make([]DisplayPage, 0, total)
	for i := 0; i < total; i++ {
		end := min((i+1)*size, len(msgs))
		pages = append(pages, DisplayPage{
			Index:    i + 1,
			Total:    total,
			Messages: msgs[i*size : end],
		})
	}
	return pages
}
