package usecase

import (
	"context"
	"fmt"

	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
	slackmodel "github.com/secmon-lab/sleuth/pkg/domain/model/slack"
	slacksvc "github.com/secmon-lab/sleuth/pkg/service/slack"
	"github.com/secmon-lab/sleuth/pkg/utils/errutil"
	goslack "github.com/slack-go/slack"
)

const (
	// MaxContentLength is the number of characters of a match shown per entry
	MaxContentLength = 200

	dateLayout  = "2006-01-02"
	emptyText   = "(no text)"
	noMatchText = "No messages matched."
)

// ResultEntry is one match as shown to the user.
type ResultEntry struct {
	Author  string
	Date    string
	Content string
}

// Heading returns "<author> at <date>:".
func (e ResultEntry) Heading() string {
	return fmt.Sprintf("%s at %s:", e.Author, e.Date)
}

// RenderedPage is one Slack message of results.
type RenderedPage struct {
	Text    string
	Entries []ResultEntry
	Blocks  []goslack.Block
}

// NewResultEntry formats msg. names maps user IDs to display names;
// unresolved authors fall back to the name carried by the message. Content
// is plain text: Slack's escaping is undone before the 200 character cut.
func NewResultEntry(msg *slackmodel.Message, names map[string]string) ResultEntry {
	author := msg.UserName()
	if name, ok := names[msg.UserID()]; ok && name != "" {
		author = name
	}

	return ResultEntry{
		Author:  author,
		Date:    msg.Timestamp().UTC().Format(dateLayout),
		Content: slacksvc.TruncateRunes(slacksvc.UnescapeText(msg.Text()), MaxContentLength),
	}
}

// RenderResults splits the matches into display pages of at most
// search.DisplayPageSize entries. No matches yields no pages.
func RenderResults(rs *search.ResultSet, names map[string]string) []RenderedPage {
	if rs.Len() == 0 {
		return nil
	}

	pages := search.Paginate(rs.Messages, search.DisplayPageSize)
	rendered := make([]RenderedPage, 0, len(pages))
	for _, page := range pages {
		entries := make([]ResultEntry, 0, len(page.Messages))
		for _, msg := range page.Messages {
			entries = append(entries, NewResultEntry(msg, names))
		}

		rendered = append(rendered, RenderedPage{
			Text:    page.Label(),
			Entries: entries,
			Blocks:  buildResultBlocks(page.Label(), entries),
		})
	}
	return rendered
}

// buildResultBlocks constructs one section per entry under a label section.
// Content is escaped again so quoted mentions and links show as text and
// never notify anyone.
func buildResultBlocks(label string, entries []ResultEntry) []goslack.Block {
	blocks := make([]goslack.Block, 0, len(entries)+1)
	blocks = append(blocks, goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, "*"+label+"*", false, false),
		nil, nil,
	))

	for _, entry := range entries {
		content := entry.Content
		if content == "" {
			content = emptyText
		}
		text := fmt.Sprintf("*%s*\n%s",
			slacksvc.EscapeText(entry.Heading()),
			slacksvc.EscapeText(content),
		)
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, slacksvc.SectionText(text), false, false),
			nil, nil,
		))
	}
	return blocks
}

// ResolveAuthors looks up display names of the matches' authors. Lookup
// failures are logged and leave the names unresolved.
func ResolveAuthors(ctx context.Context, svc slacksvc.Service, msgs []*slackmodel.Message) map[string]string {
	seen := make(map[string]struct{})
	var ids []string
	for _, msg := range msgs {
		if msg.UserID() == "" {
			continue
		}
		if _, ok := seen[msg.UserID()]; ok {
			continue
		}
		seen[msg.UserID()] = struct{}{}
		ids = append(ids, msg.UserID())
	}
	if len(ids) == 0 || svc == nil {
		return nil
	}

	names, err := svc.GetUserNames(ctx, ids)
	if err != nil {
		errutil.Handle(ctx, err, "failed to resolve author names")
		return nil
	}
	return names
}
