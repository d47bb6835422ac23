package command

import (
	"strings"

	"github.com/secmon-lab/sleuth/pkg/domain/model/search"
)

// DefaultPrefix is the token a channel message must start with to address
// the bot. "/s" is reserved by Slack for the slash command.
const DefaultPrefix = "!s"

// Keyword is the second token of a command.
type Keyword string

const (
	KeywordPing   Keyword = "ping"
	KeywordAllBut Keyword = Keyword(search.KindAllBut)
	KeywordAnd    Keyword = Keyword(search.KindAnd)
	KeywordExact  Keyword = Keyword(search.KindExact)
	KeywordOr     Keyword = Keyword(search.KindOr)
	KeywordHelp   Keyword = "help"
)

// IsKnown reports whether the keyword is one the bot answers.
func (k Keyword) IsKnown() bool {
	switch k {
	case KeywordPing, KeywordAllBut, KeywordAnd, KeywordExact, KeywordOr, KeywordHelp:
		return true
	default:
		return false
	}
}

// SearchKind returns the search kind for search keywords.
func (k Keyword) SearchKind() (search.Kind, bool) {
	return search.ParseKind(string(k))
}

// Command is a parsed "<prefix> <keyword> <argument>" message.
type Command struct {
	Prefix      string
	Keyword     Keyword
	Argument    string
	HasArgument bool
}

// Parse splits text on single spaces at most twice. ok is false when the
// first token is not prefix. The argument is everything after the second
// space, verbatim.
func Parse(text, prefix string) (*Command, bool) {
	parts := strings.SplitN(text, " ", 3)
	if parts[0] != prefix {
		return nil, false
	}

	cmd := &Command{Prefix: parts[0]}
	if len(parts) > 1 {
		cmd.Keyword = Keyword(parts[1])
	}
	if len(parts) > 2 {
		cmd.Argument = parts[2]
		cmd.HasArgument = true
	}
	return cmd, true
}
