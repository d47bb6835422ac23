package slack

import (
	"strings"
)

// MaxSectionTextLength is the limit Slack puts on a section block's text.
const MaxSectionTextLength = 3000

var mrkdwnEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeText escapes the three characters Slack treats as control
// sequences in mrkdwn and plain text.
func EscapeText(s string) string {
	return mrkdwnEscaper.Replace(s)
}

var mrkdwnUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// UnescapeText reverses the escaping Slack applies to message text, giving
// the characters the author typed. Mentions and links come back in their
// "<@U123>" and "<https://...>" source form.
func UnescapeText(s string) string {
	return mrkdwnUnescaper.Replace(s)
}

// TruncateRunes returns the first max characters of s. Multi-byte characters
// are never split.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}

	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// SectionText prepares s for a section block within Slack's length limit.
func SectionText(s string) string {
	return TruncateRunes(s, MaxSectionTextLength)
}
