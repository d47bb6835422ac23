package slack

import (
	"context"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const subTypeBotMessage = "bot_message"

// Message is a read-only copy of one Slack channel message. The ID is the
// message's "ts", which Slack uses as the pagination cursor for history.
type Message struct {
	id        string
	channelID string
	threadTS  string
	teamID    string
	userID    string
	userName  string
	botID     string
	subType   string
	text      string
	timestamp time.Time
}

// NewMessage creates a Message from a Slack Events API callback. It returns
// nil for anything that is not a channel message.
func NewMessage(ctx context.Context, ev *slackevents.EventsAPIEvent) *Message {
	if ev == nil || ev.Type != slackevents.CallbackEvent {
		return nil
	}

	evt, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		return nil
	}

	threadTS := ""
	if evt.ThreadTimeStamp != "" && evt.ThreadTimeStamp != evt.TimeStamp {
		threadTS = evt.ThreadTimeStamp
	}

	return &Message{
		id:        evt.TimeStamp,
		channelID: evt.Channel,
		threadTS:  threadTS,
		teamID:    ev.TeamID,
		userID:    evt.User,
		userName:  displayName(evt.Username, evt.User),
		botID:     evt.BotID,
		subType:   evt.SubType,
		text:      evt.Text,
		timestamp: timeOf(evt.TimeStamp),
	}
}

// NewMessageFromHistory converts one entry of conversations.history.
func NewMessageFromHistory(channelID string, msg slack.Message) *Message {
	return &Message{
		id:        msg.Timestamp,
		channelID: channelID,
		threadTS:  msg.ThreadTimestamp,
		teamID:    msg.Team,
		userID:    msg.User,
		userName:  displayName(msg.Username, msg.User),
		botID:     msg.BotID,
		subType:   msg.SubType,
		text:      msg.Text,
		timestamp: timeOf(msg.Timestamp),
	}
}

// NewMessageFromData creates a Message from raw fields (tests and fakes).
func NewMessageFromData(id, channelID, userID, userName, text string) *Message {
	return &Message{
		id:        id,
		channelID: channelID,
		userID:    userID,
		userName:  displayName(userName, userID),
		text:      text,
		timestamp: timeOf(id),
	}
}

func displayName(name, userID string) string {
	if name != "" {
		return name
	}
	return userID
}

func timeOf(ts string) time.Time {
	t, err := ParseTS(ts)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (m *Message) ID() string {
	return m.id
}

func (m *Message) ChannelID() string {
	return m.channelID
}

func (m *Message) ThreadTS() string {
	return m.threadTS
}

func (m *Message) TeamID() string {
	return m.teamID
}

func (m *Message) UserID() string {
	return m.userID
}

// UserName is the bot username for bot posts, otherwise the user ID until
// the caller resolves it.
func (m *Message) UserName() string {
	return m.userName
}

func (m *Message) BotID() string {
	return m.botID
}

func (m *Message) SubType() string {
	return m.subType
}

func (m *Message) Text() string {
	return m.text
}

func (m *Message) Timestamp() time.Time {
	return m.timestamp
}

// IsFromBot reports whether the message was posted by a bot integration.
func (m *Message) IsFromBot() bool {
	return m.botID != "" || m.subType == subTypeBotMessage
}
