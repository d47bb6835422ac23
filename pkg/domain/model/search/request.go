package search

import "github.com/m-mizutani/goerr/v2"

// Request is one search invocation. History strictly older than TriggerID
// in ChannelID is scanned.
type Request struct {
	ChannelID string
	TriggerID string
	UserID    string
	Kind      Kind
	Argument  string
}

// NewRequest validates the fields and builds a Request.
func NewRequest(channelID, triggerID, userID string, kind Kind, argument string) (Request, error) {
	if !kind.IsValid() {
		return Request{}, goerr.Wrap(ErrUnknownKind, "cannot build search request", goerr.V(KindKey, kind))
	}
	if argument == "" {
		return Request{}, goerr.Wrap(ErrMissingArgument, "cannot build search request", goerr.V(KindKey, kind))
	}
	if channelID == "" {
		return Request{}, goerr.Wrap(ErrMissingChannel, "cannot build search request")
	}
	if triggerID == "" {
		return Request{}, goerr.Wrap(ErrMissingTrigger, "cannot build search request", goerr.V(ChannelIDKey, channelID))
	}

	return Request{
		ChannelID: channelID,
		TriggerID: triggerID,
		UserID:    userID,
		Kind:      kind,
		Argument:  argument,
	}, nil
}

// Matches reports whether text satisfies the request's predicate.
func (r Request) Matches(text string) bool {
	return Match(r.Kind, text, r.Argument)
}
