package usecase

import "time"

// BuildResultBlocks is exported for testing
var BuildResultBlocks = buildResultBlocks

// SetNow replaces the clock used to stamp slash command triggers
func (uc *SlackUseCases) SetNow(now func() time.Time) {
	uc.now = now
}
