package model

import "time"

// StopReason records why a section countdown ended
type StopReason string

const (
	StopSolved    StopReason = "solved"
	StopExhausted StopReason = "exhausted"
	StopExpired   StopReason = "expired"
)

// TeamSectionTimer is the countdown for a section's meta-question.
// StartedAt never changes once created; only the stop fields are written later.
type TeamSectionTimer struct {
	ID          string     `bson:"_id" json:"id"`
	Team        string     `bson:"team" json:"team"`
	Section     int        `bson:"section" json:"section"`
	StartedAt   time.Time  `bson:"startedAt" json:"startedAt"`
	DurationSec int64      `bson:"durationSec" json:"durationSec"`
	StoppedAt   *time.Time `bson:"stoppedAt,omitempty" json:"stoppedAt,omitempty"`
	StopReason  StopReason `bson:"stopReason,omitempty" json:"stopReason,omitempty"`
}

// Stopped reports whether the timer has been marked stopped
func (t *TeamSectionTimer) Stopped() bool {
	return t.StoppedAt != nil
}

// Remaining returns the clamped seconds left at now
func (t *TeamSectionTimer) Remaining(now time.Time) int64 {
	elapsed := int64(now.Sub(t.StartedAt) / time.Second)
	left := t.DurationSec - elapsed
	if left < 0 {
		return 0
	}
	return left
}
