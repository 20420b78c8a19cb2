package model

import "time"

// Team is a quiz participant. It is created by seeding and mutated on every
// scoring event, unlock and run transition.
type Team struct {
	ID              string     `bson:"_id" json:"id"`
	Username        string     `bson:"username" json:"username"`
	PasswordHash    string     `bson:"password" json:"-"`
	Points          int        `bson:"points" json:"points"`
	UnlockedSection int        `bson:"unlockedSection" json:"unlockedSection"`
	RunStartedAt    *time.Time `bson:"runStartedAt,omitempty" json:"runStartedAt,omitempty"`
	RunFinishedAt   *time.Time `bson:"runFinishedAt,omitempty" json:"runFinishedAt,omitempty"`
	RunTotalTimeSec *int64     `bson:"runTotalTimeSec,omitempty" json:"runTotalTimeSec,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
}

// RunState is the lifecycle position of a team's run
type RunState string

const (
	RunNotStarted RunState = "not_started"
	RunStarted    RunState = "started"
	RunFinished   RunState = "finished"
)

// RunState derives the run state from the stored timestamps
func (t *Team) RunState() RunState {
	switch {
	case t.RunFinishedAt != nil:
		return RunFinished
	case t.RunStartedAt != nil:
		return RunStarted
	default:
		return RunNotStarted
	}
}
