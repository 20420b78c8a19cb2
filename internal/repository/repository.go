package repository

import (
	"context"
	"errors"
	"time"

	"electromatrix/internal/model"
)

// ErrDuplicate is returned when an insert violates a unique key
var ErrDuplicate = errors.New("duplicate key")

// TeamRepo stores teams and their run state
type TeamRepo interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	GetByUsername(ctx context.Context, username string) (*model.Team, error)
	List(ctx context.Context) ([]*model.Team, error)
	SetPassword(ctx context.Context, id, hash string) error

	// Scoring and progression
	AddPoints(ctx context.Context, id string, delta int) error
	RaiseUnlockedSection(ctx context.Context, id string, section int) error

	// Run lifecycle. The bool results report whether the guarded write applied.
	MarkRunStarted(ctx context.Context, id string, at time.Time) (bool, error)
	MarkRunFinished(ctx context.Context, id string, at time.Time, totalSec int64) (bool, error)
	ResetRun(ctx context.Context, id string, startedAt time.Time) error
}

// GridQuestionRepo reads the grid question pool
type GridQuestionRepo interface {
	All(ctx context.Context) ([]*model.GridQuestion, error)
	GetByID(ctx context.Context, id string) (*model.GridQuestion, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.GridQuestion, error)
	// Upsert is keyed by (prompt, imageUrl) and fills q.ID
	Upsert(ctx context.Context, q *model.GridQuestion) error
}

// AssignmentRepo maps team grid cells to pooled questions
type AssignmentRepo interface {
	Get(ctx context.Context, team string, section, cell int) (*model.SectionGridAssignment, error)
	ListBySection(ctx context.Context, team string, section int) ([]*model.SectionGridAssignment, error)
	ListByTeam(ctx context.Context, team string) ([]*model.SectionGridAssignment, error)
	// Upsert is keyed by (team, section, cell)
	Upsert(ctx context.Context, team string, section, cell int, questionID string) (*model.SectionGridAssignment, error)
	Delete(ctx context.Context, team string, section, cell int) error
}

// ResponseRepo tracks per-cell attempts
type ResponseRepo interface {
	Get(ctx context.Context, team string, section, cell int) (*model.TeamResponse, error)
	ListBySection(ctx context.Context, team string, section int) ([]*model.TeamResponse, error)
	ListByTeam(ctx context.Context, team string) ([]*model.TeamResponse, error)
	// Record writes r only while the stored row still holds prevAttempts
	// unsolved attempts (no row at all when prevAttempts is 0). The bool
	// reports whether the write applied.
	Record(ctx context.Context, r *model.TeamResponse, prevAttempts int) (bool, error)
	CountByTeam(ctx context.Context, team string) (int64, error)
	DeleteByTeam(ctx context.Context, team string) error
}

// SectionResponseRepo tracks meta-question attempts
type SectionResponseRepo interface {
	Get(ctx context.Context, team string, section, idx int) (*model.TeamSectionResponse, error)
	ListBySection(ctx context.Context, team string, section int) ([]*model.TeamSectionResponse, error)
	// Record has the same compare-and-set contract as ResponseRepo.Record
	Record(ctx context.Context, r *model.TeamSectionResponse, prevAttempts int) (bool, error)
	CountSolved(ctx context.Context, team string, section int) (int64, error)
	CountByTeam(ctx context.Context, team string) (int64, error)
	DeleteByTeam(ctx context.Context, team string) error
}

// SectionRepo reads meta-questions and composite images
type SectionRepo interface {
	Questions(ctx context.Context, section int) ([]*model.SectionQuestion, error)
	Question(ctx context.Context, section, idx int) (*model.SectionQuestion, error)
	Meta(ctx context.Context, section int) (*model.SectionMeta, error)
	UpsertQuestion(ctx context.Context, q *model.SectionQuestion) error
	UpsertMeta(ctx context.Context, m *model.SectionMeta) error
}

// TimerRepo stores section countdowns
type TimerRepo interface {
	Get(ctx context.Context, team string, section int) (*model.TeamSectionTimer, error)
	// Create inserts t, or returns the already stored timer for (team, section)
	Create(ctx context.Context, t *model.TeamSectionTimer) (*model.TeamSectionTimer, error)
	// Stop marks a running timer stopped; it never overwrites an earlier stop
	Stop(ctx context.Context, team string, section int, at time.Time, reason model.StopReason) (bool, error)
	CountByTeam(ctx context.Context, team string) (int64, error)
	DeleteByTeam(ctx context.Context, team string) error
}

// Store bundles every repository the quiz needs
type Store struct {
	Teams            TeamRepo
	Questions        GridQuestionRepo
	Assignments      AssignmentRepo
	Responses        ResponseRepo
	SectionResponses SectionResponseRepo
	Sections         SectionRepo
	Timers           TimerRepo
}
