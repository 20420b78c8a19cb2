package service

import (
	"context"
	"fmt"
	"time"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"go.uber.org/zap"
)

// Clock returns the current time; tests inject a fixed one
type Clock func() time.Time

// SectionTimer owns the per-section countdown and the unlock rules. Remaining
// time is derived from the stored start on every read; nothing runs in the
// background.
type SectionTimer struct {
	timers           repository.TimerRepo
	assignments      repository.AssignmentRepo
	responses        repository.ResponseRepo
	sectionResponses repository.SectionResponseRepo
	teams            repository.TeamRepo
	duration         time.Duration
	now              Clock
	log              *zap.Logger
}

// NewSectionTimer creates the timer service
func NewSectionTimer(store *repository.Store, duration time.Duration, now Clock, log *zap.Logger) *SectionTimer {
	return &SectionTimer{
		timers:           store.Timers,
		assignments:      store.Assignments,
		responses:        store.Responses,
		sectionResponses: store.SectionResponses,
		teams:            store.Teams,
		duration:         duration,
		now:              now,
		log:              log,
	}
}

// GridComplete reports whether every cell of the team's grid is resolved.
// Vacant cells of an under-filled grid count as resolved; a grid with no
// assignments at all is never complete.
func (s *SectionTimer) GridComplete(ctx context.Context, teamID string, section int) (bool, error) {
	assigned, err := s.assignments.ListBySection(ctx, teamID, section)
	if err != nil {
		return false, fmt.Errorf("failed to list assignments: %w", err)
	}
	if len(assigned) == 0 {
		return false, nil
	}
	responses, err := s.responses.ListBySection(ctx, teamID, section)
	if err != nil {
		return false, fmt.Errorf("failed to list responses: %w", err)
	}

	occupied := make(map[int]bool, len(assigned))
	for _, a := range assigned {
		occupied[a.Cell] = true
	}
	resolved := make(map[int]bool, len(responses))
	for _, r := range responses {
		if cellResolved(r) {
			resolved[r.Cell] = true
		}
	}
	for cell := 0; cell < CellsPerGrid; cell++ {
		if occupied[cell] && !resolved[cell] {
			return false, nil
		}
	}
	return true, nil
}

// EnsureTimer returns the section's timer, starting it if the grid has just
// become complete. It returns nil while the grid is still open.
func (s *SectionTimer) EnsureTimer(ctx context.Context, teamID string, section int) (*model.TeamSectionTimer, error) {
	existing, err := s.timers.Get(ctx, teamID, section)
	if err != nil {
		return nil, fmt.Errorf("failed to load timer: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	complete, err := s.GridComplete(ctx, teamID, section)
	if err != nil || !complete {
		return nil, err
	}

	t, err := s.timers.Create(ctx, &model.TeamSectionTimer{
		Team:        teamID,
		Section:     section,
		StartedAt:   s.now(),
		DurationSec: int64(s.duration / time.Second),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("section timer started",
		zap.String("team", teamID), zap.Int("section", section), zap.Time("startedAt", t.StartedAt))
	return t, nil
}

// RemainingSeconds is nil for a missing or stopped timer, else the clamped
// seconds left
func (s *SectionTimer) RemainingSeconds(t *model.TeamSectionTimer) *int64 {
	if t == nil || t.Stopped() {
		return nil
	}
	left := t.Remaining(s.now())
	return &left
}

// Stop ends a running countdown; an earlier stop is never overwritten
func (s *SectionTimer) Stop(ctx context.Context, teamID string, section int, reason model.StopReason) error {
	stopped, err := s.timers.Stop(ctx, teamID, section, s.now(), reason)
	if err != nil {
		return fmt.Errorf("failed to stop timer: %w", err)
	}
	if stopped {
		s.log.Info("section timer stopped",
			zap.String("team", teamID), zap.Int("section", section), zap.String("reason", string(reason)))
	}
	return nil
}

// SectionCompleted reports whether the section's meta-question is solved
func (s *SectionTimer) SectionCompleted(ctx context.Context, teamID string, section int) (bool, error) {
	n, err := s.sectionResponses.CountSolved(ctx, teamID, section)
	if err != nil {
		return false, fmt.Errorf("failed to count solved: %w", err)
	}
	return n >= MetaQuestions, nil
}

// CompletedOrExpired is true once the section no longer blocks progression
func (s *SectionTimer) CompletedOrExpired(ctx context.Context, teamID string, section int) (bool, error) {
	done, err := s.SectionCompleted(ctx, teamID, section)
	if err != nil || done {
		return done, err
	}

	t, err := s.timers.Get(ctx, teamID, section)
	if err != nil {
		return false, fmt.Errorf("failed to load timer: %w", err)
	}
	if t == nil {
		return false, nil
	}
	return t.Stopped() || t.Remaining(s.now()) == 0, nil
}

// ComputeUnlockedSection evaluates each gate on its own: section 2 opens when
// section 1 is completed or expired, section 3 when section 2 is.
func (s *SectionTimer) ComputeUnlockedSection(ctx context.Context, teamID string) (int, error) {
	unlocked := 1
	for section := 1; section < SectionCount; section++ {
		ok, err := s.CompletedOrExpired(ctx, teamID, section)
		if err != nil {
			return 0, err
		}
		if ok {
			unlocked = section + 1
		}
	}
	return unlocked, nil
}

// SyncUnlockedSection raises the stored marker to the computed value and
// returns whichever is higher, so a section never locks again within a run
func (s *SectionTimer) SyncUnlockedSection(ctx context.Context, team *model.Team) (int, error) {
	computed, err := s.ComputeUnlockedSection(ctx, team.ID)
	if err != nil {
		return 0, err
	}
	if computed <= team.UnlockedSection {
		return team.UnlockedSection, nil
	}
	if err := s.teams.RaiseUnlockedSection(ctx, team.ID, computed); err != nil {
		return 0, fmt.Errorf("failed to raise unlocked section: %w", err)
	}
	s.log.Info("section unlocked", zap.String("team", team.Username), zap.Int("section", computed))
	return computed, nil
}
