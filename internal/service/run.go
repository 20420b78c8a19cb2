package service

import (
	"context"
	"fmt"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunTracker stamps run start and finish on the team record. A run moves
// NotStarted -> Started -> Finished. The reset transition (Started|Finished
// -> Started with a new start stamp) fires only when no grid or meta
// response survives AND the team still carries stale progress: a finish
// stamp, nonzero points, an unlocked section above 1, or section timers.
// A started run that simply has no answers yet keeps its original start.
type RunTracker struct {
	store *repository.Store
	timer *SectionTimer
	board *Scoreboard
	now   Clock
	log   *zap.Logger
}

// NewRunTracker creates the run lifecycle tracker
func NewRunTracker(store *repository.Store, timer *SectionTimer, board *Scoreboard, now Clock, log *zap.Logger) *RunTracker {
	return &RunTracker{store: store, timer: timer, board: board, now: now, log: log}
}

// EnsureRunStarted applies the start or reset transition and returns the
// team as stored afterwards
func (r *RunTracker) EnsureRunStarted(ctx context.Context, team *model.Team) (*model.Team, error) {
	switch team.RunState() {
	case model.RunNotStarted:
		if _, err := r.store.Teams.MarkRunStarted(ctx, team.ID, r.now()); err != nil {
			return nil, err
		}
		r.log.Info("run started", zap.String("team", team.Username))
	default:
		reset, err := r.needsReset(ctx, team)
		if err != nil {
			return nil, err
		}
		if !reset {
			return team, nil
		}
		if err := r.reset(ctx, team); err != nil {
			return nil, err
		}
	}
	return r.reload(ctx, team.ID)
}

// needsReset holds when no grid or meta response survives but the team still
// carries progress from an earlier run
func (r *RunTracker) needsReset(ctx context.Context, team *model.Team) (bool, error) {
	var grid, meta, timers int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		grid, err = r.store.Responses.CountByTeam(gctx, team.ID)
		return err
	})
	g.Go(func() (err error) {
		meta, err = r.store.SectionResponses.CountByTeam(gctx, team.ID)
		return err
	})
	g.Go(func() (err error) {
		timers, err = r.store.Timers.CountByTeam(gctx, team.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, fmt.Errorf("failed to inspect run state: %w", err)
	}

	if grid+meta > 0 {
		return false, nil
	}
	stale := team.RunState() == model.RunFinished ||
		team.Points != 0 ||
		team.UnlockedSection > 1 ||
		timers > 0
	return stale, nil
}

func (r *RunTracker) reset(ctx context.Context, team *model.Team) error {
	if err := r.store.Responses.DeleteByTeam(ctx, team.ID); err != nil {
		return fmt.Errorf("failed to purge responses: %w", err)
	}
	if err := r.store.SectionResponses.DeleteByTeam(ctx, team.ID); err != nil {
		return fmt.Errorf("failed to purge section responses: %w", err)
	}
	if err := r.store.Timers.DeleteByTeam(ctx, team.ID); err != nil {
		return fmt.Errorf("failed to purge timers: %w", err)
	}
	if err := r.store.Teams.ResetRun(ctx, team.ID, r.now()); err != nil {
		return fmt.Errorf("failed to reset run: %w", err)
	}
	r.board.Reset(ctx, team.Username)
	r.log.Info("stale run reset", zap.String("team", team.Username))
	return nil
}

// FinalizeRunIfDone stamps the finish time once all three meta-questions are
// solved. Expired sections never count as done.
func (r *RunTracker) FinalizeRunIfDone(ctx context.Context, teamID string) error {
	team, err := r.store.Teams.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}
	if team == nil || team.RunState() != model.RunStarted {
		return nil
	}

	solved := make([]bool, SectionCount)
	g, gctx := errgroup.WithContext(ctx)
	for i := range solved {
		section := i + 1
		g.Go(func() error {
			ok, err := r.timer.SectionCompleted(gctx, teamID, section)
			solved[section-1] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, ok := range solved {
		if !ok {
			return nil
		}
	}

	now := r.now()
	total := int64(now.Sub(*team.RunStartedAt).Seconds())
	if total < 0 {
		total = 0
	}
	finished, err := r.store.Teams.MarkRunFinished(ctx, teamID, now, total)
	if err != nil || !finished {
		return err
	}
	r.board.Sync(ctx, teamID)
	r.log.Info("run finished", zap.String("team", team.Username), zap.Int64("totalSec", total))
	return nil
}

func (r *RunTracker) reload(ctx context.Context, teamID string) (*model.Team, error) {
	team, err := r.store.Teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload team: %w", err)
	}
	if team == nil {
		return nil, ErrInvalidTeam
	}
	return team, nil
}
