package memory

import (
	"context"
	"time"

	"electromatrix/internal/model"
)

type timerRepo struct {
	locker
	ids  *idSource
	rows map[cellKey]model.TeamSectionTimer
}

func (r *timerRepo) Get(_ context.Context, team string, section int) (*model.TeamSectionTimer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.rows[cellKey{team: team, section: section}]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *timerRepo) Create(_ context.Context, t *model.TeamSectionTimer) (*model.TeamSectionTimer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cellKey{team: t.Team, section: t.Section}
	if existing, ok := r.rows[key]; ok {
		return &existing, nil
	}
	if t.ID == "" {
		t.ID = r.ids.next()
	}
	r.rows[key] = *t
	stored := *t
	return &stored, nil
}

func (r *timerRepo) Stop(_ context.Context, team string, section int, at time.Time, reason model.StopReason) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cellKey{team: team, section: section}
	t, ok := r.rows[key]
	if !ok || t.StoppedAt != nil {
		return false, nil
	}
	t.StoppedAt = &at
	t.StopReason = reason
	r.rows[key] = t
	return true, nil
}

func (r *timerRepo) CountByTeam(_ context.Context, team string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for k := range r.rows {
		if k.team == team {
			n++
		}
	}
	return n, nil
}

func (r *timerRepo) DeleteByTeam(_ context.Context, team string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.rows {
		if k.team == team {
			delete(r.rows, k)
		}
	}
	return nil
}
