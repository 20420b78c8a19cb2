package memory

import (
	"context"
	"sort"
	"time"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"
)

type teamRepo struct {
	locker
	ids   *idSource
	teams map[string]model.Team
}

func (r *teamRepo) Create(_ context.Context, team *model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.teams {
		if t.Username == team.Username {
			return repository.ErrDuplicate
		}
	}
	if team.ID == "" {
		team.ID = r.ids.next()
	}
	if team.UnlockedSection == 0 {
		team.UnlockedSection = 1
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	r.teams[team.ID] = *team
	return nil
}

func (r *teamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *teamRepo) GetByUsername(_ context.Context, username string) (*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.teams {
		if t.Username == username {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *teamRepo) List(_ context.Context) ([]*model.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Team, 0, len(r.teams))
	for _, t := range r.teams {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *teamRepo) update(id string, fn func(t *model.Team) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teams[id]
	if !ok {
		return false
	}
	if !fn(&t) {
		return false
	}
	r.teams[id] = t
	return true
}

func (r *teamRepo) SetPassword(_ context.Context, id, hash string) error {
	r.update(id, func(t *model.Team) bool {
		t.PasswordHash = hash
		return true
	})
	return nil
}

func (r *teamRepo) AddPoints(_ context.Context, id string, delta int) error {
	r.update(id, func(t *model.Team) bool {
		t.Points += delta
		return true
	})
	return nil
}

func (r *teamRepo) RaiseUnlockedSection(_ context.Context, id string, section int) error {
	r.update(id, func(t *model.Team) bool {
		if section <= t.UnlockedSection {
			return false
		}
		t.UnlockedSection = section
		return true
	})
	return nil
}

func (r *teamRepo) MarkRunStarted(_ context.Context, id string, at time.Time) (bool, error) {
	return r.update(id, func(t *model.Team) bool {
		if t.RunStartedAt != nil {
			return false
		}
		t.RunStartedAt = &at
		return true
	}), nil
}

func (r *teamRepo) MarkRunFinished(_ context.Context, id string, at time.Time, totalSec int64) (bool, error) {
	return r.update(id, func(t *model.Team) bool {
		if t.RunFinishedAt != nil {
			return false
		}
		t.RunFinishedAt = &at
		t.RunTotalTimeSec = &totalSec
		return true
	}), nil
}

func (r *teamRepo) ResetRun(_ context.Context, id string, startedAt time.Time) error {
	r.update(id, func(t *model.Team) bool {
		t.Points = 0
		t.UnlockedSection = 1
		t.RunStartedAt = &startedAt
		t.RunFinishedAt = nil
		t.RunTotalTimeSec = nil
		return true
	})
	return nil
}
