package memory

import (
	"context"

	"electromatrix/internal/model"
)

type responseRepo struct {
	locker
	ids  *idSource
	rows map[cellKey]model.TeamResponse
}

func (r *responseRepo) Get(_ context.Context, team string, section, cell int) (*model.TeamResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.rows[cellKey{team, section, cell}]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (r *responseRepo) ListBySection(_ context.Context, team string, section int) ([]*model.TeamResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.TeamResponse
	for k, resp := range r.rows {
		if k.team == team && k.section == section {
			resp := resp
			out = append(out, &resp)
		}
	}
	return out, nil
}

func (r *responseRepo) ListByTeam(_ context.Context, team string) ([]*model.TeamResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.TeamResponse
	for k, resp := range r.rows {
		if k.team == team {
			resp := resp
			out = append(out, &resp)
		}
	}
	return out, nil
}

func (r *responseRepo) Record(_ context.Context, resp *model.TeamResponse, prevAttempts int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cellKey{resp.Team, resp.Section, resp.Cell}
	existing, ok := r.rows[key]
	if !attemptCurrent(ok, existing.Attempts, existing.IsCorrect, prevAttempts) {
		return false, nil
	}
	if ok {
		resp.ID = existing.ID
	} else if resp.ID == "" {
		resp.ID = r.ids.next()
	}
	r.rows[key] = *resp
	return true, nil
}

func (r *responseRepo) CountByTeam(_ context.Context, team string) (int64, error) {
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

func (r *responseRepo) DeleteByTeam(_ context.Context, team string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.rows {
		if k.team == team {
			delete(r.rows, k)
		}
	}
	return nil
}

type sectionResponseRepo struct {
	locker
	ids  *idSource
	rows map[cellKey]model.TeamSectionResponse
}

func (r *sectionResponseRepo) Get(_ context.Context, team string, section, idx int) (*model.TeamSectionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.rows[cellKey{team, section, idx}]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (r *sectionResponseRepo) ListBySection(_ context.Context, team string, section int) ([]*model.TeamSectionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.TeamSectionResponse
	for k, resp := range r.rows {
		if k.team == team && k.section == section {
			resp := resp
			out = append(out, &resp)
		}
	}
	return out, nil
}

func (r *sectionResponseRepo) Record(_ context.Context, resp *model.TeamSectionResponse, prevAttempts int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cellKey{resp.Team, resp.Section, resp.Idx}
	existing, ok := r.rows[key]
	if !attemptCurrent(ok, existing.Attempts, existing.IsCorrect, prevAttempts) {
		return false, nil
	}
	if ok {
		resp.ID = existing.ID
	} else if resp.ID == "" {
		resp.ID = r.ids.next()
	}
	r.rows[key] = *resp
	return true, nil
}

func (r *sectionResponseRepo) CountSolved(_ context.Context, team string, section int) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for k, resp := range r.rows {
		if k.team == team && k.section == section && resp.IsCorrect {
			n++
		}
	}
	return n, nil
}

func (r *sectionResponseRepo) CountByTeam(_ context.Context, team string) (int64, error) {
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

func (r *sectionResponseRepo) DeleteByTeam(_ context.Context, team string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.rows {
		if k.team == team {
			delete(r.rows, k)
		}
	}
	return nil
}

// attemptCurrent reports whether the stored row is still the one the caller
// graded against
func attemptCurrent(exists bool, attempts int, solved bool, prevAttempts int) bool {
	if prevAttempts == 0 {
		return !exists
	}
	return exists && !solved && attempts == prevAttempts
}
