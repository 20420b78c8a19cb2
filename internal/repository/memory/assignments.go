package memory

import (
	"context"
	"sort"

	"electromatrix/internal/model"
)

type assignmentRepo struct {
	locker
	ids  *idSource
	rows map[cellKey]model.SectionGridAssignment
}

func (r *assignmentRepo) Get(_ context.Context, team string, section, cell int) (*model.SectionGridAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.rows[cellKey{team, section, cell}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *assignmentRepo) list(match func(a model.SectionGridAssignment) bool) []*model.SectionGridAssignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.SectionGridAssignment
	for _, a := range r.rows {
		if match(a) {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		return out[i].Cell < out[j].Cell
	})
	return out
}

func (r *assignmentRepo) ListBySection(_ context.Context, team string, section int) ([]*model.SectionGridAssignment, error) {
	return r.list(func(a model.SectionGridAssignment) bool { return a.Team == team && a.Section == section }), nil
}

func (r *assignmentRepo) ListByTeam(_ context.Context, team string) ([]*model.SectionGridAssignment, error) {
	return r.list(func(a model.SectionGridAssignment) bool { return a.Team == team }), nil
}

func (r *assignmentRepo) Upsert(_ context.Context, team string, section, cell int, questionID string) (*model.SectionGridAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cellKey{team, section, cell}
	a, ok := r.rows[key]
	if !ok {
		a = model.SectionGridAssignment{ID: r.ids.next(), Team: team, Section: section, Cell: cell}
	}
	a.Question = questionID
	r.rows[key] = a
	return &a, nil
}

func (r *assignmentRepo) Delete(_ context.Context, team string, section, cell int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, cellKey{team, section, cell})
	return nil
}
