package memory

import (
	"context"
	"sort"

	"electromatrix/internal/model"
)

type sectionRepo struct {
	locker
	ids       *idSource
	questions map[cellKey]model.SectionQuestion
	metas     map[int]model.SectionMeta
}

func (r *sectionRepo) Questions(_ context.Context, section int) ([]*model.SectionQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.SectionQuestion
	for _, q := range r.questions {
		if q.Section == section {
			q := q
			out = append(out, &q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Idx < out[j].Idx })
	return out, nil
}

func (r *sectionRepo) Question(_ context.Context, section, idx int) (*model.SectionQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[cellKey{section: section, slot: idx}]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *sectionRepo) Meta(_ context.Context, section int) (*model.SectionMeta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.metas[section]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *sectionRepo) UpsertQuestion(_ context.Context, q *model.SectionQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cellKey{section: q.Section, slot: q.Idx}
	if existing, ok := r.questions[key]; ok {
		q.ID = existing.ID
	} else if q.ID == "" {
		q.ID = r.ids.next()
	}
	r.questions[key] = *q
	return nil
}

func (r *sectionRepo) UpsertMeta(_ context.Context, m *model.SectionMeta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metas[m.Section] = *m
	return nil
}
