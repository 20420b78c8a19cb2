package memory

import (
	"context"
	"sort"

	"electromatrix/internal/model"
)

type gridQuestionRepo struct {
	locker
	ids  *idSource
	byID map[string]model.GridQuestion
}

func (r *gridQuestionRepo) All(_ context.Context) ([]*model.GridQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.GridQuestion, 0, len(r.byID))
	for _, q := range r.byID {
		out = append(out, cloneQuestion(q))
	}
	// Stable order keeps seeded shuffles reproducible in tests.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *gridQuestionRepo) GetByID(_ context.Context, id string) (*model.GridQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneQuestion(q), nil
}

func (r *gridQuestionRepo) GetByIDs(_ context.Context, ids []string) ([]*model.GridQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.GridQuestion
	for _, id := range ids {
		if q, ok := r.byID[id]; ok {
			out = append(out, cloneQuestion(q))
		}
	}
	return out, nil
}

func (r *gridQuestionRepo) Upsert(_ context.Context, q *model.GridQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.byID {
		if existing.Prompt == q.Prompt && existing.ImageURL == q.ImageURL {
			q.ID = id
			r.byID[id] = *cloneQuestion(*q)
			return nil
		}
	}
	if q.ID == "" {
		q.ID = r.ids.next()
	}
	r.byID[q.ID] = *cloneQuestion(*q)
	return nil
}

// Remove deletes a question; tests use it to simulate dangling assignments
func (r *gridQuestionRepo) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

func cloneQuestion(q model.GridQuestion) *model.GridQuestion {
	q.Options = append([]model.Option(nil), q.Options...)
	return &q
}
