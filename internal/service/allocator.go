package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"go.uber.org/zap"
)

// Allocator gives every team six pooled questions per section. A question is
// never used in two sections of the same team, and existing grids are
// repaired cell by cell instead of being rebuilt.
type Allocator struct {
	assignments repository.AssignmentRepo
	questions   repository.GridQuestionRepo
	pool        *QuestionPool
	pools       []model.PromptPool
	log         *zap.Logger

	mu  sync.Mutex // guards rnd
	rnd *rand.Rand
}

// NewAllocator creates an allocator. pools fixes the composition of a fresh
// grid; rnd drives every shuffle.
func NewAllocator(
	assignments repository.AssignmentRepo,
	questions repository.GridQuestionRepo,
	pool *QuestionPool,
	pools []model.PromptPool,
	rnd *rand.Rand,
	log *zap.Logger,
) *Allocator {
	return &Allocator{
		assignments: assignments,
		questions:   questions,
		pool:        pool,
		pools:       pools,
		rnd:         rnd,
		log:         log,
	}
}

// EnsureAssignments returns the team's grid for a section, creating or
// repairing it first. When the pool cannot supply six distinct questions the
// grid is returned under-filled rather than failing.
func (a *Allocator) EnsureAssignments(ctx context.Context, teamID string, section int) ([]*model.SectionGridAssignment, error) {
	all, err := a.assignments.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	var existing []*model.SectionGridAssignment
	usedElsewhere := make(map[string]bool)
	for _, as := range all {
		if as.Section == section {
			existing = append(existing, as)
		} else {
			usedElsewhere[as.Question] = true
		}
	}

	if len(existing) == 0 {
		return a.build(ctx, teamID, section, usedElsewhere)
	}
	return a.repair(ctx, teamID, section, existing, usedElsewhere)
}

// build composes a fresh grid from the labelled pools, tops it up from the
// whole pool and shuffles it across the cells.
func (a *Allocator) build(ctx context.Context, teamID string, section int, usedElsewhere map[string]bool) ([]*model.SectionGridAssignment, error) {
	pool, err := a.pool.All(ctx)
	if err != nil {
		return nil, err
	}

	exclude := copySet(usedElsewhere)
	var chosen []*model.GridQuestion
	take := func(src []*model.GridQuestion, n int) {
		for _, q := range a.pickN(src, n, exclude) {
			exclude[q.ID] = true
			chosen = append(chosen, q)
		}
	}

	for _, pp := range a.pools {
		members := poolMembers(pool, pp)
		if len(members) == 0 {
			members = pool
		}
		take(members, pp.Take)
	}
	if len(chosen) < CellsPerGrid {
		take(pool, CellsPerGrid-len(chosen))
	}
	if len(chosen) > CellsPerGrid {
		chosen = chosen[:CellsPerGrid]
	}

	a.shuffle(len(chosen), func(i, j int) { chosen[i], chosen[j] = chosen[j], chosen[i] })

	out := make([]*model.SectionGridAssignment, 0, len(chosen))
	for cell, q := range chosen {
		as, err := a.assignments.Upsert(ctx, teamID, section, cell, q.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to assign cell %d: %w", cell, err)
		}
		out = append(out, as)
	}

	if len(out) < CellsPerGrid {
		a.log.Warn("grid under-filled",
			zap.String("team", teamID), zap.Int("section", section), zap.Int("cells", len(out)))
	}
	return out, nil
}

// repair keeps every valid cell and replaces offenders. Hard offenders
// (vacant cells, questions that no longer exist, repeats within the section)
// are filled first, drawing from the labelled pools the kept cells leave
// short so a partial grid regains its composition. A cell whose question is also used in another section is
// only swapped for a question free in every section; if none is left it is
// kept, which is the same state a relaxed draw would produce.
func (a *Allocator) repair(ctx context.Context, teamID string, section int, existing []*model.SectionGridAssignment, usedElsewhere map[string]bool) ([]*model.SectionGridAssignment, error) {
	ids := make([]string, 0, len(existing))
	for _, as := range existing {
		ids = append(ids, as.Question)
	}
	found, err := a.questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify assignments: %w", err)
	}
	exists := make(map[string]*model.GridQuestion, len(found))
	for _, q := range found {
		exists[q.ID] = q
	}

	sort.Slice(existing, func(i, j int) bool { return existing[i].Cell < existing[j].Cell })

	byCell := make(map[int]*model.SectionGridAssignment, CellsPerGrid)
	seen := make(map[string]bool)
	bad := make(map[string]bool)
	var hard, soft []int
	for _, as := range existing {
		if !validCell(as.Cell) {
			continue
		}
		byCell[as.Cell] = as
		switch {
		case exists[as.Question] == nil:
			bad[as.Question] = true
			hard = append(hard, as.Cell)
		case seen[as.Question]:
			hard = append(hard, as.Cell)
		case usedElsewhere[as.Question]:
			seen[as.Question] = true
			soft = append(soft, as.Cell)
		default:
			seen[as.Question] = true
		}
	}
	for cell := 0; cell < CellsPerGrid; cell++ {
		if _, ok := byCell[cell]; !ok {
			hard = append(hard, cell)
		}
	}
	sort.Ints(hard)

	if len(hard)+len(soft) == 0 {
		return sortedCells(byCell), nil
	}

	pool, err := a.pool.All(ctx)
	if err != nil {
		return nil, err
	}

	exclude := copySet(usedElsewhere)
	for id := range seen {
		exclude[id] = true
	}
	for id := range bad {
		exclude[id] = true
	}
	targets := append(append([]int(nil), hard...), soft...)
	offending := make(map[int]bool, len(targets))
	for _, cell := range targets {
		offending[cell] = true
	}
	var kept []*model.GridQuestion
	for cell, as := range byCell {
		if !offending[cell] {
			kept = append(kept, exists[as.Question])
		}
	}
	candidates := a.fillByQuota(pool, kept, len(targets), exclude)

	replacements := make(map[int]*model.GridQuestion, len(targets))
	for i, q := range candidates {
		replacements[targets[i]] = q
	}

	// Occupied cells still short of a replacement get a second draw that
	// relaxes only the other-section exclusion. Vacant cells stay vacant.
	var pending []int
	for _, cell := range hard {
		if _, ok := replacements[cell]; !ok {
			if _, occupied := byCell[cell]; occupied {
				pending = append(pending, cell)
			}
		}
	}
	if len(pending) > 0 {
		relaxed := copySet(seen)
		for id := range bad {
			relaxed[id] = true
		}
		for _, q := range candidates {
			relaxed[q.ID] = true
		}
		for i, q := range a.pickN(pool, len(pending), relaxed) {
			replacements[pending[i]] = q
		}
	}

	replaced := 0
	for _, cell := range hard {
		q, ok := replacements[cell]
		if !ok {
			if _, occupied := byCell[cell]; occupied {
				if err := a.assignments.Delete(ctx, teamID, section, cell); err != nil {
					return nil, fmt.Errorf("failed to clear cell %d: %w", cell, err)
				}
				delete(byCell, cell)
			}
			continue
		}
		if err := a.replace(ctx, teamID, section, cell, q, byCell); err != nil {
			return nil, err
		}
		replaced++
	}
	for _, cell := range soft {
		if q, ok := replacements[cell]; ok {
			if err := a.replace(ctx, teamID, section, cell, q, byCell); err != nil {
				return nil, err
			}
			replaced++
		}
	}

	if replaced > 0 || len(byCell) < CellsPerGrid {
		a.log.Info("grid repaired",
			zap.String("team", teamID), zap.Int("section", section),
			zap.Int("offenders", len(hard)+len(soft)), zap.Int("replaced", replaced),
			zap.Int("cells", len(byCell)))
	}
	return sortedCells(byCell), nil
}

func (a *Allocator) replace(ctx context.Context, teamID string, section, cell int, q *model.GridQuestion, byCell map[int]*model.SectionGridAssignment) error {
	as, err := a.assignments.Upsert(ctx, teamID, section, cell, q.ID)
	if err != nil {
		return fmt.Errorf("failed to replace cell %d: %w", cell, err)
	}
	byCell[cell] = as
	return nil
}

// fillByQuota picks n questions for a partial grid. Labelled pools that the
// kept questions leave under their quota are topped up first, the whole pool
// covers the rest.
func (a *Allocator) fillByQuota(pool, kept []*model.GridQuestion, n int, exclude map[string]bool) []*model.GridQuestion {
	exclude = copySet(exclude)
	var out []*model.GridQuestion
	take := func(src []*model.GridQuestion, k int) {
		for _, q := range a.pickN(src, k, exclude) {
			exclude[q.ID] = true
			out = append(out, q)
		}
	}

	for _, pp := range a.pools {
		need := min(pp.Take-len(poolMembers(kept, pp)), n-len(out))
		if need > 0 {
			take(poolMembers(pool, pp), need)
		}
	}
	if len(out) < n {
		take(pool, n-len(out))
	}
	a.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// pickN shuffles the questions not in exclude and takes the first n
func (a *Allocator) pickN(src []*model.GridQuestion, n int, exclude map[string]bool) []*model.GridQuestion {
	if n <= 0 {
		return nil
	}
	filtered := make([]*model.GridQuestion, 0, len(src))
	for _, q := range src {
		if !exclude[q.ID] {
			filtered = append(filtered, q)
		}
	}
	a.shuffle(len(filtered), func(i, j int) { filtered[i], filtered[j] = filtered[j], filtered[i] })
	if len(filtered) > n {
		filtered = filtered[:n]
	}
	return filtered
}

// shuffle is a Fisher-Yates pass over n elements
func (a *Allocator) shuffle(n int, swap func(i, j int)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := n - 1; i > 0; i-- {
		swap(i, a.rnd.Intn(i+1))
	}
}

func poolMembers(all []*model.GridQuestion, pp model.PromptPool) []*model.GridQuestion {
	prompts := make(map[string]bool, len(pp.Prompts))
	for _, p := range pp.Prompts {
		prompts[p] = true
	}
	var out []*model.GridQuestion
	for _, q := range all {
		if q.Pool == pp.Label || prompts[q.Prompt] {
			out = append(out, q)
		}
	}
	return out
}

func sortedCells(byCell map[int]*model.SectionGridAssignment) []*model.SectionGridAssignment {
	out := make([]*model.SectionGridAssignment, 0, len(byCell))
	for _, as := range byCell {
		out = append(out, as)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out
}

func copySet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}
