// Package memory is an in-process implementation of the repository
// contracts. It backs the service tests and STORE_DRIVER=memory.
package memory

import (
	"fmt"
	"sync"
	"sync/atomic"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"
)

// NewStore returns an empty in-memory store
func NewStore() *repository.Store {
	ids := &idSource{}
	return &repository.Store{
		Teams:            &teamRepo{ids: ids, teams: map[string]model.Team{}},
		Questions:        &gridQuestionRepo{ids: ids, byID: map[string]model.GridQuestion{}},
		Assignments:      &assignmentRepo{ids: ids, rows: map[cellKey]model.SectionGridAssignment{}},
		Responses:        &responseRepo{ids: ids, rows: map[cellKey]model.TeamResponse{}},
		SectionResponses: &sectionResponseRepo{ids: ids, rows: map[cellKey]model.TeamSectionResponse{}},
		Sections:         &sectionRepo{ids: ids, questions: map[cellKey]model.SectionQuestion{}, metas: map[int]model.SectionMeta{}},
		Timers:           &timerRepo{ids: ids, rows: map[cellKey]model.TeamSectionTimer{}},
	}
}

type idSource struct {
	n atomic.Int64
}

func (s *idSource) next() string {
	return fmt.Sprintf("%024x", s.n.Add(1))
}

// cellKey addresses a (team, section, cell|idx) slot
type cellKey struct {
	team    string
	section int
	slot    int
}

type locker struct {
	mu sync.RWMutex
}
