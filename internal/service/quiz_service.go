package service

import (
	"context"
	"fmt"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QuizService serves the team-facing quiz flows
type QuizService struct {
	store     *repository.Store
	pool      *QuestionPool
	allocator *Allocator
	timer     *SectionTimer
	run       *RunTracker
	tracker   *Tracker
	log       *zap.Logger
}

// NewQuizService wires the quiz flows together
func NewQuizService(
	store *repository.Store,
	pool *QuestionPool,
	allocator *Allocator,
	timer *SectionTimer,
	run *RunTracker,
	tracker *Tracker,
	log *zap.Logger,
) *QuizService {
	return &QuizService{
		store:     store,
		pool:      pool,
		allocator: allocator,
		timer:     timer,
		run:       run,
		tracker:   tracker,
		log:       log,
	}
}

// Sections returns the three grids with their reveal state and the highest
// unlocked section. It starts (or resets) the run and allocates grids on the
// way.
func (s *QuizService) Sections(ctx context.Context, team *model.Team) (*model.SectionsOverview, error) {
	team, err := s.run.EnsureRunStarted(ctx, team)
	if err != nil {
		return nil, err
	}

	// Sequential so each section sees the others' picks.
	grids := make([][]*model.SectionGridAssignment, SectionCount)
	for i := range grids {
		grids[i], err = s.allocator.EnsureAssignments(ctx, team.ID, i+1)
		if err != nil {
			return nil, err
		}
	}

	var (
		responses  []*model.TeamResponse
		pool       []*model.GridQuestion
		composites = make([]string, SectionCount)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		responses, err = s.store.Responses.ListByTeam(gctx, team.ID)
		return err
	})
	g.Go(func() (err error) {
		pool, err = s.pool.All(gctx)
		return err
	})
	for i := range composites {
		section := i + 1
		g.Go(func() (err error) {
			composites[section-1], err = s.compositeImageURL(gctx, section)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load overview: %w", err)
	}

	types := make(map[string]model.QuestionType, len(pool))
	for _, q := range pool {
		types[q.ID] = q.Type
	}
	type slot struct{ section, cell int }
	byCell := make(map[slot]*model.TeamResponse, len(responses))
	for _, r := range responses {
		byCell[slot{r.Section, r.Cell}] = r
	}

	overview := &model.SectionsOverview{Sections: make([]model.SectionView, SectionCount)}
	for i, grid := range grids {
		section := i + 1
		assigned := make(map[int]*model.SectionGridAssignment, len(grid))
		for _, a := range grid {
			assigned[a.Cell] = a
		}

		cells := make([]model.CellView, CellsPerGrid)
		for cell := range cells {
			a, ok := assigned[cell]
			if !ok {
				// Under-filled grid: nothing to answer, tile shown.
				cells[cell] = model.CellView{Cell: cell, ImageURL: TileImageURL(section, cell)}
				continue
			}
			ceiling := MaxAttempts(types[a.Question])
			r := byCell[slot{section, cell}]
			view := model.CellView{Cell: cell, AttemptsLeft: ceiling}
			if r != nil {
				view.Answered = r.IsCorrect
				view.AttemptsLeft = attemptsLeft(ceiling, r.Attempts)
			}
			if view.Answered || view.AttemptsLeft == 0 {
				view.ImageURL = TileImageURL(section, cell)
			}
			cells[cell] = view
		}
		overview.Sections[i] = model.SectionView{ID: section, Cells: cells, CompositeImageURL: composites[i]}
	}

	overview.UnlockedSection, err = s.timer.SyncUnlockedSection(ctx, team)
	if err != nil {
		return nil, err
	}
	if err := s.run.FinalizeRunIfDone(ctx, team.ID); err != nil {
		return nil, err
	}
	return overview, nil
}

// Question returns the prompt behind one grid cell
func (s *QuizService) Question(ctx context.Context, team *model.Team, section, cell int) (*model.CellQuestion, error) {
	if !validSection(section) || !validCell(cell) {
		return nil, ErrInvalidSectionCell
	}

	assign, err := s.store.Assignments.Get(ctx, team.ID, section, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assign == nil {
		return nil, ErrAssignmentNotFound
	}
	q, err := s.store.Questions.GetByID(ctx, assign.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	r, err := s.store.Responses.Get(ctx, team.ID, section, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}

	options := q.Options
	if options == nil {
		options = []model.Option{}
	}
	view := &model.CellQuestion{
		Section:      section,
		Cell:         cell,
		Prompt:       q.Prompt,
		Type:         q.Type,
		Options:      options,
		ImageURL:     q.ImageURL,
		AttemptsLeft: MaxAttempts(q.Type),
	}
	if r != nil {
		view.AttemptsLeft = attemptsLeft(MaxAttempts(q.Type), r.Attempts)
		view.Solved = r.IsCorrect
	}
	return view, nil
}

// SubmitAnswer grades a grid cell answer
func (s *QuizService) SubmitAnswer(ctx context.Context, team *model.Team, section, cell int, answer string) (*model.AnswerResult, error) {
	return s.tracker.SubmitGridAnswer(ctx, team, section, cell, answer)
}

// SubmitSectionAnswer grades a meta-question answer
func (s *QuizService) SubmitSectionAnswer(ctx context.Context, team *model.Team, section, idx int, answer string) (*model.SectionAnswerResult, error) {
	return s.tracker.SubmitSectionAnswer(ctx, team, section, idx, answer)
}

// SectionQuestions shows a section's meta-question challenge. It is locked
// until the grid is complete; opening it starts the countdown.
func (s *QuizService) SectionQuestions(ctx context.Context, team *model.Team, section int) (*model.SectionQuestionsView, error) {
	if !validSection(section) {
		return nil, ErrInvalidSection
	}

	timer, err := s.timer.EnsureTimer(ctx, team.ID, section)
	if err != nil {
		return nil, err
	}
	if timer == nil {
		return &model.SectionQuestionsView{Locked: true, Questions: []model.MetaQuestionView{}}, nil
	}

	remaining := s.timer.RemainingSeconds(timer)
	if remaining != nil && *remaining == 0 {
		if err := s.timer.Stop(ctx, team.ID, section, model.StopExpired); err != nil {
			return nil, err
		}
	}

	var (
		questions []*model.SectionQuestion
		responses []*model.TeamSectionResponse
		composite string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		questions, err = s.store.Sections.Questions(gctx, section)
		return err
	})
	g.Go(func() (err error) {
		responses, err = s.store.SectionResponses.ListBySection(gctx, team.ID, section)
		return err
	})
	g.Go(func() (err error) {
		composite, err = s.compositeImageURL(gctx, section)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load section challenge: %w", err)
	}

	byIdx := make(map[int]*model.TeamSectionResponse, len(responses))
	completed := false
	for _, r := range responses {
		byIdx[r.Idx] = r
		completed = completed || r.IsCorrect
	}

	views := make([]model.MetaQuestionView, 0, len(questions))
	for _, q := range questions {
		v := model.MetaQuestionView{Idx: q.Idx, Prompt: q.Prompt, AttemptsLeft: MaxAttemptsMeta}
		if r := byIdx[q.Idx]; r != nil {
			v.Solved = r.IsCorrect
			v.AttemptsLeft = attemptsLeft(MaxAttemptsMeta, r.Attempts)
		}
		views = append(views, v)
	}

	expired := !completed && (timer.Stopped() || (remaining != nil && *remaining == 0))

	if err := s.run.FinalizeRunIfDone(ctx, team.ID); err != nil {
		return nil, err
	}
	return &model.SectionQuestionsView{
		Locked:            false,
		Questions:         views,
		CompositeImageURL: composite,
		RemainingSeconds:  remaining,
		Expired:           expired,
	}, nil
}

// compositeImageURL prefers the stored section meta
func (s *QuizService) compositeImageURL(ctx context.Context, section int) (string, error) {
	meta, err := s.store.Sections.Meta(ctx, section)
	if err != nil {
		return "", err
	}
	if meta != nil && meta.CompositeImageURL != "" {
		return meta.CompositeImageURL, nil
	}
	return DefaultCompositeImageURL(section), nil
}
