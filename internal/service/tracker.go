package service

import (
	"context"
	"fmt"
	"strings"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"go.uber.org/zap"
)

// Tracker grades submissions, records attempts and applies scoring
type Tracker struct {
	store *repository.Store
	timer *SectionTimer
	run   *RunTracker
	board *Scoreboard
	now   Clock
	log   *zap.Logger
}

// NewTracker creates the attempt and scoring tracker
func NewTracker(store *repository.Store, timer *SectionTimer, run *RunTracker, board *Scoreboard, now Clock, log *zap.Logger) *Tracker {
	return &Tracker{store: store, timer: timer, run: run, board: board, now: now, log: log}
}

// SubmitGridAnswer grades one attempt on a grid cell. A solved cell replays
// as success without a new attempt; an exhausted cell is refused.
func (t *Tracker) SubmitGridAnswer(ctx context.Context, team *model.Team, section, cell int, answer string) (*model.AnswerResult, error) {
	if !validSection(section) || !validCell(cell) || strings.TrimSpace(answer) == "" {
		return nil, ErrInvalidPayload
	}

	assign, err := t.store.Assignments.Get(ctx, team.ID, section, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assign == nil {
		return nil, ErrAssignmentNotFound
	}
	q, err := t.store.Questions.GetByID(ctx, assign.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}

	ceiling := MaxAttempts(q.Type)
	tile := TileImageURL(section, cell)
	var correct bool
	var attempts int
	// A write that did not apply means another submission for the cell landed
	// first; grade again against what it left behind.
	for {
		prev, err := t.store.Responses.Get(ctx, team.ID, section, cell)
		if err != nil {
			return nil, fmt.Errorf("failed to load response: %w", err)
		}
		prevAttempts := 0
		if prev != nil {
			if prev.IsCorrect {
				return &model.AnswerResult{
					Correct:       true,
					AlreadySolved: true,
					AttemptsLeft:  attemptsLeft(ceiling, prev.Attempts),
					ImageURL:      tile,
				}, nil
			}
			prevAttempts = prev.Attempts
		}
		if prevAttempts >= ceiling {
			return nil, ErrNoAttemptsLeft.With("attemptsLeft", 0).With("imageUrl", tile)
		}

		correct = CheckGridAnswer(q, answer)
		attempts = prevAttempts + 1
		applied, err := t.store.Responses.Record(ctx, &model.TeamResponse{
			Team:         team.ID,
			Section:      section,
			Cell:         cell,
			QuestionType: q.Type,
			AnswerGiven:  answer,
			IsCorrect:    correct,
			Attempts:     attempts,
			AnsweredAt:   t.now(),
		}, prevAttempts)
		if err != nil {
			return nil, fmt.Errorf("failed to save response: %w", err)
		}
		if applied {
			break
		}
	}

	delta := 0
	switch {
	case correct:
		delta = GridPointsCorrect
	case q.Type == model.QuestionTypeMCQ:
		delta = -GridPenaltyWrongMCQ
	}
	if err := t.award(ctx, team, delta); err != nil {
		return nil, err
	}

	complete, err := t.timer.GridComplete(ctx, team.ID, section)
	if err != nil {
		return nil, err
	}
	if complete {
		if _, err := t.timer.EnsureTimer(ctx, team.ID, section); err != nil {
			return nil, err
		}
	}

	left := attemptsLeft(ceiling, attempts)
	result := &model.AnswerResult{Correct: correct, AttemptsLeft: left}
	if correct || left == 0 {
		result.ImageURL = tile
	}
	return result, nil
}

// SubmitSectionAnswer grades one attempt on a section meta-question. The
// challenge is open only while the section timer runs.
func (t *Tracker) SubmitSectionAnswer(ctx context.Context, team *model.Team, section, idx int, answer string) (*model.SectionAnswerResult, error) {
	if !validSection(section) || idx != 0 || strings.TrimSpace(answer) == "" {
		return nil, ErrInvalidPayload
	}

	timer, err := t.timer.EnsureTimer(ctx, team.ID, section)
	if err != nil {
		return nil, err
	}
	if timer == nil {
		return nil, ErrSectionLocked
	}

	q, err := t.store.Sections.Question(ctx, section, idx)
	if err != nil {
		return nil, fmt.Errorf("failed to load section question: %w", err)
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}

	var correct bool
	var attempts int
	for {
		prev, err := t.store.SectionResponses.Get(ctx, team.ID, section, idx)
		if err != nil {
			return nil, fmt.Errorf("failed to load section response: %w", err)
		}
		prevAttempts := 0
		if prev != nil {
			if prev.IsCorrect {
				return &model.SectionAnswerResult{
					Correct:          true,
					AlreadySolved:    true,
					AttemptsLeft:     attemptsLeft(MaxAttemptsMeta, prev.Attempts),
					RemainingSeconds: t.timer.RemainingSeconds(timer),
					Completed:        true,
				}, nil
			}
			prevAttempts = prev.Attempts
		}

		if prevAttempts >= MaxAttemptsMeta {
			if err := t.timer.Stop(ctx, team.ID, section, model.StopExhausted); err != nil {
				return nil, err
			}
			return nil, ErrNoAttemptsLeft.
				With("attemptsLeft", 0).
				With("remainingSeconds", nil).
				With("completed", false)
		}

		if timer.Stopped() || timer.Remaining(t.now()) == 0 {
			if err := t.timer.Stop(ctx, team.ID, section, model.StopExpired); err != nil {
				return nil, err
			}
			return nil, ErrTimeOver.With("remainingSeconds", 0).With("expired", true)
		}

		correct = CompareAnswer(answer, q.Answer)
		attempts = prevAttempts + 1
		applied, err := t.store.SectionResponses.Record(ctx, &model.TeamSectionResponse{
			Team:        team.ID,
			Section:     section,
			Idx:         idx,
			AnswerGiven: answer,
			IsCorrect:   correct,
			Attempts:    attempts,
			AnsweredAt:  t.now(),
		}, prevAttempts)
		if err != nil {
			return nil, fmt.Errorf("failed to save section response: %w", err)
		}
		if applied {
			break
		}
	}

	remaining := t.timer.RemainingSeconds(timer)
	switch {
	case correct:
		if err := t.award(ctx, team, SectionPointsCorrect); err != nil {
			return nil, err
		}
		if err := t.timer.Stop(ctx, team.ID, section, model.StopSolved); err != nil {
			return nil, err
		}
		remaining = nil
		if err := t.run.FinalizeRunIfDone(ctx, team.ID); err != nil {
			return nil, err
		}
	case attempts >= MaxAttemptsMeta:
		if err := t.timer.Stop(ctx, team.ID, section, model.StopExhausted); err != nil {
			return nil, err
		}
		remaining = nil
	}

	return &model.SectionAnswerResult{
		Correct:          correct,
		AttemptsLeft:     attemptsLeft(MaxAttemptsMeta, attempts),
		RemainingSeconds: remaining,
		Completed:        correct,
	}, nil
}

func (t *Tracker) award(ctx context.Context, team *model.Team, delta int) error {
	if delta == 0 {
		return nil
	}
	if err := t.store.Teams.AddPoints(ctx, team.ID, delta); err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}
	t.board.Sync(ctx, team.ID)
	return nil
}
