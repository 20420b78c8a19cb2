package service

import (
	"context"
	"testing"
	"time"

	"electromatrix/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionsOverviewInitialState(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, defaultPool())
	team := env.newTeam(t, "team1")

	overview, err := env.quiz.Sections(context.Background(), team)
	require.NoError(t, err)

	assert.Equal(t, 1, overview.UnlockedSection)
	require.Len(t, overview.Sections, SectionCount)
	for i, s := range overview.Sections {
		assert.Equal(t, i+1, s.ID)
		assert.Equal(t, DefaultCompositeImageURL(i+1), s.CompositeImageURL)
		require.Len(t, s.Cells, CellsPerGrid)
		for cell, c := range s.Cells {
			assert.Equal(t, cell, c.Cell)
			assert.False(t, c.Answered)
			assert.Empty(t, c.ImageURL)
			assert.Contains(t, []int{MaxAttemptsMCQ, MaxAttemptsText}, c.AttemptsLeft)
		}
	}
}

func TestSectionsOverviewRevealsResolvedCells(t *testing.T) {
	env := newTestEnv(t)
	team := newStartedTeam(t, env)
	ctx := context.Background()

	solved, q := findCell(t, env, team, 1, model.QuestionTypeText)
	_, err := env.quiz.SubmitAnswer(ctx, team, 1, solved, q.CorrectAnswer)
	require.NoError(t, err)

	burned, _ := findCell(t, env, team, 1, model.QuestionTypeMCQ)
	for i := 0; i < MaxAttemptsMCQ; i++ {
		_, err := env.quiz.SubmitAnswer(ctx, team, 1, burned, "zzz")
		require.NoError(t, err)
	}

	overview, err := env.quiz.Sections(ctx, team)
	require.NoError(t, err)
	cells := overview.Sections[0].Cells

	assert.True(t, cells[solved].Answered)
	assert.Equal(t, MaxAttemptsText-1, cells[solved].AttemptsLeft)
	assert.Equal(t, TileImageURL(1, solved), cells[solved].ImageURL)

	assert.False(t, cells[burned].Answered)
	assert.Zero(t, cells[burned].AttemptsLeft)
	assert.Equal(t, TileImageURL(1, burned), cells[burned].ImageURL)
}

func TestSectionsOverviewUnderFilledGrid(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, map[string]int{"A": 2, "B": 2})
	team := env.newTeam(t, "team1")

	overview, err := env.quiz.Sections(context.Background(), team)
	require.NoError(t, err)

	vacant := overview.Sections[0].Cells[5]
	assert.Zero(t, vacant.AttemptsLeft)
	assert.Equal(t, TileImageURL(1, 5), vacant.ImageURL)
	assert.Len(t, overview.Sections[1].Cells, CellsPerGrid)
}

func TestSectionsOverviewUsesStoredComposite(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, defaultPool())
	team := env.newTeam(t, "team1")
	ctx := context.Background()
	require.NoError(t, env.store.Sections.UpsertMeta(ctx, &model.SectionMeta{Section: 2, CompositeImageURL: "/custom/2.png"}))

	overview, err := env.quiz.Sections(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, "/custom/2.png", overview.Sections[1].CompositeImageURL)
	assert.Equal(t, DefaultCompositeImageURL(1), overview.Sections[0].CompositeImageURL)
}

func TestQuestionView(t *testing.T) {
	env := newTestEnv(t)
	team := newStartedTeam(t, env)
	ctx := context.Background()

	cell, q := findCell(t, env, team, 1, model.QuestionTypeMCQ)
	view, err := env.quiz.Question(ctx, team, 1, cell)
	require.NoError(t, err)
	assert.Equal(t, q.Prompt, view.Prompt)
	assert.Equal(t, model.QuestionTypeMCQ, view.Type)
	assert.Len(t, view.Options, 4)
	assert.Equal(t, MaxAttemptsMCQ, view.AttemptsLeft)
	assert.False(t, view.Solved)

	textCell, _ := findCell(t, env, team, 1, model.QuestionTypeText)
	view, err = env.quiz.Question(ctx, team, 1, textCell)
	require.NoError(t, err)
	assert.NotNil(t, view.Options)
	assert.Empty(t, view.Options)

	_, err = env.quiz.Question(ctx, team, 0, 0)
	requireAppErr(t, err, ErrInvalidSectionCell)
	_, err = env.quiz.Question(ctx, team, 1, 6)
	requireAppErr(t, err, ErrInvalidSectionCell)
}

func TestSectionQuestionsLockedView(t *testing.T) {
	env := newTestEnv(t)
	team := newStartedTeam(t, env)

	view, err := env.quiz.SectionQuestions(context.Background(), team, 1)
	require.NoError(t, err)
	assert.True(t, view.Locked)
	assert.NotNil(t, view.Questions)
	assert.Empty(t, view.Questions)
	assert.Nil(t, view.RemainingSeconds)

	_, err = env.quiz.SectionQuestions(context.Background(), team, 9)
	requireAppErr(t, err, ErrInvalidSection)
}

func TestSectionQuestionsCountdown(t *testing.T) {
	env := newTestEnv(t)
	team := newStartedTeam(t, env)
	ctx := context.Background()
	env.solveGrid(t, team, 1)

	env.clock.Advance(1199 * time.Second)
	view, err := env.quiz.SectionQuestions(ctx, team, 1)
	require.NoError(t, err)
	assert.False(t, view.Locked)
	assert.False(t, view.Expired)
	require.Len(t, view.Questions, 1)
	assert.Equal(t, "meta 1", view.Questions[0].Prompt)
	assert.Equal(t, MaxAttemptsMeta, view.Questions[0].AttemptsLeft)
	require.NotNil(t, view.RemainingSeconds)
	assert.Equal(t, int64(1), *view.RemainingSeconds)

	env.clock.Advance(time.Second)
	view, err = env.quiz.SectionQuestions(ctx, team, 1)
	require.NoError(t, err)
	assert.True(t, view.Expired)
	require.NotNil(t, view.RemainingSeconds)
	assert.Zero(t, *view.RemainingSeconds)

	timer, err := env.store.Timers.Get(ctx, team.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StopExpired, timer.StopReason)

	view, err = env.quiz.SectionQuestions(ctx, team, 1)
	require.NoError(t, err)
	assert.True(t, view.Expired)
	assert.Nil(t, view.RemainingSeconds)
}

func TestSectionQuestionsAfterSolve(t *testing.T) {
	env := newTestEnv(t)
	team := newStartedTeam(t, env)
	ctx := context.Background()
	env.solveGrid(t, team, 1)

	_, err := env.quiz.SubmitSectionAnswer(ctx, team, 1, 0, metaAnswer(1))
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	view, err := env.quiz.SectionQuestions(ctx, team, 1)
	require.NoError(t, err)
	assert.False(t, view.Expired)
	assert.True(t, view.Questions[0].Solved)
	assert.Nil(t, view.RemainingSeconds)
}
