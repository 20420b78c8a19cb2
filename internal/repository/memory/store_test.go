package memory

import (
	"context"
	"testing"
	"time"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamGuardedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	team := &model.Team{Username: "team1", PasswordHash: "x"}
	require.NoError(t, store.Teams.Create(ctx, team))
	assert.Equal(t, 1, team.UnlockedSection)
	assert.ErrorIs(t, store.Teams.Create(ctx, &model.Team{Username: "team1"}), repository.ErrDuplicate)

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ok, err := store.Teams.MarkRunStarted(ctx, team.ID, start)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = store.Teams.MarkRunStarted(ctx, team.ID, start.Add(time.Hour))
	assert.False(t, ok, "start is stamped once")

	require.NoError(t, store.Teams.RaiseUnlockedSection(ctx, team.ID, 3))
	require.NoError(t, store.Teams.RaiseUnlockedSection(ctx, team.ID, 2))

	ok, _ = store.Teams.MarkRunFinished(ctx, team.ID, start.Add(time.Minute), 60)
	assert.True(t, ok)
	ok, _ = store.Teams.MarkRunFinished(ctx, team.ID, start.Add(time.Hour), 3600)
	assert.False(t, ok)

	got, err := store.Teams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.UnlockedSection)
	assert.Equal(t, start, *got.RunStartedAt)
	assert.EqualValues(t, 60, *got.RunTotalTimeSec)
	assert.Equal(t, model.RunFinished, got.RunState())

	require.NoError(t, store.Teams.ResetRun(ctx, team.ID, start.Add(2*time.Hour)))
	got, _ = store.Teams.GetByID(ctx, team.ID)
	assert.Equal(t, 1, got.UnlockedSection)
	assert.Nil(t, got.RunFinishedAt)
	assert.Nil(t, got.RunTotalTimeSec)
	assert.Equal(t, model.RunStarted, got.RunState())
}

func TestTimerCreateOnceStopOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := store.Timers.Create(ctx, &model.TeamSectionTimer{Team: "t", Section: 1, StartedAt: start, DurationSec: 1200})
	require.NoError(t, err)
	second, err := store.Timers.Create(ctx, &model.TeamSectionTimer{Team: "t", Section: 1, StartedAt: start.Add(time.Minute), DurationSec: 1200})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, start, second.StartedAt)

	ok, _ := store.Timers.Stop(ctx, "t", 1, start.Add(time.Minute), model.StopSolved)
	assert.True(t, ok)
	ok, _ = store.Timers.Stop(ctx, "t", 1, start.Add(2*time.Minute), model.StopExpired)
	assert.False(t, ok)

	got, _ := store.Timers.Get(ctx, "t", 1)
	assert.Equal(t, model.StopSolved, got.StopReason)

	n, _ := store.Timers.CountByTeam(ctx, "t")
	assert.EqualValues(t, 1, n)
	require.NoError(t, store.Timers.DeleteByTeam(ctx, "t"))
	n, _ = store.Timers.CountByTeam(ctx, "t")
	assert.Zero(t, n)
}

func TestQuestionUpsertByPromptAndImage(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	a := &model.GridQuestion{Prompt: "same", ImageURL: "/images/q5.png", Type: model.QuestionTypeMCQ, CorrectAnswer: "a"}
	b := &model.GridQuestion{Prompt: "same", ImageURL: "/images/q6.png", Type: model.QuestionTypeMCQ, CorrectAnswer: "c"}
	require.NoError(t, store.Questions.Upsert(ctx, a))
	require.NoError(t, store.Questions.Upsert(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)

	again := &model.GridQuestion{Prompt: "same", ImageURL: "/images/q5.png", Type: model.QuestionTypeMCQ, CorrectAnswer: "b"}
	require.NoError(t, store.Questions.Upsert(ctx, again))
	assert.Equal(t, a.ID, again.ID)

	all, _ := store.Questions.All(ctx)
	assert.Len(t, all, 2)
	got, _ := store.Questions.GetByID(ctx, a.ID)
	assert.Equal(t, "b", got.CorrectAnswer)
}

func TestResponseRecordIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := &model.TeamResponse{Team: "t", Section: 2, Cell: 4, Attempts: 1}
	ok, err := store.Responses.Record(ctx, first, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Responses.Record(ctx, &model.TeamResponse{Team: "t", Section: 2, Cell: 4, Attempts: 1}, 0)
	require.NoError(t, err)
	assert.False(t, ok, "a second first attempt loses")

	next := &model.TeamResponse{Team: "t", Section: 2, Cell: 4, Attempts: 2, IsCorrect: true}
	ok, err = store.Responses.Record(ctx, next, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first.ID, next.ID)

	ok, err = store.Responses.Record(ctx, &model.TeamResponse{Team: "t", Section: 2, Cell: 4, Attempts: 3}, 2)
	require.NoError(t, err)
	assert.False(t, ok, "a solved cell takes no more writes")

	list, _ := store.Responses.ListBySection(ctx, "t", 2)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Attempts)
	assert.True(t, list[0].IsCorrect)
}

func TestSectionResponseRecordRejectsStaleAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	ok, err := store.SectionResponses.Record(ctx, &model.TeamSectionResponse{Team: "t", Section: 1, Attempts: 1}, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SectionResponses.Record(ctx, &model.TeamSectionResponse{Team: "t", Section: 1, Attempts: 3}, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.SectionResponses.Record(ctx, &model.TeamSectionResponse{Team: "t", Section: 1, Attempts: 2, IsCorrect: true}, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	n, _ := store.SectionResponses.CountSolved(ctx, "t", 1)
	assert.EqualValues(t, 1, n)
}
