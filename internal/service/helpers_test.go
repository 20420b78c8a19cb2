package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"
	"electromatrix/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testStart = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store     *repository.Store
	clock     *fakeClock
	pool      *QuestionPool
	allocator *Allocator
	timer     *SectionTimer
	board     *Scoreboard
	run       *RunTracker
	tracker   *Tracker
	quiz      *QuizService
}

var testPools = []model.PromptPool{
	{Label: "A", Take: 3},
	{Label: "B", Take: 2},
	{Label: "C", Take: 1},
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	clock := &fakeClock{now: testStart}
	store := memory.NewStore()

	env := &testEnv{store: store, clock: clock}
	env.pool = NewQuestionPool(store.Questions, nil, log)
	env.allocator = NewAllocator(store.Assignments, store.Questions, env.pool, testPools, rand.New(rand.NewSource(7)), log)
	env.timer = NewSectionTimer(store, 20*time.Minute, clock.Now, log)
	env.board = NewScoreboard(store.Teams, nil, log)
	env.run = NewRunTracker(store, env.timer, env.board, clock.Now, log)
	env.tracker = NewTracker(store, env.timer, env.run, env.board, clock.Now, log)
	env.quiz = NewQuizService(store, env.pool, env.allocator, env.timer, env.run, env.tracker, log)
	return env
}

// seedPool adds questions to the labelled pools. Pool A questions are MCQ
// with answer key "a"; the others are text with answer "<id>-answer".
func (e *testEnv) seedPool(t *testing.T, perPool map[string]int) {
	t.Helper()
	ctx := context.Background()
	for _, label := range []string{"A", "B", "C", ""} {
		for i := 0; i < perPool[label]; i++ {
			q := &model.GridQuestion{
				Prompt: fmt.Sprintf("pool %q question %d", label, i),
				Pool:   label,
				Type:   model.QuestionTypeText,
			}
			if label == "A" {
				q.Type = model.QuestionTypeMCQ
				q.CorrectAnswer = "a"
				q.Options = []model.Option{
					{Key: "a", Label: "right"}, {Key: "b", Label: "wrong"},
					{Key: "c", Label: "also wrong"}, {Key: "d", Label: "nope"},
				}
			} else {
				q.CorrectAnswer = fmt.Sprintf("%s %d answer", label, i)
			}
			require.NoError(t, e.store.Questions.Upsert(ctx, q))
		}
	}
}

func (e *testEnv) seedSections(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for s := 1; s <= SectionCount; s++ {
		require.NoError(t, e.store.Sections.UpsertQuestion(ctx, &model.SectionQuestion{
			Section: s, Idx: 0, Prompt: fmt.Sprintf("meta %d", s), Answer: fmt.Sprintf("circuit; %d", s),
		}))
	}
}

func metaAnswer(section int) string {
	return fmt.Sprintf("%d, CIRCUIT", section)
}

func (e *testEnv) newTeam(t *testing.T, username string) *model.Team {
	t.Helper()
	team := &model.Team{Username: username, PasswordHash: "unused"}
	require.NoError(t, e.store.Teams.Create(context.Background(), team))
	return team
}

func (e *testEnv) reload(t *testing.T, team *model.Team) *model.Team {
	t.Helper()
	got, err := e.store.Teams.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	return got
}

func (e *testEnv) questionAt(t *testing.T, team *model.Team, section, cell int) *model.GridQuestion {
	t.Helper()
	ctx := context.Background()
	a, err := e.store.Assignments.Get(ctx, team.ID, section, cell)
	require.NoError(t, err)
	require.NotNil(t, a, "no assignment at section %d cell %d", section, cell)
	q, err := e.store.Questions.GetByID(ctx, a.Question)
	require.NoError(t, err)
	require.NotNil(t, q)
	return q
}

func correctAnswer(q *model.GridQuestion) string {
	return q.CorrectAnswer
}

// solveGrid answers every cell of a section correctly
func (e *testEnv) solveGrid(t *testing.T, team *model.Team, section int) {
	t.Helper()
	for cell := 0; cell < CellsPerGrid; cell++ {
		q := e.questionAt(t, team, section, cell)
		res, err := e.tracker.SubmitGridAnswer(context.Background(), team, section, cell, correctAnswer(q))
		require.NoError(t, err)
		require.True(t, res.Correct)
	}
}

func questionIDs(assigned []*model.SectionGridAssignment) []string {
	ids := make([]string, len(assigned))
	for i, a := range assigned {
		ids[i] = a.Question
	}
	return ids
}

func defaultPool() map[string]int {
	return map[string]int{"A": 13, "B": 5, "C": 5}
}
