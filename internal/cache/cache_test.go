package cache

import (
	"context"
	"testing"
	"time"

	"electromatrix/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestPoolCacheRoundTripKeepsAnswers(t *testing.T) {
	client, mr := newTestClient(t)
	c := NewPoolCache(client, time.Minute)
	ctx := context.Background()

	miss, err := c.GetPool(ctx)
	require.NoError(t, err)
	assert.Nil(t, miss)

	pool := []*model.GridQuestion{
		{ID: "q1", Prompt: "p1", Type: model.QuestionTypeMCQ, CorrectAnswer: "a",
			Options: []model.Option{{Key: "a", Label: "yes"}, {Key: "b", Label: "no"}}, Pool: "A"},
		{ID: "q2", Prompt: "p2", Type: model.QuestionTypeText, CorrectAnswer: "periodic; 0.5"},
	}
	require.NoError(t, c.SetPool(ctx, pool))

	got, err := c.GetPool(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].CorrectAnswer)
	assert.Equal(t, "periodic; 0.5", got[1].CorrectAnswer)
	assert.Equal(t, pool[0].Options, got[0].Options)

	mr.FastForward(2 * time.Minute)
	expired, err := c.GetPool(ctx)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestPoolCacheInvalidate(t *testing.T) {
	client, _ := newTestClient(t)
	c := NewPoolCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetPool(ctx, []*model.GridQuestion{{ID: "q1"}}))
	require.NoError(t, c.Invalidate(ctx))

	got, err := c.GetPool(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func secs(n int64) *int64 { return &n }

func TestLeaderboardRanking(t *testing.T) {
	client, _ := newTestClient(t)
	lb := NewLeaderboardCache(client)
	ctx := context.Background()

	require.NoError(t, lb.SetStanding(ctx, "team1", 2, nil))
	require.NoError(t, lb.SetStanding(ctx, "team1", 7, nil))
	require.NoError(t, lb.SetStanding(ctx, "team2", -1, nil))
	require.NoError(t, lb.SetStanding(ctx, "team3", 4, nil))

	top, err := lb.Top(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []Standing{{"team1", 7}, {"team3", 4}}, top)

	all, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, Standing{"team2", -1}, all[2])

	size, err := lb.Size(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, size)
}

func TestLeaderboardTieBreaks(t *testing.T) {
	client, _ := newTestClient(t)
	lb := NewLeaderboardCache(client)
	ctx := context.Background()

	require.NoError(t, lb.SetStanding(ctx, "zulu", 10, nil))
	require.NoError(t, lb.SetStanding(ctx, "alpha", 10, nil))
	require.NoError(t, lb.SetStanding(ctx, "slow", 10, secs(2400)))
	require.NoError(t, lb.SetStanding(ctx, "fast", 10, secs(900)))
	require.NoError(t, lb.SetStanding(ctx, "top", 11, nil))
	require.NoError(t, lb.SetStanding(ctx, "low", -3, secs(60)))

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []Standing{
		{"top", 11}, {"fast", 10}, {"slow", 10}, {"alpha", 10}, {"zulu", 10}, {"low", -3},
	}, top)
}

func TestLeaderboardFinishTimes(t *testing.T) {
	client, _ := newTestClient(t)
	lb := NewLeaderboardCache(client)
	ctx := context.Background()

	require.NoError(t, lb.SetStanding(ctx, "team1", 12, secs(1830)))

	times, err := lb.FinishTimes(ctx, []string{"team1", "team2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"team1": 1830}, times)

	require.NoError(t, lb.SetStanding(ctx, "team1", 12, nil))
	times, err = lb.FinishTimes(ctx, []string{"team1"})
	require.NoError(t, err)
	assert.Empty(t, times, "a standing without a time clears the finish")

	require.NoError(t, lb.SetStanding(ctx, "team1", 12, secs(1830)))
	require.NoError(t, lb.Remove(ctx, "team1"))

	times, err = lb.FinishTimes(ctx, []string{"team1"})
	require.NoError(t, err)
	assert.Empty(t, times)
	size, _ := lb.Size(ctx)
	assert.Zero(t, size)
}
