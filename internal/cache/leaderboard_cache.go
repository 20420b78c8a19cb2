package cache

import (
	"context"
	"errors"
	"math"

	"github.com/redis/go-redis/v9"
)

const (
	pointsKey = "lb:points"
	finishKey = "lb:finish"
)

// LeaderboardCache handles Redis ZSET operations for the team leaderboard.
// The ranking set orders teams by points, then finished before unfinished,
// then by faster official time, then by username; official finish times are
// kept in a second set for display. Both mirror the team records, which stay
// authoritative.
type LeaderboardCache interface {
	SetStanding(ctx context.Context, username string, points int, totalSec *int64) error
	Remove(ctx context.Context, username string) error
	Top(ctx context.Context, limit int) ([]Standing, error)
	FinishTimes(ctx context.Context, usernames []string) (map[string]int64, error)
	Size(ctx context.Context) (int64, error)
}

// Standing is one row of the points ranking
type Standing struct {
	Username string
	Points   int
}

// finishSlots is the width of the time band packed under each point.
// Official times are clamped to it (about 115 days).
const finishSlots = 10_000_000

// rankScore packs the ranking into one number. It is stored negated so an
// ascending range returns the best team first and breaks equal scores by
// username.
func rankScore(points int, totalSec *int64) float64 {
	var bonus int64
	if totalSec != nil {
		sec := min(max(*totalSec, 0), finishSlots-2)
		bonus = finishSlots - 1 - sec
	}
	return -float64(int64(points)*finishSlots + bonus)
}

func pointsFromScore(score float64) int {
	return int(math.Floor(-score / finishSlots))
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) SetStanding(ctx context.Context, username string, points int, totalSec *int64) error {
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, pointsKey, redis.Z{
		Score:  rankScore(points, totalSec),
		Member: username,
	})
	if totalSec != nil {
		pipe.ZAdd(ctx, finishKey, redis.Z{Score: float64(*totalSec), Member: username})
	} else {
		pipe.ZRem(ctx, finishKey, username)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) Remove(ctx context.Context, username string) error {
	pipe := c.client.TxPipeline()
	pipe.ZRem(ctx, pointsKey, username)
	pipe.ZRem(ctx, finishKey, username)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) Top(ctx context.Context, limit int) ([]Standing, error) {
	results, err := c.client.ZRangeWithScores(ctx, pointsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Standing, len(results))
	for i, z := range results {
		out[i] = Standing{
			Username: z.Member.(string),
			Points:   pointsFromScore(z.Score),
		}
	}
	return out, nil
}

// FinishTimes returns the recorded total run seconds for the usernames that have one
func (c *leaderboardCache) FinishTimes(ctx context.Context, usernames []string) (map[string]int64, error) {
	out := make(map[string]int64, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.FloatCmd, len(usernames))
	for i, u := range usernames {
		cmds[i] = pipe.ZScore(ctx, finishKey, u)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	for i, cmd := range cmds {
		score, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[usernames[i]] = int64(score)
	}
	return out, nil
}

func (c *leaderboardCache) Size(ctx context.Context) (int64, error) {
	return c.client.ZCard(ctx, pointsKey).Result()
}
