package service

import (
	"context"
	"fmt"
	"sort"

	"electromatrix/internal/cache"
	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"go.uber.org/zap"
)

// Scoreboard mirrors team points and official finish times into the Redis
// leaderboard. Mirror writes are best effort; team records stay the source
// of truth and the ranking is rebuilt from them when Redis is empty or absent.
type Scoreboard struct {
	teams repository.TeamRepo
	cache cache.LeaderboardCache // optional
	log   *zap.Logger
}

// NewScoreboard creates a scoreboard; lb may be nil
func NewScoreboard(teams repository.TeamRepo, lb cache.LeaderboardCache, log *zap.Logger) *Scoreboard {
	return &Scoreboard{teams: teams, cache: lb, log: log}
}

// Sync copies the team's current points and official time into the ranking
func (s *Scoreboard) Sync(ctx context.Context, teamID string) {
	if s.cache == nil {
		return
	}
	// An empty ranking is seeded whole so partial writes never hide teams.
	if size, err := s.cache.Size(ctx); err == nil && size == 0 {
		if err := s.rebuild(ctx); err != nil {
			s.log.Warn("leaderboard rebuild failed", zap.Error(err))
		}
		return
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil || team == nil {
		s.log.Warn("leaderboard sync skipped", zap.String("team", teamID), zap.Error(err))
		return
	}
	if err := s.cache.SetStanding(ctx, team.Username, team.Points, team.RunTotalTimeSec); err != nil {
		s.log.Warn("leaderboard update failed", zap.String("team", team.Username), zap.Error(err))
	}
}

// Reset drops a team's finish time and zeroes its points
func (s *Scoreboard) Reset(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remove(ctx, username); err != nil {
		s.log.Warn("leaderboard reset failed", zap.String("team", username), zap.Error(err))
		return
	}
	if err := s.cache.SetStanding(ctx, username, 0, nil); err != nil {
		s.log.Warn("leaderboard reset failed", zap.String("team", username), zap.Error(err))
	}
}

// Top returns the best teams. Both the Redis ranking and the store fallback
// order by points, then official time with finished teams first, then username.
func (s *Scoreboard) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if s.cache != nil {
		entries, err := s.fromCache(ctx, limit)
		if err == nil {
			return entries, nil
		}
		s.log.Warn("leaderboard cache unavailable, ranking from store", zap.Error(err))
	}
	return s.fromStore(ctx, limit)
}

func (s *Scoreboard) fromCache(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	size, err := s.cache.Size(ctx)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		if err := s.rebuild(ctx); err != nil {
			return nil, err
		}
	}

	standings, err := s.cache.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(standings))
	for i, st := range standings {
		names[i] = st.Username
	}
	finish, err := s.cache.FinishTimes(ctx, names)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, len(standings))
	for i, st := range standings {
		entries[i] = model.LeaderboardEntry{Rank: i + 1, Username: st.Username, Points: st.Points}
		if sec, ok := finish[st.Username]; ok {
			sec := sec
			entries[i].RunTotalTimeSec = &sec
		}
	}
	return entries, nil
}

func (s *Scoreboard) rebuild(ctx context.Context) error {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}
	for _, t := range teams {
		if err := s.cache.SetStanding(ctx, t.Username, t.Points, t.RunTotalTimeSec); err != nil {
			return err
		}
	}
	s.log.Info("leaderboard rebuilt", zap.Int("teams", len(teams)))
	return nil
}

// fromStore ranks by points, then by official time (finished teams first)
func (s *Scoreboard) fromStore(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		switch {
		case a.RunTotalTimeSec != nil && b.RunTotalTimeSec != nil:
			return *a.RunTotalTimeSec < *b.RunTotalTimeSec
		case a.RunTotalTimeSec != nil:
			return true
		case b.RunTotalTimeSec != nil:
			return false
		}
		return a.Username < b.Username
	})
	if len(teams) > limit {
		teams = teams[:limit]
	}

	entries := make([]model.LeaderboardEntry, len(teams))
	for i, t := range teams {
		entries[i] = model.LeaderboardEntry{
			Rank:            i + 1,
			Username:        t.Username,
			Points:          t.Points,
			RunTotalTimeSec: t.RunTotalTimeSec,
		}
	}
	return entries, nil
}
