package handler

import (
	"net/http"
	"strconv"

	"electromatrix/internal/model"
	"electromatrix/internal/service"

	"go.uber.org/zap"
)

const maxLeaderboardSize = 100

// LeaderboardHandler serves the public ranking
type LeaderboardHandler struct {
	board *service.Scoreboard
	log   *zap.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(board *service.Scoreboard, log *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{board: board, log: log}
}

// LeaderboardResponse is the body of GET /api/leaderboard
type LeaderboardResponse struct {
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}

// Top handles GET /api/leaderboard?top=N
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxLeaderboardSize)
		}
	}

	entries, err := h.board.Top(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Leaderboard: entries})
}
