package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"electromatrix/internal/model"
	"electromatrix/internal/service"
	"electromatrix/internal/transport/rest/middleware"

	"go.uber.org/zap"
)

// QuizHandler serves the team quiz routes. Every route runs behind
// middleware.TeamAuth.
type QuizHandler struct {
	quizSvc *service.QuizService
	log     *zap.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService, log *zap.Logger) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc, log: log}
}

// Sections handles GET /api/quiz/sections
func (h *QuizHandler) Sections(w http.ResponseWriter, r *http.Request) {
	team := middleware.GetTeam(r.Context())

	overview, err := h.quizSvc.Sections(r.Context(), team)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// Question handles GET /api/quiz/question?section=&cell=
func (h *QuizHandler) Question(w http.ResponseWriter, r *http.Request) {
	section, okS := queryInt(r, "section")
	cell, okC := queryInt(r, "cell")
	if !okS || !okC {
		writeError(w, r, h.log, service.ErrInvalidSectionCell)
		return
	}

	q, err := h.quizSvc.Question(r.Context(), middleware.GetTeam(r.Context()), section, cell)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Answer handles POST /api/quiz/answer
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req model.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Section == nil || req.Cell == nil {
		writeError(w, r, h.log, service.ErrInvalidPayload)
		return
	}

	res, err := h.quizSvc.SubmitAnswer(r.Context(), middleware.GetTeam(r.Context()), *req.Section, *req.Cell, req.Answer)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SectionQuestions handles GET /api/quiz/section-questions?section=
func (h *QuizHandler) SectionQuestions(w http.ResponseWriter, r *http.Request) {
	section, ok := queryInt(r, "section")
	if !ok {
		writeError(w, r, h.log, service.ErrInvalidSection)
		return
	}

	view, err := h.quizSvc.SectionQuestions(r.Context(), middleware.GetTeam(r.Context()), section)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SectionAnswer handles POST /api/quiz/section-answer
func (h *QuizHandler) SectionAnswer(w http.ResponseWriter, r *http.Request) {
	var req model.SectionAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Section == nil || req.Idx == nil {
		writeError(w, r, h.log, service.ErrInvalidPayload)
		return
	}

	res, err := h.quizSvc.SubmitSectionAnswer(r.Context(), middleware.GetTeam(r.Context()), *req.Section, *req.Idx, req.Answer)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryInt(r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	return n, err == nil
}
