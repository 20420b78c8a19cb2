package rest

import (
	"net/http"
	"strings"

	"electromatrix/internal/service"
	"electromatrix/internal/transport/rest/handler"
	"electromatrix/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	QuizService *service.QuizService
	Scoreboard  *service.Scoreboard
	Log         *zap.Logger
	CORSOrigins []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.Log)
	quizHandler := handler.NewQuizHandler(c.QuizService, c.Log)
	leaderboardHandler := handler.NewLeaderboardHandler(c.Scoreboard, c.Log)

	// Initialize middleware
	teamMW := middleware.NewTeamAuth(c.AuthService, c.Log)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ElectroMatrix API ✅"))
	}).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods("GET")

	// Team routes
	quiz := api.PathPrefix("/quiz").Subrouter()
	quiz.Use(teamMW.RequireTeam)

	quiz.HandleFunc("/sections", quizHandler.Sections).Methods("GET")
	quiz.HandleFunc("/question", quizHandler.Question).Methods("GET")
	quiz.HandleFunc("/answer", quizHandler.Answer).Methods("POST")
	quiz.HandleFunc("/section-questions", quizHandler.SectionQuestions).Methods("GET")
	quiz.HandleFunc("/section-answer", quizHandler.SectionAnswer).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Route not found"}`))
	})

	// Outermost first: every response, 404s and preflights included, gets a
	// request ID and an access log line.
	var h http.Handler = r
	h = corsMiddleware(c.CORSOrigins)(h)
	h = middleware.Recover(c.Log)(h)
	h = middleware.AccessLog(c.Log)(h)
	h = middleware.RequestID(h)
	return h
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAny := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAny = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.TeamHeader)
			w.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
