package middleware

import (
	"context"
	"net/http"
	"strings"

	"electromatrix/internal/apperr"
	"electromatrix/internal/model"
	"electromatrix/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	TeamKey      contextKey = "team"
	RequestIDKey contextKey = "requestId"
)

// TeamHeader carries the team username sent by the web client
const TeamHeader = "x-team-username"

// TeamAuth resolves the calling team for quiz routes
type TeamAuth struct {
	authSvc *service.AuthService
	log     *zap.Logger
}

// NewTeamAuth creates the team identity middleware
func NewTeamAuth(authSvc *service.AuthService, log *zap.Logger) *TeamAuth {
	return &TeamAuth{authSvc: authSvc, log: log}
}

// RequireTeam accepts a bearer token or the team header and rejects the
// request with 401 when neither names a known team
func (m *TeamAuth) RequireTeam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		team, err := m.authSvc.ResolveTeam(r.Context(), extractBearerToken(r), strings.TrimSpace(r.Header.Get(TeamHeader)))
		if err != nil {
			if _, ok := apperr.As(err); !ok {
				m.log.Error("team lookup failed", zap.String("requestId", GetRequestID(r.Context())), zap.Error(err))
			}
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), TeamKey, team)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTeam extracts the authenticated team from context
func GetTeam(ctx context.Context) *model.Team {
	if v, ok := ctx.Value(TeamKey).(*model.Team); ok {
		return v
	}
	return nil
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
