package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// LoginMessage is echoed to the client on success
const LoginMessage = "Login successful ✅"

// AuthService checks team credentials and issues team tokens
type AuthService struct {
	teams     repository.TeamRepo
	jwtSecret []byte
	tokenTTL  time.Duration
	now       Clock
}

// NewAuthService creates a new auth service
func NewAuthService(teams repository.TeamRepo, secret string, tokenTTL time.Duration, now Clock) *AuthService {
	return &AuthService{
		teams:     teams,
		jwtSecret: []byte(secret),
		tokenTTL:  tokenTTL,
		now:       now,
	}
}

// HashPassword bcrypt-hashes a team password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login validates credentials and returns the team with a bearer token
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	team, err := s.teams.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	if team == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(team.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(team)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{
		Message: LoginMessage,
		Team:    model.TeamInfo{Username: team.Username},
		Token:   token,
	}, nil
}

func (s *AuthService) issueToken(team *model.Team) (string, error) {
	now := s.now()
	claims := &model.TeamClaims{
		TeamID:   team.ID,
		Username: team.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   team.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a team JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.TeamClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.TeamClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.TeamClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ResolveTeam identifies the caller by bearer token or, as the web client
// does, by the x-team-username header
func (s *AuthService) ResolveTeam(ctx context.Context, bearer, username string) (*model.Team, error) {
	if bearer != "" {
		claims, err := s.ValidateToken(bearer)
		if err != nil {
			return nil, err
		}
		team, err := s.teams.GetByID(ctx, claims.TeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load team: %w", err)
		}
		if team == nil {
			return nil, ErrInvalidTeam
		}
		return team, nil
	}

	if username == "" {
		return nil, ErrTeamHeaderMissing
	}
	team, err := s.teams.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	if team == nil {
		return nil, ErrInvalidTeam
	}
	return team, nil
}
