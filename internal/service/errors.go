package service

import "electromatrix/internal/apperr"

// Request validation
var (
	ErrInvalidSectionCell = apperr.Validation("Invalid section/cell")
	ErrInvalidSection     = apperr.Validation("Invalid section")
	ErrInvalidPayload     = apperr.Validation("Invalid payload")
	ErrMissingCredentials = apperr.Validation("Username and password are required")
)

// Identity
var (
	ErrInvalidCredentials = apperr.Authentication("Invalid credentials")
	ErrInvalidToken       = apperr.Authentication("Invalid or expired token")
	ErrTeamHeaderMissing  = apperr.Authentication("Team header missing")
	ErrInvalidTeam        = apperr.Authentication("Invalid team")
)

// Lookups
var (
	ErrAssignmentNotFound = apperr.NotFound("Assignment not found")
	ErrQuestionNotFound   = apperr.NotFound("Question not found")
)

// Steady-state refusals; none of them touch attempt counters.
var (
	ErrNoAttemptsLeft = apperr.Forbidden("No attempts left")
	ErrSectionLocked  = apperr.Forbidden("Section challenge locked")
	ErrTimeOver       = apperr.Forbidden("Time over")
)
