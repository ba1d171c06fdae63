package domain

import (
	"errors"
)

const (
	RoleAdmin     = "admin"
	RoleDonor     = "donor"
	RoleCharity   = "charity"
	RoleVolunteer = "volunteer"
)

var (
	MesaageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	ErrParseUUID      = errors.New("failed to parse UUID")
	ErrUserNotAllowed = errors.New("user not allowed")
	ErrTokenNotFound  = errors.New("failed to token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrInvalidRole    = errors.New("invalid role")
)

// Error taxonomy shared by every component. Detail is attached with
// fmt.Errorf("%w: ...") and callers branch with errors.Is.
var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNoCandidate       = errors.New("no candidate")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnavailable       = errors.New("unavailable")
	ErrInvalidRequest    = errors.New("invalid request")
)

// IsRetryable reports whether the whole operation may be retried by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable)
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDonor, RoleCharity, RoleVolunteer:
		return true
	}
	return false
}

type (
	// Principal is the resolved caller of one operation.
	Principal struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
)

// SystemPrincipal is the caller used by the scheduler and the CLI.
var SystemPrincipal = Principal{UserID: "system", Role: RoleAdmin}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
