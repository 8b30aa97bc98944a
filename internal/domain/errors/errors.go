package errors

import (
	"errors"
	"fmt"
)

var (
	// Generic.
	ErrInternal       = errors.New("internal server error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrForbidden      = errors.New("access denied")

	// Token verification. These are internal reasons; the access pipeline
	// collapses all of them into ErrInvalidToken before anything reaches an
	// unauthenticated caller.
	ErrTokenMalformed = errors.New("malformed or badly signed token")
	ErrTokenExpired   = errors.New("expired token")
	ErrWrongScope     = errors.New("invalid scope for token")

	// Access pipeline outcomes.
	ErrInvalidToken        = errors.New("could not validate credentials")
	ErrUserBanned          = errors.New("the user is on the ban list")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Credentials and account state.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")

	// Users.
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("account already exists")
	ErrUsernameExists = errors.New("user with this name already exists")

	// Cache.
	ErrCacheMiss = errors.New("identity not cached")
)

// AppError carries an HTTP status and a machine-readable code alongside the
// wrapped cause, for handlers that need more than a sentinel.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{Err: err, Message: message, StatusCode: statusCode, Code: code}
}

// IsUnauthorized reports whether err should surface as 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrEmailNotConfirmed) ||
		errors.Is(err, ErrInvalidRefreshToken) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrWrongScope)
}

// IsForbidden reports whether err should surface as 403.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUserBanned)
}

// IsNotFound reports whether err should surface as 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrUserNotFound)
}

// IsConflict reports whether err should surface as 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrUsernameExists)
}
