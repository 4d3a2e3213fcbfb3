package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep the code
// of the *shared.DomainError that caused them.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"

	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	ErrCodeTokenRevoked = "TOKEN_REVOKED"

	ErrCodeSweepInProgress     = "SWEEP_IN_PROGRESS"
	ErrCodeSchedulerNotRunning = "SCHEDULER_NOT_RUNNING"
)

// errorCodeHTTPStatus maps codes whose status cannot be derived from their shape
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,

	ErrCodeForbidden:         http.StatusForbidden,
	"ACCOUNT_DEACTIVATED":    http.StatusForbidden,
	"ORGANIZATION_SUSPENDED": http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeConflict:        http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	ErrCodeSweepInProgress: http.StatusConflict,

	"INVALID_STATE":     http.StatusUnprocessableEntity,
	"INVALID_OPERATION": http.StatusUnprocessableEntity,

	ErrCodeTooLarge:            http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeUnavailable:         http.StatusServiceUnavailable,
	ErrCodeSchedulerNotRunning: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code. Unlisted codes
// ending in _NOT_FOUND are 404 and unlisted INVALID_* codes are 400; anything
// else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
