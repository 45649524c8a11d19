// Package errors provides custom error types for the Sprout API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Household errors.
var (
	ErrHouseholdNotFound  = &AppError{Code: "HOUSEHOLD_NOT_FOUND", Message: "Household not found", StatusCode: http.StatusNotFound}
	ErrNotHouseholdMember = &AppError{Code: "NOT_HOUSEHOLD_MEMBER", Message: "You are not a member of a household", StatusCode: http.StatusForbidden}
	ErrAlreadyInHousehold = &AppError{Code: "ALREADY_IN_HOUSEHOLD", Message: "You already belong to a household", StatusCode: http.StatusConflict}
	ErrInvalidInviteCode  = &AppError{Code: "INVALID_INVITE_CODE", Message: "Invite code is invalid or expired", StatusCode: http.StatusBadRequest}
	ErrHouseholdFull      = &AppError{Code: "HOUSEHOLD_FULL", Message: "This household already has two members", StatusCode: http.StatusConflict}
	ErrInvalidJointRatio  = &AppError{Code: "INVALID_JOINT_RATIO", Message: "Joint ratio must be between 0 and 1", StatusCode: http.StatusBadRequest}
)

// Pay cycle errors.
var (
	ErrCycleNotFound   = &AppError{Code: "CYCLE_NOT_FOUND", Message: "Pay cycle not found", StatusCode: http.StatusNotFound}
	ErrNoActiveCycle   = &AppError{Code: "NO_ACTIVE_CYCLE", Message: "No active pay cycle", StatusCode: http.StatusNotFound}
	ErrNoDraftCycle    = &AppError{Code: "NO_DRAFT_CYCLE", Message: "No draft pay cycle", StatusCode: http.StatusNotFound}
	ErrDraftExists     = &AppError{Code: "DRAFT_EXISTS", Message: "A draft cycle already exists", StatusCode: http.StatusConflict}
	ErrActiveExists    = &AppError{Code: "ACTIVE_EXISTS", Message: "An active cycle already exists", StatusCode: http.StatusConflict}
	ErrCycleLocked     = &AppError{Code: "CYCLE_LOCKED", Message: "This cycle's budget is closed for editing", StatusCode: http.StatusConflict}
	ErrCycleNotDraft   = &AppError{Code: "CYCLE_NOT_DRAFT", Message: "This operation requires a draft cycle", StatusCode: http.StatusBadRequest}
	ErrCycleNotActive  = &AppError{Code: "CYCLE_NOT_ACTIVE", Message: "This operation requires an active cycle", StatusCode: http.StatusBadRequest}
	ErrMissingCycleCfg = &AppError{Code: "MISSING_CYCLE_CONFIG", Message: "Household pay cycle settings are incomplete", StatusCode: http.StatusBadRequest}
)

// Seed errors.
var (
	ErrSeedNotFound      = &AppError{Code: "SEED_NOT_FOUND", Message: "Seed not found", StatusCode: http.StatusNotFound}
	ErrDueDateOutOfCycle = &AppError{Code: "DUE_DATE_OUT_OF_CYCLE", Message: "Due date falls outside the cycle", StatusCode: http.StatusBadRequest}
	ErrInvalidPayer      = &AppError{Code: "INVALID_PAYER", Message: "Payer is not valid for this seed", StatusCode: http.StatusBadRequest}
)

// Pot & repayment errors.
var (
	ErrPotNotFound       = &AppError{Code: "POT_NOT_FOUND", Message: "Pot not found", StatusCode: http.StatusNotFound}
	ErrRepaymentNotFound = &AppError{Code: "REPAYMENT_NOT_FOUND", Message: "Repayment not found", StatusCode: http.StatusNotFound}
)

// Income source errors.
var (
	ErrIncomeSourceNotFound = &AppError{Code: "INCOME_SOURCE_NOT_FOUND", Message: "Income source not found", StatusCode: http.StatusNotFound}
)
