package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode представляет код ошибки
type ErrorCode string

const (
	// Общие ошибки
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Ошибки розыгрыша
	ErrCodeInvalidReferral          ErrorCode = "INVALID_REFERRAL"
	ErrCodeInvalidReward            ErrorCode = "INVALID_REWARD"
	ErrCodeInsufficientParticipants ErrorCode = "INSUFFICIENT_PARTICIPANTS"
	ErrCodePaused                   ErrorCode = "PAUSED"
	ErrCodeOracleUnavailable        ErrorCode = "ORACLE_UNAVAILABLE"

	// Ошибки хранилищ
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheError    ErrorCode = "CACHE_ERROR"

	// Ошибки внешних API
	ErrCodeTelegramAPI ErrorCode = "TELEGRAM_API_ERROR"
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    int64                  `json:"user_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsInternal reports whether the error is a server-side failure rather than
// an expected outcome of normal operation.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabaseError ||
		e.Code == ErrCodeCacheError ||
		e.Code == ErrCodeTelegramAPI
}

// WithDetail добавляет детальную информацию к ошибке
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithUserID добавляет ID пользователя к ошибке
func (e *AppError) WithUserID(userID int64) *AppError {
	e.UserID = userID
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf оборачивает существующую ошибку с форматированием
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewValidationError создает ошибку валидации
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("%s: %s", field, reason)).
		WithDetail("field", field)
}

// NewUserNotFoundError создает ошибку "пользователь не найден"
func NewUserNotFoundError(userID int64) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("User not found: %d", userID)).
		WithUserID(userID)
}

// NewDatabaseError создает ошибку базы данных
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewPausedError is returned by every entry-granting operation while the
// giveaway switch is off.
func NewPausedError() *AppError {
	return New(ErrCodePaused, "Giveaway is paused")
}

// NewInsufficientParticipantsError reports a drawing request that cannot be served.
func NewInsufficientParticipantsError(eligible, requested int) *AppError {
	return New(ErrCodeInsufficientParticipants,
		fmt.Sprintf("Not enough participants: %d eligible, %d winners requested", eligible, requested)).
		WithDetail("eligible", eligible).
		WithDetail("requested", requested)
}

// AsAppError приводит ошибку к AppError, просматривая всю цепочку Unwrap
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err == nil {
		return nil, false
	}
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
