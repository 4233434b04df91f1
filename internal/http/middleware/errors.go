package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"referral-giveaway-bot/internal/common/errors"
)

const RequestIDCtxParam = "request_id"

// RequestID middleware для добавления ID запроса
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDCtxParam, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Recovery turns panics into a logged INTERNAL_ERROR response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("panic", fmt.Sprintf("%v", recovered)).
			Msg("panic recovered")
		WriteError(c, errors.New(errors.ErrCodeInternal, "Internal server error"))
	})
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
}

// WriteError answers with the status mapped from the error code. Errors
// without a code become INTERNAL_ERROR and their cause is never exposed.
func WriteError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal server error")
	}

	ev := log.Info()
	if appErr.IsInternal() {
		ev = log.Error().Err(appErr.Cause)
	}
	ev.Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Int64("user_id", UserID(c)).
		Msg(appErr.Message)

	c.AbortWithStatusJSON(StatusCode(appErr), ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	})
}

// StatusCode maps an error code onto an HTTP status.
func StatusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeInvalidReferral, errors.ErrCodeInvalidReward:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodePaused:
		return http.StatusServiceUnavailable
	case errors.ErrCodeInsufficientParticipants:
		return http.StatusConflict
	case errors.ErrCodeCacheError:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTelegramAPI, errors.ErrCodeOracleUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// getRequestID получает ID запроса из контекста
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDCtxParam); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}
