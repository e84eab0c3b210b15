// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"time"

	"github.com/gin-gonic/gin"
)

// Responder translates errors into the JSON error body at the endpoint
// boundary. Every failure renders as {error, details}; nothing is retried.
type Responder struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewResponder(logger Logger) *Responder {
	return &Responder{logger: logger}
}

// Write normalizes err to a StandardError, logs it, and writes the mapped
// status with an {error, details} body.
func (r *Responder) Write(c *gin.Context, err error) {
	stdErr := r.normalizeError(err)

	r.logger.Error("request failed", map[string]interface{}{
		"path":      c.FullPath(),
		"method":    c.Request.Method,
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
	})

	c.AbortWithStatusJSON(HTTPStatus(stdErr.Code), gin.H{
		"error":   stdErr.Message,
		"details": stdErr.Details,
		"code":    string(stdErr.Code),
	})
}

// normalizeError ensures we always have a StandardError.
func (r *Responder) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "An unexpected error occurred",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
