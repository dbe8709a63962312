// internal/common/errors/handler.go
package errors

import (
	"time"
)

// Notification is a blocking, user-visible message. It is diagnostic text for
// the operator, not a structured error code.
type Notification struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns errors raised at the submission boundary into logged
// StandardErrors and user notifications.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleSubmissionError normalizes err, logs it and returns the notification
// the view must display.
func (h *ErrorHandler) HandleSubmissionError(err error, fields map[string]interface{}) (*StandardError, Notification) {
	stdErr := h.normalizeError(err)
	h.logError(stdErr, fields)

	return stdErr, Notification{
		Code:      stdErr.Code,
		Message:   stdErr.Message,
		Timestamp: stdErr.Timestamp,
	}
}

// normalizeError ensures we always have a StandardError. Anything that is not
// already classified counts as a failed submission.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewSubmissionFailedError(err)
}

func (h *ErrorHandler) logError(stdErr *StandardError, fields map[string]interface{}) {
	if h.logger == nil {
		return
	}
	out := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	}
	for k, v := range fields {
		out[k] = v
	}
	h.logger.Error("submission failed", out)
}
