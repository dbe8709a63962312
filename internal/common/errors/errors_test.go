package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
	fields   []map[string]interface{}
}

func (r *recordingLogger) Error(msg string, fields map[string]interface{}) {
	r.messages = append(r.messages, msg)
	r.fields = append(r.fields, fields)
}

func TestNewSubmissionFailedError(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewSubmissionFailedError(cause)

	assert.Equal(t, ErrCodeSubmissionFailed, err.Code)
	assert.Equal(t, SubmissionFailedMessage, err.Message)
	assert.Equal(t, "connection refused", err.Details)
	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, cause)
	assert.False(t, err.Timestamp.IsZero())
}

func TestIsCode(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", NewViewClosedError(nil))

	assert.True(t, IsCode(wrapped, ErrCodeViewClosed))
	assert.False(t, IsCode(wrapped, ErrCodeSubmissionFailed))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeViewClosed))
}

func TestErrorHandler_HandleSubmissionError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode ErrorCode
		expectedMsg  string
	}{
		{
			name:         "unclassified error becomes submission failure",
			err:          stderrors.New("dial tcp 127.0.0.1:8000: connect: connection refused"),
			expectedCode: ErrCodeSubmissionFailed,
			expectedMsg:  SubmissionFailedMessage,
		},
		{
			name:         "standard error kept as is",
			err:          NewValidationFailedError([]string{"Age"}),
			expectedCode: ErrCodeValidationFailed,
			expectedMsg:  "Form values failed validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			h := NewErrorHandler(log)

			stdErr, note := h.HandleSubmissionError(tt.err, map[string]interface{}{"generation": 3})
			require.NotNil(t, stdErr)

			assert.Equal(t, tt.expectedCode, stdErr.Code)
			assert.Equal(t, tt.expectedCode, note.Code)
			assert.Equal(t, tt.expectedMsg, note.Message)
			require.Len(t, log.messages, 1)
			assert.Equal(t, 3, log.fields[0]["generation"])
			assert.Equal(t, string(tt.expectedCode), log.fields[0]["errorCode"])
		})
	}
}
