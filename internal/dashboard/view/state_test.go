package view

import (
	"testing"
	"time"

	apperrors "churn-dashboard/internal/common/errors"
	"churn-dashboard/internal/dashboard/form"
	"churn-dashboard/internal/dashboard/predictor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustReduce(t *testing.T, s State, a Action) State {
	t.Helper()
	next, err := Reduce(s, a)
	require.NoError(t, err)
	return next
}

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, form.Defaults(), s.Form)
	assert.Nil(t, s.Result)
	assert.False(t, s.Busy)
	assert.Nil(t, s.Failure)
	assert.False(t, s.HasResult())
}

func TestReduce_SubmitLifecycle(t *testing.T) {
	s := NewState()

	s = mustReduce(t, s, SubmitStarted{Generation: 1})
	assert.True(t, s.Busy)
	assert.Equal(t, uint64(1), s.Generation)

	s = mustReduce(t, s, SubmitSucceeded{Generation: 1, Result: predictor.Result{Prediction: "Churn", Probability: 0.73}})
	assert.False(t, s.Busy)
	require.NotNil(t, s.Result)
	assert.Equal(t, "Churn", s.Result.Prediction)

	s = mustReduce(t, s, SubmitStarted{Generation: 2})
	n := apperrors.Notification{Code: apperrors.ErrCodeSubmissionFailed, Message: apperrors.SubmissionFailedMessage, Timestamp: time.Now()}
	s = mustReduce(t, s, SubmitFailed{Generation: 2, Notification: n})

	assert.False(t, s.Busy)
	require.NotNil(t, s.Failure)
	assert.Equal(t, apperrors.SubmissionFailedMessage, s.Failure.Message)
	assert.Equal(t, 0.73, s.Result.Probability, "failure keeps the previous result")
	assert.True(t, s.Stale())

	s = mustReduce(t, s, NotificationDismissed{})
	assert.Nil(t, s.Failure)
	assert.False(t, s.Stale())
}

func TestReduce_StaleCompletionIgnored(t *testing.T) {
	s := mustReduce(t, NewState(), SubmitStarted{Generation: 1})
	s = mustReduce(t, s, SubmitStarted{Generation: 2})

	tests := []struct {
		name   string
		action Action
	}{
		{name: "success", action: SubmitSucceeded{Generation: 1, Result: predictor.Result{Prediction: "Churn", Probability: 0.9}}},
		{name: "failure", action: SubmitFailed{Generation: 1}},
		{name: "cancel", action: SubmitCancelled{Generation: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(s, tt.action)
			assert.ErrorIs(t, err, ErrStale)
			assert.Equal(t, s, next)
			assert.True(t, next.Busy)
		})
	}
}

func TestReduce_RejectedKeepsOutstandingRequest(t *testing.T) {
	s := mustReduce(t, NewState(), SubmitStarted{Generation: 3})
	s = mustReduce(t, s, SubmitRejected{FieldErrors: map[string][]string{"Age": {"too small"}}})

	assert.True(t, s.Busy)
	assert.Equal(t, uint64(3), s.Generation)
	assert.Equal(t, []string{"too small"}, s.FieldErrors["Age"])
}

func TestReduce_FieldChanged(t *testing.T) {
	s := mustReduce(t, NewState(), FieldChanged{Field: "Age", Value: "55"})
	assert.Equal(t, "55", s.Form.Get(form.Age))

	_, err := Reduce(s, FieldChanged{Field: "Nope", Value: 1})
	assert.ErrorIs(t, err, form.ErrUnknownField)
}

func TestReduce_FormReset(t *testing.T) {
	s := mustReduce(t, NewState(), FieldChanged{Field: "Geography", Value: "Spain"})
	s = mustReduce(t, s, SubmitStarted{Generation: 1})
	s = mustReduce(t, s, SubmitSucceeded{Generation: 1, Result: predictor.Result{Prediction: "No Churn", Probability: 0.1}})
	s = mustReduce(t, s, FormReset{})

	assert.Equal(t, form.Defaults(), s.Form)
	assert.NotNil(t, s.Result)
}

func TestReduce_DoesNotAliasInput(t *testing.T) {
	s := mustReduce(t, NewState(), SubmitStarted{Generation: 1, FieldErrors: map[string][]string{"Age": {"bad"}}})
	s = mustReduce(t, s, SubmitSucceeded{Generation: 1, Result: predictor.Result{Prediction: "Churn", Probability: 0.5}})

	next := mustReduce(t, s, NotificationDismissed{})
	next.Result.Probability = 0.1
	next.FieldErrors["Age"][0] = "changed"

	assert.Equal(t, 0.5, s.Result.Probability)
	assert.Equal(t, "bad", s.FieldErrors["Age"][0])
}
