// internal/dashboard/view/state.go
package view

import (
	"errors"

	apperrors "churn-dashboard/internal/common/errors"
	"churn-dashboard/internal/dashboard/form"
	"churn-dashboard/internal/dashboard/predictor"
)

// ErrStale marks a completion that belongs to a superseded request.
var ErrStale = errors.New("stale submission")

// State is everything a view owns. It is only changed through Reduce.
type State struct {
	Form        form.FormData           `json:"form"`
	Result      *predictor.Result       `json:"result"`
	Busy        bool                    `json:"busy"`
	Generation  uint64                  `json:"generation"`
	Failure     *apperrors.Notification `json:"failure,omitempty"`
	FieldErrors map[string][]string     `json:"fieldErrors,omitempty"`
}

// NewState returns the state of a freshly mounted view.
func NewState() State {
	return State{Form: form.Defaults()}
}

// Action is a state transition request.
type Action interface {
	isAction()
}

// FieldChanged records one input event.
type FieldChanged struct {
	Field string
	Value interface{}
	Kind  string
}

// SubmitRejected reports a submission blocked before any request was made.
// It leaves busy and the outstanding generation alone.
type SubmitRejected struct {
	FieldErrors map[string][]string
}

// SubmitStarted issues request Generation.
type SubmitStarted struct {
	Generation  uint64
	FieldErrors map[string][]string
}

type SubmitSucceeded struct {
	Generation uint64
	Result     predictor.Result
}

type SubmitFailed struct {
	Generation   uint64
	Notification apperrors.Notification
}

// SubmitCancelled ends a request that was abandoned without an outcome.
type SubmitCancelled struct {
	Generation uint64
}

type NotificationDismissed struct{}

// FormReset restores the default form values.
type FormReset struct{}

func (FieldChanged) isAction()          {}
func (SubmitRejected) isAction()        {}
func (SubmitStarted) isAction()         {}
func (SubmitSucceeded) isAction()       {}
func (SubmitFailed) isAction()          {}
func (SubmitCancelled) isAction()       {}
func (NotificationDismissed) isAction() {}
func (FormReset) isAction()             {}

// Reduce applies a to s and returns the new state; s itself is never
// modified. Completions for any generation other than the latest return s
// unchanged with ErrStale.
func Reduce(s State, a Action) (State, error) {
	next := s.clone()

	switch a := a.(type) {
	case FieldChanged:
		updated, err := form.Update(s.Form, a.Field, a.Value, a.Kind)
		if err != nil {
			return s, err
		}
		next.Form = updated

	case SubmitRejected:
		next.FieldErrors = copyFieldErrors(a.FieldErrors)

	case SubmitStarted:
		next.Generation = a.Generation
		next.Busy = true
		next.FieldErrors = copyFieldErrors(a.FieldErrors)

	case SubmitSucceeded:
		if a.Generation != s.Generation {
			return s, ErrStale
		}
		result := a.Result
		next.Result = &result
		next.Busy = false
		next.Failure = nil

	case SubmitFailed:
		if a.Generation != s.Generation {
			return s, ErrStale
		}
		n := a.Notification
		next.Failure = &n
		next.Busy = false

	case SubmitCancelled:
		if a.Generation != s.Generation {
			return s, ErrStale
		}
		next.Busy = false

	case NotificationDismissed:
		next.Failure = nil

	case FormReset:
		next.Form = form.Defaults()
		next.FieldErrors = nil
	}

	return next, nil
}

// clone deep-copies the pointer and map members so the copy shares nothing
// with s.
func (s State) clone() State {
	out := s
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.Failure != nil {
		f := *s.Failure
		out.Failure = &f
	}
	out.FieldErrors = copyFieldErrors(s.FieldErrors)
	return out
}

// HasResult distinguishes "no result yet" from a displayed result.
func (s State) HasResult() bool {
	return s.Result != nil
}

// Stale reports that the displayed result predates a failed submission.
func (s State) Stale() bool {
	return s.Result != nil && s.Failure != nil
}

func copyFieldErrors(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
