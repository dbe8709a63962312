// internal/dashboard/view/controller.go
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "churn-dashboard/internal/common/errors"
	"churn-dashboard/internal/common/logger"
	"churn-dashboard/internal/common/metrics"
	"churn-dashboard/internal/dashboard/form"
	"churn-dashboard/internal/dashboard/predictor"
)

// ErrViewClosed is returned by operations on a view after Close.
var ErrViewClosed = errors.New("view closed")

// Predictor is the remote scoring call.
type Predictor interface {
	Predict(ctx context.Context, payload form.Payload) (*predictor.Result, error)
}

// Notifier receives the blocking notification raised by a failed submission.
type Notifier interface {
	Notify(n apperrors.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(apperrors.Notification)

func (f NotifierFunc) Notify(n apperrors.Notification) { f(n) }

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type Options struct {
	Predictor    Predictor
	Policy       form.Policy
	Notifier     Notifier
	Logger       Logger
	ErrorHandler *apperrors.ErrorHandler
}

// Controller owns one view: its state, its in-flight request and its
// lifetime. All methods are safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	state      State
	closed     bool
	inflight   context.CancelFunc
	lastActive time.Time

	predictor Predictor
	policy    form.Policy
	notifier  Notifier
	logger    Logger
	errors    *apperrors.ErrorHandler

	ctx    context.Context
	cancel context.CancelFunc
}

func NewController(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	handler := opts.ErrorHandler
	if handler == nil {
		handler = apperrors.NewErrorHandler(log)
	}
	policy := opts.Policy
	if policy == "" {
		policy = form.PolicyPassthrough
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		state:      NewState(),
		lastActive: time.Now(),
		predictor:  opts.Predictor,
		policy:     policy,
		notifier:   opts.Notifier,
		logger:     log,
		errors:     handler,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Update applies one field change. Unknown fields leave the state untouched.
func (c *Controller) Update(field string, raw interface{}, kind string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.state.clone(), closedError()
	}
	c.lastActive = time.Now()

	next, err := Reduce(c.state, FieldChanged{Field: field, Value: raw, Kind: kind})
	if err != nil {
		return c.state.clone(), apperrors.NewUnknownFieldError(field, err)
	}
	c.state = next
	metrics.FieldUpdatesTotal.WithLabelValues(field).Inc()
	return c.state.clone(), nil
}

// Submit sends the current form to the predictor and blocks until the
// request completes. The returned state reflects the completion; a failure
// additionally returns the SUBMISSION_FAILED error after the notification has
// been raised. Completions of superseded requests change nothing.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.closed {
		snap := c.state.clone()
		c.mu.Unlock()
		return snap, closedError()
	}
	c.lastActive = time.Now()

	payload, result, err := form.Parse(c.state.Form, c.policy)
	if err != nil {
		c.state, _ = Reduce(c.state, SubmitRejected{FieldErrors: result.ByField()})
		snap := c.state.clone()
		c.mu.Unlock()

		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		c.logger.Warn("submission rejected", map[string]interface{}{
			"fields": result.Fields(),
			"error":  err.Error(),
		})
		return snap, err
	}
	if len(result.Errors) > 0 {
		c.logger.Warn("submitting form with field errors", map[string]interface{}{
			"fields": result.Fields(),
		})
	}

	gen := c.state.Generation + 1
	c.state, _ = Reduce(c.state, SubmitStarted{Generation: gen, FieldErrors: result.ByField()})

	if c.inflight != nil {
		c.inflight()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	c.inflight = cancel
	c.mu.Unlock()

	defer stop()
	defer cancel()

	c.logger.Debug("submitting prediction request", map[string]interface{}{"generation": gen})

	start := time.Now()
	res, err := c.predict(reqCtx, payload)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())

	return c.complete(gen, res, err)
}

func (c *Controller) predict(ctx context.Context, payload form.Payload) (*predictor.Result, error) {
	if c.predictor == nil {
		return nil, errors.New("no predictor configured")
	}
	res, err := c.predictor.Predict(ctx, payload)
	if err == nil && res == nil {
		return nil, fmt.Errorf("%w: empty result", predictor.ErrPredictionFailed)
	}
	return res, err
}

func (c *Controller) complete(gen uint64, res *predictor.Result, err error) (State, error) {
	c.mu.Lock()

	if c.closed {
		snap := c.state.clone()
		c.mu.Unlock()
		return snap, closedError()
	}
	if gen != c.state.Generation {
		snap := c.state.clone()
		c.mu.Unlock()

		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeStale).Inc()
		c.logger.Debug("discarding superseded completion", map[string]interface{}{
			"generation": gen,
			"latest":     snap.Generation,
		})
		return snap, nil
	}
	c.inflight = nil

	var (
		raised *apperrors.Notification
		outErr error
	)
	switch {
	case err == nil:
		c.state, _ = Reduce(c.state, SubmitSucceeded{Generation: gen, Result: *res})
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		metrics.PredictionsTotal.WithLabelValues(predictionLabel(*res)).Inc()

	case errors.Is(err, context.Canceled):
		c.state, _ = Reduce(c.state, SubmitCancelled{Generation: gen})
		c.logger.Info("submission cancelled", map[string]interface{}{"generation": gen})

	default:
		stdErr, n := c.errors.HandleSubmissionError(err, map[string]interface{}{"generation": gen})
		c.state, _ = Reduce(c.state, SubmitFailed{Generation: gen, Notification: n})
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		raised = &n
		outErr = stdErr
	}

	snap := c.state.clone()
	c.mu.Unlock()

	if raised != nil && c.notifier != nil {
		c.notifier.Notify(*raised)
	}
	return snap, outErr
}

// Dismiss clears the displayed notification.
func (c *Controller) Dismiss() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.lastActive = time.Now()
		c.state, _ = Reduce(c.state, NotificationDismissed{})
	}
	return c.state.clone()
}

// Reset restores the default form values. The displayed result is kept.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.lastActive = time.Now()
		c.state, _ = Reduce(c.state, FormReset{})
	}
	return c.state.clone()
}

// Close tears the view down: the in-flight request is cancelled and any
// completion arriving afterwards is discarded. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.inflight = nil
	c.mu.Unlock()

	c.cancel()
}

func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// LastActive is the time of the last user interaction.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func closedError() error {
	return apperrors.NewViewClosedError(ErrViewClosed)
}

func predictionLabel(r predictor.Result) string {
	switch r.Prediction {
	case predictor.LabelChurn, predictor.LabelNoChurn:
		return r.Prediction
	default:
		return "other"
	}
}
