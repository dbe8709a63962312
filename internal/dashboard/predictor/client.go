// internal/dashboard/predictor/client.go
package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	commonhttp "churn-dashboard/internal/common/http"
	"churn-dashboard/internal/common/observability"
	"churn-dashboard/internal/dashboard/form"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxResponseBytes = 1 << 20

var (
	// ErrPredictionFailed covers transport and response parse failures alike.
	ErrPredictionFailed = errors.New("PREDICTION_FAILED")
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client sends customer payloads to the external prediction service.
type Client struct {
	config    *Config
	http      *commonhttp.Client
	logger    Logger
	obs       *observability.Observability
	sanitizer *bluemonday.Policy
}

func NewClient(config *Config, httpClient *commonhttp.Client, log Logger, obs *observability.Observability) *Client {
	if httpClient == nil {
		httpClient = commonhttp.NewClient(0)
	}
	return &Client{
		config:    config,
		http:      httpClient,
		logger:    log,
		obs:       obs,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Predict posts payload and parses the prediction. Cancellation of ctx is
// returned as ctx.Err() so callers can tell it apart from a failed call.
func (c *Client) Predict(ctx context.Context, payload form.Payload) (*Result, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	ctx, span := c.obs.StartSpan(ctx, "predictor.predict", attribute.String("predictor.url", c.config.URL))
	defer span.End()

	start := time.Now()
	result, err := c.execute(ctx, payload)
	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.String("prediction.label", result.Prediction),
			attribute.Float64("prediction.probability", result.Probability),
		)
	}
	c.obs.RecordRequest(ctx, time.Since(start), status)
	return result, err
}

func (c *Client) execute(ctx context.Context, payload form.Payload) (*Result, error) {
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			c.logger.Warn("retrying prediction request", map[string]interface{}{
				"attempt": attempt,
				"backoff": backoff.String(),
				"error":   lastErr.Error(),
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, c.contextError(ctx, lastErr)
			}
		}

		resp, lastErr = c.http.PostJSON(ctx, c.config.URL, payload)
		if lastErr == nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, c.contextError(ctx, lastErr)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, lastErr)
	}
	defer resp.Body.Close()

	return c.decode(resp.Body)
}

// contextError keeps cancellation distinguishable while deadline expiry is
// reported as an ordinary failed prediction.
func (c *Client) contextError(ctx context.Context, lastErr error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return fmt.Errorf("%w: %v", ErrPredictionFailed, lastErr)
}

func (c *Client) decode(body io.Reader) (*Result, error) {
	var api apiResponse
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&api); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrPredictionFailed, err)
	}
	if api.Error != "" {
		return nil, fmt.Errorf("%w: service error: %s", ErrPredictionFailed, api.Error)
	}
	if api.Prediction == nil || api.Probability == nil {
		return nil, fmt.Errorf("%w: response missing prediction or probability", ErrPredictionFailed)
	}

	label := strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(*api.Prediction)))
	if label == "" {
		return nil, fmt.Errorf("%w: empty prediction label", ErrPredictionFailed)
	}
	if p := *api.Probability; p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: probability %v outside [0,1]", ErrPredictionFailed, p)
	}

	c.logger.Info("prediction received", map[string]interface{}{
		"prediction":  label,
		"probability": *api.Probability,
	})

	return &Result{Prediction: label, Probability: *api.Probability}, nil
}
