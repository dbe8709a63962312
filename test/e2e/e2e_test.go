// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"churn-dashboard/internal/common/config"
	"churn-dashboard/internal/common/logger"
	"churn-dashboard/internal/common/observability"
	"churn-dashboard/internal/dashboard/form"
	"churn-dashboard/internal/dashboard/predictor"
	"churn-dashboard/internal/dashboard/view"
	"churn-dashboard/internal/dashboard/web"
	"churn-dashboard/pkg/registry"
)

// These tests talk to a running prediction service. Point E2E_PREDICTOR_URL
// at it (for example http://127.0.0.1:8000/predict) to enable them.

var (
	predictorURL string
	zapLog       *zap.Logger
)

func TestMain(m *testing.M) {
	predictorURL = os.Getenv("E2E_PREDICTOR_URL")
	zapLog = logger.New("debug", "console")

	code := m.Run()

	_ = zapLog.Sync()
	os.Exit(code)
}

func requireBackend(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	if predictorURL == "" {
		t.Skip("E2E_PREDICTOR_URL not set")
	}
}

func newClient() *predictor.Client {
	cfg := predictor.LoadConfig(config.PredictorConfig{URL: predictorURL, Timeout: 10000, MaxRetries: 2})
	return predictor.NewClient(cfg, nil, logger.NewZapAdapter(zapLog), observability.NewNoop())
}

func TestPredictorRoundTrip(t *testing.T) {
	requireBackend(t)

	payload, _, err := form.Parse(form.Defaults(), form.PolicyPassthrough)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := newClient().Predict(ctx, payload)
	require.NoError(t, err, "is the prediction service running?")

	assert.Contains(t, []string{predictor.LabelChurn, predictor.LabelNoChurn}, result.Prediction)
	assert.GreaterOrEqual(t, result.Probability, 0.0)
	assert.LessOrEqual(t, result.Probability, 1.0)
}

func TestCompleteUserJourney(t *testing.T) {
	requireBackend(t)

	log := logger.NewZapAdapter(zapLog)
	client := newClient()
	sessions := web.NewSessions(func() *view.Controller {
		return view.NewController(view.Options{Predictor: client, Policy: form.PolicyWarn, Logger: log})
	}, time.Minute, log)
	defer sessions.CloseAll()

	srv, err := web.NewServer(&web.Config{}, sessions, registry.Default(), log)
	require.NoError(t, err)
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	jar, _ := cookiejar.New(nil)
	browser := &http.Client{Jar: jar, Timeout: 20 * time.Second}

	resp, err := browser.Get(httpSrv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for field, value := range map[string]string{"Age": "62", "Tenure": "1", "IsActiveMember": "0"} {
		body := strings.NewReader(`{"field":"` + field + `","value":"` + value + `"}`)
		resp, err := browser.Post(httpSrv.URL+"/api/fields", "application/json", body)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "field %s", field)
	}

	resp, err = browser.Post(httpSrv.URL+"/api/submit", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		View view.PageView `json:"view"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.View.Result.Placeholder)
	assert.True(t, strings.HasSuffix(out.View.Result.Percent, "%"))
	assert.Equal(t, view.SubmitLabelIdle, out.View.Result.SubmitLabel)

	page, err := browser.PostForm(httpSrv.URL+"/dismiss", url.Values{})
	require.NoError(t, err)
	page.Body.Close()
	assert.Equal(t, http.StatusOK, page.StatusCode)
}
