// cmd/dashboard/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"churn-dashboard/internal/common/config"
	apperrors "churn-dashboard/internal/common/errors"
	commonhttp "churn-dashboard/internal/common/http"
	"churn-dashboard/internal/common/logger"
	"churn-dashboard/internal/common/observability"
	"churn-dashboard/internal/dashboard/form"
	"churn-dashboard/internal/dashboard/predictor"
	"churn-dashboard/internal/dashboard/view"
	"churn-dashboard/internal/dashboard/web"
	"churn-dashboard/pkg/registry"
)

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting churn dashboard...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.NewNoop()
	if cfg.Observability.MetricsEnabled {
		obs = observability.New(observability.Options{
			ServiceName:    cfg.Observability.ServiceName,
			JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		})
	}
	defer obs.Shutdown()

	policy, err := form.ParsePolicy(cfg.Validation.Policy)
	if err != nil {
		zapLog.Fatal("invalid validation policy", zap.Error(err))
	}

	fields := registry.Default()
	if path := os.Getenv("FIELD_REGISTRY_PATH"); path != "" {
		fields, err = registry.LoadRegistry(path)
		if err != nil {
			zapLog.Fatal("field registry load failed", zap.String("path", path), zap.Error(err))
		}
	}
	var formFields []string
	for _, f := range form.Fields() {
		formFields = append(formFields, string(f))
	}
	if missing := fields.Missing(formFields); len(missing) > 0 {
		zapLog.Fatal("field registry does not describe every form field", zap.Strings("missing", missing))
	}

	predictorCfg := predictor.LoadConfig(cfg.Predictor)
	client := predictor.NewClient(predictorCfg, commonhttp.NewClient(0), log, obs)
	zapLog.Info("Prediction service configured",
		zap.String("url", predictorCfg.URL),
		zap.Duration("timeout", predictorCfg.Timeout),
		zap.Int("maxRetries", predictorCfg.MaxRetries),
	)

	errHandler := apperrors.NewErrorHandler(log)
	notifier := view.NotifierFunc(func(n apperrors.Notification) {
		log.Info("user notification raised", map[string]interface{}{
			"code":    string(n.Code),
			"message": n.Message,
		})
	})

	webCfg := web.LoadConfig(cfg.Server)
	sessions := web.NewSessions(func() *view.Controller {
		return view.NewController(view.Options{
			Predictor:    client,
			Policy:       policy,
			Notifier:     notifier,
			Logger:       log,
			ErrorHandler: errHandler,
		})
	}, webCfg.SessionTTL, log)

	server, err := web.NewServer(webCfg, sessions, fields, log)
	if err != nil {
		zapLog.Fatal("web server init failed", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go func() {
		if err := server.ListenAndServe(ctx); err != nil {
			zapLog.Fatal("dashboard server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, closing sessions...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down dashboard server", zap.Error(err))
	}

	zapLog.Info("Churn dashboard stopped gracefully")
}
