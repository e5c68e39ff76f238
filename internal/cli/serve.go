package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"interview-prep-simulator/internal/api"
	"interview-prep-simulator/internal/config"
	"interview-prep-simulator/internal/httpapi"
	"interview-prep-simulator/internal/interview"
	"interview-prep-simulator/internal/interviewer"
	"interview-prep-simulator/internal/metrics"
	"interview-prep-simulator/internal/storage"
	"interview-prep-simulator/internal/telemetry"
)

var envFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := config.LoadAppConfig()

	logger, closeLog, err := telemetry.InitLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, meter, shutdownTelemetry, err := telemetry.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer shutdownTelemetry()

	m, err := metrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	catalog, err := config.LoadOrDefault(cfg.InterviewConfigPath)
	if err != nil {
		return fmt.Errorf("load interview catalog: %w", err)
	}

	client, err := newOracleClient(ctx, cfg.Oracle, logger)
	if err != nil {
		return err
	}

	store, err := newStore(cfg.Sessions, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	oracle := interviewer.New(client, interviewer.Options{
		MaxRetries:   cfg.Oracle.MaxRetries,
		RetryBackoff: cfg.Oracle.RetryBackoff,
		Catalog:      catalog,
		Metrics:      m,
		Tracer:       tracer,
		Logger:       logger,
	})
	svc := interview.NewService(store, oracle, oracle, m, tracer, logger)

	handler := httpapi.NewServer(svc, httpapi.Options{
		Ready:              oracle.Ready,
		Metrics:            m,
		AllowedOrigins:     cfg.Server.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		Logger:             logger,
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go svc.RunJanitor(ctx, cfg.Sessions.SweepInterval, cfg.Sessions.MaxAge)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", server.Addr,
			"session_backend", cfg.Sessions.Backend,
			"oracle", cfg.Oracle.GetModelInfo(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	if _, err := svc.Sweep(shutdownCtx, cfg.Sessions.MaxAge); err != nil {
		logger.Error("final sweep failed", "error", err)
	}
	return nil
}

// newOracleClient returns nil when the oracle is not configured; the service
// then answers every request with fallbacks.
func newOracleClient(ctx context.Context, cfg config.OracleConfig, logger *slog.Logger) (api.Client, error) {
	if err := cfg.ValidateConfig(); err != nil {
		logger.Warn("generation oracle not configured, serving fallbacks", "reason", err.Error())
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderStub:
		return api.NewStubClient(), nil
	case config.ProviderGemini:
		client, err := api.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		return client, nil
	default:
		return api.NewOpenAIClient(cfg, nil), nil
	}
}

func newStore(cfg config.SessionConfig, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case config.SessionBackendMemory:
		return storage.NewMemoryStore(logger), nil
	case config.SessionBackendSQLite:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite session store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("SESSION_BACKEND %q is not supported", cfg.Backend)
	}
}
