package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	hhttp "disclosure-feed/internal/handler/http"
	"disclosure-feed/internal/handler/http/disclosure"
	"disclosure-feed/internal/handler/http/middleware"
	"disclosure-feed/internal/handler/http/requestid"
	"disclosure-feed/internal/handler/http/summary"
	"disclosure-feed/internal/infra/pdftext"
	"disclosure-feed/internal/infra/scraper"
	"disclosure-feed/internal/infra/summarizer"
	"disclosure-feed/internal/observability/logging"
	"disclosure-feed/internal/observability/tracing"
	discUC "disclosure-feed/internal/usecase/disclosure"
	summaryUC "disclosure-feed/internal/usecase/summary"
	"disclosure-feed/pkg/config"
)

func main() {
	logger := initLogger()
	version := getVersion()

	tp := tracing.Install(tracing.ProviderConfig{
		ServiceName:    "disclosure-api",
		ServiceVersion: version,
		SampleRatio:    float64(config.GetEnvInt("TRACE_SAMPLE_PERCENT", 10)) / 100,
	})
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	handler := setupServer(logger, version)
	runServer(logger, handler, version)
}

// initLogger initializes the JSON logger and makes it the process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// setupServer builds the extraction service and returns the fully wrapped handler.
func setupServer(logger *slog.Logger, version string) http.Handler {
	scraperCfg, err := scraper.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load scraper configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("scraper configured",
		slog.String("base_url", scraperCfg.BaseURL),
		slog.Int("max_pages", scraperCfg.MaxPages),
		slog.Duration("fetch_timeout", scraperCfg.Timeout))

	extractor, err := scraper.NewTableExtractor(scraperCfg.BaseURL)
	if err != nil {
		logger.Error("failed to create extractor", slog.Any("error", err))
		os.Exit(1)
	}
	svc := discUC.NewService(scraper.NewListFetcher(scraperCfg), extractor, scraperCfg.MaxPages)

	mux := http.NewServeMux()
	disclosure.Register(mux, svc, config.GetEnvDuration("REQUEST_TIMEOUT", 5*time.Minute), nil)
	summary.Register(mux, setupSummary(logger), config.GetEnvDuration("SUMMARY_TIMEOUT", 2*time.Minute), nil)
	mux.Handle("/health", &hhttp.HealthHandler{Version: version, StartedAt: time.Now()})
	mux.HandleFunc("/live", hhttp.LiveHandler)
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux)
}

// setupSummary builds the PDF summary service. Without an AI provider every
// summary comes from the keyword fallback.
func setupSummary(logger *slog.Logger) *summaryUC.Service {
	aiCfg, err := summarizer.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load summarizer configuration", slog.Any("error", err))
		os.Exit(1)
	}
	ai, err := summarizer.New(aiCfg, summarizer.NewMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		logger.Error("failed to create summarizer", slog.Any("error", err))
		os.Exit(1)
	}

	var port summaryUC.Summarizer
	if ai != nil {
		port = ai
		logger.Info("AI summarization enabled",
			slog.String("provider", aiCfg.Provider),
			slog.String("engine", ai.Engine()),
			slog.Int("character_limit", aiCfg.CharacterLimit))
	} else {
		logger.Info("AI summarization disabled, using fallback summaries")
	}

	pdfCfg := pdftext.LoadConfigFromEnv()
	return summaryUC.NewService(pdftext.NewDownloader(pdfCfg), pdftext.Extractor{}, port, summarizer.NewFallback())
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: CORS → Request ID → Tracing → Recovery → Logging → Body Limit → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = logger

	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Any("allowed_headers", corsConfig.AllowedHeaders),
		slog.Int("max_age", corsConfig.MaxAge))

	// CORS を最初に置き、プリフライトはハンドラまで到達させない
	return hhttp.Chain(handler,
		middleware.CORS(corsConfig),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequestBody(config.GetEnvInt64("MAX_REQUEST_BODY", 1<<20)),
		hhttp.MetricsMiddleware,
	)
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := config.GetEnvString("API_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris 対策
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// In-flight extractions get SHUTDOWN_TIMEOUT to finish before their base context is canceled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		config.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second))
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
