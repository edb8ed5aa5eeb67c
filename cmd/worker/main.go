package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"disclosure-feed/internal/infra/notifier"
	"disclosure-feed/internal/infra/scraper"
	workerPkg "disclosure-feed/internal/infra/worker"
	"disclosure-feed/internal/observability/logging"
	discUC "disclosure-feed/internal/usecase/disclosure"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 設定読み込み（fail-open）
	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.String("output_dir", workerConfig.OutputDir))

	svc, err := setupService(logger)
	if err != nil {
		logger.Error("failed to set up disclosure service", slog.Any("error", err))
		os.Exit(1)
	}
	job := workerPkg.NewSnapshotJob(svc, workerConfig, workerMetrics, logger, notifier.LoadFromEnv(logger))

	healthServer := workerPkg.NewHealthServer(
		fmt.Sprintf(":%d", workerConfig.HealthPort), logger, promhttp.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthServer.Start(gctx)
	})
	g.Go(func() error {
		return runScheduler(gctx, logger, job, workerConfig, healthServer)
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// setupService builds the disclosure service from TDNET_* settings.
func setupService(logger *slog.Logger) (*discUC.Service, error) {
	cfg, err := scraper.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	extractor, err := scraper.NewTableExtractor(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("scraper configured",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("max_pages", cfg.MaxPages))
	return discUC.NewService(scraper.NewListFetcher(cfg), extractor, cfg.MaxPages), nil
}

// runScheduler runs the snapshot job on the configured schedule until ctx ends.
// Runs never overlap; a tick that arrives while a run is active is skipped.
func runScheduler(ctx context.Context, logger *slog.Logger, job *workerPkg.SnapshotJob, cfg *workerPkg.WorkerConfig, hs *workerPkg.HealthServer) error {
	c := cron.New(
		cron.WithLocation(cfg.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err := c.AddFunc(cfg.CronSchedule, func() {
		// エラーはジョブ内でログ出力・計測済み
		_, _ = job.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	c.Start()
	hs.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	hs.SetReady(false)

	// 実行中のジョブの完了を待つ
	<-c.Stop().Done()
	return nil
}
