package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	pgRepo "district-digest/internal/infra/adapter/persistence/postgres"
	sqliteRepo "district-digest/internal/infra/adapter/persistence/sqlite"
	"district-digest/internal/infra/classifier"
	"district-digest/internal/infra/db"
	"district-digest/internal/infra/newsprovider"
	"district-digest/internal/infra/notifier"
	workerPkg "district-digest/internal/infra/worker"
	"district-digest/internal/repository"

	"district-digest/internal/domain/entity"
	hhttp "district-digest/internal/handler/http/respond"
	"district-digest/internal/observability/logging"
	digestUC "district-digest/internal/usecase/digest"
	"district-digest/internal/usecase/notify"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("prefetch_timeout", workerConfig.PrefetchTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	// Initialize Discord notification channel
	discordConfig := notifier.LoadDiscordConfig(logger)
	var discordChannel notify.Channel
	if discordConfig.Enabled {
		discordChannel = notify.NewDiscordChannel(discordConfig)
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	// Initialize Slack notification channel
	slackConfig := notifier.LoadSlackConfig(logger)
	var slackChannel notify.Channel
	if slackConfig.Enabled {
		slackChannel = notify.NewSlackChannel(slackConfig)
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	// Initialize notification service (use workerConfig)
	var channels []notify.Channel
	if discordChannel != nil {
		channels = append(channels, discordChannel)
	}
	if slackChannel != nil {
		channels = append(channels, slackChannel)
	}

	notifyService := notify.NewService(channels, workerConfig.NotifyMaxConcurrent)
	logger.Info("Notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", workerConfig.NotifyMaxConcurrent))

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, notifyService)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	svc := setupDigestService(logger, database, notifyService)

	startCronWorker(logger, svc, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and runs migrations.
// The migration statements are idempotent, so the worker can apply them even
// when the API server has already done so.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database, db.Driver()); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// newDigestRepo returns the digest repository for the driver DATABASE_URL selects.
func newDigestRepo(database *sql.DB) repository.DigestRepository {
	if db.Driver() == "pgx" {
		return pgRepo.NewDigestRepo(database)
	}
	return sqliteRepo.NewDigestRepo(database)
}

// setupDigestService creates the digest service with the provider chain,
// classifier and persistence wired in.
func setupDigestService(logger *slog.Logger, database *sql.DB, notifyService notify.Service) *digestUC.Service {
	digestRepo := newDigestRepo(database)

	httpClient := createHTTPClient()
	chain, err := newsprovider.LoadChainConfig().Build(httpClient, logger)
	if err != nil {
		logger.Error("failed to build news provider chain", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("news provider chain initialized",
		slog.Any("providers", chain.Providers()))

	cls, err := classifier.FromEnv(logger)
	if err != nil {
		logger.Error("failed to initialize classifier", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("classifier initialized", slog.String("type", cls.Name()))

	return digestUC.NewService(chain, cls, digestRepo, notifyService, logger)
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced for security.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
	}
}

// startCronWorker starts the cron scheduler and runs the prefetch job periodically.
func startCronWorker(logger *slog.Logger, svc *digestUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	// Load timezone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runPrefetchJob(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runPrefetchJob fetches today's digest for every district with timeout and
// error handling. A provider failure for one district does not stop the
// remaining districts.
func runPrefetchJob(logger *slog.Logger, svc *digestUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("prefetch started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PrefetchTimeout)
	defer cancel()

	date := time.Now().In(entity.IST).Format("2006-01-02")

	var processed, failed, articles, mock int
	for _, district := range entity.Districts {
		if ctx.Err() != nil {
			logger.Error("prefetch timed out",
				slog.String("district", district),
				slog.Int("remaining", len(entity.Districts)-processed-failed))
			break
		}

		result, err := svc.Fetch(ctx, district, date)
		if err != nil {
			// Mask credentials before the error reaches the log
			logger.Error("district prefetch failed",
				slog.String("district", district),
				slog.Any("error", hhttp.SanitizeError(err)))
			failed++
			continue
		}

		processed++
		articles += len(result.Articles)
		if result.IsMock {
			mock++
		}
	}

	duration := time.Since(startTime)
	metrics.RecordJobDuration(duration.Seconds())
	metrics.RecordDistrictsProcessed(processed)

	if failed == len(entity.Districts) {
		metrics.RecordJobRun("failure")
		logger.Error("prefetch failed for all districts", slog.Int("districts", failed))
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordLastSuccess()

	logger.Info("prefetch completed",
		slog.String("date", date),
		slog.Int("districts", processed),
		slog.Int("failed", failed),
		slog.Int("articles", articles),
		slog.Int("mock_digests", mock),
		slog.Duration("duration", duration),
	)
}
