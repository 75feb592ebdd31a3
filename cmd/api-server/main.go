// cmd/api-server/main.go

// Binary api-server runs the churn prediction HTTP service. It loads the
// fitted pipeline artifact, connects to the supporting stores and serves the
// prediction, auth and reporting endpoints. A missing artifact puts the
// server into degraded mode instead of refusing to start.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"churnshield/internal/analytics"
	"churnshield/internal/api"
	"churnshield/internal/api/stats"
	"churnshield/internal/common/auth"
	"churnshield/internal/common/aws"
	"churnshield/internal/common/config"
	"churnshield/internal/common/database"
	apperrors "churnshield/internal/common/errors"
	"churnshield/internal/common/logger"
	"churnshield/internal/common/metrics"
	"churnshield/internal/common/observability"
	"churnshield/internal/ml/dataset"
	"churnshield/internal/ml/pipeline"
	"churnshield/internal/notify"
	"churnshield/internal/store"
	"churnshield/pkg/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger.With(
		zap.String("service", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	))

	log.Info("starting api server", map[string]interface{}{"version": cfg.App.Version})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Model artifact. MODEL_NOT_FOUND degrades, anything else is fatal.
	pipe, err := pipeline.Load(cfg.Model.ArtifactPath)
	if err != nil {
		if stdErr, ok := err.(*apperrors.StandardError); ok && stdErr.Code == apperrors.ErrCodeModelNotFound {
			log.Warn("model artifact not found, serving in degraded mode", map[string]interface{}{
				"path": cfg.Model.ArtifactPath,
			})
			pipe = nil
		} else {
			log.Error("failed to load model artifact", map[string]interface{}{"error": err})
			os.Exit(1)
		}
	}
	if pipe != nil {
		metrics.ModelLoaded.Set(1)
		log.Info("model artifact loaded", map[string]interface{}{
			"trainedAt": pipe.TrainedAt,
			"features":  len(pipe.Schema()),
			"trees":     len(pipe.Model.Trees),
		})
	} else {
		metrics.ModelLoaded.Set(0)
	}

	// Postgres backs the prediction log and user accounts. The server stays
	// up without it; the affected endpoints degrade.
	var logStore *store.PredictionLogStore
	var userStore *store.UserStore
	pg, err := connectPostgres(cfg.Database.Postgres, log)
	if err != nil {
		log.Warn("postgres unavailable, prediction logging and user accounts disabled", map[string]interface{}{
			"error": err,
		})
	} else {
		defer pg.Close()
		logStore = store.NewPredictionLogStore(pg.DB)
		userStore = store.NewUserStore(pg.DB)
	}

	deps := api.Dependencies{
		Pipeline: pipe,
		Options: pipeline.Options{
			TopK:            cfg.Model.TopK,
			HighThreshold:   cfg.Model.HighThreshold,
			MediumThreshold: cfg.Model.MediumThreshold,
		},
		LogStore:    logStore,
		UserStore:   userStore,
		JWT:         auth.NewJWTManager(cfg.Auth),
		DemoAccount: cfg.Auth.DemoAccount,
		Obs:         obs,
		Catalog:     loadCatalog(log),
		Dataset:     datasetSummary(cfg.Model.DatasetPath, log),
	}

	if rdb, err := database.NewRedis(cfg.Database.Redis); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr := rdb.Ping(ctx)
		cancel()
		if pingErr != nil {
			log.Warn("redis unavailable, stats caching disabled", map[string]interface{}{"error": pingErr})
			rdb.Close()
		} else {
			defer rdb.Close()
			deps.Cache = rdb.GetClient()
		}
	}

	if cfg.Analytics.Enabled && cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.Warn("elasticsearch client init failed, analytics disabled", map[string]interface{}{"error": err})
		} else if err := es.Ping(); err != nil {
			log.Warn("elasticsearch unreachable, analytics disabled", map[string]interface{}{"error": err})
		} else {
			deps.Indexer = analytics.NewIndexer(es, cfg.Database.Elasticsearch.Index, log)
		}
	}

	if cfg.Notifications.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		snsClient, snsErr := aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
		sesClient, sesErr := aws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
		cancel()
		if snsErr != nil {
			log.Warn("sns client init failed", map[string]interface{}{"error": snsErr})
			snsClient = nil
		}
		if sesErr != nil {
			log.Warn("ses client init failed", map[string]interface{}{"error": sesErr})
			sesClient = nil
		}
		if snsClient != nil || sesClient != nil {
			deps.Alerter = notify.New(snsClient, sesClient, cfg.Notifications, log)
		}
	}

	server := api.NewServer(cfg.Server, deps, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", map[string]interface{}{"error": err})
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}

// connectPostgres opens the pool and verifies it with a few retries. Startup
// should tolerate the database coming up a moment later than the service.
func connectPostgres(cfg config.PostgresConfig, log logger.Logger) (*database.PostgresClient, error) {
	pg, err := database.NewPostgres(cfg)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = pg.Ping(ctx)
		cancel()
		if lastErr == nil {
			return pg, nil
		}
		log.Warn("postgres ping failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   lastErr,
		})
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	pg.Close()
	return nil, lastErr
}

// loadCatalog prefers a configured catalog file and falls back to the
// built-in Telco metadata.
func loadCatalog(log logger.Logger) *catalog.FeatureCatalog {
	path := os.Getenv("CHURNSHIELD_FEATURE_CATALOG")
	if path == "" {
		return catalog.Default()
	}
	c, err := catalog.Load(path)
	if err != nil {
		log.Warn("failed to load feature catalog, using built-in", map[string]interface{}{
			"path":  path,
			"error": err,
		})
		return catalog.Default()
	}
	return c
}

// datasetSummary counts label prevalence in the training CSV for the stats
// endpoint. A missing dataset leaves the summary empty rather than failing
// startup.
func datasetSummary(path string, log logger.Logger) stats.DatasetSummary {
	table, err := dataset.LoadCSV(path)
	if err != nil {
		log.Warn("training dataset unavailable for stats", map[string]interface{}{
			"path":  path,
			"error": err,
		})
		return stats.DatasetSummary{}
	}

	_, labels, err := table.SplitLabel()
	if err != nil {
		log.Warn("training dataset label column unusable for stats", map[string]interface{}{"error": err})
		return stats.DatasetSummary{}
	}

	churned := 0
	for _, l := range labels {
		if l == 1 {
			churned++
		}
	}
	summary := stats.DatasetSummary{
		TotalCustomers: len(labels),
		ChurnedCount:   churned,
	}
	if summary.TotalCustomers > 0 {
		summary.ChurnRate = float64(churned) / float64(summary.TotalCustomers)
	}
	return summary
}
