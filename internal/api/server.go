// internal/api/server.go

// Package api assembles the HTTP surface of the churn prediction service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"churnshield/internal/analytics"
	"churnshield/internal/api/features"
	"churnshield/internal/api/login"
	"churnshield/internal/api/logs"
	"churnshield/internal/api/predict"
	"churnshield/internal/api/stats"
	"churnshield/internal/common/auth"
	"churnshield/internal/common/config"
	"churnshield/internal/common/logger"
	"churnshield/internal/common/observability"
	"churnshield/internal/ml/pipeline"
	"churnshield/internal/notify"
	"churnshield/internal/store"
	"churnshield/pkg/catalog"
)

// Dependencies carries everything the server routes over. Optional fields may
// be nil; the corresponding endpoint degrades rather than the whole server.
type Dependencies struct {
	Pipeline    *pipeline.Pipeline // nil: /predict answers 503
	Options     pipeline.Options
	LogStore    *store.PredictionLogStore
	UserStore   *store.UserStore
	JWT         *auth.JWTManager
	DemoAccount bool
	Cache       *redis.Client
	Indexer     *analytics.Indexer
	Alerter     *notify.Alerter
	Obs         *observability.Observability
	Catalog     *catalog.FeatureCatalog
	Dataset     stats.DatasetSummary
}

// Server is the HTTP front of the service.
type Server struct {
	cfg    config.ServerConfig
	logger logger.Logger
	srv    *http.Server
}

// NewServer builds the route table and wraps it with access logging. Token
// auth guards the prediction and reporting endpoints; login, health, metrics
// and the feature catalog stay open.
func NewServer(cfg config.ServerConfig, deps Dependencies, log logger.Logger) *Server {
	mux := http.NewServeMux()

	predictHandler := predict.NewHandler(deps.Pipeline, deps.Options, logSink(deps.LogStore), deps.Indexer, deps.Alerter, deps.Obs, log)
	loginHandler := login.NewHandler(userSource(deps.UserStore), deps.JWT, deps.DemoAccount, log)
	logsHandler := logs.NewHandler(logSource(deps.LogStore), log)
	statsHandler := stats.NewHandler(riskCounter(deps.LogStore), deps.Dataset, deps.Cache, log)
	featuresHandler := features.NewHandler(deps.Catalog, log)

	mux.Handle("/login", loginHandler)
	mux.Handle("/predict", withAuth(deps.JWT, predictHandler))
	mux.Handle("/logs", withAuth(deps.JWT, logsHandler))
	mux.Handle("/stats", withAuth(deps.JWT, statsHandler))
	mux.Handle("/features", featuresHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler(deps.Pipeline))

	return &Server{
		cfg:    cfg,
		logger: log,
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      withRequestLog(log, mux),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		},
	}
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.cfg.Addr()})
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the root handler so tests can serve it in-process.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func healthHandler(pipe *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		modelLoaded := pipe != nil
		if !modelLoaded {
			status = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":       status,
			"model_loaded": modelLoaded,
			"time":         time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// The handlers take narrow interfaces; a nil *store must stay a nil interface
// value, so the conversions below guard against typed-nil pitfalls.

func logSink(s *store.PredictionLogStore) predict.LogSink {
	if s == nil {
		return nil
	}
	return s
}

func logSource(s *store.PredictionLogStore) logs.LogSource {
	if s == nil {
		return nil
	}
	return s
}

func riskCounter(s *store.PredictionLogStore) stats.RiskCounter {
	if s == nil {
		return nil
	}
	return s
}

func userSource(s *store.UserStore) login.UserSource {
	if s == nil {
		return nil
	}
	return s
}
