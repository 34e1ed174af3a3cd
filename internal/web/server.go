package web

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oembed/internal/config"
	"oembed/internal/logger"
	"oembed/internal/lookup"
	"oembed/internal/metrics"
)

type Server struct {
	ctx     context.Context
	svc     *lookup.Service
	jobMgr  *JobManager
	limiter RateLimiter
	config  config.Config
	logger  *logger.Logger
}

// NewServer creates the HTTP API. ctx bounds batch jobs: cancelling it
// cancels every running job.
func NewServer(ctx context.Context, svc *lookup.Service, jobMgr *JobManager, cfg config.Config, log *logger.Logger) *Server {
	return &Server{
		ctx:     ctx,
		svc:     svc,
		jobMgr:  jobMgr,
		limiter: NewIPRateLimiter(cfg.RateLimitPerMinute, time.Minute, cfg.RateLimitBurst, 10*time.Minute),
		config:  cfg,
		logger:  log,
	}
}

func (s *Server) Router() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/providers", s.handleProviders)
	api.HandleFunc("/api/match", s.handleMatch)
	api.HandleFunc("/api/oembed", s.handleOEmbed)
	api.HandleFunc("/api/batch", s.handleBatch)
	api.HandleFunc("/api/jobs", s.handleListJobs)
	api.HandleFunc("/api/jobs/", s.handleJobAction)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.rateLimit(api))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)

	return metrics.Middleware(s.loggingMiddleware(mux))
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
