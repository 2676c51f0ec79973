// Package server exposes the verification pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/logging"
	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/pipeline"
	"github.com/esachdev28/truth-weaver/internal/worker"
)

// StatusMessage is the liveness payload of GET /
const StatusMessage = "Truth Weaver System Online"

// Service is the pipeline surface the HTTP layer needs
type Service interface {
	Verify(ctx context.Context, req pipeline.VerifyRequest) pipeline.VerifyResult
	ScoreClaim(ctx context.Context, text string, evidence []model.Evidence) model.ScoreResponse
	Explain(ctx context.Context, text string, verdict model.Verdict, lang string) string
	CheckCrisis(ctx context.Context) model.CrisisResponse
	ScanAndRegister(ctx context.Context, sourceURL, category string) []model.Claim
	Claims() []model.Claim
	AgentStatus() pipeline.AgentReport
}

// JobQueue accepts background jobs without blocking
type JobQueue interface {
	TrySubmit(job worker.Job) bool
	Pending() int
}

// Server routes API requests to the pipeline
type Server struct {
	svc    Service
	scans  JobQueue
	config model.ServerConfig
	log    *zap.Logger
}

// New creates a server. scans receives background scan jobs.
func New(svc Service, scans JobQueue, cfg model.ServerConfig, log *zap.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = model.DefaultConfig().Server.MaxUploadBytes
	}
	return &Server{
		svc:    svc,
		scans:  scans,
		config: cfg,
		log:    logging.OrNop(log),
	}
}

// Handler builds the router with middleware applied
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/claims", s.handleClaims)
		r.Post("/verify", s.handleVerify)
		r.Post("/score", s.handleScore)
		r.Post("/explain", s.handleExplain)
		r.Get("/crisis", s.handleCrisis)
		r.Post("/scan", s.handleScan)
		r.Get("/agents", s.handleAgents)
	})

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       model.Seconds(s.config.ReadTimeout),
		WriteTimeout:      model.Seconds(s.config.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server starting", zap.String("addr", s.config.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received")
	timeout := model.Seconds(s.config.ShutdownTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
