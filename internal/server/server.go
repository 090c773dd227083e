// Package server exposes the audit pipeline over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dtnitsch/geo-audit/internal/common"
	"github.com/dtnitsch/geo-audit/models"
	"github.com/dtnitsch/geo-audit/pkg/audit"
	"github.com/dtnitsch/geo-audit/pkg/domain"
	"github.com/dtnitsch/geo-audit/pkg/llm"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Auditor is the slice of the pipeline the server needs.
type Auditor interface {
	Run(ctx context.Context, in models.AuditInput) (*models.AuditResult, error)
	Resolve(in models.AuditInput) (audit.Plan, error)
}

// SignalSource fetches pages without dispatching.
type SignalSource interface {
	Extract(ctx context.Context, urls []string) []models.PageSignal
}

type Config struct {
	ListenAddr string
	Logger     *slog.Logger
}

type Server struct {
	cfg     Config
	auditor Auditor
	signals SignalSource
	router  chi.Router
	logger  *slog.Logger
}

func New(cfg Config, auditor Auditor, signals SignalSource) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = common.DiscardLogger()
	}
	s := &Server{
		cfg:     cfg,
		auditor: auditor,
		signals: signals,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/audit", s.handleAudit)
		r.Post("/signals", s.handleSignals)
		r.Get("/domain", s.handleDomain)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.router.ServeHTTP(w, r)
	s.logger.Info("http_request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start).String())
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		// audits wait on page fetches plus one model call
		WriteTimeout: 3 * time.Minute,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func bearerToken(r *http.Request) models.Credentials {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return models.Credentials(strings.TrimSpace(token))
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAudit runs an audit with the caller's bearer token. Cached reports are
// shared across tokens unless the pipeline keys its cache on credentials
// (--cache-per-token).
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var body AuditRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	creds := bearerToken(r)
	if creds.Empty() {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	result, err := s.auditor.Run(r.Context(), models.AuditInput{
		TargetLabel: body.TargetLabel,
		Target:      body.Target,
		ExtraURLs:   body.ExtraURLs,
		Model:       body.Model,
		Credentials: creds,
	})
	if err != nil {
		s.writeAuditError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeAuditError(w http.ResponseWriter, err error) {
	var derr *llm.DispatchError
	switch {
	case errors.Is(err, audit.ErrCredentialMissing):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrNotADomain):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, audit.ErrEmptySignalSet):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &derr):
		s.logger.Warn("audit dispatch failed", "status", derr.StatusCode, "error", derr.Message)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: derr.Error(), UpstreamStatus: derr.StatusCode})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		s.logger.Error("audit failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	var body SignalsRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	plan, err := s.auditor.Resolve(models.AuditInput{Target: body.Target, ExtraURLs: body.ExtraURLs})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pages := s.signals.Extract(r.Context(), plan.Candidates)
	writeJSON(w, http.StatusOK, SignalsResponse{
		Domain:      plan.Domain,
		Pages:       pages,
		InvalidURLs: plan.Invalid,
	})
}

func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	d := r.URL.Query().Get("d")
	if d == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter d")
		return
	}
	info, err := domain.Parse(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}
