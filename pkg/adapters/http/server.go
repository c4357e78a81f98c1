package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/humdrum/internal/logging"
	"github.com/aretw0/humdrum/internal/sanitize"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/mvc"
	"github.com/aretw0/humdrum/pkg/site"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "humdrum_session"
)

// Dispatcher runs a named controller for a session.
type Dispatcher interface {
	Dispatch(ctx context.Context, controller, sessionID string, req *domain.Request) (*domain.Model, error)
	Controllers() []string
}

// Server routes HTTP requests to a Dispatcher.
type Server struct {
	app       Dispatcher
	streams   *StreamManager
	gatherer  prometheus.Gatherer
	sanitizer *sanitize.Sanitizer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams enables GET /events backed by sm.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithMetrics enables GET /metrics serving g.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithSanitizer replaces the default param sanitizer.
func WithSanitizer(sz *sanitize.Sanitizer) Option {
	return func(s *Server) {
		s.sanitizer = sz
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for app.
func NewHandler(app Dispatcher, opts ...Option) http.Handler {
	s := &Server{
		app:       app,
		sanitizer: sanitize.New(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.HandleFunc("/c/{controller}", s.Dispatch)
	r.Get("/controllers", s.ListControllers)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	if s.streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", SessionHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Dispatch handles ANY /c/{controller}.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "controller")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	raw := make(map[string]string, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			raw[k] = vs[0]
		}
	}
	params, err := s.sanitizer.Map(raw)
	if err != nil {
		http.Error(w, "Invalid input: "+err.Error(), http.StatusBadRequest)
		s.logger.Warn("Dispatch: input rejected", "controller", name, "err", err)
		return
	}

	sessionID := sessionFromRequest(r)
	if sessionID == "" {
		sessionID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(SessionHeader, sessionID)

	var body bytes.Buffer
	req := domain.NewRequest(domain.SourceHTTP, &body)
	req.Method = r.Method
	req.Params = params

	model, err := s.app.Dispatch(r.Context(), name, sessionID, req)
	if err != nil {
		code := statusForError(err)
		if code >= http.StatusInternalServerError {
			s.logger.Error("Dispatch failed", "controller", name, "session_id", sessionID, "err", err)
		}
		http.Error(w, err.Error(), code)
		return
	}

	if model.Location != "" {
		w.Header().Set("Location", model.Location)
	}
	if body.Len() > 0 {
		w.Header().Set("Content-Type", http.DetectContentType(body.Bytes()))
	}
	w.WriteHeader(model.StatusCode())
	w.Write(body.Bytes())
}

// ListControllers handles GET /controllers.
func (s *Server) ListControllers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.app.Controllers()); err != nil {
		s.logger.Error("ListControllers: encode failed", "err", err)
	}
}

func sessionFromRequest(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, site.ErrUnknownController):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSessionID):
		return http.StatusBadRequest
	case errors.Is(err, mvc.ErrForwardDepthExceeded):
		return http.StatusLoopDetected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
