package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mktpassos/audiodescricao-app"
	"github.com/mktpassos/audiodescricao-app/internal/config"
	"github.com/mktpassos/audiodescricao-app/internal/metrics"
)

// Paths the describe operation is served on. The last two are what the
// first web and mobile builds called.
var describePaths = []string{
	"/v1/describe",
	"/descrever-imagem",
	"/api/descrever-imagem",
}

type Server struct {
	hs      *http.Server
	svc     *audiodescricao.Service
	metrics *metrics.Metrics
	logger  zerolog.Logger

	maxBodyBytes   int64
	allowedOrigins []string
}

type describeMeta struct {
	Model    string `json:"model,omitempty"`
	Language string `json:"language"`
	Mode     string `json:"mode"`
}

type describeResponse struct {
	OK          bool         `json:"ok"`
	Description string       `json:"description"`
	Meta        describeMeta `json:"meta"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	OK    bool      `json:"ok"`
	Error errorBody `json:"error"`
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend"`
	Model   string `json:"model"`
	Healthy *bool  `json:"healthy,omitempty"`
}

func NewServer(svc *audiodescricao.Service, m *metrics.Metrics, cfg *config.Config, logger zerolog.Logger) *Server {
	srv := &Server{
		svc:            svc,
		metrics:        m,
		logger:         logger,
		maxBodyBytes:   cfg.MaxBodyBytes,
		allowedOrigins: cfg.CORSAllowedOrigins,
	}

	srv.hs = &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", cfg.Port),
		Handler:           srv.serveHandler(),
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	return srv
}

func (s *Server) Start() error {
	return s.hs.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}

func (s *Server) serveHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestID,
		middleware.RealIP,
		s.logRequests,
		s.recoverPanics,
		s.cors,
	)

	r.NotFound(s.serveError(http.StatusNotFound, "route not found"))
	r.MethodNotAllowed(s.serveError(http.StatusMethodNotAllowed, "method not allowed, use POST"))

	r.Get("/", s.serveRoot())
	r.Get("/healthz", s.serveHealth())
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	for _, p := range describePaths {
		r.Post(p, s.serveDescribe())
	}

	return r
}

func (s *Server) serveDescribe() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(req.Context())

		res, err := s.describe(w, req)
		if err != nil {
			e := audiodescricao.AsError(err)
			s.metrics.ObserveDescribe(s.svc.Name(), string(e.Kind), time.Since(start))

			ev := log.Warn()
			if e.HTTPStatus() >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Err(err).Str("kind", string(e.Kind)).Msg("describe failed")

			writeError(w, e)
			return
		}

		s.metrics.ObserveDescribe(s.svc.Name(), "ok", time.Since(start))
		log.Info().
			Str("language", res.Language).
			Str("mode", string(res.Verbosity)).
			Int("chars", len(res.Text)).
			Msg("described image")

		writeJSON(w, http.StatusOK, describeResponse{
			OK:          true,
			Description: res.Text,
			Meta: describeMeta{
				Model:    res.Model,
				Language: res.Language,
				Mode:     string(res.Verbosity),
			},
		})
	}
}

func (s *Server) describe(w http.ResponseWriter, req *http.Request) (*audiodescricao.DescriptionResult, error) {
	req.Body = http.MaxBytesReader(w, req.Body, s.maxBodyBytes)

	var raw map[string]any
	if err := json.NewDecoder(req.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, audiodescricao.NewError(audiodescricao.KindBodyTooLarge, "request body is too large", err)
		}
		return nil, audiodescricao.NewError(audiodescricao.KindInvalidBody, "request body must be a JSON object", err)
	}

	dr, err := s.svc.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return s.svc.Describe(req.Context(), dr)
}

func (s *Server) serveRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			OK:      true,
			Backend: s.svc.Name(),
			Model:   s.svc.Model(),
		})
	}
}

func (s *Server) serveHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()

		healthy := s.svc.Validate() == nil && s.svc.IsHealthy(ctx)
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, healthResponse{
			OK:      healthy,
			Backend: s.svc.Name(),
			Model:   s.svc.Model(),
			Healthy: &healthy,
		})
	}
}

func (s *Server) serveError(status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, status, errorResponse{
			Error: errorBody{Code: strconv.Itoa(status), Message: msg},
		})
	}
}

func writeError(w http.ResponseWriter, e *audiodescricao.Error) {
	writeJSON(w, e.HTTPStatus(), errorResponse{
		Error: errorBody{Code: e.Code(), Message: e.Message},
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
