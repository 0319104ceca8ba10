package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/miqbot/obs-subtitles/pkg/control"
	"github.com/miqbot/obs-subtitles/pkg/subtitle"
)

// maxBodyBytes bounds a submission body. MaxTextChars runes of UTF-8
// plus JSON framing fit comfortably.
const maxBodyBytes = 16 << 10

// Submitter accepts subtitle text. *subtitle.Scheduler satisfies it.
type Submitter interface {
	Submit(ctx context.Context, text string) (subtitle.Result, error)
}

// ReadyChecker reports channel health. *control.Client satisfies it.
type ReadyChecker interface {
	Ready() bool
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Addr string

	// AllowedOrigins for CORS (default: all).
	AllowedOrigins []string

	// Logger is the optional request logger. If nil, logging is disabled.
	Logger *slog.Logger

	// OnFatal is called when a submission fails with an error that
	// leaves the control channel dead.
	OnFatal func(error)
}

// Server is the HTTP facade in front of the scheduler.
type Server struct {
	config    ServerConfig
	subtitles Submitter
	channel   ReadyChecker
	router    *mux.Router
	server    *http.Server
}

// NewServer creates a server. Nothing listens until Serve.
func NewServer(cfg ServerConfig, subtitles Submitter, channel ReadyChecker) *Server {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		config:    cfg,
		subtitles: subtitles,
		channel:   channel,
		router:    mux.NewRouter(),
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/v1/subtitle", s.handleSubtitle).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	if err := s.server.Serve(l); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type subtitleRequest struct {
	Text string `json:"text"`
}

type subtitleResponse struct {
	OK           bool    `json:"ok"`
	RequestID    string  `json:"request_id"`
	Wrapped      string  `json:"wrapped"`
	VisibleChars int     `json:"visible_chars"`
	ShowSeconds  float64 `json:"show_s"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}

// handleSubtitle displays a subtitle.
func (s *Server) handleSubtitle(w http.ResponseWriter, r *http.Request) {
	var req subtitleRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "invalid JSON body: " + err.Error(),
			Kind:  control.KindValidation.String(),
		})
		return
	}

	res, err := s.subtitles.Submit(r.Context(), req.Text)
	if err != nil {
		status := statusFor(err)
		writeJSON(w, status, errorResponse{
			Error: err.Error(),
			Kind:  kindName(err, status),
		})
		if control.IsFatal(err) && s.config.OnFatal != nil {
			s.config.OnFatal(err)
		}
		return
	}

	writeJSON(w, http.StatusOK, subtitleResponse{
		OK:           true,
		RequestID:    res.RequestID,
		Wrapped:      res.Wrapped,
		VisibleChars: res.VisibleChars,
		ShowSeconds:  res.ShowSeconds,
	})
}

// handleHealth reports whether the control channel is ready.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: s.channel.Ready()})
}

// statusFor maps a submission error to an HTTP status.
func statusFor(err error) int {
	switch control.KindOf(err) {
	case control.KindValidation:
		return http.StatusBadRequest
	case control.KindRequest:
		return http.StatusBadGateway
	case control.KindProtocol, control.KindTransport:
		return http.StatusServiceUnavailable
	}

	switch {
	case errors.Is(err, control.ErrNotReady),
		errors.Is(err, control.ErrClosed),
		errors.Is(err, subtitle.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// kindName names the failure category reported to clients.
func kindName(err error, status int) string {
	if k := control.KindOf(err); k != control.KindUnknown {
		return k.String()
	}
	if status == http.StatusServiceUnavailable {
		return "UNAVAILABLE"
	}
	return control.KindUnknown.String()
}

// loggingMiddleware logs each request with its status and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Logger == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.config.Logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", wrapped.statusCode,
			"duration", time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSON writes a JSON response with the given status code.
// The body is encoded before the header is sent so an unencodable value
// yields a 500 rather than a 200 with an empty body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{
			Error: "encoding response: " + err.Error(),
			Kind:  control.KindUnknown.String(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}
