// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz           liveness and build information
//	GET  /v1/items/sample   deterministic placeholder items (?start=&n=)
//	POST /v1/layout         lay out items and render artifacts
//
// A layout request carries the items and, optionally, pipeline options that
// override the server's defaults:
//
//	{"items": [{"id": "a", "height": 240}], "options": {"viewport_width": 800}}
//
// With a single requested format (?format=svg, or one entry in
// options.formats) the artifact is written as the response body with its
// content type. Otherwise the response is a JSON envelope holding every
// artifact.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/masonry/pkg/buildinfo"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/observability"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	// MaxBodyBytes bounds layout request bodies.
	MaxBodyBytes = 16 << 20

	// MaxSample bounds the sample endpoint.
	MaxSample = 1000

	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Server serves the layout API.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger

	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithTimeouts sets the HTTP read and write timeouts. Zero keeps a default.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
	}
}

// New returns a server running layouts through runner. Request options are
// decoded over defaults.
func New(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:       runner,
		defaults:     defaults,
		logger:       logger,
		addr:         DefaultAddr,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.writeTimeout))
		r.Get("/items/sample", s.handleSample)
		r.Post("/layout", s.handleLayout)
	})
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	start, err := queryInt(r, "start", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := queryInt(r, "n", 20)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if n > MaxSample {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "n must be at most %d", MaxSample))
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatJSON])
	w.WriteHeader(http.StatusOK)
	_ = io.WriteJSON(io.Sample(start, n), w)
}

type layoutRequest struct {
	Items   json.RawMessage `json:"items"`
	Options json.RawMessage `json:"options,omitempty"`
}

type layoutResponse struct {
	ID        string            `json:"id"`
	ItemsHash string            `json:"items_hash"`
	Columns   int               `json:"columns"`
	Placed    int               `json:"placed"`
	Ready     bool              `json:"ready"`
	Cache     cacheInfo         `json:"cache"`
	Artifacts map[string]string `json:"artifacts"`
}

type cacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if len(req.Items) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "items are required"))
		return
	}
	items, err := io.DecodeJSON(req.Items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := s.requestOptions(r, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), items, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if len(opts.Formats) == 1 {
		format := opts.Formats[0]
		w.Header().Set("Content-Type", pipeline.ContentTypes[format])
		w.Header().Set("X-Layout-ID", result.Layout.ID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[format])
		return
	}

	resp := layoutResponse{
		ID:        result.Layout.ID,
		ItemsHash: result.ItemsHash,
		Columns:   len(result.Layout.Columns),
		Placed:    result.Layout.Cursor,
		Ready:     result.Layout.Ready,
		Cache:     cacheInfo{LayoutHit: result.CacheInfo.LayoutHit, RenderHit: result.CacheInfo.RenderHit},
		Artifacts: make(map[string]string, len(result.Artifacts)),
	}
	for f, data := range result.Artifacts {
		resp.Artifacts[f] = string(data)
	}
	writeJSON(w, http.StatusOK, resp)
}

// requestOptions decodes request options over the server defaults and
// applies query overrides.
func (s *Server) requestOptions(r *http.Request, raw json.RawMessage) (pipeline.Options, error) {
	opts := s.defaults.Clone()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidOptions, err, "decode options")
		}
	}
	q := r.URL.Query()
	if fs := q["format"]; len(fs) > 0 {
		opts.Formats = fs
	}
	if v := q.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = refresh
	}
	opts.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// =============================================================================
// Helpers
// =============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusCode maps an error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	reqID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", reqID, "err", err)
	} else {
		s.logger.Debug("request rejected", "request_id", reqID, "err", err)
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: string(errors.GetCode(err)), RequestID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatJSON])
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a non-negative integer, got %q", name, v)
	}
	return n, nil
}

// logRequests logs each request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", dur)
	})
}
