package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/vali"
	"github.com/aretw0/vali/pkg/domain"
	"github.com/aretw0/vali/pkg/ports"
	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

// MaxBodySize caps request bodies (definitions and payloads).
const MaxBodySize = 4 << 20

// Engine defines what the HTTP adapter needs from the vali engine.
type Engine interface {
	Scheme(ctx context.Context, name string) (*schema.Scheme, error)
	Definition(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
	Put(ctx context.Context, name string, definition []byte) (*schema.Scheme, error)
	Delete(ctx context.Context, name string) error
	Validate(ctx context.Context, name string, data any, opts ...validator.Option) (*validator.Result, error)
}

var _ Engine = (*vali.Engine)(nil)

// Server serves the engine over HTTP.
type Server struct {
	Engine  Engine
	Logger  *slog.Logger
	Metrics http.Handler
}

// HandlerOption configures the handler.
type HandlerOption func(*Server)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) HandlerOption {
	return func(s *Server) {
		s.Metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
//
//	GET    /health
//	GET    /info
//	GET    /schemes
//	GET    /schemes/{name}
//	PUT    /schemes/{name}
//	DELETE /schemes/{name}
//	POST   /schemes/{name}/validate?strict=true&changes=true
//	GET    /metrics (when configured)
func NewHandler(engine Engine, opts ...HandlerOption) http.Handler {
	server := &Server{
		Engine: engine,
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Route("/schemes", func(r chi.Router) {
		r.Get("/", server.ListSchemes)
		r.Get("/{name}", server.GetScheme)
		r.Put("/{name}", server.PutScheme)
		r.Delete("/{name}", server.DeleteScheme)
		r.Post("/{name}/validate", server.Validate)
	})
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ValidateResponse is the body of POST /schemes/{name}/validate.
type ValidateResponse struct {
	validator.Result
	Valid   bool            `json:"valid"`
	Changes []domain.Change `json:"changes,omitempty"`
}

// SchemeResponse is the body of PUT /schemes/{name}.
type SchemeResponse struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "vali-http",
		"version": vali.Version,
	})
}

// ListSchemes handles the GET /schemes request.
func (s *Server) ListSchemes(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"schemes": names})
}

// GetScheme handles the GET /schemes/{name} request, returning the stored
// definition as is.
func (s *Server) GetScheme(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Definition(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write(def); err != nil {
		s.Logger.Error("GetScheme response write failed", "err", err)
	}
}

// PutScheme handles the PUT /schemes/{name} request. The body is a YAML or
// JSON definition; it is rejected with 400 if it does not parse.
func (s *Server) PutScheme(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		s.Logger.Warn("PutScheme: Invalid request body", "err", err)
		return
	}
	sch, err := s.Engine.Put(r.Context(), name, def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fields := make([]string, 0, sch.Len())
	for _, f := range sch.Fields() {
		fields = append(fields, f.Name)
	}
	s.writeJSON(w, http.StatusOK, SchemeResponse{Name: name, Fields: fields})
}

// DeleteScheme handles the DELETE /schemes/{name} request.
func (s *Server) DeleteScheme(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles the POST /schemes/{name}/validate request. A payload
// that fails validation is answered with 422 and the result envelope.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var data any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		s.Logger.Warn("Validate: Invalid request body", "scheme", name, "err", err)
		return
	}

	var opts []validator.Option
	query := r.URL.Query()
	if v := query.Get("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid strict parameter"})
			return
		}
		opts = append(opts, validator.WithUnknown(!strict))
	}
	if prefix := query.Get("error_prefix"); prefix != "" {
		opts = append(opts, validator.WithErrorPrefix(prefix))
	}

	res, err := s.Engine.Validate(r.Context(), name, data, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := ValidateResponse{Result: *res, Valid: res.OK()}
	if changes, _ := strconv.ParseBool(query.Get("changes")); changes && res.OK() {
		resp.Changes = domain.Diff(schema.Normalize(data), res.Data)
	}
	status := http.StatusOK
	if !res.OK() {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, resp)
}

// writeError maps engine errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrSchemeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ports.ErrInvalidName), errors.Is(err, schema.ErrInvalidUsage):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.Logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
