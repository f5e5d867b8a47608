// Package http exposes a validator as a JSON web service.
//
//	POST   /validate         validate an instance against an inline or stored schema
//	GET    /keywords         list the supported keywords
//	GET    /schemas          list stored schemas (when a store is configured)
//	GET    /schemas?uri=...  fetch a stored schema
//	PUT    /schemas?uri=...  store a schema
//	DELETE /schemas?uri=...  remove a stored schema
//	GET    /health, /info    liveness and build information
//	GET    /metrics          Prometheus metrics (when a gatherer is configured)
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/jsonval"
	"github.com/aretw0/jsonval/internal/config"
	"github.com/aretw0/jsonval/internal/logging"
	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 8 << 20

// Validator is the part of *jsonval.Validator the service needs.
type Validator interface {
	Options() jsonval.CallOptions
	ValidateWith(ctx context.Context, schema tree.Schema, instance value.Value, opts jsonval.CallOptions) (*report.Report, error)
	ResolveSchema(ctx context.Context, uri string) (tree.Schema, error)
	Forget(uri string)
	Keywords() []string
}

var _ Validator = (*jsonval.Validator)(nil)

// Server holds the handlers' dependencies.
type Server struct {
	Validator Validator
	Store     ports.SchemaStore
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

type Option func(*Server)

// WithStore enables the /schemas routes.
func WithStore(s ports.SchemaStore) Option {
	return func(srv *Server) {
		srv.Store = s
	}
}

// WithGatherer enables /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(srv *Server) {
		srv.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		srv.Logger = l
	}
}

// NewHandler creates a new HTTP handler for the validator.
func NewHandler(v Validator, opts ...Option) http.Handler {
	server := &Server{Validator: v, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/keywords", server.GetKeywords)
	r.Post("/validate", server.Validate)

	if server.Store != nil {
		r.Get("/schemas", server.GetSchemas)
		r.Put("/schemas", server.PutSchema)
		r.Delete("/schemas", server.DeleteSchema)
	}
	if server.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
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

// ValidateRequest is the body of POST /validate. Exactly one of Schema and
// SchemaURI must be set.
type ValidateRequest struct {
	Schema    json.RawMessage `json:"schema,omitempty"`
	SchemaURI string          `json:"schema_uri,omitempty"`
	Instance  json.RawMessage `json:"instance"`
	Options   map[string]any  `json:"options,omitempty"`
}

// ValidateResponse is the body returned by POST /validate. Invalid instances
// are a successful request: Valid is false and Report says why.
type ValidateResponse struct {
	Valid   bool           `json:"valid"`
	Aborted bool           `json:"aborted,omitempty"`
	Error   string         `json:"error,omitempty"`
	Report  *report.Report `json:"report"`
}

// inlineLocator names schemas posted inline.
const inlineLocator = "urn:jsonval:inline"

// Validate handles the POST /validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body ValidateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodySize))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(body.Instance) == 0 {
		s.fail(w, http.StatusBadRequest, "Missing instance", nil)
		return
	}
	instance, err := value.ParseJSON(body.Instance)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "Invalid instance", err)
		return
	}
	opts, err := config.CallOptions(body.Options, s.Validator.Options())
	if err != nil {
		s.fail(w, http.StatusBadRequest, "Invalid options", err)
		return
	}

	schema, status, err := s.schema(r.Context(), body)
	if err != nil {
		s.fail(w, status, "Invalid schema", err)
		return
	}

	rep, err := s.Validator.ValidateWith(r.Context(), schema, instance, opts)
	resp := ValidateResponse{Report: rep}
	var abort *report.AbortError
	switch {
	case errors.As(err, &abort):
		resp.Aborted = true
		resp.Error = err.Error()
	case err != nil:
		s.fail(w, http.StatusInternalServerError, "Validation error", err)
		return
	default:
		resp.Valid = rep.IsSuccess()
	}
	s.Logger.Debug("Validate: done", "valid", resp.Valid, "aborted", resp.Aborted, "messages", rep.Len())
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) schema(ctx context.Context, body ValidateRequest) (tree.Schema, int, error) {
	switch {
	case len(body.Schema) > 0 && body.SchemaURI != "":
		return tree.Schema{}, http.StatusBadRequest, errors.New("schema and schema_uri are mutually exclusive")
	case len(body.Schema) > 0:
		doc, err := value.ParseJSON(body.Schema)
		if err != nil {
			return tree.Schema{}, http.StatusBadRequest, err
		}
		sc, err := tree.NewSchema(inlineLocator, doc)
		if err != nil {
			return tree.Schema{}, http.StatusBadRequest, err
		}
		return sc, 0, nil
	case body.SchemaURI != "":
		sc, err := s.Validator.ResolveSchema(ctx, body.SchemaURI)
		if errors.Is(err, ports.ErrNotFound) {
			return tree.Schema{}, http.StatusNotFound, err
		}
		if err != nil {
			return tree.Schema{}, http.StatusBadGateway, err
		}
		return sc, 0, nil
	default:
		return tree.Schema{}, http.StatusBadRequest, errors.New("one of schema or schema_uri is required")
	}
}

// GetKeywords handles the GET /keywords request.
func (s *Server) GetKeywords(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"keywords": s.Validator.Keywords()})
}

// GetSchemas lists stored schemas, or returns one when ?uri= is given.
func (s *Server) GetSchemas(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		uris, err := s.Store.List(r.Context())
		if err != nil {
			s.fail(w, http.StatusBadGateway, "List error", err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string][]string{"schemas": uris})
		return
	}

	doc, err := s.Store.Resolve(r.Context(), uri)
	if errors.Is(err, ports.ErrNotFound) {
		s.fail(w, http.StatusNotFound, "Schema not found", err)
		return
	}
	if err != nil {
		s.fail(w, http.StatusBadGateway, "Resolve error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// PutSchema handles the PUT /schemas?uri= request.
func (s *Server) PutSchema(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" || strings.Contains(uri, "#") {
		s.fail(w, http.StatusBadRequest, "A uri without fragment is required", nil)
		return
	}
	doc, err := value.ReadJSON(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "Invalid schema document", err)
		return
	}
	if err := s.Store.Put(r.Context(), uri, doc); err != nil {
		s.fail(w, http.StatusBadGateway, "Store error", err)
		return
	}
	s.Validator.Forget(uri)
	s.Logger.Info("Schema stored", "uri", uri)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSchema handles the DELETE /schemas?uri= request.
func (s *Server) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		s.fail(w, http.StatusBadRequest, "A uri is required", nil)
		return
	}
	if err := s.Store.Delete(r.Context(), uri); err != nil {
		s.fail(w, http.StatusBadGateway, "Store error", err)
		return
	}
	s.Validator.Forget(uri)
	s.Logger.Info("Schema deleted", "uri", uri)
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "jsonval-http",
		"version": strings.TrimSpace(jsonval.Version),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Logger.Error("Response encode failed", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	text := msg
	if err != nil {
		text = fmt.Sprintf("%s: %v", msg, err)
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error(msg, "error", err)
	} else {
		s.Logger.Warn(msg, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": text})
}
