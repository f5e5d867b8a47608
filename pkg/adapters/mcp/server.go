// Package mcp exposes a validator to AI agents over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/jsonval"
	"github.com/aretw0/jsonval/internal/config"
	"github.com/aretw0/jsonval/internal/logging"
	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Validator is the part of *jsonval.Validator the server needs.
type Validator interface {
	Options() jsonval.CallOptions
	ValidateWith(ctx context.Context, schema tree.Schema, instance value.Value, opts jsonval.CallOptions) (*report.Report, error)
	ResolveSchema(ctx context.Context, uri string) (tree.Schema, error)
	Keywords() []string
}

// ValidateResult is the structured output of the validate_document tool.
type ValidateResult struct {
	Valid    bool      `json:"valid" jsonschema_description:"True when no message reached the error level"`
	Aborted  bool      `json:"aborted" jsonschema_description:"True when validation stopped early; messages then hold the cause only"`
	Level    string    `json:"level" jsonschema_description:"Highest level logged during validation"`
	Messages []Message `json:"messages" jsonschema_description:"Recorded report messages in visit order"`
}

// Message is one report entry as seen by MCP clients.
type Message struct {
	Level   string `json:"level"`
	Domain  string `json:"domain"`
	Keyword string `json:"keyword,omitempty"`
	Message string `json:"message"`
	Pointer string `json:"pointer" jsonschema_description:"JSON pointer into the instance"`
	Schema  string `json:"schema" jsonschema_description:"Location of the schema fragment"`
}

// Server wraps a Validator and exposes it as an MCP Server.
type Server struct {
	validator Validator
	store     ports.SchemaStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

// WithStore publishes the stored schemas as a resource.
func WithStore(s ports.SchemaStore) Option {
	return func(srv *Server) { srv.store = s }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) { srv.logger = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(v Validator, opts ...Option) *Server {
	s := &Server{
		validator: v,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("jsonval-mcp", strings.TrimSpace(jsonval.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx
// is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: validate_document
	validateTool := mcp.NewTool("validate_document",
		mcp.WithDescription("Validate a JSON instance against a JSON Schema (draft v4) and return the leveled report."),
		mcp.WithString("instance", mcp.Required(), mcp.Description("The JSON instance, as JSON text")),
		mcp.WithString("schema", mcp.Description("The schema, as JSON text (mutually exclusive with schema_uri)")),
		mcp.WithString("schema_uri", mcp.Description("URI of a stored schema, optionally with a #/pointer fragment")),
		mcp.WithBoolean("deep_check", mcp.Description("Keep validating below nodes that already failed")),
		mcp.WithString("log_level", mcp.Description("Lowest level recorded: debug, info, warning, error, fatal or none")),
		mcp.WithOutputSchema[ValidateResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: list_keywords
	s.mcpServer.AddTool(mcp.NewTool("list_keywords",
		mcp.WithDescription("List the schema keywords this validator understands."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.validator.Keywords())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResult, error) {
	instanceText, _ := args["instance"].(string)
	instance, err := value.ParseJSON([]byte(instanceText))
	if err != nil {
		return ValidateResult{}, fmt.Errorf("invalid instance: %w", err)
	}

	overrides := map[string]any{}
	for _, key := range []string{"deep_check", "log_level"} {
		if v, ok := args[key]; ok {
			overrides[key] = v
		}
	}
	opts, err := config.CallOptions(overrides, s.validator.Options())
	if err != nil {
		return ValidateResult{}, fmt.Errorf("invalid options: %w", err)
	}

	schema, err := s.schema(ctx, args)
	if err != nil {
		return ValidateResult{}, err
	}

	rep, err := s.validator.ValidateWith(ctx, schema, instance, opts)
	var abort *report.AbortError
	if err != nil && !errors.As(err, &abort) {
		return ValidateResult{}, fmt.Errorf("validation failed: %w", err)
	}
	if abort != nil {
		s.logger.Warn("MCP Validate: aborted", "error", err)
	}
	return toResult(rep, abort != nil), nil
}

func (s *Server) schema(ctx context.Context, args map[string]interface{}) (tree.Schema, error) {
	text, _ := args["schema"].(string)
	uri, _ := args["schema_uri"].(string)
	switch {
	case text != "" && uri != "":
		return tree.Schema{}, errors.New("schema and schema_uri are mutually exclusive")
	case text != "":
		doc, err := value.ParseJSON([]byte(text))
		if err != nil {
			return tree.Schema{}, fmt.Errorf("invalid schema: %w", err)
		}
		return tree.NewSchema("urn:jsonval:inline", doc)
	case uri != "":
		sc, err := s.validator.ResolveSchema(ctx, uri)
		if err != nil {
			return tree.Schema{}, fmt.Errorf("cannot load schema: %w", err)
		}
		return sc, nil
	default:
		return tree.Schema{}, errors.New("one of schema or schema_uri is required")
	}
}

func toResult(rep *report.Report, aborted bool) ValidateResult {
	res := ValidateResult{
		Valid:    rep.IsSuccess() && !aborted,
		Aborted:  aborted,
		Level:    rep.CurrentLevel().String(),
		Messages: []Message{},
	}
	for _, m := range rep.Messages() {
		res.Messages = append(res.Messages, Message{
			Level:   m.Level.String(),
			Domain:  string(m.Domain),
			Keyword: m.Keyword,
			Message: m.Text,
			Pointer: string(m.Pointer),
			Schema:  m.Schema,
		})
	}
	return res
}

func (s *Server) registerResources() {
	// EXPOSE: jsonval://keywords
	s.mcpServer.AddResource(mcp.NewResource("jsonval://keywords", "Supported Schema Keywords",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(s.validator.Keywords())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "jsonval://keywords",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	if s.store == nil {
		return
	}
	// EXPOSE: jsonval://schemas
	s.mcpServer.AddResource(mcp.NewResource("jsonval://schemas", "Stored Schemas",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uris, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list schemas: %w", err)
		}
		jsonBytes, _ := json.Marshal(uris)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "jsonval://schemas",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
