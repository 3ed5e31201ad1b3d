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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/vali"
	"github.com/aretw0/vali/pkg/domain"
	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

// SchemesURI is the resource listing the stored scheme names.
const SchemesURI = "vali://schemes"

// ValidateResponse is the structured output of the validate tool.
type ValidateResponse struct {
	Valid         bool              `json:"valid" jsonschema_description:"Whether the data satisfies the scheme"`
	Data          any               `json:"data,omitempty" jsonschema_description:"The normalized data when valid"`
	Error         string            `json:"error,omitempty" jsonschema_description:"The first failure message"`
	InvalidFields map[string]string `json:"invalid_fields,omitempty" jsonschema_description:"Failing field path to message"`
	Changes       []domain.Change   `json:"changes,omitempty" jsonschema_description:"What normalization changed in the input"`
}

// SchemesResponse is the structured output of the list_schemes tool.
type SchemesResponse struct {
	Schemes []string `json:"schemes" jsonschema_description:"Stored scheme names, sorted"`
}

// DescribeResponse is the structured output of the describe_scheme tool.
type DescribeResponse struct {
	Name       string `json:"name"`
	Definition string `json:"definition" jsonschema_description:"The scheme as a YAML definition"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	Scheme(ctx context.Context, name string) (*schema.Scheme, error)
	List(ctx context.Context) ([]string, error)
	Validate(ctx context.Context, name string, data any, opts ...validator.Option) (*validator.Result, error)
}

// Server exposes a vali Engine as an MCP server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("vali-mcp", strings.TrimSpace(vali.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and blocks until
// ctx is cancelled or the listener fails.
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: validate
	validateTool := mcp.NewTool("validate",
		mcp.WithDescription("Validate and normalize JSON data against a stored scheme."),
		mcp.WithString("scheme", mcp.Required(), mcp.Description("Name of the stored scheme")),
		mcp.WithString("data", mcp.Required(), mcp.Description("JSON document to validate")),
		mcp.WithBoolean("strict", mcp.Description("Reject attributes the scheme does not declare")),
		mcp.WithBoolean("changes", mcp.Description("Report what normalization changed")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: list_schemes
	listTool := mcp.NewTool("list_schemes",
		mcp.WithDescription("List the names of the stored schemes."),
		mcp.WithOutputSchema[SchemesResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListSchemes))

	// TOOL: describe_scheme
	describeTool := mcp.NewTool("describe_scheme",
		mcp.WithDescription("Get the definition of a stored scheme."),
		mcp.WithString("scheme", mcp.Required(), mcp.Description("Name of the stored scheme")),
		mcp.WithOutputSchema[DescribeResponse](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribeScheme))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ValidateResponse, error) {
	name, _ := args["scheme"].(string)
	if name == "" {
		return ValidateResponse{}, fmt.Errorf("scheme is required")
	}

	data := args["data"]
	if raw, ok := data.(string); ok {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			s.logger.Warn("MCP Validate: data rejected", "scheme", name, "err", err)
			return ValidateResponse{}, fmt.Errorf("data is not valid JSON: %w", err)
		}
	}

	var opts []validator.Option
	if strict, ok := args["strict"].(bool); ok {
		opts = append(opts, validator.WithUnknown(!strict))
	}

	res, err := s.engine.Validate(ctx, name, data, opts...)
	if err != nil {
		return ValidateResponse{}, fmt.Errorf("validate failed: %w", err)
	}

	resp := ValidateResponse{
		Valid:         res.OK(),
		Data:          res.Data,
		Error:         res.Error,
		InvalidFields: res.InvalidFields,
	}
	if changes, _ := args["changes"].(bool); changes && res.OK() {
		resp.Changes = domain.Diff(schema.Normalize(data), res.Data)
	}
	return resp, nil
}

func (s *Server) handleListSchemes(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SchemesResponse, error) {
	names, err := s.engine.List(ctx)
	if err != nil {
		return SchemesResponse{}, fmt.Errorf("list failed: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return SchemesResponse{Schemes: names}, nil
}

func (s *Server) handleDescribeScheme(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (DescribeResponse, error) {
	name, _ := args["scheme"].(string)
	sch, err := s.engine.Scheme(ctx, name)
	if err != nil {
		return DescribeResponse{}, fmt.Errorf("describe failed: %w", err)
	}
	out, err := yaml.Marshal(sch)
	if err != nil {
		return DescribeResponse{}, fmt.Errorf("describe failed: %w", err)
	}
	return DescribeResponse{Name: name, Definition: string(out)}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: vali://schemes
	s.mcpServer.AddResource(mcp.NewResource(SchemesURI, "Stored Schemes",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.engine.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list schemes: %w", err)
		}
		jsonBytes, _ := json.Marshal(SchemesResponse{Schemes: names})

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SchemesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
