// Package mcp exposes a humdrum application as a Model Context Protocol server.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/humdrum/internal/logging"
	"github.com/aretw0/humdrum/internal/sanitize"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/site"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SiteURI is the resource holding the site definition.
const SiteURI = "humdrum://site"

// App is what the server needs from a humdrum application.
type App interface {
	Dispatch(ctx context.Context, controller, sessionID string, req *domain.Request) (*domain.Model, error)
	Controllers() []string
	Definition() *site.Definition
}

// DispatchResponse is the structured result of the dispatch tool.
type DispatchResponse struct {
	SessionID string         `json:"session_id" jsonschema_description:"Session the dispatch ran in"`
	Output    string         `json:"output" jsonschema_description:"Everything the rendered view wrote"`
	Status    int            `json:"status" jsonschema_description:"Response status hint set by views"`
	Location  string         `json:"location,omitempty" jsonschema_description:"Redirect target set by views"`
	Model     map[string]any `json:"model" jsonschema_description:"Session model after the dispatch"`
}

// Server exposes an App as MCP tools and resources.
type Server struct {
	app       App
	mcpServer *server.MCPServer
	sanitizer *sanitize.Sanitizer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server named "humdrum" at version.
func NewServer(app App, version string, opts ...Option) *Server {
	s := &Server{
		app:       app,
		sanitizer: sanitize.New(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("humdrum", version,
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, true),
			server.WithRecovery(),
			server.WithInstructions("Run humdrum controllers with the dispatch tool. Reuse session_id to keep the model between calls."),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

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
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	dispatchTool := mcp.NewTool("dispatch",
		mcp.WithDescription("Run a controller with the given params and return what its view rendered."),
		mcp.WithString("controller", mcp.Required(), mcp.Description("Controller name")),
		mcp.WithString("params", mcp.Description("JSON object of request params (optional)")),
		mcp.WithString("session_id", mcp.Description("Session to dispatch in; a new one is created when omitted")),
		mcp.WithOutputSchema[DispatchResponse](),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("list_controllers",
		mcp.WithDescription("List the controllers of the site."),
	), s.handleListControllers)
}

func (s *Server) handleDispatch(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (DispatchResponse, error) {
	name, _ := args["controller"].(string)
	if name == "" {
		return DispatchResponse{}, errors.New("controller is required")
	}
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	raw, err := decodeParams(args["params"])
	if err != nil {
		return DispatchResponse{}, err
	}
	params, err := s.sanitizer.Map(raw)
	if err != nil {
		s.logger.Warn("MCP Dispatch: input rejected", "controller", name, "err", err)
		return DispatchResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	var out bytes.Buffer
	req := domain.NewRequest(domain.SourceMCP, &out)
	req.Params = params

	model, err := s.app.Dispatch(ctx, name, sessionID, req)
	if err != nil {
		return DispatchResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}

	return DispatchResponse{
		SessionID: sessionID,
		Output:    out.String(),
		Status:    model.StatusCode(),
		Location:  model.Location,
		Model:     model.Data,
	}, nil
}

func (s *Server) handleListControllers(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.app.Controllers())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SiteURI, "Site Definition",
		mcp.WithMIMEType("application/json"),
	), s.handleReadSite)
}

func (s *Server) handleReadSite(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.app.Definition())
	if err != nil {
		return nil, fmt.Errorf("failed to encode site: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SiteURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// decodeParams accepts a JSON object string or an object and flattens the
// values to strings.
func decodeParams(v any) (map[string]string, error) {
	var obj map[string]any
	switch p := v.(type) {
	case nil:
		return map[string]string{}, nil
	case string:
		if p == "" {
			return map[string]string{}, nil
		}
		if err := json.Unmarshal([]byte(p), &obj); err != nil {
			return nil, fmt.Errorf("params must be a JSON object: %w", err)
		}
	case map[string]any:
		obj = p
	default:
		return nil, fmt.Errorf("params must be a JSON object, got %T", v)
	}

	out := make(map[string]string, len(obj))
	for k, val := range obj {
		switch tv := val.(type) {
		case string:
			out[k] = tv
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(tv)
		}
	}
	return out, nil
}
