package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ventanita/internal/archive"
	"ventanita/internal/blocks"
	"ventanita/internal/logger"
	"ventanita/internal/metrics"
	"ventanita/internal/service"
)

// History returns archived structured data of a page.
type History interface {
	History(ctx context.Context, pageID string, limit int) ([]archive.Record, error)
}

// Server is the MCP server of the CMS. It exposes authoring tools, page
// resources and prompts so agents can edit and publish content.
type Server struct {
	mcp *server.MCPServer

	pages    *service.PageService
	content  *service.ContentService
	media    *service.MediaService
	registry *blocks.Registry
	history  History
	metrics  *metrics.Collector
	log      *logger.Logger
}

// Deps holds all dependencies passed from the app layer to the MCP server.
type Deps struct {
	Pages    *service.PageService
	Content  *service.ContentService
	Media    *service.MediaService
	Registry *blocks.Registry
	History  History // nil when the archive is disabled
	Metrics  *metrics.Collector
	Log      *logger.Logger
	Version  string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		pages:    deps.Pages,
		content:  deps.Content,
		media:    deps.Media,
		registry: deps.Registry,
		history:  deps.History,
		metrics:  deps.Metrics,
		log:      deps.Log,
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s.mcp = server.NewMCPServer(
		"ventanita",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerPageTools()
	s.registerContentTools()
	s.registerMediaTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.log.Info("mcp stdio server starting")
	return server.ServeStdio(s.mcp)
}

// HTTPHandler serves MCP over streamable HTTP at path.
func (s *Server) HTTPHandler(path string) http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(path))
}

// ── Helpers ────────────────────────────────────────────────

// addTool registers a tool and records its outcome.
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	name := tool.Name
	s.mcp.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := handler(ctx, req)
		failed := err != nil || (res != nil && res.IsError)
		s.metrics.ToolCalled(name, failed)
		if err != nil {
			s.log.Warn("tool failed", "tool", name, "error", err)
		}
		return res, err
	})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// userError turns content problems into a tool error the agent can act on.
// Anything else is returned as a protocol error.
func userError(err error) (*mcp.CallToolResult, error) {
	var ve *blocks.ValidationError
	if errors.As(err, &ve) {
		lines := make([]string, 0, len(ve.Errors)+1)
		lines = append(lines, "Validation failed:")
		for _, fe := range ve.Errors {
			lines = append(lines, "- "+fe.String())
		}
		return mcp.NewToolResultError(strings.Join(lines, "\n")), nil
	}
	if errors.Is(err, service.ErrInvalidPage) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func requireString(req mcp.CallToolRequest, key string) (string, error) {
	v := strings.TrimSpace(req.GetString(key, ""))
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
