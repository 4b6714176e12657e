package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerMediaTools() {
	// ── create_image ───────────────────────────────────
	s.addTool(mcp.NewTool("create_image",
		mcp.WithDescription("Register an uploaded image so pages and blocks can reference it"),
		mcp.WithString("title", mcp.Description("Image title, used as alt text"), mcp.Required()),
		mcp.WithString("file", mcp.Description("URL path of the file, e.g. /media/images/bus.jpg"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Width in pixels")),
		mcp.WithNumber("height", mcp.Description("Height in pixels")),
	), s.handleCreateImage)

	// ── create_document ────────────────────────────────
	s.addTool(mcp.NewTool("create_document",
		mcp.WithDescription("Register an uploaded document (PDF, spreadsheet) for document links"),
		mcp.WithString("title", mcp.Description("Document title"), mcp.Required()),
		mcp.WithString("file", mcp.Description("URL path of the file, e.g. /documents/horarios.pdf"), mcp.Required()),
		mcp.WithNumber("size", mcp.Description("File size in bytes")),
	), s.handleCreateDocument)
}

func (s *Server) handleCreateImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := requireString(req, "title")
	if err != nil {
		return nil, err
	}
	img, err := s.media.CreateImage(ctx, title, req.GetString("file", ""), req.GetInt("width", 0), req.GetInt("height", 0))
	if err != nil {
		return userError(err)
	}
	return jsonResult(img)
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := requireString(req, "title")
	if err != nil {
		return nil, err
	}
	doc, err := s.media.CreateDocument(ctx, title, req.GetString("file", ""), int64(req.GetFloat("size", 0)))
	if err != nil {
		return userError(err)
	}
	return jsonResult(doc)
}
