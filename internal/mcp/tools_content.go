package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"ventanita/internal/blocks"
)

func (s *Server) registerContentTools() {
	// ── validate_stream ────────────────────────────────
	s.addTool(mcp.NewTool("validate_stream",
		mcp.WithDescription("Validate stream JSON against a stream declaration without saving it. "+
			"Returns the canonical stream or every field error with its path."),
		mcp.WithString("stream", mcp.Description("Stream name (see list_block_types)"), mcp.Required()),
		mcp.WithString("data", mcp.Description("JSON list of {type, value} blocks"), mcp.Required()),
	), s.handleValidateStream)

	// ── list_block_types ───────────────────────────────
	s.addTool(mcp.NewTool("list_block_types",
		mcp.WithDescription("Describe block types and stream declarations. Without arguments lists all names."),
		mcp.WithString("type", mcp.Description("Block type key to describe")),
		mcp.WithString("stream", mcp.Description("Stream name to describe")),
	), s.handleListBlockTypes)

	// ── get_structured_data ────────────────────────────
	s.addTool(mcp.NewTool("get_structured_data",
		mcp.WithDescription("Get the schema.org JSON-LD document embedded in a page"),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithBoolean("preview", mcp.Description("Use the latest draft")),
	), s.handleGetStructuredData)

	// ── render_blocks ──────────────────────────────────
	s.addTool(mcp.NewTool("render_blocks",
		mcp.WithDescription("Render one stream field of a page into template fragments with links and ratings resolved"),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithString("field", mcp.Description("Stream field, e.g. body, faq, links"), mcp.Required()),
		mcp.WithBoolean("preview", mcp.Description("Use the latest draft")),
	), s.handleRenderBlocks)

	// ── page_markdown ──────────────────────────────────
	s.addTool(mcp.NewTool("page_markdown",
		mcp.WithDescription("Export the body of a page as markdown with word count and reading time"),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithBoolean("preview", mcp.Description("Use the latest draft")),
	), s.handlePageMarkdown)

	// ── ratings_summary ────────────────────────────────
	s.addTool(mcp.NewTool("ratings_summary",
		mcp.WithDescription("Get the ratings summary of a partner page: total, score, stars and percentages"),
		mcp.WithString("pageId", mcp.Description("ID of the partner page"), mcp.Required()),
		mcp.WithBoolean("preview", mcp.Description("Use the latest draft")),
	), s.handleRatingsSummary)

	// ── resolve_link ───────────────────────────────────
	s.addTool(mcp.NewTool("resolve_link",
		mcp.WithDescription("Resolve a link from any of its targets. The URL comes from the external URL, "+
			"then the page, then the document; the title falls back to the page or document title."),
		mcp.WithString("title", mcp.Description("Explicit link title")),
		mcp.WithString("pageId", mcp.Description("Internal page target")),
		mcp.WithString("documentId", mcp.Description("Document target")),
		mcp.WithString("url", mcp.Description("External URL target")),
	), s.handleResolveLink)

	if s.history != nil {
		// ── structured_data_history ────────────────────
		s.addTool(mcp.NewTool("structured_data_history",
			mcp.WithDescription("List the archived structured data of every published revision of a page, newest first"),
			mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of revisions (default 10)")),
		), s.handleStructuredDataHistory)
	}
}

func (s *Server) handleValidateStream(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stream, err := requireString(req, "stream")
	if err != nil {
		return nil, err
	}
	data, err := requireString(req, "data")
	if err != nil {
		return nil, err
	}
	if _, ok := s.registry.Stream(stream); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown stream %q; known streams: %v", stream, s.registry.Streams())), nil
	}
	v, err := s.pages.ValidateStream(stream, json.RawMessage(data))
	if err != nil {
		return userError(err)
	}
	return jsonResult(map[string]any{"valid": true, "blocks": len(v), "canonical": v})
}

func (s *Server) handleListBlockTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if key := req.GetString("type", ""); key != "" {
		def, ok := s.registry.Lookup(key)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown block type %q", key)), nil
		}
		return jsonResult(def.Describe())
	}
	if name := req.GetString("stream", ""); name != "" {
		def, ok := s.registry.Stream(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown stream %q", name)), nil
		}
		return jsonResult(def.Describe())
	}
	return jsonResult(map[string][]string{
		"types":   s.registry.Types(),
		"streams": s.registry.Streams(),
	})
}

func (s *Server) handleGetStructuredData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	doc, err := s.content.StructuredData(ctx, pageID, req.GetBool("preview", false))
	if err != nil {
		return userError(err)
	}
	return textResult(string(doc)), nil
}

func (s *Server) handleRenderBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	field, err := requireString(req, "field")
	if err != nil {
		return nil, err
	}
	frags, err := s.content.RenderBlocks(ctx, pageID, field, req.GetBool("preview", false))
	if err != nil {
		return userError(err)
	}
	return jsonResult(frags)
}

func (s *Server) handlePageMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	text, err := s.content.Text(ctx, pageID, req.GetBool("preview", false))
	if err != nil {
		return userError(err)
	}
	return textResult(fmt.Sprintf("<!-- %d words, %d min read -->\n\n%s", text.Words, text.ReadingTime, text.Markdown)), nil
}

func (s *Server) handleRatingsSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	stats, err := s.content.RatingsSummary(ctx, pageID, req.GetBool("preview", false))
	if err != nil {
		return userError(err)
	}
	return jsonResult(struct {
		blocks.RatingStats
		HasRatings  bool     `json:"hasRatings"`
		StarPattern []string `json:"starPattern"`
	}{stats, stats.HasRatings(), stats.StarPattern()})
}

func (s *Server) handleResolveLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view := s.content.ResolveLink(ctx,
		req.GetString("title", ""),
		req.GetString("pageId", ""),
		req.GetString("documentId", ""),
		req.GetString("url", ""),
	)
	return jsonResult(view)
}

type archivedGraph struct {
	RevisionID  string          `json:"revisionId"`
	PublishedAt string          `json:"publishedAt"`
	Graph       json.RawMessage `json:"graph"`
}

func (s *Server) handleStructuredDataHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	records, err := s.history.History(ctx, pageID, req.GetInt("limit", 10))
	if err != nil {
		return nil, fmt.Errorf("structured data history: %w", err)
	}
	out := make([]archivedGraph, 0, len(records))
	for _, rec := range records {
		graph, err := rec.GraphJSON()
		if err != nil {
			return nil, fmt.Errorf("encode archived graph: %w", err)
		}
		out = append(out, archivedGraph{
			RevisionID:  rec.RevisionID,
			PublishedAt: rec.PublishedAt.Format(time.RFC3339),
			Graph:       graph,
		})
	}
	return jsonResult(out)
}
