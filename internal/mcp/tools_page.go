package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"ventanita/internal/domain"
	"ventanita/internal/service"
)

type pageSummary struct {
	ID                    string          `json:"id"`
	ParentID              string          `json:"parentId,omitempty"`
	Type                  domain.PageType `json:"type"`
	Title                 string          `json:"title"`
	Locale                string          `json:"locale"`
	URLPath               string          `json:"urlPath"`
	Live                  bool            `json:"live"`
	HasUnpublishedChanges bool            `json:"hasUnpublishedChanges"`
}

func summarizePage(p domain.Page) pageSummary {
	return pageSummary{
		ID:                    p.ID,
		ParentID:              p.ParentID,
		Type:                  p.Type,
		Title:                 p.Title,
		Locale:                p.Locale,
		URLPath:               p.URLPath,
		Live:                  p.Live,
		HasUnpublishedChanges: p.HasUnpublishedChanges,
	}
}

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.addTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List pages of the site tree, ordered by locale and URL path"),
		mcp.WithString("locale", mcp.Description("Only pages of this locale (es, en)")),
		mcp.WithString("type", mcp.Description("Only pages of this type (e.g. city, partner, blog)")),
	), s.handleListPages)

	// ── get_page ───────────────────────────────────────
	s.addTool(mcp.NewTool("get_page",
		mcp.WithDescription("Get a page with its content. Without preview the page must be live and the live revision is returned."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithBoolean("preview", mcp.Description("Return the latest draft instead of the live revision")),
	), s.handleGetPage)

	// ── create_page ────────────────────────────────────
	s.addTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a page under a parent. Page types may only be created under allowed parent types."),
		mcp.WithString("type", mcp.Description("Page type"), mcp.Required(), mcp.Enum(pageTypeNames()...)),
		mcp.WithString("title", mcp.Description("Page title"), mcp.Required()),
		mcp.WithString("parentId", mcp.Description("Parent page ID; omit only for a locale home page")),
		mcp.WithString("slug", mcp.Description("URL slug; derived from the title when omitted")),
		mcp.WithString("locale", mcp.Description("Locale of a new home page")),
	), s.handleCreatePage)

	// ── save_draft ─────────────────────────────────────
	s.addTool(mcp.NewTool("save_draft",
		mcp.WithDescription("Validate page content and save it as a new draft revision. "+
			"content is a JSON object with title, seoTitle, searchDescription, intro, latLong, departamento and "+
			"streams (an object of field name to a list of {type, value} blocks)."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Page content as JSON"), mcp.Required()),
	), s.handleSaveDraft)

	// ── publish_page ───────────────────────────────────
	s.addTool(mcp.NewTool("publish_page",
		mcp.WithDescription("Publish a revision of a page (the latest draft by default)"),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithString("revisionId", mcp.Description("Revision to publish")),
	), s.handlePublishPage)

	// ── unpublish_page ─────────────────────────────────
	s.addTool(mcp.NewTool("unpublish_page",
		mcp.WithDescription("Take a page offline. Its revisions are kept."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
	), s.handleUnpublishPage)

	// ── schedule_publish ───────────────────────────────
	s.addTool(mcp.NewTool("schedule_publish",
		mcp.WithDescription("Approve a revision to go live at a future time"),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithString("at", mcp.Description("Go-live time, RFC 3339 (e.g. 2026-12-01T08:00:00-03:00)"), mcp.Required()),
		mcp.WithString("revisionId", mcp.Description("Revision to schedule; the latest draft by default")),
	), s.handleSchedulePublish)
}

func pageTypeNames() []string {
	types := domain.PageTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	locale := req.GetString("locale", "")
	pageType := req.GetString("type", "")

	out := make([]pageSummary, 0, len(pages))
	for _, p := range pages {
		if locale != "" && p.Locale != locale {
			continue
		}
		if pageType != "" && string(p.Type) != pageType {
			continue
		}
		out = append(out, summarizePage(p))
	}
	return jsonResult(out)
}

func (s *Server) handleGetPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	st, err := s.pages.State(ctx, pageID, req.GetBool("preview", false))
	if err != nil {
		return userError(err)
	}
	return jsonResult(st)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.pages.CreatePage(ctx, service.CreatePageInput{
		ParentID: req.GetString("parentId", ""),
		Type:     domain.PageType(req.GetString("type", "")),
		Title:    req.GetString("title", ""),
		Slug:     req.GetString("slug", ""),
		Locale:   req.GetString("locale", ""),
	})
	if err != nil {
		return userError(err)
	}
	return jsonResult(summarizePage(*page))
}

func (s *Server) handleSaveDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	raw, err := requireString(req, "content")
	if err != nil {
		return nil, err
	}
	var content domain.PageContent
	if err := parseJSON(raw, &content); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("content is not valid JSON: %v", err)), nil
	}
	rev, err := s.pages.SaveDraft(ctx, pageID, content)
	if err != nil {
		return userError(err)
	}
	return jsonResult(map[string]string{"pageId": pageID, "revisionId": rev.ID})
}

func (s *Server) handlePublishPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	page, err := s.pages.Publish(ctx, pageID, req.GetString("revisionId", ""))
	if err != nil {
		return userError(err)
	}
	return jsonResult(summarizePage(*page))
}

func (s *Server) handleUnpublishPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	page, err := s.pages.Unpublish(ctx, pageID)
	if err != nil {
		return userError(err)
	}
	return jsonResult(summarizePage(*page))
}

func (s *Server) handleSchedulePublish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	at, err := time.Parse(time.RFC3339, req.GetString("at", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("at must be an RFC 3339 time: %v", err)), nil
	}
	rev, err := s.pages.SchedulePublish(ctx, pageID, req.GetString("revisionId", ""), at)
	if err != nil {
		return userError(err)
	}
	return textResult(fmt.Sprintf("Revision %s of page %s goes live at %s", rev.ID, pageID, rev.ApprovedGoLiveAt.Format(time.RFC3339))), nil
}
