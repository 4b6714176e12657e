package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	pagesURI           = "ventanita://pages"
	pageResourcePrefix = "ventanita://page/"
	structuredSuffix   = "/structured-data"
)

func (s *Server) registerResources() {
	// ── ventanita://pages ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		pagesURI,
		"Site tree",
		mcp.WithResourceDescription("Every page with its type, locale, path and publishing state"),
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── ventanita://page/{pageId}/structured-data ──────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageResourcePrefix+"{pageId}"+structuredSuffix,
			"Structured data of a live page",
			mcp.WithTemplateMIMEType("application/ld+json"),
		),
		s.handleStructuredDataResource,
	)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]pageSummary, len(pages))
	for i, p := range pages {
		summaries[i] = summarizePage(p)
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      pagesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleStructuredDataResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := extractPageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}
	doc, err := s.content.StructuredData(ctx, pageID, false)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/ld+json",
			Text:     string(doc),
		},
	}, nil
}

// extractPageIDFromURI reads the ID out of ventanita://page/{id}/structured-data.
func extractPageIDFromURI(uri string) string {
	if !strings.HasPrefix(uri, pageResourcePrefix) || !strings.HasSuffix(uri, structuredSuffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, pageResourcePrefix), structuredSuffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
