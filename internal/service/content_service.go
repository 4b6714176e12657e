package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"ventanita/internal/blocks"
	"ventanita/internal/domain"
	"ventanita/internal/logger"
	"ventanita/internal/metrics"
	"ventanita/internal/render"
	"ventanita/internal/richtext"
	"ventanita/internal/schemaorg"
)

// ─────────────────────────────────────────────────────────────
// Content Service: read side of pages (structured data, blocks, text)
// ─────────────────────────────────────────────────────────────

type graphKey struct {
	pageID     string
	revisionID string
	published  int64
}

type ContentService struct {
	pages    *PageService
	media    domain.MediaStore
	registry *blocks.Registry
	synth    *schemaorg.Synthesizer
	baseURL  string
	cache    *lru.Cache[graphKey, []byte]
	metrics  *metrics.Collector
	log      *logger.Logger
}

// NewContentService creates a ContentService. cacheSize 0 disables the
// structured-data cache.
func NewContentService(
	pages *PageService,
	media domain.MediaStore,
	registry *blocks.Registry,
	synth *schemaorg.Synthesizer,
	baseURL string,
	cacheSize int,
	m *metrics.Collector,
	log *logger.Logger,
) (*ContentService, error) {
	s := &ContentService{
		pages:    pages,
		media:    media,
		registry: registry,
		synth:    synth,
		baseURL:  strings.TrimRight(baseURL, "/"),
		metrics:  m,
		log:      log,
	}
	if cacheSize > 0 {
		cache, err := lru.New[graphKey, []byte](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("graph cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// ── Resolver ───────────────────────────────────────────────

// resolver looks chooser references up in the stores. Missing targets
// resolve to nothing.
type resolver struct {
	ctx     context.Context
	pages   domain.PageStore
	media   domain.MediaStore
	baseURL string
}

func (s *ContentService) Resolver(ctx context.Context) blocks.Resolver {
	return resolver{ctx: ctx, pages: s.pages.pages, media: s.media, baseURL: s.baseURL}
}

func (r resolver) ResolvePage(id string) (blocks.PageTarget, bool) {
	p, err := r.pages.GetPage(r.ctx, id)
	if err != nil {
		return blocks.PageTarget{}, false
	}
	return blocks.PageTarget{ID: p.ID, Title: p.Title, URL: r.baseURL + p.URLPath}, true
}

func (r resolver) ResolveDocument(id string) (blocks.DocumentTarget, bool) {
	d, err := r.media.GetDocument(r.ctx, id)
	if err != nil {
		return blocks.DocumentTarget{}, false
	}
	return blocks.DocumentTarget{
		ID:        d.ID,
		Title:     d.Title,
		Filename:  d.Filename(),
		Extension: d.Extension(),
		URL:       r.baseURL + d.File,
		Size:      d.Size,
	}, true
}

func (r resolver) ResolveImage(id string) (blocks.ImageRef, bool) {
	img, err := r.media.GetImage(r.ctx, id)
	if err != nil {
		return blocks.ImageRef{}, false
	}
	return blocks.ImageRef{ID: img.ID, Title: img.Title, URL: img.File, Width: img.Width, Height: img.Height}, true
}

func (r resolver) image(id string) *blocks.ImageRef {
	if id == "" {
		return nil
	}
	img, ok := r.ResolveImage(id)
	if !ok {
		return nil
	}
	return &img
}

// ── Streams ────────────────────────────────────────────────

// Streams parses the stored streams of a revision. Unknown blocks left over
// from older schemas are dropped.
func (s *ContentService) Streams(t domain.PageType, c domain.PageContent) map[string]blocks.StreamValue {
	rules, _ := domain.RulesFor(t)
	out := make(map[string]blocks.StreamValue, len(rules.Streams))
	for _, sf := range rules.Streams {
		if raw, ok := c.Streams[sf.Field]; ok {
			out[sf.Field] = s.registry.ParseStream(sf.Stream, raw)
		}
	}
	return out
}

// ── Structured data ────────────────────────────────────────

// PageContext gathers what the synthesizer needs from a page state.
func (s *ContentService) PageContext(ctx context.Context, st *domain.PageState) schemaorg.PageContext {
	r := s.Resolver(ctx).(resolver)
	c := st.Revision.Content

	crumbs := make([]schemaorg.Crumb, len(st.Ancestors))
	for i, a := range st.Ancestors {
		crumbs[i] = schemaorg.Crumb{Name: a.Title, URL: s.baseURL + a.URLPath}
	}
	return schemaorg.PageContext{
		Type:              st.Page.Type,
		Title:             c.Title,
		SEOTitle:          c.SEOTitle,
		SearchDescription: c.SearchDescription,
		ListingTitle:      c.ListingTitle,
		SocialText:        c.SocialText,
		URL:               s.baseURL + st.Page.URLPath,
		Ancestors:         crumbs,
		ListingImage:      r.image(c.ListingImageID),
		SocialImage:       r.image(c.SocialImageID),
		Logo:              r.image(c.LogoID),
		FirstPublishedAt:  st.Page.FirstPublishedAt,
		LastPublishedAt:   st.Page.LastPublishedAt,
		Streams:           s.Streams(st.Page.Type, c),
	}
}

// StructuredData returns the JSON-LD document of a page. Preview renders
// the latest draft.
func (s *ContentService) StructuredData(ctx context.Context, pageID string, preview bool) ([]byte, error) {
	st, err := s.pages.State(ctx, pageID, preview)
	if err != nil {
		return nil, fmt.Errorf("structured data: %w", err)
	}
	return s.StructuredDataFor(ctx, st)
}

// StructuredDataFor synthesizes the document of an already loaded state.
func (s *ContentService) StructuredDataFor(ctx context.Context, st *domain.PageState) ([]byte, error) {
	key := graphKey{pageID: st.Page.ID, revisionID: st.Revision.ID}
	if st.Page.LastPublishedAt != nil {
		key.published = st.Page.LastPublishedAt.UnixNano()
	}
	if s.cache != nil {
		if doc, ok := s.cache.Get(key); ok {
			s.metrics.CacheLookup(true, s.cache.Len())
			return doc, nil
		}
	}

	start := time.Now()
	doc, err := s.synth.JSON(s.PageContext(ctx, st))
	if err != nil {
		return nil, fmt.Errorf("encode structured data: %w", err)
	}
	s.metrics.GraphBuilt(string(st.Page.Type), time.Since(start))

	if s.cache != nil {
		s.cache.Add(key, doc)
		s.metrics.CacheLookup(false, s.cache.Len())
	}
	return doc, nil
}

// Emit drops every cached graph when the live tree changes. A page's graph
// embeds its ancestors' titles and paths, so one publish can stale many
// entries.
func (s *ContentService) Emit(_ context.Context, event string, _ any) {
	switch event {
	case EventPagePublished, EventPageUnpublished, EventPageDeleted:
		if s.cache != nil {
			s.cache.Purge()
			s.log.Debug("graph cache purged", "event", event)
		}
	}
}

// Graph returns the typed graph, bypassing the cache.
func (s *ContentService) Graph(ctx context.Context, pageID string, preview bool) (schemaorg.Graph, error) {
	st, err := s.pages.State(ctx, pageID, preview)
	if err != nil {
		return schemaorg.Graph{}, err
	}
	return s.synth.Graph(s.PageContext(ctx, st)), nil
}

// ── Blocks and text ────────────────────────────────────────

// RenderBlocks renders one stream field of a page.
func (s *ContentService) RenderBlocks(ctx context.Context, pageID, field string, preview bool) ([]render.Fragment, error) {
	st, err := s.pages.State(ctx, pageID, preview)
	if err != nil {
		return nil, err
	}
	rules, _ := domain.RulesFor(st.Page.Type)
	if _, ok := rules.StreamFor(field); !ok {
		return nil, fmt.Errorf("%w: %s pages have no %q field", ErrInvalidPage, st.Page.Type, field)
	}
	return render.Fragments(s.Streams(st.Page.Type, st.Revision.Content)[field], s.Resolver(ctx)), nil
}

// RatingsSummary returns the ratings of a partner page.
func (s *ContentService) RatingsSummary(ctx context.Context, pageID string, preview bool) (blocks.RatingStats, error) {
	st, err := s.pages.State(ctx, pageID, preview)
	if err != nil {
		return blocks.RatingStats{}, err
	}
	streams := s.Streams(st.Page.Type, st.Revision.Content)
	if sv, ok := blocks.FirstOfKey(streams["ratings"], blocks.TypeRatings); ok {
		return blocks.RatingsFromStruct(sv), nil
	}
	return blocks.ComputeRatings(blocks.RatingCounts{}), nil
}

// ResolveLink builds a link from the given targets and resolves it.
func (s *ContentService) ResolveLink(ctx context.Context, title, pageID, documentID, url string) blocks.LinkView {
	v := blocks.NewStructValue(map[string]any{
		"title":    title,
		"page":     pageID,
		"document": documentID,
		"link":     url,
	})
	return blocks.LinkFromStruct(v, s.Resolver(ctx)).View()
}

// Text is the plain-text reading of a page.
type Text struct {
	Words       int    `json:"words"`
	ReadingTime int    `json:"readingTime"` // minutes
	Markdown    string `json:"markdown"`
}

// Text converts the body of a page to markdown and counts its words.
func (s *ContentService) Text(ctx context.Context, pageID string, preview bool) (*Text, error) {
	st, err := s.pages.State(ctx, pageID, preview)
	if err != nil {
		return nil, err
	}
	c := st.Revision.Content
	body := s.Streams(st.Page.Type, c)["body"]

	var b strings.Builder
	b.WriteString("<h1>" + html.EscapeString(c.Title) + "</h1>")
	if c.Intro != "" {
		b.WriteString("<p>" + html.EscapeString(c.Intro) + "</p>")
	}
	writeHTML(&b, body)

	doc := b.String()
	md, err := richtext.ToMarkdown(doc)
	if err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	words := richtext.WordCount(doc)
	return &Text{Words: words, ReadingTime: richtext.ReadingTime(words), Markdown: md}, nil
}

func writeHTML(b *strings.Builder, s blocks.StreamValue) {
	for _, c := range s {
		def := c.Def()
		if def == nil {
			continue
		}
		switch v := c.Value.(type) {
		case string:
			if def.Kind == blocks.KindRichText {
				b.WriteString(v)
			}
		case *blocks.StructValue:
			switch def.Key {
			case "heading_block":
				size := v.String("size")
				if size == "" {
					size = "h2"
				}
				fmt.Fprintf(b, "<%s>%s</%s>", size, html.EscapeString(v.String("heading_text")), size)
			case "block_quote":
				fmt.Fprintf(b, "<blockquote>%s</blockquote>", html.EscapeString(v.String("text")))
			case blocks.TypeFAQ:
				faq := blocks.FAQFromStruct(v)
				fmt.Fprintf(b, "<h2>%s</h2>", html.EscapeString(faq.Title))
				for _, item := range faq.Items {
					fmt.Fprintf(b, "<h3>%s</h3>%s", html.EscapeString(item.Question), item.Answer)
				}
			}
		case blocks.StreamValue:
			writeHTML(b, v)
		}
	}
}
