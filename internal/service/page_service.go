package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ventanita/internal/blocks"
	"ventanita/internal/domain"
	"ventanita/internal/logger"
	"ventanita/internal/metrics"
	"ventanita/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Page Service: page tree, drafts and publishing
// ─────────────────────────────────────────────────────────────

// ErrInvalidPage is wrapped by every page-level rule violation.
var ErrInvalidPage = errors.New("invalid page")

// Events emitted by PageService.
const (
	EventPageCreated     = "page:created"
	EventDraftSaved      = "page:draft_saved"
	EventPagePublished   = "page:published"
	EventPageUnpublished = "page:unpublished"
	EventPageScheduled   = "page:scheduled"
	EventPageDeleted     = "page:deleted"
)

// PublishedEvent is the payload of EventPagePublished.
type PublishedEvent struct {
	Page     *domain.Page
	Revision *domain.Revision
}

var (
	latLongPattern = regexp.MustCompile(`^(\-?\d+(\.\d+)?),\s*(\-?\d+(\.\d+)?)$`)
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

type PageService struct {
	pages         domain.PageStore
	revisions     domain.RevisionStore
	registry      *blocks.Registry
	emitter       EventEmitter
	metrics       *metrics.Collector
	log           *logger.Logger
	defaultLocale string
	locales       []string
	now           func() time.Time
}

func NewPageService(
	pages domain.PageStore,
	revisions domain.RevisionStore,
	registry *blocks.Registry,
	emitter EventEmitter,
	m *metrics.Collector,
	log *logger.Logger,
	defaultLocale string,
	locales []string,
) *PageService {
	return &PageService{
		pages:         pages,
		revisions:     revisions,
		registry:      registry,
		emitter:       emitter,
		metrics:       m,
		log:           log,
		defaultLocale: defaultLocale,
		locales:       locales,
		now:           time.Now,
	}
}

// SetClock replaces the time source.
func (s *PageService) SetClock(now func() time.Time) {
	s.now = now
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPage, fmt.Sprintf(format, args...))
}

// ── Tree ───────────────────────────────────────────────────

type CreatePageInput struct {
	ParentID string          `json:"parentId"`
	Type     domain.PageType `json:"type"`
	Title    string          `json:"title"`
	Slug     string          `json:"slug"`
	Locale   string          `json:"locale"` // locale roots only
}

// LocalePrefix is the URL path of a locale root.
func (s *PageService) LocalePrefix(locale string) string {
	if locale == s.defaultLocale {
		return "/"
	}
	return "/" + locale + "/"
}

// CreatePage adds a page to the tree with an empty first revision.
func (s *PageService) CreatePage(ctx context.Context, in CreatePageInput) (*domain.Page, error) {
	rules, ok := domain.RulesFor(in.Type)
	if !ok {
		return nil, invalid("unknown page type %q", in.Type)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	p := &domain.Page{
		ID:                    uuid.New().String(),
		ParentID:              in.ParentID,
		Type:                  in.Type,
		Title:                 title,
		HasUnpublishedChanges: true,
	}

	if in.ParentID == "" {
		if len(rules.ParentTypes) > 0 {
			return nil, invalid("%s pages need a parent", in.Type)
		}
		p.Locale = in.Locale
		if p.Locale == "" {
			p.Locale = s.defaultLocale
		}
		if !s.knownLocale(p.Locale) {
			return nil, invalid("unknown locale %q", p.Locale)
		}
		p.URLPath = s.LocalePrefix(p.Locale)
	} else {
		parent, err := s.pages.GetPage(ctx, in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("create page: %w", err)
		}
		if !rules.AllowsParent(parent.Type) {
			return nil, invalid("%s pages cannot be created under %s pages", in.Type, parent.Type)
		}
		p.Slug = in.Slug
		if p.Slug == "" {
			p.Slug = Slugify(title)
		}
		if !slugPattern.MatchString(p.Slug) {
			return nil, invalid("slug %q may only contain lowercase letters, digits and hyphens", p.Slug)
		}
		p.Locale = parent.Locale
		p.URLPath = parent.URLPath + p.Slug + "/"
	}

	if rules.MaxCount > 0 {
		n, err := s.pages.CountPages(ctx, in.Type, p.Locale)
		if err != nil {
			return nil, fmt.Errorf("count pages: %w", err)
		}
		if n >= rules.MaxCount {
			return nil, invalid("only %d %s page allowed per locale", rules.MaxCount, in.Type)
		}
	}
	if _, err := s.pages.GetPageByPath(ctx, p.Locale, p.URLPath); err == nil {
		return nil, invalid("path %s is already in use", p.URLPath)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("create page: %w", err)
	}

	rev := &domain.Revision{ID: uuid.New().String(), PageID: p.ID, Content: domain.PageContent{Title: title}}
	p.LatestRevisionID = rev.ID
	if err := s.pages.CreatePage(ctx, p); err != nil {
		return nil, err
	}
	if err := s.revisions.CreateRevision(ctx, rev); err != nil {
		return nil, err
	}

	s.log.Info("page created", "id", p.ID, "type", p.Type, "path", p.URLPath)
	s.emitter.Emit(ctx, EventPageCreated, p)
	return p, nil
}

func (s *PageService) knownLocale(locale string) bool {
	for _, l := range s.locales {
		if l == locale {
			return true
		}
	}
	return false
}

func (s *PageService) Get(ctx context.Context, id string) (*domain.Page, error) {
	return s.pages.GetPage(ctx, id)
}

func (s *PageService) GetByPath(ctx context.Context, locale, urlPath string) (*domain.Page, error) {
	return s.pages.GetPageByPath(ctx, locale, urlPath)
}

func (s *PageService) List(ctx context.Context) ([]domain.Page, error) {
	return s.pages.ListPages(ctx)
}

func (s *PageService) Children(ctx context.Context, id string) ([]domain.Page, error) {
	return s.pages.ListChildren(ctx, id)
}

// Ancestors returns the pages above p, locale root first.
func (s *PageService) Ancestors(ctx context.Context, p *domain.Page) ([]domain.Page, error) {
	var out []domain.Page
	seen := map[string]bool{p.ID: true}
	for id := p.ParentID; id != ""; {
		if seen[id] {
			return nil, fmt.Errorf("ancestors of %s: cycle at %s", p.ID, id)
		}
		seen[id] = true
		parent, err := s.pages.GetPage(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("ancestors of %s: %w", p.ID, err)
		}
		out = append(out, *parent)
		id = parent.ParentID
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// State loads a page with the revision a visitor would see. Preview uses
// the latest draft; otherwise the page must be live.
func (s *PageService) State(ctx context.Context, pageID string, preview bool) (*domain.PageState, error) {
	p, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	revID := p.LatestRevisionID
	if !preview {
		if !p.Live || p.LiveRevisionID == "" {
			return nil, invalid("page %s is not live", p.ID)
		}
		revID = p.LiveRevisionID
	}
	rev, err := s.revisions.GetRevision(ctx, revID)
	if err != nil {
		return nil, err
	}
	ancestors, err := s.Ancestors(ctx, p)
	if err != nil {
		return nil, err
	}
	return &domain.PageState{Page: *p, Revision: *rev, Ancestors: ancestors, Preview: preview}, nil
}

// Delete removes a leaf page and its history.
func (s *PageService) Delete(ctx context.Context, id string) error {
	children, err := s.pages.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return invalid("page %s has %d child pages", id, len(children))
	}
	if err := s.revisions.DeleteRevisions(ctx, id); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	if err := s.pages.DeletePage(ctx, id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	s.emitter.Emit(ctx, EventPageDeleted, id)
	return nil
}

// ── Drafts ─────────────────────────────────────────────────

// SaveDraft validates content and stores it as the page's latest revision.
// Streams are stored in canonical form with block IDs assigned.
func (s *PageService) SaveDraft(ctx context.Context, pageID string, content domain.PageContent) (*domain.Revision, error) {
	p, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	rules, _ := domain.RulesFor(p.Type)

	content.Title = strings.TrimSpace(content.Title)
	if content.Title == "" {
		content.Title = p.Title
	}
	if err := validateFields(content); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	canonical, err := s.validateStreams(rules, content.Streams)
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	content.Streams = canonical

	rev := &domain.Revision{ID: uuid.New().String(), PageID: p.ID, Content: content}
	if err := s.revisions.CreateRevision(ctx, rev); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	p.LatestRevisionID = rev.ID
	p.HasUnpublishedChanges = true
	if err := s.pages.UpdatePage(ctx, p); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	s.log.Debug("draft saved", "page", p.ID, "revision", rev.ID)
	s.emitter.Emit(ctx, EventDraftSaved, rev)
	return rev, nil
}

// ValidateStream checks raw stream data against the named stream
// declaration without storing it.
func (s *PageService) ValidateStream(stream string, raw json.RawMessage) (blocks.StreamValue, error) {
	v, err := s.registry.ValidateStream(stream, raw)
	if err != nil && errors.Is(err, blocks.ErrValidation) {
		s.metrics.ValidationFailed(stream)
	}
	return v, err
}

func (s *PageService) validateStreams(rules domain.PageTypeRules, streams map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	if len(streams) == 0 {
		return nil, nil
	}
	var all *blocks.ValidationError
	out := make(map[string]json.RawMessage, len(streams))
	for _, sf := range rules.Streams {
		raw, ok := streams[sf.Field]
		if !ok {
			continue
		}
		v, err := s.ValidateStream(sf.Stream, raw)
		if err != nil {
			var ve *blocks.ValidationError
			if !errors.As(err, &ve) {
				return nil, err
			}
			for i := range ve.Errors {
				ve.Errors[i].Path = sf.Field + strings.TrimPrefix(ve.Errors[i].Path, sf.Stream)
			}
			if all == nil {
				all = &blocks.ValidationError{Stream: string(rules.Type)}
			}
			all.Merge(ve)
			continue
		}
		canonical, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", sf.Field, err)
		}
		out[sf.Field] = canonical
	}
	for field := range streams {
		if _, ok := rules.StreamFor(field); !ok {
			if all == nil {
				all = &blocks.ValidationError{Stream: string(rules.Type)}
			}
			all.Errors = append(all.Errors, blocks.FieldError{
				Path:    field,
				Message: fmt.Sprintf("%s pages have no %q field.", rules.Type, field),
			})
		}
	}
	if all != nil {
		return nil, all
	}
	return out, nil
}

func validateFields(c domain.PageContent) error {
	if c.LatLong != "" {
		if len(c.LatLong) > 36 || !latLongPattern.MatchString(c.LatLong) {
			return invalid("Lat Long must be a comma-separated numeric lat and long")
		}
	}
	if c.Departamento != "" {
		found := false
		for _, d := range domain.Departamentos() {
			if d.Code == c.Departamento {
				found = true
				break
			}
		}
		if !found {
			return invalid("unknown departamento %q", c.Departamento)
		}
	}
	if c.Date != "" {
		if _, err := time.Parse("2006-01-02", c.Date); err != nil {
			return invalid("date %q is not YYYY-MM-DD", c.Date)
		}
	}
	return nil
}

// ── Publishing ─────────────────────────────────────────────

// Publish makes a revision live. An empty revisionID publishes the latest
// draft.
func (s *PageService) Publish(ctx context.Context, pageID, revisionID string) (*domain.Page, error) {
	return s.publish(ctx, pageID, revisionID, "manual")
}

func (s *PageService) publish(ctx context.Context, pageID, revisionID, trigger string) (*domain.Page, error) {
	p, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	if revisionID == "" {
		revisionID = p.LatestRevisionID
	}
	rev, err := s.revisions.GetRevision(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	if rev.PageID != p.ID {
		return nil, invalid("revision %s does not belong to page %s", rev.ID, p.ID)
	}

	ts := s.now().UTC()
	p.Live = true
	p.LiveRevisionID = rev.ID
	p.Title = rev.Content.Title
	p.HasUnpublishedChanges = rev.ID != p.LatestRevisionID
	if p.FirstPublishedAt == nil {
		p.FirstPublishedAt = &ts
	}
	p.LastPublishedAt = &ts
	if err := s.pages.UpdatePage(ctx, p); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	if rev.ApprovedGoLiveAt != nil {
		if err := s.revisions.SetGoLive(ctx, rev.ID, nil); err != nil {
			return nil, fmt.Errorf("publish: clear go-live: %w", err)
		}
		rev.ApprovedGoLiveAt = nil
	}

	s.metrics.Published(trigger)
	s.log.Info("page published", "page", p.ID, "revision", rev.ID, "trigger", trigger)
	s.emitter.Emit(ctx, EventPagePublished, PublishedEvent{Page: p, Revision: rev})
	return p, nil
}

func (s *PageService) Unpublish(ctx context.Context, pageID string) (*domain.Page, error) {
	p, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("unpublish: %w", err)
	}
	if !p.Live {
		return p, nil
	}
	p.Live = false
	p.HasUnpublishedChanges = true
	if err := s.pages.UpdatePage(ctx, p); err != nil {
		return nil, fmt.Errorf("unpublish: %w", err)
	}
	s.emitter.Emit(ctx, EventPageUnpublished, p)
	return p, nil
}

// SchedulePublish approves a revision to go live at a future time. An empty
// revisionID schedules the latest draft.
func (s *PageService) SchedulePublish(ctx context.Context, pageID, revisionID string, at time.Time) (*domain.Revision, error) {
	if !at.After(s.now()) {
		return nil, invalid("go-live time %s is not in the future", at.Format(time.RFC3339))
	}
	p, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	if revisionID == "" {
		revisionID = p.LatestRevisionID
	}
	rev, err := s.revisions.GetRevision(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	if rev.PageID != p.ID {
		return nil, invalid("revision %s does not belong to page %s", rev.ID, p.ID)
	}
	at = at.UTC()
	if err := s.revisions.SetGoLive(ctx, rev.ID, &at); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	rev.ApprovedGoLiveAt = &at
	s.emitter.Emit(ctx, EventPageScheduled, rev)
	return rev, nil
}

// PublishScheduled publishes every revision whose go-live time has passed
// and returns how many were published. Failures do not stop the run.
func (s *PageService) PublishScheduled(ctx context.Context) (int, error) {
	due, err := s.revisions.ListDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list due revisions: %w", err)
	}
	var errs []error
	n := 0
	for _, rev := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.publish(ctx, rev.PageID, rev.ID, "scheduler"); err != nil {
			s.log.Error("scheduled publish failed", "page", rev.PageID, "revision", rev.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// ── Helpers ────────────────────────────────────────────────

// foldMarks strips combining marks after decomposition, so "ç" and "ã"
// fold to their base letters. Chains are stateful; build one per use.
func foldMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Slugify derives a URL slug from a Spanish or English title.
func Slugify(title string) string {
	folded, _, err := transform.String(foldMarks(), title)
	if err != nil {
		folded = title
	}
	s := strings.ToLower(folded)
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
