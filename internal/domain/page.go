package domain

import (
	"context"
	"encoding/json"
	"time"
)

type Page struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parentId"` // empty for a locale root
	Type     PageType `json:"type"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Locale   string   `json:"locale"`
	URLPath  string   `json:"urlPath"` // "/", "/ciudades/asuncion/", "/en/blog/"

	Live                  bool       `json:"live"`
	HasUnpublishedChanges bool       `json:"hasUnpublishedChanges"`
	LatestRevisionID      string     `json:"latestRevisionId"`
	LiveRevisionID        string     `json:"liveRevisionId"`
	FirstPublishedAt      *time.Time `json:"firstPublishedAt,omitempty"`
	LastPublishedAt       *time.Time `json:"lastPublishedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageContent is the editable part of a page, snapshotted into each revision.
// Streams hold the raw stored stream data keyed by field name.
type PageContent struct {
	Title             string `json:"title"`
	SEOTitle          string `json:"seoTitle,omitempty"`
	SearchDescription string `json:"searchDescription,omitempty"`

	ListingTitle   string `json:"listingTitle,omitempty"`
	ListingSummary string `json:"listingSummary,omitempty"`
	ListingImageID string `json:"listingImageId,omitempty"`
	SocialImageID  string `json:"socialImageId,omitempty"`
	SocialText     string `json:"socialText,omitempty"`

	Subtitle     string   `json:"subtitle,omitempty"`
	Intro        string   `json:"intro,omitempty"`
	ImageID      string   `json:"imageId,omitempty"`
	HeroImageID  string   `json:"heroImageId,omitempty"`
	LogoID       string   `json:"logoId,omitempty"`
	Date         string   `json:"date,omitempty"` // YYYY-MM-DD
	LatLong      string   `json:"latLong,omitempty"`
	Address      string   `json:"address,omitempty"`
	Departamento string   `json:"departamento,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	Streams map[string]json.RawMessage `json:"streams,omitempty"`
}

// Revision is an immutable snapshot of a page's content.
type Revision struct {
	ID               string      `json:"id"`
	PageID           string      `json:"pageId"`
	Content          PageContent `json:"content"`
	ApprovedGoLiveAt *time.Time  `json:"approvedGoLiveAt,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
}

type PageStore interface {
	CreatePage(ctx context.Context, p *Page) error
	GetPage(ctx context.Context, id string) (*Page, error)
	GetPageByPath(ctx context.Context, locale, urlPath string) (*Page, error)
	ListPages(ctx context.Context) ([]Page, error)
	ListChildren(ctx context.Context, parentID string) ([]Page, error)
	CountPages(ctx context.Context, t PageType, locale string) (int, error)
	UpdatePage(ctx context.Context, p *Page) error
	DeletePage(ctx context.Context, id string) error
}

type RevisionStore interface {
	CreateRevision(ctx context.Context, r *Revision) error
	GetRevision(ctx context.Context, id string) (*Revision, error)
	ListRevisions(ctx context.Context, pageID string) ([]Revision, error)
	SetGoLive(ctx context.Context, id string, at *time.Time) error
	ListDue(ctx context.Context, now time.Time) ([]Revision, error)
	DeleteRevisions(ctx context.Context, pageID string) error
}
