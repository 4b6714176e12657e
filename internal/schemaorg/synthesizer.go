// Package schemaorg synthesizes the schema.org JSON-LD graph embedded in
// every page.
package schemaorg

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"ventanita/internal/blocks"
	"ventanita/internal/domain"
	"ventanita/internal/richtext"
)

// Site carries the site-wide settings entities are filled from.
type Site struct {
	Name               string
	BaseURL            string
	LicensePath        string
	AcquireLicensePath string
	LogoURL            string
	SupportEmail       string
	SupportPhone       string
	SupportAddress     string
	AddressLocality    string
	AddressRegion      string
	AddressCountry     string
	PostalCode         string
	SameAs             []string
}

// Crumb is one step of the page trail.
type Crumb struct {
	Name string
	URL  string
}

// PageContext is everything the synthesizer reads about a page. URLs are
// absolute; image URLs are paths relative to the site base.
type PageContext struct {
	Type              domain.PageType
	Title             string
	SEOTitle          string
	SearchDescription string
	ListingTitle      string
	SocialText        string
	URL               string
	// Ancestors run from the locale root down to the parent.
	Ancestors        []Crumb
	ListingImage     *blocks.ImageRef
	SocialImage      *blocks.ImageRef
	Logo             *blocks.ImageRef
	FirstPublishedAt *time.Time
	LastPublishedAt  *time.Time
	Streams          map[string]blocks.StreamValue
}

func (pc PageContext) parent() (Crumb, bool) {
	if len(pc.Ancestors) == 0 {
		return Crumb{}, false
	}
	return pc.Ancestors[len(pc.Ancestors)-1], true
}

func (pc PageContext) grandparent() (Crumb, bool) {
	if len(pc.Ancestors) < 2 {
		return Crumb{}, false
	}
	return pc.Ancestors[len(pc.Ancestors)-2], true
}

// Synthesizer builds graphs. It holds no mutable state and is safe for
// concurrent use.
type Synthesizer struct {
	site  Site
	table map[domain.PageType]strategy
}

func New(site Site) *Synthesizer {
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	s := &Synthesizer{site: site}
	s.table = s.strategies()
	return s
}

// Graph assembles the entities of the page's strategy, skipping the ones
// without data.
func (s *Synthesizer) Graph(pc PageContext) Graph {
	st := s.strategyFor(pc.Type)
	g := Graph{Context: GraphContext, Graph: make([]Entity, 0, len(st.entities))}
	for _, b := range st.entities {
		if e, ok := b.build(s, pc, st); ok {
			g.Graph = append(g.Graph, e)
		}
	}
	return g
}

func (s *Synthesizer) JSON(pc PageContext) ([]byte, error) {
	return json.Marshal(s.Graph(pc))
}

// EntityOrder lists the builder names used for a page type.
func (s *Synthesizer) EntityOrder(t domain.PageType) []string {
	st := s.strategyFor(t)
	out := make([]string, len(st.entities))
	for i, b := range st.entities {
		out[i] = b.name
	}
	return out
}

// Breadcrumb returns the trail for the page. Calling it twice yields equal
// lists.
func (s *Synthesizer) Breadcrumb(pc PageContext) BreadcrumbList {
	crumbs := s.strategyFor(pc.Type).breadcrumb(s, pc)
	items := make([]ListItem, len(crumbs))
	for i, c := range crumbs {
		items[i] = ListItem{Type: "ListItem", Position: i + 1, Name: c.Name, Item: c.URL}
	}
	return BreadcrumbList{Context: Vocab, Type: "BreadcrumbList", ItemListElement: items}
}

// Image describes the listing image, or the social image when there is no
// listing image.
func (s *Synthesizer) Image(pc PageContext, licensePath string) (ImageObject, bool) {
	img := pc.ListingImage
	if img == nil || img.URL == "" {
		img = pc.SocialImage
	}
	if img == nil || img.URL == "" {
		return ImageObject{}, false
	}
	if licensePath == "" {
		licensePath = s.site.LicensePath
	}
	credit := pc.ListingTitle
	if credit == "" {
		credit = pc.SocialText
	}
	return ImageObject{
		Context:            Vocab,
		Type:               "ImageObject",
		ContentURL:         s.absolute(img.URL),
		License:            s.absolute(licensePath),
		AcquireLicensePage: s.absolute(s.site.AcquireLicensePath),
		CreditText:         credit,
		Creator:            Person{Type: "Person", Name: s.site.Name},
		CopyrightNotice:    s.site.Name,
	}, true
}

func (s *Synthesizer) Article(pc PageContext) (Article, bool) {
	if pc.FirstPublishedAt == nil {
		return Article{}, false
	}
	modified := pc.FirstPublishedAt
	if pc.LastPublishedAt != nil {
		modified = pc.LastPublishedAt
	}
	headline := pc.SEOTitle
	if headline == "" {
		headline = pc.Title
	}
	a := Article{
		Context:          Vocab,
		Type:             "Article",
		Headline:         headline,
		Description:      pc.SearchDescription,
		DatePublished:    pc.FirstPublishedAt.UTC().Format(time.RFC3339),
		DateModified:     modified.UTC().Format(time.RFC3339),
		Author:           s.orgRef(),
		Publisher:        s.orgRef(),
		MainEntityOfPage: pc.URL,
	}
	if img, ok := s.Image(pc, ""); ok {
		a.Image = img.ContentURL
	}
	return a, true
}

// FAQ gathers the items of every faq block in the body and faq streams.
func (s *Synthesizer) FAQ(pc PageContext) (FAQPage, bool) {
	var faqs []blocks.FAQ
	faqs = append(faqs, blocks.FAQsIn(pc.Streams["body"])...)
	faqs = append(faqs, blocks.FAQsIn(pc.Streams["faq"])...)

	var questions []Question
	for _, f := range faqs {
		for _, item := range f.Items {
			questions = append(questions, Question{
				Type: "Question",
				Name: strings.TrimSpace(item.Question),
				AcceptedAnswer: Answer{
					Type: "Answer",
					Text: richtext.StripTags(item.Answer),
				},
			})
		}
	}
	if len(questions) == 0 {
		return FAQPage{}, false
	}
	return FAQPage{Context: Vocab, Type: "FAQPage", MainEntity: questions}, true
}

func (s *Synthesizer) Organization() Organization {
	return Organization{
		Context:   Vocab,
		Type:      "Organization",
		Name:      s.site.Name,
		URL:       s.root(),
		Logo:      s.absolute(s.site.LogoURL),
		Email:     s.site.SupportEmail,
		Telephone: s.site.SupportPhone,
		SameAs:    s.sameAs(),
	}
}

// PartnerOrganization describes the bus company a partner page is about.
func (s *Synthesizer) PartnerOrganization(pc PageContext) Organization {
	contact := blocks.Contact{}
	if sv, ok := blocks.FirstOfKey(pc.Streams["contact"], blocks.TypeContact); ok {
		contact = blocks.ContactFromStruct(sv)
	}
	email := orDefault(contact.Email, s.site.SupportEmail)
	phone := orDefault(contact.Phone, s.site.SupportPhone)
	street := orDefault(contact.Address, s.site.SupportAddress)

	org := Organization{
		Context:     Vocab,
		Type:        "Organization",
		Name:        pc.Title,
		URL:         pc.URL,
		Description: pc.SearchDescription,
		Email:       email,
		Telephone:   phone,
		Address: &PostalAddress{
			Type:            "PostalAddress",
			StreetAddress:   street,
			AddressLocality: s.site.AddressLocality,
			AddressCountry:  s.site.AddressCountry,
			AddressRegion:   s.site.AddressRegion,
			PostalCode:      s.site.PostalCode,
		},
		ContactPoint: &ContactPoint{Type: "ContactPoint", Telephone: phone, Email: email},
		// the site's profiles are not the operator's
		SameAs: []string{},
	}
	for _, img := range []*blocks.ImageRef{pc.Logo, pc.ListingImage, pc.SocialImage} {
		if img != nil && img.URL != "" {
			org.Logo = s.absolute(img.URL)
			org.Image = org.Logo
			break
		}
	}
	if sv, ok := blocks.FirstOfKey(pc.Streams["ratings"], blocks.TypeRatings); ok {
		stats := blocks.RatingsFromStruct(sv)
		if stats.HasRatings() {
			org.AggregateRating = &AggregateRating{
				Type:        "AggregateRating",
				RatingValue: strconv.FormatFloat(stats.Score, 'f', 1, 64),
				RatingCount: strconv.Itoa(stats.Total),
				BestRating:  "5",
				WorstRating: "1",
			}
		}
	}
	return org
}

// ── helpers ──────────────────────────────────────────────────

func (s *Synthesizer) root() string {
	return s.site.BaseURL + "/"
}

func (s *Synthesizer) absolute(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.site.BaseURL + path
}

func (s *Synthesizer) orgRef() OrganizationRef {
	return OrganizationRef{Type: "Organization", Name: s.site.Name, URL: s.root()}
}

func (s *Synthesizer) sameAs() []string {
	out := make([]string, len(s.site.SameAs))
	copy(out, s.site.SameAs)
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
