package schemaorg

// ─────────────────────────────────────────────────────────────
// schema.org entities emitted in the page graph
// ─────────────────────────────────────────────────────────────

const (
	// Vocab is the @context of every entity.
	Vocab = "https://schema.org"
	// GraphContext is the @context of the enclosing document.
	GraphContext = "http://schema.org"
)

// Entity is a node of the @graph.
type Entity interface {
	EntityType() string
}

// Graph is the document embedded in a page.
type Graph struct {
	Context string   `json:"@context"`
	Graph   []Entity `json:"@graph"`
}

// Types lists the @type of every entity, in order.
func (g Graph) Types() []string {
	out := make([]string, len(g.Graph))
	for i, e := range g.Graph {
		out[i] = e.EntityType()
	}
	return out
}

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type BreadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

func (BreadcrumbList) EntityType() string { return "BreadcrumbList" }

type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type ImageObject struct {
	Context            string `json:"@context"`
	Type               string `json:"@type"`
	ContentURL         string `json:"contentUrl"`
	License            string `json:"license"`
	AcquireLicensePage string `json:"acquireLicensePage"`
	CreditText         string `json:"creditText"`
	Creator            Person `json:"creator"`
	CopyrightNotice    string `json:"copyrightNotice"`
}

func (ImageObject) EntityType() string { return "ImageObject" }

// OrganizationRef is an inline reference used for authorship.
type OrganizationRef struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Article struct {
	Context          string          `json:"@context"`
	Type             string          `json:"@type"`
	Headline         string          `json:"headline"`
	Description      string          `json:"description,omitempty"`
	Image            string          `json:"image,omitempty"`
	DatePublished    string          `json:"datePublished"`
	DateModified     string          `json:"dateModified"`
	Author           OrganizationRef `json:"author"`
	Publisher        OrganizationRef `json:"publisher"`
	MainEntityOfPage string          `json:"mainEntityOfPage"`
}

func (Article) EntityType() string { return "Article" }

type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

type FAQPage struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
}

func (FAQPage) EntityType() string { return "FAQPage" }

type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress"`
	AddressLocality string `json:"addressLocality"`
	AddressCountry  string `json:"addressCountry"`
	AddressRegion   string `json:"addressRegion"`
	PostalCode      string `json:"postalCode"`
}

type ContactPoint struct {
	Type      string `json:"@type"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
}

type AggregateRating struct {
	Type        string `json:"@type"`
	RatingValue string `json:"ratingValue"`
	RatingCount string `json:"ratingCount"`
	BestRating  string `json:"bestRating"`
	WorstRating string `json:"worstRating"`
}

type Organization struct {
	Context         string           `json:"@context"`
	Type            string           `json:"@type"`
	Name            string           `json:"name"`
	URL             string           `json:"url"`
	Logo            string           `json:"logo,omitempty"`
	Image           string           `json:"image,omitempty"`
	Description     string           `json:"description,omitempty"`
	Email           string           `json:"email,omitempty"`
	Telephone       string           `json:"telephone,omitempty"`
	Address         *PostalAddress   `json:"address,omitempty"`
	ContactPoint    *ContactPoint    `json:"contactPoint,omitempty"`
	SameAs          []string         `json:"sameAs"`
	AggregateRating *AggregateRating `json:"aggregateRating,omitempty"`
}

func (Organization) EntityType() string { return "Organization" }
