package domain

// PageType is the discriminator of a page's content model.
type PageType string

const (
	PageTypeHome         PageType = "home"
	PageTypeStandard     PageType = "standard"
	PageTypeCityIndex    PageType = "city_index"
	PageTypeCity         PageType = "city"
	PageTypeStationIndex PageType = "station_index"
	PageTypeStation      PageType = "station"
	PageTypePartnerIndex PageType = "partner_index"
	PageTypePartner      PageType = "partner"
	PageTypeBlogIndex    PageType = "blog_index"
	PageTypeBlog         PageType = "blog"
	PageTypeHelpIndex    PageType = "help_index"
	PageTypeHelpCategory PageType = "help_category"
	PageTypeHelpArticle  PageType = "help_article"
)

// StreamField binds a page field to a named stream declaration in the
// block registry.
type StreamField struct {
	Field  string `json:"field"`
	Stream string `json:"stream"`
}

// PageTypeRules describes where a page type may live and which streams it
// carries.
type PageTypeRules struct {
	Type        PageType      `json:"type"`
	Label       string        `json:"label"`
	ParentTypes []PageType    `json:"parentTypes"` // empty: locale root only
	MaxCount    int           `json:"maxCount"`    // per locale, 0 = unlimited
	Streams     []StreamField `json:"streams"`
}

// AllowsParent reports whether a page of this type may be created under a
// page of type parent.
func (r PageTypeRules) AllowsParent(parent PageType) bool {
	for _, p := range r.ParentTypes {
		if p == parent {
			return true
		}
	}
	return false
}

// StreamFor returns the stream declaration name bound to field.
func (r PageTypeRules) StreamFor(field string) (string, bool) {
	for _, s := range r.Streams {
		if s.Field == field {
			return s.Stream, true
		}
	}
	return "", false
}

var bodyOnly = []StreamField{{Field: "body", Stream: "body"}}

// RulesFor returns the rules for a page type.
func RulesFor(t PageType) (PageTypeRules, bool) {
	switch t {
	case PageTypeHome:
		return PageTypeRules{Type: t, Label: "Home", MaxCount: 1, Streams: []StreamField{
			{Field: "promotions", Stream: "promotions"},
			{Field: "featured_pages", Stream: "featured_pages"},
			{Field: "faq", Stream: "faq"},
			{Field: "links", Stream: "links"},
			{Field: "body", Stream: "body"},
		}}, true
	case PageTypeStandard:
		return PageTypeRules{Type: t, Label: "Standard page", ParentTypes: []PageType{PageTypeHome, PageTypeStandard}, Streams: bodyOnly}, true
	case PageTypeCityIndex:
		return PageTypeRules{Type: t, Label: "City index", ParentTypes: []PageType{PageTypeHome}, Streams: bodyOnly}, true
	case PageTypeCity, PageTypeStation:
		rules := PageTypeRules{Type: t, Streams: []StreamField{
			{Field: "body", Stream: "body"},
			{Field: "faq", Stream: "faq"},
			{Field: "links", Stream: "nav_tab_links"},
			{Field: "companies", Stream: "companies"},
		}}
		if t == PageTypeCity {
			rules.Label = "City"
			rules.ParentTypes = []PageType{PageTypeCityIndex}
		} else {
			rules.Label = "Station"
			rules.ParentTypes = []PageType{PageTypeCity, PageTypeStationIndex}
		}
		return rules, true
	case PageTypeStationIndex:
		return PageTypeRules{Type: t, Label: "Station index", ParentTypes: []PageType{PageTypeHome}, Streams: bodyOnly}, true
	case PageTypePartnerIndex:
		return PageTypeRules{Type: t, Label: "Partner index", ParentTypes: []PageType{PageTypeHome}, Streams: bodyOnly}, true
	case PageTypePartner:
		return PageTypeRules{Type: t, Label: "Partner", ParentTypes: []PageType{PageTypePartnerIndex}, Streams: []StreamField{
			{Field: "contact", Stream: "contact"},
			{Field: "destinations", Stream: "destinations"},
			{Field: "info", Stream: "info"},
			{Field: "body", Stream: "body"},
			{Field: "faq", Stream: "faq"},
			{Field: "links", Stream: "nav_tab_links"},
			{Field: "ratings", Stream: "ratings"},
		}}, true
	case PageTypeBlogIndex:
		return PageTypeRules{Type: t, Label: "Blog index", ParentTypes: []PageType{PageTypeHome}, MaxCount: 1, Streams: bodyOnly}, true
	case PageTypeBlog:
		return PageTypeRules{Type: t, Label: "Blog post", ParentTypes: []PageType{PageTypeBlogIndex}, Streams: bodyOnly}, true
	case PageTypeHelpIndex:
		return PageTypeRules{Type: t, Label: "Help index", ParentTypes: []PageType{PageTypeHome}, Streams: bodyOnly}, true
	case PageTypeHelpCategory:
		return PageTypeRules{Type: t, Label: "Help category", ParentTypes: []PageType{PageTypeHelpIndex}, Streams: bodyOnly}, true
	case PageTypeHelpArticle:
		return PageTypeRules{Type: t, Label: "Help article", ParentTypes: []PageType{PageTypeHelpCategory}, Streams: bodyOnly}, true
	}
	return PageTypeRules{}, false
}

// PageTypes lists every known page type in tree order.
func PageTypes() []PageType {
	return []PageType{
		PageTypeHome, PageTypeStandard,
		PageTypeCityIndex, PageTypeCity,
		PageTypeStationIndex, PageTypeStation,
		PageTypePartnerIndex, PageTypePartner,
		PageTypeBlogIndex, PageTypeBlog,
		PageTypeHelpIndex, PageTypeHelpCategory, PageTypeHelpArticle,
	}
}

// Departamento is one of Paraguay's departments (plus the capital district).
type Departamento struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

func Departamentos() []Departamento {
	return []Departamento{
		{"APY", "Alto Paraguay"},
		{"ALP", "Alto Paraná"},
		{"ASU", "Asunción"},
		{"AMB", "Amambay"},
		{"BOQ", "Boquerón"},
		{"CGZ", "Caaguazú"},
		{"CZP", "Caazapá"},
		{"CAN", "Canindeyú"},
		{"CNT", "Central"},
		{"CON", "Concepción"},
		{"COR", "Cordillera"},
		{"GUA", "Guairá"},
		{"ITA", "Itapuá"},
		{"MIS", "Misiones"},
		{"NIM", "Ñeembucú"},
		{"PAR", "Paraguarí"},
		{"PRH", "Presidente Hayes"},
		{"SPD", "San Pedro"},
	}
}
