package schemaorg_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventanita/internal/blocks"
	"ventanita/internal/domain"
	"ventanita/internal/schemaorg"
)

const base = "https://ventanita.com.py"

func testSite() schemaorg.Site {
	return schemaorg.Site{
		Name:               "Ventanita",
		BaseURL:            base + "/",
		LicensePath:        "/terms/",
		AcquireLicensePath: "/contact/",
		LogoURL:            "/static/logo.png",
		SupportEmail:       "hola@ventanita.com.py",
		SupportPhone:       "+595 21 000 000",
		SupportAddress:     "Av. Mariscal López 1234",
		AddressLocality:    "Asunción",
		AddressRegion:      "Asunción",
		AddressCountry:     "PY",
		PostalCode:         "001424",
		SameAs:             []string{"https://www.facebook.com/ventanita"},
	}
}

func stream(t *testing.T, name, raw string) blocks.StreamValue {
	t.Helper()
	s, err := blocks.NewStandardRegistry().ValidateStream(name, json.RawMessage(raw))
	require.NoError(t, err)
	return s
}

func published() *time.Time {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &ts
}

var home = schemaorg.Crumb{Name: "Inicio", URL: base + "/"}

func TestGraph_FAQItemsAcrossBlocks(t *testing.T) {
	body := stream(t, "body", `[
		{"type": "faq", "value": {"item": [
			{"question": "¿Hay wifi?", "answer": "<p>Sí, en <b>todos</b> los buses.</p>"},
			{"question": "¿Baño?", "answer": "<p>Sí</p>"}
		]}},
		{"type": "paragraph_block", "value": "<p>texto</p>"},
		{"type": "faq", "value": {"item": [
			{"question": "¿Equipaje?", "answer": "<ul><li>Una valija</li><li>Un bolso</li></ul>"},
			{"question": "¿Mascotas?", "answer": "<p>No</p>"},
			{"question": "¿Niños?", "answer": "<p>Desde 5 años pagan</p>"}
		]}}
	]`)
	pc := schemaorg.PageContext{
		Type: domain.PageTypeHelpArticle, Title: "Viajar", URL: base + "/ayuda/viajar/",
		Ancestors: []schemaorg.Crumb{home},
		Streams:   map[string]blocks.StreamValue{"body": body},
	}

	faq, ok := schemaorg.New(testSite()).FAQ(pc)
	require.True(t, ok)
	require.Len(t, faq.MainEntity, 5)
	assert.Equal(t, "¿Hay wifi?", faq.MainEntity[0].Name)
	assert.Equal(t, "Sí, en todos los buses.", faq.MainEntity[0].AcceptedAnswer.Text)
	assert.Equal(t, "Una valija Un bolso", faq.MainEntity[2].AcceptedAnswer.Text)
	for _, q := range faq.MainEntity {
		assert.NotContains(t, q.AcceptedAnswer.Text, "<")
	}
}

func TestGraph_FAQFromDedicatedStream(t *testing.T) {
	faqs := stream(t, "faq", `[{"type": "faq", "value": {"item": [{"question": "q", "answer": "<p>a</p>"}]}}]`)
	pc := schemaorg.PageContext{Type: domain.PageTypeHome, Streams: map[string]blocks.StreamValue{"faq": faqs}}

	g := schemaorg.New(testSite()).Graph(pc)
	assert.Contains(t, g.Types(), "FAQPage")
}

func TestBreadcrumb_Idempotent(t *testing.T) {
	s := schemaorg.New(testSite())
	pc := schemaorg.PageContext{
		Type: domain.PageTypeStation, Title: "Terminal de Encarnación", URL: base + "/ciudades/encarnacion/terminal/",
		Ancestors: []schemaorg.Crumb{
			home,
			{Name: "Ciudades", URL: base + "/ciudades/"},
			{Name: "Encarnación", URL: base + "/ciudades/encarnacion/"},
		},
	}

	first := s.Breadcrumb(pc)
	assert.Equal(t, first, s.Breadcrumb(pc))
	assert.Equal(t, s.Graph(pc), s.Graph(pc))
}

func TestBreadcrumb_PerPageType(t *testing.T) {
	s := schemaorg.New(testSite())
	partners := schemaorg.Crumb{Name: "Empresas", URL: base + "/empresas/"}
	cities := schemaorg.Crumb{Name: "Ciudades", URL: base + "/ciudades/"}
	encarnacion := schemaorg.Crumb{Name: "Encarnación", URL: base + "/ciudades/encarnacion/"}

	tests := []struct {
		name string
		pc   schemaorg.PageContext
		want []string
		urls []string
	}{
		{
			name: "home",
			pc:   schemaorg.PageContext{Type: domain.PageTypeHome, Title: "Inicio", URL: base + "/"},
			want: []string{"Ventanita"},
			urls: []string{base + "/"},
		},
		{
			name: "blog",
			pc: schemaorg.PageContext{Type: domain.PageTypeBlog, Title: "Feriados", URL: base + "/blog/feriados/",
				Ancestors: []schemaorg.Crumb{home, {Name: "Blog", URL: base + "/blog/"}}},
			want: []string{"Ventanita", "Blog", "Feriados"},
			urls: []string{base + "/", base + "/blog/", base + "/blog/feriados/"},
		},
		{
			name: "partner index",
			pc:   schemaorg.PageContext{Type: domain.PageTypePartnerIndex, Title: "Empresas", URL: partners.URL, Ancestors: []schemaorg.Crumb{home}},
			want: []string{"Paraguay", "Empresas de Micro"},
			urls: []string{base + "/", partners.URL},
		},
		{
			name: "partner",
			pc: schemaorg.PageContext{Type: domain.PageTypePartner, Title: "NSA", URL: base + "/empresas/nsa/",
				Ancestors: []schemaorg.Crumb{home, partners}},
			want: []string{"Paraguay", "Empresas de Omnibus", "NSA"},
			urls: []string{base + "/", partners.URL, base + "/empresas/nsa/"},
		},
		{
			name: "city",
			pc: schemaorg.PageContext{Type: domain.PageTypeCity, Title: "Encarnación", URL: encarnacion.URL,
				Ancestors: []schemaorg.Crumb{home, cities}},
			want: []string{"Pasajes de Micro", "Paraguay", "Encarnación"},
			urls: []string{base + "/", cities.URL, encarnacion.URL},
		},
		{
			name: "station",
			pc: schemaorg.PageContext{Type: domain.PageTypeStation, Title: "Terminal", URL: encarnacion.URL + "terminal/",
				Ancestors: []schemaorg.Crumb{home, cities, encarnacion}},
			want: []string{"Pasajes de Micro", "Paraguay", "Encarnación", "Terminal"},
			urls: []string{base + "/", cities.URL, encarnacion.URL, encarnacion.URL + "terminal/"},
		},
		{
			name: "english home",
			pc:   schemaorg.PageContext{Type: domain.PageTypeHome, Title: "Home", URL: base + "/en/"},
			want: []string{"Ventanita"},
			urls: []string{base + "/en/"},
		},
		{
			name: "english city starts at the locale root",
			pc: schemaorg.PageContext{Type: domain.PageTypeCity, Title: "Encarnacion", URL: base + "/en/cities/encarnacion/",
				Ancestors: []schemaorg.Crumb{{Name: "Home", URL: base + "/en/"}, {Name: "Cities", URL: base + "/en/cities/"}}},
			want: []string{"Pasajes de Micro", "Paraguay", "Encarnacion"},
			urls: []string{base + "/en/", base + "/en/cities/", base + "/en/cities/encarnacion/"},
		},
		{
			name: "help article walks ancestors",
			pc: schemaorg.PageContext{Type: domain.PageTypeHelpArticle, Title: "Reembolsos", URL: base + "/ayuda/pagos/reembolsos/",
				Ancestors: []schemaorg.Crumb{
					home,
					{Name: "Ayuda", URL: base + "/ayuda/"},
					{Name: "Pagos", URL: base + "/ayuda/pagos/"},
				}},
			want: []string{"Ventanita", "Ayuda", "Pagos", "Reembolsos"},
			urls: []string{base + "/", base + "/ayuda/", base + "/ayuda/pagos/", base + "/ayuda/pagos/reembolsos/"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := s.Breadcrumb(tt.pc).ItemListElement
			require.Len(t, items, len(tt.want))
			for i, item := range items {
				assert.Equal(t, i+1, item.Position)
				assert.Equal(t, tt.want[i], item.Name)
				assert.Equal(t, tt.urls[i], item.Item)
			}
		})
	}
}

func TestGraph_EntityOrderPerPageType(t *testing.T) {
	s := schemaorg.New(testSite())
	img := &blocks.ImageRef{ID: "1", URL: "/media/images/bus.jpg"}
	faqs := stream(t, "faq", `[{"type": "faq", "value": {"item": [{"question": "q", "answer": "a"}]}}]`)

	tests := []struct {
		pageType domain.PageType
		want     []string
	}{
		{domain.PageTypeHome, []string{"BreadcrumbList", "ImageObject", "FAQPage", "Organization"}},
		{domain.PageTypeBlogIndex, []string{"BreadcrumbList", "ImageObject", "Article", "FAQPage", "Organization"}},
		{domain.PageTypeBlog, []string{"BreadcrumbList", "ImageObject", "Article", "FAQPage", "Organization"}},
		{domain.PageTypePartnerIndex, []string{"BreadcrumbList", "ImageObject", "FAQPage", "Article", "Organization"}},
		{domain.PageTypePartner, []string{"BreadcrumbList", "ImageObject", "Article", "FAQPage", "Organization"}},
		{domain.PageTypeCityIndex, []string{"BreadcrumbList", "ImageObject"}},
		{domain.PageTypeCity, []string{"BreadcrumbList", "ImageObject"}},
		{domain.PageTypeStationIndex, []string{"BreadcrumbList", "ImageObject"}},
		{domain.PageTypeStation, []string{"BreadcrumbList", "ImageObject"}},
		{domain.PageTypeStandard, []string{"BreadcrumbList", "ImageObject", "Article", "FAQPage", "Organization"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.pageType), func(t *testing.T) {
			pc := schemaorg.PageContext{
				Type: tt.pageType, Title: "T", URL: base + "/t/",
				Ancestors:        []schemaorg.Crumb{home},
				ListingImage:     img,
				FirstPublishedAt: published(),
				Streams:          map[string]blocks.StreamValue{"faq": faqs},
			}
			assert.Equal(t, tt.want, s.Graph(pc).Types())
		})
	}
}

func TestGraph_OmitsEntitiesWithoutData(t *testing.T) {
	pc := schemaorg.PageContext{Type: domain.PageTypeBlog, Title: "Borrador", URL: base + "/blog/borrador/"}
	assert.Equal(t, []string{"BreadcrumbList", "Organization"}, schemaorg.New(testSite()).Graph(pc).Types())
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	s := schemaorg.New(testSite())
	pc := schemaorg.PageContext{
		Type: domain.PageTypeStandard, Title: "Quiénes somos", URL: base + "/quienes-somos/",
		Ancestors:        []schemaorg.Crumb{home},
		SocialImage:      &blocks.ImageRef{URL: "/media/images/equipo.jpg"},
		FirstPublishedAt: published(),
	}

	out, err := s.JSON(pc)
	require.NoError(t, err)

	var doc struct {
		Context string           `json:"@context"`
		Graph   []map[string]any `json:"@graph"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))

	g := s.Graph(pc)
	assert.Equal(t, "http://schema.org", doc.Context)
	require.Len(t, doc.Graph, len(g.Graph))
	for i, e := range doc.Graph {
		assert.Equal(t, g.Graph[i].EntityType(), e["@type"])
		assert.Equal(t, "https://schema.org", e["@context"])
	}
}

func TestImage_LicenseOverrideAndFallback(t *testing.T) {
	s := schemaorg.New(testSite())
	pc := schemaorg.PageContext{
		Type: domain.PageTypeStationIndex, Title: "Terminales", URL: base + "/terminales/",
		SocialImage: &blocks.ImageRef{URL: "/media/images/terminal.jpg"},
		SocialText:  "Terminales del país",
	}

	g := s.Graph(pc)
	require.Len(t, g.Graph, 2)
	img := g.Graph[1].(schemaorg.ImageObject)
	assert.Equal(t, base+"/media/images/terminal.jpg", img.ContentURL)
	assert.Equal(t, base+"/condiciones-generales/", img.License)
	assert.Equal(t, base+"/contact/", img.AcquireLicensePage)
	assert.Equal(t, "Terminales del país", img.CreditText)
	assert.Equal(t, "Ventanita", img.Creator.Name)

	licenses := map[domain.PageType]string{
		domain.PageTypeStation: base + "/condiciones-generales/",
		domain.PageTypeCity:    base + "/terms/",
	}
	for pt, want := range licenses {
		pc.Type = pt
		g := s.Graph(pc)
		require.Len(t, g.Graph, 2, pt)
		assert.Equal(t, want, g.Graph[1].(schemaorg.ImageObject).License, pt)
	}

	pc.Type = domain.PageTypeStandard
	pc.ListingImage = &blocks.ImageRef{URL: "/media/images/listing.jpg"}
	pc.ListingTitle = "Listado"
	img, ok := s.Image(pc, "")
	require.True(t, ok)
	assert.Equal(t, base+"/media/images/listing.jpg", img.ContentURL)
	assert.Equal(t, base+"/terms/", img.License)
	assert.Equal(t, "Listado", img.CreditText)
}

func TestArticle_Dates(t *testing.T) {
	first := published()
	last := first.Add(48 * time.Hour)
	pc := schemaorg.PageContext{
		Type: domain.PageTypeBlog, Title: "Feriados", SEOTitle: "Feriados 2024", URL: base + "/blog/feriados/",
		FirstPublishedAt: first, LastPublishedAt: &last,
	}

	a, ok := schemaorg.New(testSite()).Article(pc)
	require.True(t, ok)
	assert.Equal(t, "Feriados 2024", a.Headline)
	assert.Equal(t, "2024-03-01T12:00:00Z", a.DatePublished)
	assert.Equal(t, "2024-03-03T12:00:00Z", a.DateModified)
	assert.Equal(t, "Ventanita", a.Publisher.Name)
	assert.Equal(t, pc.URL, a.MainEntityOfPage)
}

func TestPartnerOrganization(t *testing.T) {
	s := schemaorg.New(testSite())
	pc := schemaorg.PageContext{
		Type: domain.PageTypePartner, Title: "NSA", URL: base + "/empresas/nsa/",
		SearchDescription: "Pasajes de NSA",
		ListingImage:      &blocks.ImageRef{URL: "/media/images/nsa-bus.jpg"},
		Logo:              &blocks.ImageRef{URL: "/media/images/nsa-logo.png"},
		Streams: map[string]blocks.StreamValue{
			"contact": stream(t, "contact", `[{"type": "contact", "value": {"phone": "+595 981 123 456",
				"whatsapp": "+595981123456", "email": "info@nsa.com.py", "address": "Terminal de Asunción",
				"website": "https://nsa.com.py"}}]`),
			"ratings": stream(t, "ratings", `[{"type": "Ratings", "value": {"five": 10, "four": 5, "one": 5}}]`),
		},
	}

	org := s.PartnerOrganization(pc)
	assert.Equal(t, "NSA", org.Name)
	assert.Equal(t, pc.URL, org.URL)
	assert.Equal(t, base+"/media/images/nsa-logo.png", org.Logo)
	assert.Equal(t, "info@nsa.com.py", org.Email)
	assert.Equal(t, "+595 981 123 456", org.ContactPoint.Telephone)
	assert.Equal(t, "Terminal de Asunción", org.Address.StreetAddress)
	assert.Equal(t, "001424", org.Address.PostalCode)
	require.NotNil(t, org.AggregateRating)
	assert.Equal(t, "3.8", org.AggregateRating.RatingValue)
	assert.Equal(t, "20", org.AggregateRating.RatingCount)
	assert.Equal(t, "5", org.AggregateRating.BestRating)
	assert.Equal(t, "1", org.AggregateRating.WorstRating)

	out, err := json.Marshal(org)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"sameAs":[]`)
	assert.NotContains(t, string(out), "facebook.com/ventanita")
	assert.Equal(t, []string{"https://www.facebook.com/ventanita"}, s.Organization().SameAs)
}

func TestPartnerOrganization_Defaults(t *testing.T) {
	pc := schemaorg.PageContext{
		Type: domain.PageTypePartner, Title: "Nueva", URL: base + "/empresas/nueva/",
		Streams: map[string]blocks.StreamValue{
			"ratings": stream(t, "ratings", `[{"type": "Ratings", "value": {}}]`),
		},
	}

	org := schemaorg.New(testSite()).PartnerOrganization(pc)
	assert.Equal(t, "hola@ventanita.com.py", org.Email)
	assert.Equal(t, "+595 21 000 000", org.Telephone)
	assert.Equal(t, "Av. Mariscal López 1234", org.Address.StreetAddress)
	assert.Empty(t, org.Logo)
	assert.Nil(t, org.AggregateRating, "no ratings, no aggregate")

	out, err := json.Marshal(org)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "aggregateRating")
}

func TestEntityOrder(t *testing.T) {
	s := schemaorg.New(testSite())
	assert.Equal(t, []string{"breadcrumb", "image", "article", "faq", "partner_organization"}, s.EntityOrder(domain.PageTypePartner))
	assert.Equal(t, s.EntityOrder(domain.PageTypeStandard), s.EntityOrder(domain.PageType("unknown")))
}
