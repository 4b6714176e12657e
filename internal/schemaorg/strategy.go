package schemaorg

import "ventanita/internal/domain"

type crumbPolicy func(s *Synthesizer, pc PageContext) []Crumb

type builder struct {
	name  string
	build func(s *Synthesizer, pc PageContext, st strategy) (Entity, bool)
}

// strategy is the per page type recipe: how the trail is labelled and
// which entities appear, in order.
type strategy struct {
	breadcrumb  crumbPolicy
	entities    []builder
	licensePath string
}

var (
	breadcrumbEntity = builder{"breadcrumb", func(s *Synthesizer, pc PageContext, _ strategy) (Entity, bool) {
		return s.Breadcrumb(pc), true
	}}
	imageEntity = builder{"image", func(s *Synthesizer, pc PageContext, st strategy) (Entity, bool) {
		return s.Image(pc, st.licensePath)
	}}
	articleEntity = builder{"article", func(s *Synthesizer, pc PageContext, _ strategy) (Entity, bool) {
		return s.Article(pc)
	}}
	faqEntity = builder{"faq", func(s *Synthesizer, pc PageContext, _ strategy) (Entity, bool) {
		return s.FAQ(pc)
	}}
	orgEntity = builder{"organization", func(s *Synthesizer, _ PageContext, _ strategy) (Entity, bool) {
		return s.Organization(), true
	}}
	partnerEntity = builder{"partner_organization", func(s *Synthesizer, pc PageContext, _ strategy) (Entity, bool) {
		return s.PartnerOrganization(pc), true
	}}
)

func (s *Synthesizer) strategies() map[domain.PageType]strategy {
	standard := strategy{
		breadcrumb: siteTrail,
		entities:   []builder{breadcrumbEntity, imageEntity, articleEntity, faqEntity, orgEntity},
	}
	return map[domain.PageType]strategy{
		domain.PageTypeHome: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				return []Crumb{{s.site.Name, s.home(pc)}}
			},
			entities: []builder{breadcrumbEntity, imageEntity, faqEntity, orgEntity},
		},
		domain.PageTypeBlogIndex: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				return []Crumb{{"Ventanita", s.home(pc)}, {"Blog", pc.URL}}
			},
			entities: standard.entities,
		},
		domain.PageTypeBlog: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				blog := s.home(pc) + "blog/"
				if p, ok := pc.parent(); ok {
					blog = p.URL
				}
				return []Crumb{{"Ventanita", s.home(pc)}, {"Blog", blog}, {pc.Title, pc.URL}}
			},
			entities: standard.entities,
		},
		domain.PageTypePartnerIndex: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				return []Crumb{{"Paraguay", s.home(pc)}, {"Empresas de Micro", pc.URL}}
			},
			entities: []builder{breadcrumbEntity, imageEntity, faqEntity, articleEntity, orgEntity},
		},
		domain.PageTypePartner: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				return []Crumb{
					{"Paraguay", s.home(pc)},
					{"Empresas de Omnibus", s.parentURL(pc)},
					{pc.Title, pc.URL},
				}
			},
			entities: []builder{breadcrumbEntity, imageEntity, articleEntity, faqEntity, partnerEntity},
		},
		domain.PageTypeCityIndex: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				return []Crumb{{"Pasajes de Micro", s.home(pc)}, {pc.Title, pc.URL}}
			},
			entities: []builder{breadcrumbEntity, imageEntity},
		},
		domain.PageTypeCity: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				return []Crumb{
					{"Pasajes de Micro", s.home(pc)},
					{"Paraguay", s.parentURL(pc)},
					{pc.Title, pc.URL},
				}
			},
			entities:    []builder{breadcrumbEntity, imageEntity},
			licensePath: "/terms/",
		},
		domain.PageTypeStationIndex: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				return []Crumb{{"Paraguay", s.home(pc)}, {pc.Title, pc.URL}}
			},
			entities:    []builder{breadcrumbEntity, imageEntity},
			licensePath: "/condiciones-generales/",
		},
		domain.PageTypeStation: {
			breadcrumb: func(s *Synthesizer, pc PageContext) []Crumb {
				gp, ok := pc.grandparent()
				if !ok {
					gp = Crumb{URL: s.home(pc)}
				}
				p, ok := pc.parent()
				if !ok {
					p = Crumb{Name: pc.Title, URL: pc.URL}
				}
				return []Crumb{
					{"Pasajes de Micro", s.home(pc)},
					{"Paraguay", gp.URL},
					{p.Name, p.URL},
					{pc.Title, pc.URL},
				}
			},
			entities:    []builder{breadcrumbEntity, imageEntity},
			licensePath: "/condiciones-generales/",
		},
		domain.PageTypeHelpIndex:    standard,
		domain.PageTypeHelpCategory: standard,
		domain.PageTypeHelpArticle:  standard,
		domain.PageTypeStandard:     standard,
	}
}

func (s *Synthesizer) strategyFor(t domain.PageType) strategy {
	if st, ok := s.table[t]; ok {
		return st
	}
	return s.table[domain.PageTypeStandard]
}

func (s *Synthesizer) parentURL(pc PageContext) string {
	if p, ok := pc.parent(); ok {
		return p.URL
	}
	return s.home(pc)
}

// home is the URL of the page's locale root: the first ancestor, the page
// itself for a home page, else the site root.
func (s *Synthesizer) home(pc PageContext) string {
	switch {
	case len(pc.Ancestors) > 0:
		return pc.Ancestors[0].URL
	case pc.Type == domain.PageTypeHome && pc.URL != "":
		return pc.URL
	}
	return s.root()
}

// siteTrail walks the real ancestors below the locale root.
func siteTrail(s *Synthesizer, pc PageContext) []Crumb {
	out := []Crumb{{s.site.Name, s.home(pc)}}
	if len(pc.Ancestors) > 1 {
		out = append(out, pc.Ancestors[1:]...)
	}
	return append(out, Crumb{pc.Title, pc.URL})
}
