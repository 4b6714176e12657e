package blocks

import (
	"errors"
	"regexp"
	"strings"
)

// ─────────────────────────────────────────────────────────────
// Standard block set: the site's closed registry
// ─────────────────────────────────────────────────────────────

// Block type keys used outside this package.
const (
	TypeFAQ       = "faq"
	TypeRatings   = "ratings"
	TypeContact   = "contact"
	TypeParagraph = "paragraph_block"
)

const DefaultFAQTitle = "Frequently asked questions"

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,17}$`)

// CheckPhone accepts numbers like "+595 981 123 456" once spaces, dots and
// dashes are removed.
func CheckPhone(s string) error {
	compact := strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "").Replace(s)
	if !phonePattern.MatchString(compact) {
		return errors.New("Phone number must be entered in the format: '+595 981 123 456'. Up to 17 digits allowed.")
	}
	return nil
}

func char(required bool) *Definition {
	return &Definition{Kind: KindChar, Required: required, MaxLength: 255}
}

func zeroOrMore() *int {
	n := 0
	return &n
}

func list(child *Definition) *Definition {
	return &Definition{Kind: KindList, Child: child}
}

func stream(children ...Field) *Definition {
	return &Definition{Kind: KindStream, Children: children}
}

func linkTargets(internal, external, document *Definition) []Field {
	return []Field{
		{Name: "internal_link", Def: internal},
		{Name: "external_link", Def: external},
		{Name: "document_link", Def: document},
	}
}

// NewStandardRegistry builds the registry with every block type and page
// stream the site uses.
func NewStandardRegistry() *Registry {
	r := NewRegistry()

	heading := &Definition{Key: "heading_block", Kind: KindStruct, Icon: "title", Template: "blocks/heading_block.html", Fields: []Field{
		{Name: "heading_text", Def: char(true)},
		{Name: "size", Def: &Definition{Kind: KindChoice, Choices: []Choice{
			{Value: "h2", Label: "H2"},
			{Value: "h3", Label: "H3"},
			{Value: "h4", Label: "H4"},
		}}},
	}}
	paragraph := &Definition{Key: TypeParagraph, Kind: KindRichText, Required: true, Icon: "pilcrow", Template: "blocks/paragraph_block.html"}
	image := &Definition{Key: "image_block", Kind: KindStruct, Icon: "image", Template: "blocks/image_block.html", Fields: []Field{
		{Name: "image", Def: &Definition{Kind: KindImage, Required: true}},
		{Name: "caption", Def: char(false)},
		{Name: "attribution", Def: char(false)},
	}}
	quote := &Definition{Key: "block_quote", Kind: KindStruct, Icon: "openquote", Template: "blocks/blockquote.html", Fields: []Field{
		{Name: "text", Def: &Definition{Kind: KindText, Required: true}},
		{Name: "attribute_name", Def: char(false)},
	}}
	document := &Definition{Key: "document", Kind: KindDocument, Required: true, Template: "blocks/document_block.html"}
	embed := &Definition{Key: "embed_block", Kind: KindEmbed, Required: true, Icon: "media", Template: "blocks/embed_block.html",
		HelpText: "Insert an embed URL e.g https://www.youtube.com/watch?v=SGJFWirQ3ks"}

	internalLink := &Definition{Key: "internal_link", Kind: KindStruct, Icon: "link", Adapter: AdapterLink, Fields: []Field{
		{Name: "title", Def: &Definition{Kind: KindChar, MaxLength: 255, HelpText: "Leave blank to use page's listing title."}},
		{Name: "page", Def: &Definition{Kind: KindPage, Required: true}},
	}}
	externalLink := &Definition{Key: "external_link", Kind: KindStruct, Icon: "link", Adapter: AdapterLink, Fields: []Field{
		{Name: "title", Def: char(true)},
		{Name: "link", Def: &Definition{Kind: KindURL, Required: true}},
	}}
	documentLink := &Definition{Key: "document_link", Kind: KindStruct, Icon: "doc-full", Adapter: AdapterLink, Fields: []Field{
		{Name: "title", Def: char(false)},
		{Name: "document", Def: &Definition{Kind: KindDocument, Required: true}},
	}}

	link := stream(linkTargets(internalLink, externalLink, documentLink)...)
	link.Key, link.Label, link.Icon, link.Template = "link", "Link", "link", "blocks/link_stream_block.html"
	link.MinNum, link.MaxNum = 1, 1

	further := stream(linkTargets(internalLink, externalLink, documentLink)...)
	further.Key, further.Label, further.Icon, further.Template = "further_reading", "Further Reading", "tasks", "blocks/further_reading_block.html"
	further.MinNum, further.MaxNum = 1, 5

	gallery := list(image)
	gallery.Key, gallery.Template = "gallery", "blocks/gallery_block.html"

	imageLinkItem := &Definition{Key: "image_link_item", Kind: KindStruct, Icon: "image", Fields: []Field{
		{Name: "title", Def: &Definition{Kind: KindChar, MaxLength: 255, HelpText: "Keep it to one word only"}},
		{Name: "image", Def: &Definition{Kind: KindImage, Required: true}},
		{Name: "page", Def: &Definition{Kind: KindPage, Required: true}},
	}}
	imageLink := &Definition{Key: "image_link", Kind: KindStruct, Icon: "list-ol", Template: "blocks/image_link_block.html", Fields: []Field{
		{Name: "heading_text", Def: char(true)},
		{Name: "item", Def: list(imageLinkItem)},
	}}
	promotions := &Definition{Key: "promotions", Kind: KindStruct, Icon: "list-ol", Template: "blocks/promotions_block.html", Fields: imageLink.Fields}

	faqItem := &Definition{Key: "faq_item", Kind: KindStruct, Label: "Section", Icon: "title", Fields: []Field{
		{Name: "question", Def: char(true)},
		{Name: "answer", Def: &Definition{Kind: KindRichText, Required: true}},
	}}
	faq := &Definition{Key: TypeFAQ, Kind: KindStruct, Icon: "list-ol", Template: "blocks/faq_block.html", Fields: []Field{
		{Name: "title", Def: &Definition{Kind: KindChar, Required: true, MaxLength: 255, Default: DefaultFAQTitle}},
		{Name: "item", Def: list(faqItem)},
	}}

	linkList := &Definition{Key: "link_list", Kind: KindStruct, Icon: "list-ol", Template: "blocks/link_block.html", Fields: []Field{
		{Name: "heading_text", Def: char(true)},
		{Name: "item", Def: list(internalLink)},
	}}

	navTabItem := &Definition{Key: "nav_tab_item", Kind: KindStruct, Label: "Section", Icon: "title", Fields: []Field{
		{Name: "title", Def: char(true)},
		{Name: "content", Def: &Definition{Kind: KindRichText, Required: true, Template: "blocks/paragraph_block.html"}},
	}}
	navTab := &Definition{Key: "nav_tab", Kind: KindStruct, Icon: "list-ol", Template: "blocks/nav_tab_block.html", Fields: []Field{
		{Name: "title", Def: char(true)},
		{Name: "item", Def: list(navTabItem)},
	}}
	navTabLinksItem := &Definition{Key: "nav_tab_links_item", Kind: KindStruct, Label: "Tab", Icon: "title", Fields: []Field{
		{Name: "title", Def: char(true)},
		{Name: "item", Def: list(internalLink)},
	}}
	navTabLinks := &Definition{Key: "nav_tab_links", Kind: KindStruct, Icon: "list-ol", Template: "blocks/nav_tab_links_block.html", Fields: []Field{
		{Name: "title", Def: char(true)},
		{Name: "item", Def: list(navTabLinksItem)},
	}}

	contact := &Definition{Key: TypeContact, Kind: KindStruct, Template: "blocks/contact_block.html", Fields: []Field{
		{Name: "phone", Def: &Definition{Kind: KindChar, Required: true, MaxLength: 255, Check: CheckPhone}},
		{Name: "whatsapp", Def: &Definition{Kind: KindChar, Required: true, MaxLength: 255, Check: CheckPhone}},
		{Name: "email", Def: &Definition{Kind: KindEmail, Required: true}},
		{Name: "address", Def: &Definition{Kind: KindText, Required: true}},
		{Name: "website", Def: &Definition{Kind: KindURL, Required: true}},
	}}

	counter := func(help string) *Definition {
		return &Definition{Kind: KindInteger, Default: 0, MinValue: zeroOrMore(), HelpText: help}
	}
	ratings := &Definition{Key: TypeRatings, Kind: KindStruct, Icon: "pick", Template: "blocks/ratings.html", Adapter: AdapterRatings, Fields: []Field{
		{Name: "five", Def: counter("How many 5 stars?")},
		{Name: "four", Def: counter("How many 4 stars?")},
		{Name: "three", Def: counter("How many 3 stars?")},
		{Name: "two", Def: counter("How many 2 stars?")},
		{Name: "one", Def: counter("How many 1 star?")},
	}}

	for _, def := range []*Definition{
		heading, paragraph, image, quote, document, embed,
		internalLink, externalLink, documentLink, link, further, gallery,
		imageLink, promotions, faq, linkList, navTab, navTabLinks,
		contact, ratings,
	} {
		r.MustRegister(def)
	}

	body := stream(
		Field{Name: "block_quote", Def: quote},
		Field{Name: "document", Def: document},
		Field{Name: "embed_block", Def: embed},
		Field{Name: "faq", Def: faq},
		Field{Name: "further_reading", Def: further},
		Field{Name: "gallery", Def: gallery},
		Field{Name: "heading_block", Def: heading},
		Field{Name: "image_block", Def: image},
		Field{Name: "link", Def: link},
		Field{Name: "nav_tab", Def: navTab},
		Field{Name: "paragraph_block", Def: paragraph},
	)
	single := func(name string, def *Definition) *Definition {
		s := stream(Field{Name: name, Def: def})
		s.MaxNum = 1
		return s
	}

	streams := map[string]*Definition{
		"body":           body,
		"promotions":     single("promotions", promotions),
		"featured_pages": single("featured", imageLink),
		"faq":            single("faq", faq),
		"links":          stream(Field{Name: "Links", Def: linkList}),
		"nav_tab_links":  single("Links", navTabLinks),
		"companies":      single("Links", linkList),
		"contact":        single("contact", contact),
		"destinations":   single("destinations", imageLink),
		"info":           single("Info", navTab),
		"ratings":        single("Ratings", ratings),
	}
	for name, def := range streams {
		def.Key = name
		if err := r.RegisterStream(name, def); err != nil {
			panic(err)
		}
	}
	return r
}
