package blocks

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ─────────────────────────────────────────────────────────────
// Link adapter: one value over internal, external and document targets
// ─────────────────────────────────────────────────────────────

// LinkKind classifies a link by its populated targets.
type LinkKind string

const (
	LinkInternal LinkKind = "internal"
	LinkDocument LinkKind = "document"
	LinkExternal LinkKind = "external"
)

// Target is one variant of a link's destination.
type Target interface {
	linkKind() LinkKind
}

// PageTarget is a resolved internal page.
type PageTarget struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ExternalTarget is a literal URL.
type ExternalTarget struct {
	URL string `json:"url"`
}

// DocumentTarget is a resolved uploaded document.
type DocumentTarget struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Filename  string `json:"filename"`
	Extension string `json:"extension"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
}

func (PageTarget) linkKind() LinkKind     { return LinkInternal }
func (ExternalTarget) linkKind() LinkKind { return LinkExternal }
func (DocumentTarget) linkKind() LinkKind { return LinkDocument }

// ImageRef is a resolved image.
type ImageRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Resolver looks up chooser references. Missing or deleted targets
// report false.
type Resolver interface {
	ResolvePage(id string) (PageTarget, bool)
	ResolveDocument(id string) (DocumentTarget, bool)
	ResolveImage(id string) (ImageRef, bool)
}

// Link holds an optional title and up to one target per variant.
type Link struct {
	title    string
	external *ExternalTarget
	page     *PageTarget
	document *DocumentTarget
}

// NewLink builds a link from its targets. Later targets of the same
// variant replace earlier ones.
func NewLink(title string, targets ...Target) Link {
	l := Link{title: title}
	for _, t := range targets {
		switch t := t.(type) {
		case ExternalTarget:
			l.external = &t
		case PageTarget:
			l.page = &t
		case DocumentTarget:
			l.document = &t
		}
	}
	return l
}

// LinkFromStruct reads a stored link struct ("title", "link", "page",
// "document" fields) and resolves its references.
func LinkFromStruct(v *StructValue, r Resolver) Link {
	var targets []Target
	if u := v.String("link"); u != "" {
		targets = append(targets, ExternalTarget{URL: u})
	}
	if id := v.String("page"); id != "" && r != nil {
		if p, ok := r.ResolvePage(id); ok {
			targets = append(targets, p)
		}
	}
	if id := v.String("document"); id != "" && r != nil {
		if d, ok := r.ResolveDocument(id); ok {
			targets = append(targets, d)
		}
	}
	return NewLink(v.String("title"), targets...)
}

// targets returns the populated variants in URL precedence order.
func (l Link) targets() []Target {
	out := make([]Target, 0, 3)
	if l.external != nil {
		out = append(out, *l.external)
	}
	if l.page != nil {
		out = append(out, *l.page)
	}
	if l.document != nil {
		out = append(out, *l.document)
	}
	return out
}

// URL returns the first non-empty of external URL, page URL, document URL.
func (l Link) URL() string {
	for _, t := range l.targets() {
		var u string
		switch t := t.(type) {
		case ExternalTarget:
			u = t.URL
		case PageTarget:
			u = t.URL
		case DocumentTarget:
			u = t.URL
		}
		if u != "" {
			return u
		}
	}
	return ""
}

// Title returns the explicit title, else the page title, else the
// document title or file name.
func (l Link) Title() string {
	if l.title != "" {
		return l.title
	}
	for _, t := range l.targets() {
		switch t := t.(type) {
		case PageTarget:
			if t.Title != "" {
				return t.Title
			}
		case DocumentTarget:
			if t.Title != "" {
				return t.Title
			}
			if t.Filename != "" {
				return t.Filename
			}
		}
	}
	return ""
}

// Kind is internal when a page is set, else document, else external.
func (l Link) Kind() LinkKind {
	switch {
	case l.page != nil:
		return LinkInternal
	case l.document != nil:
		return LinkDocument
	}
	return LinkExternal
}

// FileSize is the humanized document size, only for document links.
func (l Link) FileSize() string {
	if l.Kind() != LinkDocument {
		return ""
	}
	return FileSize(l.document.Size)
}

var sizeUnits = []string{"KB", "MB", "GB", "TB", "PB"}

// FileSize renders n bytes in 1024 steps with one decimal: "512 bytes",
// "1.5 KB", "2.0 MB".
func FileSize(n int64) string {
	switch {
	case n == 1:
		return "1 byte"
	case n < 1024:
		return fmt.Sprintf("%d bytes", max(n, 0))
	}
	v := float64(n) / 1024
	unit := sizeUnits[0]
	for _, u := range sizeUnits[1:] {
		if v < 1024 {
			break
		}
		v /= 1024
		unit = u
	}
	return humanize.FormatFloat("#.#", v) + " " + unit
}

// FileExtension is the upper-cased document extension, only for document
// links.
func (l Link) FileExtension() string {
	if l.Kind() != LinkDocument {
		return ""
	}
	return strings.ToUpper(l.document.Extension)
}

// LinkView is the render-ready form of a Link.
type LinkView struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Kind          LinkKind `json:"kind"`
	FileSize      string   `json:"fileSize,omitempty"`
	FileExtension string   `json:"fileExtension,omitempty"`
}

func (l Link) View() LinkView {
	return LinkView{
		URL:           l.URL(),
		Title:         l.Title(),
		Kind:          l.Kind(),
		FileSize:      l.FileSize(),
		FileExtension: l.FileExtension(),
	}
}
