package blocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ventanita/internal/blocks"
)

type fakeResolver struct {
	pages map[string]blocks.PageTarget
	docs  map[string]blocks.DocumentTarget
}

func (f fakeResolver) ResolvePage(id string) (blocks.PageTarget, bool) {
	p, ok := f.pages[id]
	return p, ok
}

func (f fakeResolver) ResolveDocument(id string) (blocks.DocumentTarget, bool) {
	d, ok := f.docs[id]
	return d, ok
}

func (f fakeResolver) ResolveImage(id string) (blocks.ImageRef, bool) {
	return blocks.ImageRef{}, false
}

var (
	asuncion = blocks.PageTarget{ID: "p1", Title: "Asunción", URL: "https://ventanita.com.py/ciudades/asuncion/"}
	horarios = blocks.DocumentTarget{
		ID: "d1", Title: "Horarios", Filename: "horarios.pdf", Extension: "pdf",
		URL: "https://ventanita.com.py/documents/d1/horarios.pdf", Size: 1536,
	}
	external = blocks.ExternalTarget{URL: "https://example.com/"}
)

func TestLink_URLPrecedence(t *testing.T) {
	all := blocks.NewLink("", external, asuncion, horarios)
	assert.Equal(t, "https://example.com/", all.URL())

	pageAndDoc := blocks.NewLink("", asuncion, horarios)
	assert.Equal(t, asuncion.URL, pageAndDoc.URL())

	docOnly := blocks.NewLink("", horarios)
	assert.Equal(t, horarios.URL, docOnly.URL())

	assert.Equal(t, "", blocks.NewLink("title only").URL())
}

func TestLink_URLSkipsEmptyVariants(t *testing.T) {
	l := blocks.NewLink("", blocks.ExternalTarget{}, blocks.PageTarget{ID: "x"}, horarios)
	assert.Equal(t, horarios.URL, l.URL())
}

func TestLink_TitleFallback(t *testing.T) {
	assert.Equal(t, "Asunción", blocks.NewLink("", asuncion).Title())
	assert.Equal(t, "Explicit", blocks.NewLink("Explicit", asuncion).Title())
	assert.Equal(t, "Horarios", blocks.NewLink("", horarios).Title())

	untitled := horarios
	untitled.Title = ""
	assert.Equal(t, "horarios.pdf", blocks.NewLink("", untitled).Title())
	assert.Equal(t, "", blocks.NewLink("", external).Title())
}

func TestLink_Kind(t *testing.T) {
	assert.Equal(t, blocks.LinkInternal, blocks.NewLink("", asuncion, horarios).Kind())
	assert.Equal(t, blocks.LinkDocument, blocks.NewLink("", external, horarios).Kind())
	assert.Equal(t, blocks.LinkExternal, blocks.NewLink("", external).Kind())
	assert.Equal(t, blocks.LinkExternal, blocks.NewLink("").Kind())
}

func TestLink_FileDetailsOnlyForDocuments(t *testing.T) {
	doc := blocks.NewLink("", horarios)
	assert.Equal(t, "1.5 KB", doc.FileSize())
	assert.Equal(t, "PDF", doc.FileExtension())

	page := blocks.NewLink("", asuncion, horarios)
	assert.Empty(t, page.FileSize())
	assert.Empty(t, page.FileExtension())
}

func TestFileSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 bytes"},
		{1, "1 byte"},
		{1023, "1023 bytes"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{15 * 1024, "15.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, blocks.FileSize(tt.n), "%d bytes", tt.n)
	}
}

func TestLinkFromStruct_ResolvesReferences(t *testing.T) {
	r := fakeResolver{
		pages: map[string]blocks.PageTarget{"p1": asuncion},
		docs:  map[string]blocks.DocumentTarget{"d1": horarios},
	}

	v := blocks.NewStructValue(map[string]any{"title": "", "page": "p1"})
	l := blocks.LinkFromStruct(v, r)
	assert.Equal(t, asuncion.URL, l.URL())
	assert.Equal(t, "Asunción", l.Title())

	v = blocks.NewStructValue(map[string]any{"document": "d1"})
	assert.Equal(t, blocks.LinkDocument, blocks.LinkFromStruct(v, r).Kind())
}

func TestLinkFromStruct_DeletedTargetIsEmpty(t *testing.T) {
	v := blocks.NewStructValue(map[string]any{"page": "gone"})
	l := blocks.LinkFromStruct(v, fakeResolver{})

	assert.Equal(t, "", l.URL())
	assert.Equal(t, "", l.Title())
	assert.NotPanics(t, func() { _ = blocks.LinkFromStruct(v, nil).View() })
}
