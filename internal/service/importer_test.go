package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventanita/internal/logger"
	"ventanita/internal/service"
)

const siteFixture = `{
  "images": [{"id": "img-bus", "title": "Bus", "file": "/media/images/bus.jpg", "width": 1200, "height": 800}],
  "documents": [{"id": "doc-horarios", "title": "Horarios", "file": "/documents/horarios.pdf", "size": 1024}],
  "pages": [
    {"type": "home", "title": "Inicio", "publish": true},
    {"parent": "/", "type": "city_index", "title": "Ciudades", "publish": true},
    {"parent": "/ciudades/", "type": "city", "title": "Asunción", "publish": true,
     "content": {"latLong": "-25.2637, -57.5759", "listingImageId": "img-bus", "streams": {
       "faq": [{"type": "faq", "value": {"item": [{"question": "¿Dónde queda la terminal?", "answer": "<p>En Barrio Terminal.</p>"}]}}]
     }}},
    {"parent": "/ciudades/", "type": "city", "title": "Luque"}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImporter_ImportDir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dir := t.TempDir()
	writeFile(t, dir, "01-site.json", siteFixture)
	writeFile(t, dir, "notes.txt", "ignored")

	im := service.NewImporter(f.pages, f.media, f.metrics, logger.Nop())
	res, err := im.ImportDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, service.ImportResult{Created: 4, Published: 3, Images: 1, Documents: 1}, res)

	city, err := f.pages.GetByPath(ctx, "es", "/ciudades/asuncion/")
	require.NoError(t, err)
	assert.True(t, city.Live)

	st, err := f.pages.State(ctx, city.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Asunción", st.Revision.Content.Title)
	assert.Equal(t, "img-bus", st.Revision.Content.ListingImageID)
	assert.Contains(t, string(st.Revision.Content.Streams["faq"]), "Barrio Terminal")

	luque, err := f.pages.GetByPath(ctx, "es", "/ciudades/luque/")
	require.NoError(t, err)
	assert.False(t, luque.Live)

	// A second import updates instead of duplicating.
	res, err = im.ImportDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, service.ImportResult{Updated: 4, Published: 3}, res)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.FixtureImports.WithLabelValues("ok")))
}

func TestImporter_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dir := t.TempDir()
	im := service.NewImporter(f.pages, f.media, f.metrics, logger.Nop())

	_, err := im.ImportFile(ctx, writeFile(t, dir, "broken.json", `{"pages": [`))
	assert.Error(t, err)

	_, err = im.ImportFile(ctx, writeFile(t, dir, "orphan.json", `{"pages": [{"parent": "/nowhere/", "type": "city", "title": "X"}]}`))
	assert.Error(t, err)

	_, err = im.ImportFile(ctx, writeFile(t, dir, "invalid.json", `{"pages": [
		{"type": "home", "title": "Inicio"},
		{"parent": "/", "type": "standard", "title": "Sobre", "content": {"latLong": "somewhere"}}
	]}`))
	assert.ErrorIs(t, err, service.ErrInvalidPage)

	_, err = im.ImportFile(ctx, writeFile(t, dir, "retype.json", `{"pages": [{"type": "standard", "title": "Inicio"}]}`))
	assert.Error(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.FixtureImports.WithLabelValues("error")))
}

func TestImporter_Watch(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	im := service.NewImporter(f.pages, f.media, f.metrics, logger.Nop())
	require.NoError(t, im.Watch(ctx, dir, 20*time.Millisecond))
	defer im.Stop()

	writeFile(t, dir, "site.json", siteFixture)

	require.Eventually(t, func() bool {
		_, err := f.pages.GetByPath(context.Background(), "es", "/ciudades/luque/")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}
