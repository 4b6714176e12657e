package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventanita/internal/domain"
	"ventanita/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "ventanita.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newPage(parentID string, t domain.PageType, slug, urlPath string) *domain.Page {
	return &domain.Page{
		ID: uuid.New().String(), ParentID: parentID, Type: t,
		Title: slug, Slug: slug, Locale: "es", URLPath: urlPath,
	}
}

func TestOpen_MigrationsAreRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ventanita.db")
	db, err := storage.Open(storage.DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = storage.Open(storage.DriverSQLite, path)
	require.NoError(t, err, "reopening must skip applied migrations")
	assert.NoError(t, db.Ping(context.Background()))
	db.Close()
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open("oracle", "x")
	assert.Error(t, err)
}

func TestPageStore_CRUD(t *testing.T) {
	ctx := context.Background()
	pages := storage.NewPageStore(openDB(t))

	home := newPage("", domain.PageTypeHome, "", "/")
	require.NoError(t, pages.CreatePage(ctx, home))
	cities := newPage(home.ID, domain.PageTypeCityIndex, "ciudades", "/ciudades/")
	require.NoError(t, pages.CreatePage(ctx, cities))

	got, err := pages.GetPage(ctx, cities.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PageTypeCityIndex, got.Type)
	assert.False(t, got.Live)
	assert.Nil(t, got.FirstPublishedAt)

	byPath, err := pages.GetPageByPath(ctx, "es", "/ciudades/")
	require.NoError(t, err)
	assert.Equal(t, cities.ID, byPath.ID)

	children, err := pages.ListChildren(ctx, home.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)

	published := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	got.Live = true
	got.FirstPublishedAt = &published
	got.LastPublishedAt = &published
	got.LiveRevisionID = "r1"
	require.NoError(t, pages.UpdatePage(ctx, got))

	again, err := pages.GetPage(ctx, cities.ID)
	require.NoError(t, err)
	assert.True(t, again.Live)
	assert.Equal(t, "r1", again.LiveRevisionID)
	require.NotNil(t, again.FirstPublishedAt)
	assert.True(t, published.Equal(*again.FirstPublishedAt))

	n, err := pages.CountPages(ctx, domain.PageTypeHome, "es")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, pages.DeletePage(ctx, cities.ID))
	_, err = pages.GetPage(ctx, cities.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPageStore_UniquePath(t *testing.T) {
	ctx := context.Background()
	pages := storage.NewPageStore(openDB(t))

	require.NoError(t, pages.CreatePage(ctx, newPage("", domain.PageTypeHome, "", "/")))
	assert.Error(t, pages.CreatePage(ctx, newPage("", domain.PageTypeHome, "", "/")))

	en := newPage("", domain.PageTypeHome, "", "/")
	en.Locale = "en"
	assert.NoError(t, pages.CreatePage(ctx, en), "paths are unique per locale")
}

func TestPageStore_UpdateMissing(t *testing.T) {
	err := storage.NewPageStore(openDB(t)).UpdatePage(context.Background(), &domain.Page{ID: "missing"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRevisionStore(t *testing.T) {
	ctx := context.Background()
	revs := storage.NewRevisionStore(openDB(t))

	first := &domain.Revision{ID: "r1", PageID: "p1", Content: domain.PageContent{
		Title:   "Asunción",
		Streams: map[string]json.RawMessage{"body": json.RawMessage(`[{"type":"paragraph_block","value":"<p>x</p>","id":"a"}]`)},
	}}
	require.NoError(t, revs.CreateRevision(ctx, first))
	require.NoError(t, revs.CreateRevision(ctx, &domain.Revision{ID: "r2", PageID: "p1", Content: domain.PageContent{Title: "Asunción 2"}}))

	got, err := revs.GetRevision(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Asunción", got.Content.Title)
	assert.JSONEq(t, string(first.Content.Streams["body"]), string(got.Content.Streams["body"]))

	list, err := revs.ListRevisions(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID, "newest first")

	_, err = revs.GetRevision(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRevisionStore_GoLive(t *testing.T) {
	ctx := context.Background()
	revs := storage.NewRevisionStore(openDB(t))
	for _, id := range []string{"past", "future", "unscheduled"} {
		require.NoError(t, revs.CreateRevision(ctx, &domain.Revision{ID: id, PageID: "p1"}))
	}

	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := clock.Add(-time.Hour)
	future := clock.Add(time.Hour)
	require.NoError(t, revs.SetGoLive(ctx, "past", &past))
	require.NoError(t, revs.SetGoLive(ctx, "future", &future))

	due, err := revs.ListDue(ctx, clock)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "past", due[0].ID)

	require.NoError(t, revs.SetGoLive(ctx, "past", nil))
	due, err = revs.ListDue(ctx, clock)
	require.NoError(t, err)
	assert.Empty(t, due)

	assert.ErrorIs(t, revs.SetGoLive(ctx, "ghost", &past), storage.ErrNotFound)

	require.NoError(t, revs.DeleteRevisions(ctx, "p1"))
	list, err := revs.ListRevisions(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMediaStore(t *testing.T) {
	ctx := context.Background()
	media := storage.NewMediaStore(openDB(t))

	require.NoError(t, media.CreateImage(ctx, &domain.Image{ID: "i1", Title: "Bus", File: "/media/images/bus.jpg", Width: 1200, Height: 800}))
	img, err := media.GetImage(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Width)

	require.NoError(t, media.CreateDocument(ctx, &domain.Document{ID: "d1", Title: "Horarios", File: "/documents/d1/Horarios.PDF", Size: 1536}))
	doc, err := media.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(1536), doc.Size)
	assert.Equal(t, "pdf", doc.Extension())
	assert.Equal(t, "Horarios.PDF", doc.Filename())

	images, err := media.ListImages(ctx)
	require.NoError(t, err)
	assert.Len(t, images, 1)
	docs, err := media.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = media.GetImage(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
