package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ventanita/internal/domain"
	"ventanita/internal/logger"
	"ventanita/internal/metrics"
	"ventanita/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Importer: loads page trees from JSON fixture files
// ─────────────────────────────────────────────────────────────

// Fixture is the content of one fixture file. Pages are applied in order,
// so parents must come before their children.
type Fixture struct {
	Images    []domain.Image    `json:"images"`
	Documents []domain.Document `json:"documents"`
	Pages     []FixturePage     `json:"pages"`
}

type FixturePage struct {
	// Parent is the URL path of the parent page; empty for a locale root.
	Parent  string              `json:"parent"`
	Locale  string              `json:"locale"`
	Type    domain.PageType     `json:"type"`
	Title   string              `json:"title"`
	Slug    string              `json:"slug"`
	Content *domain.PageContent `json:"content"`
	Publish bool                `json:"publish"`
}

type ImportResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Published int `json:"published"`
	Images    int `json:"images"`
	Documents int `json:"documents"`
}

func (r *ImportResult) add(o ImportResult) {
	r.Created += o.Created
	r.Updated += o.Updated
	r.Published += o.Published
	r.Images += o.Images
	r.Documents += o.Documents
}

type Importer struct {
	pages   *PageService
	media   domain.MediaStore
	metrics *metrics.Collector
	log     *logger.Logger

	mu          sync.Mutex // serializes imports
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
}

func NewImporter(pages *PageService, media domain.MediaStore, m *metrics.Collector, log *logger.Logger) *Importer {
	return &Importer{pages: pages, media: media, metrics: m, log: log}
}

// ImportDir imports every *.json file of dir in name order.
func (im *Importer) ImportDir(ctx context.Context, dir string) (ImportResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return ImportResult{}, err
	}
	sort.Strings(files)

	var total ImportResult
	for _, f := range files {
		res, err := im.ImportFile(ctx, f)
		total.add(res)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ImportFile applies one fixture file. Existing pages, matched by locale
// and path, get a new draft instead of being recreated.
func (im *Importer) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	res, err := im.importFile(ctx, path)
	im.metrics.FixtureImported(err == nil)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	im.log.Info("fixture imported", "file", path, "created", res.Created, "updated", res.Updated)
	return res, nil
}

func (im *Importer) importFile(ctx context.Context, path string) (ImportResult, error) {
	var res ImportResult
	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return res, fmt.Errorf("decode: %w", err)
	}

	for i := range fx.Images {
		img := fx.Images[i]
		if _, err := im.media.GetImage(ctx, img.ID); err == nil {
			continue
		}
		if err := im.media.CreateImage(ctx, &img); err != nil {
			return res, err
		}
		res.Images++
	}
	for i := range fx.Documents {
		doc := fx.Documents[i]
		if _, err := im.media.GetDocument(ctx, doc.ID); err == nil {
			continue
		}
		if err := im.media.CreateDocument(ctx, &doc); err != nil {
			return res, err
		}
		res.Documents++
	}

	for _, fp := range fx.Pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := im.applyPage(ctx, fp, &res); err != nil {
			return res, fmt.Errorf("page %q: %w", fp.Title, err)
		}
	}
	return res, nil
}

func (im *Importer) applyPage(ctx context.Context, fp FixturePage, res *ImportResult) error {
	locale := fp.Locale
	if locale == "" {
		locale = im.pages.defaultLocale
	}

	var (
		parentID string
		urlPath  string
	)
	if fp.Parent == "" {
		urlPath = im.pages.LocalePrefix(locale)
	} else {
		parent, err := im.pages.GetByPath(ctx, locale, fp.Parent)
		if err != nil {
			return fmt.Errorf("parent %s: %w", fp.Parent, err)
		}
		parentID = parent.ID
		slug := fp.Slug
		if slug == "" {
			slug = Slugify(fp.Title)
		}
		urlPath = parent.URLPath + slug + "/"
	}

	page, err := im.pages.GetByPath(ctx, locale, urlPath)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		page, err = im.pages.CreatePage(ctx, CreatePageInput{
			ParentID: parentID, Type: fp.Type, Title: fp.Title, Slug: fp.Slug, Locale: locale,
		})
		if err != nil {
			return err
		}
		res.Created++
	case err != nil:
		return err
	default:
		if page.Type != fp.Type {
			return fmt.Errorf("%w: %s exists as a %s page", ErrInvalidPage, urlPath, page.Type)
		}
		res.Updated++
	}

	if fp.Content != nil {
		content := *fp.Content
		if content.Title == "" {
			content.Title = fp.Title
		}
		if _, err := im.pages.SaveDraft(ctx, page.ID, content); err != nil {
			return err
		}
	}
	if fp.Publish {
		if _, err := im.pages.Publish(ctx, page.ID, ""); err != nil {
			return err
		}
		res.Published++
	}
	return nil
}

// ── Watcher ────────────────────────────────────────────────

// Watch re-imports fixture files of dir when they change. Events for the
// same file within debounce are coalesced.
func (im *Importer) Watch(ctx context.Context, dir string, debounce time.Duration) error {
	im.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	im.watcher = watcher
	im.watchCancel = cancel

	go func() {
		timers := make(map[string]*time.Timer)
		defer func() {
			for _, t := range timers {
				t.Stop()
			}
		}()
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !strings.HasSuffix(event.Name, ".json") {
					continue
				}
				file := event.Name
				if t, exists := timers[file]; exists {
					t.Stop()
				}
				timers[file] = time.AfterFunc(debounce, func() {
					if watchCtx.Err() != nil {
						return
					}
					if _, err := im.ImportFile(watchCtx, file); err != nil {
						im.log.Error("fixture re-import failed", "file", file, "error", err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				im.log.Warn("fixture watcher error", "error", err)
			}
		}
	}()

	im.log.Info("watching fixtures", "dir", dir)
	return nil
}

// Stop ends the watcher. It is safe to call more than once.
func (im *Importer) Stop() {
	if im.watchCancel != nil {
		im.watchCancel()
		im.watchCancel = nil
	}
	if im.watcher != nil {
		im.watcher.Close()
		im.watcher = nil
	}
}
