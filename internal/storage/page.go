package storage

import (
	"context"
	"database/sql"
	"fmt"

	"ventanita/internal/domain"
)

// PageStore implements domain.PageStore.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, parent_id, type, title, slug, locale, url_path, live, has_unpublished_changes,
	latest_revision_id, live_revision_id, first_published_at, last_published_at, created_at, updated_at`

func scanPage(row scanner) (*domain.Page, error) {
	var (
		p                 domain.Page
		live, unpublished int
		first, last       sql.NullTime
	)
	err := row.Scan(&p.ID, &p.ParentID, &p.Type, &p.Title, &p.Slug, &p.Locale, &p.URLPath,
		&live, &unpublished, &p.LatestRevisionID, &p.LiveRevisionID, &first, &last,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Live = live != 0
	p.HasUnpublishedChanges = unpublished != 0
	p.FirstPublishedAt = timePtr(first)
	p.LastPublishedAt = timePtr(last)
	return &p, nil
}

func (s *PageStore) CreatePage(ctx context.Context, p *domain.Page) error {
	ts := now()
	p.CreatedAt = ts
	p.UpdatedAt = ts
	_, err := s.db.exec(ctx,
		`INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ParentID, p.Type, p.Title, p.Slug, p.Locale, p.URLPath,
		boolToInt(p.Live), boolToInt(p.HasUnpublishedChanges), p.LatestRevisionID, p.LiveRevisionID,
		nullTime(p.FirstPublishedAt), nullTime(p.LastPublishedAt), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

func (s *PageStore) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	p, err := scanPage(s.db.queryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get page")
	}
	return p, nil
}

func (s *PageStore) GetPageByPath(ctx context.Context, locale, urlPath string) (*domain.Page, error) {
	p, err := scanPage(s.db.queryRow(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE locale = ? AND url_path = ?`, locale, urlPath))
	if err != nil {
		return nil, notFound(err, "get page by path")
	}
	return p, nil
}

func (s *PageStore) list(ctx context.Context, query string, args ...any) ([]domain.Page, error) {
	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// ListPages returns every page in tree order per locale.
func (s *PageStore) ListPages(ctx context.Context) ([]domain.Page, error) {
	return s.list(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY locale, url_path`)
}

func (s *PageStore) ListChildren(ctx context.Context, parentID string) ([]domain.Page, error) {
	return s.list(ctx, `SELECT `+pageColumns+` FROM pages WHERE parent_id = ? ORDER BY url_path`, parentID)
}

func (s *PageStore) CountPages(ctx context.Context, t domain.PageType, locale string) (int, error) {
	var n int
	err := s.db.queryRow(ctx, `SELECT COUNT(*) FROM pages WHERE type = ? AND locale = ?`, t, locale).Scan(&n)
	return n, err
}

func (s *PageStore) UpdatePage(ctx context.Context, p *domain.Page) error {
	p.UpdatedAt = now()
	res, err := s.db.exec(ctx,
		`UPDATE pages SET parent_id = ?, type = ?, title = ?, slug = ?, locale = ?, url_path = ?,
			live = ?, has_unpublished_changes = ?, latest_revision_id = ?, live_revision_id = ?,
			first_published_at = ?, last_published_at = ?, updated_at = ?
		 WHERE id = ?`,
		p.ParentID, p.Type, p.Title, p.Slug, p.Locale, p.URLPath,
		boolToInt(p.Live), boolToInt(p.HasUnpublishedChanges), p.LatestRevisionID, p.LiveRevisionID,
		nullTime(p.FirstPublishedAt), nullTime(p.LastPublishedAt), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update page %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *PageStore) DeletePage(ctx context.Context, id string) error {
	_, err := s.db.exec(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}
