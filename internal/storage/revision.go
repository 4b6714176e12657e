package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ventanita/internal/domain"
)

// RevisionStore keeps the content history of pages. Revisions are written
// once; only the go-live approval changes afterwards.
type RevisionStore struct {
	db *DB
}

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db}
}

func scanRevision(row scanner) (*domain.Revision, error) {
	var (
		r       domain.Revision
		content string
		goLive  sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.PageID, &content, &goLive, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(content), &r.Content); err != nil {
		return nil, fmt.Errorf("decode revision %s: %w", r.ID, err)
	}
	r.ApprovedGoLiveAt = timePtr(goLive)
	return &r, nil
}

func (s *RevisionStore) CreateRevision(ctx context.Context, r *domain.Revision) error {
	content, err := json.Marshal(r.Content)
	if err != nil {
		return fmt.Errorf("encode revision: %w", err)
	}
	r.CreatedAt = now()
	_, err = s.db.exec(ctx,
		`INSERT INTO revisions (id, page_id, content_json, approved_go_live_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.PageID, string(content), nullTime(r.ApprovedGoLiveAt), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

func (s *RevisionStore) GetRevision(ctx context.Context, id string) (*domain.Revision, error) {
	r, err := scanRevision(s.db.queryRow(ctx,
		`SELECT id, page_id, content_json, approved_go_live_at, created_at FROM revisions WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get revision")
	}
	return r, nil
}

// ListRevisions returns a page's revisions, newest first.
func (s *RevisionStore) ListRevisions(ctx context.Context, pageID string) ([]domain.Revision, error) {
	return s.list(ctx,
		`SELECT id, page_id, content_json, approved_go_live_at, created_at
		 FROM revisions WHERE page_id = ? ORDER BY created_at DESC`, pageID)
}

// SetGoLive approves the revision for publishing at the given time. A nil
// time clears the approval.
func (s *RevisionStore) SetGoLive(ctx context.Context, id string, at *time.Time) error {
	res, err := s.db.exec(ctx, `UPDATE revisions SET approved_go_live_at = ? WHERE id = ?`, nullTime(at), id)
	if err != nil {
		return fmt.Errorf("set go-live: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// mysql reports zero rows when the value is unchanged
		if _, err := s.GetRevision(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListDue returns the approved revisions whose go-live time has passed,
// oldest first.
func (s *RevisionStore) ListDue(ctx context.Context, at time.Time) ([]domain.Revision, error) {
	return s.list(ctx,
		`SELECT id, page_id, content_json, approved_go_live_at, created_at
		 FROM revisions WHERE approved_go_live_at IS NOT NULL AND approved_go_live_at <= ?
		 ORDER BY approved_go_live_at ASC`, at.UTC().Truncate(time.Microsecond))
}

func (s *RevisionStore) DeleteRevisions(ctx context.Context, pageID string) error {
	_, err := s.db.exec(ctx, `DELETE FROM revisions WHERE page_id = ?`, pageID)
	return err
}

func (s *RevisionStore) list(ctx context.Context, query string, args ...any) ([]domain.Revision, error) {
	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revs []domain.Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revs = append(revs, *r)
	}
	return revs, rows.Err()
}
