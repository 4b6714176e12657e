package storage

import (
	"context"
	"fmt"

	"ventanita/internal/domain"
)

// MediaStore implements domain.MediaStore for images and documents.
type MediaStore struct {
	db *DB
}

func NewMediaStore(db *DB) *MediaStore {
	return &MediaStore{db: db}
}

func (s *MediaStore) CreateImage(ctx context.Context, img *domain.Image) error {
	img.CreatedAt = now()
	_, err := s.db.exec(ctx,
		`INSERT INTO images (id, title, file, width, height, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.ID, img.Title, img.File, img.Width, img.Height, img.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

func (s *MediaStore) GetImage(ctx context.Context, id string) (*domain.Image, error) {
	img := &domain.Image{}
	err := s.db.queryRow(ctx,
		`SELECT id, title, file, width, height, created_at FROM images WHERE id = ?`, id,
	).Scan(&img.ID, &img.Title, &img.File, &img.Width, &img.Height, &img.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get image")
	}
	return img, nil
}

func (s *MediaStore) ListImages(ctx context.Context) ([]domain.Image, error) {
	rows, err := s.db.query(ctx, `SELECT id, title, file, width, height, created_at FROM images ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.Title, &img.File, &img.Width, &img.Height, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *MediaStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	doc.CreatedAt = now()
	_, err := s.db.exec(ctx,
		`INSERT INTO documents (id, title, file, size, created_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.File, doc.Size, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *MediaStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc := &domain.Document{}
	err := s.db.queryRow(ctx,
		`SELECT id, title, file, size, created_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.File, &doc.Size, &doc.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get document")
	}
	return doc, nil
}

func (s *MediaStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.query(ctx, `SELECT id, title, file, size, created_at FROM documents ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.File, &doc.Size, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
