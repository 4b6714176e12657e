package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ventanita/internal/domain"
)

// MediaService registers images and documents that blocks refer to.
// Files themselves are served by the web tier.
type MediaService struct {
	store   domain.MediaStore
	emitter EventEmitter
}

func NewMediaService(store domain.MediaStore, emitter EventEmitter) *MediaService {
	return &MediaService{store: store, emitter: emitter}
}

func mediaPath(file string) (string, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return "", fmt.Errorf("%w: file path is required", ErrInvalidPage)
	}
	if !strings.HasPrefix(file, "/") {
		file = "/" + file
	}
	return file, nil
}

func (s *MediaService) CreateImage(ctx context.Context, title, file string, width, height int) (*domain.Image, error) {
	path, err := mediaPath(file)
	if err != nil {
		return nil, err
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: image dimensions must not be negative", ErrInvalidPage)
	}
	img := &domain.Image{ID: uuid.New().String(), Title: title, File: path, Width: width, Height: height}
	if err := s.store.CreateImage(ctx, img); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, "image:created", img)
	return img, nil
}

func (s *MediaService) CreateDocument(ctx context.Context, title, file string, size int64) (*domain.Document, error) {
	path, err := mediaPath(file)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: document size must not be negative", ErrInvalidPage)
	}
	doc := &domain.Document{ID: uuid.New().String(), Title: title, File: path, Size: size}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, "document:created", doc)
	return doc, nil
}

func (s *MediaService) ListImages(ctx context.Context) ([]domain.Image, error) {
	return s.store.ListImages(ctx)
}

func (s *MediaService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}
