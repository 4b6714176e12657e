package domain

import (
	"context"
	"path"
	"strings"
	"time"
)

type Image struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	File      string    `json:"file"` // URL path, e.g. /media/images/bus.jpg
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
}

type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	File      string    `json:"file"` // URL path, e.g. /documents/12/horarios.pdf
	Size      int64     `json:"size"` // bytes
	CreatedAt time.Time `json:"createdAt"`
}

// Filename returns the base name of the stored file.
func (d Document) Filename() string {
	return path.Base(d.File)
}

// Extension returns the file extension without the dot, lower-cased.
func (d Document) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(d.File), "."))
}

type MediaStore interface {
	CreateImage(ctx context.Context, img *Image) error
	GetImage(ctx context.Context, id string) (*Image, error)
	ListImages(ctx context.Context) ([]Image, error)
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
}
