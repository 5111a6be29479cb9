package document

import (
	"context"
	"errors"

	"github.com/adrianliechti/ingester/pkg/geometry"
)

var (
	ErrUnsupported = errors.New("unsupported operation")
	ErrPageRange   = errors.New("page out of range")
)

type Kind string

const (
	KindPDF    Kind = "pdf"
	KindSlides Kind = "slides"
)

type Provider interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document gives access to the geometry of an opened file. Pages are zero-based indexes, boxes use a
// top-left origin in the native unit of the document (points for PDF, EMU for slides).
type Document interface {
	Kind() Kind

	PageCount() int
	PageSize(page int) (geometry.Size, error)

	RenderRegion(ctx context.Context, page int, box geometry.Box, dpi int) ([]byte, error)

	Text(ctx context.Context, page int, box geometry.Box) (string, error)
	Words(ctx context.Context, page int, box geometry.Box) ([]Word, error)

	Shapes(ctx context.Context, page int) ([]Shape, error)
	Markup(ctx context.Context, page int) (string, error)

	Close() error
}

type Word struct {
	Text string

	Box      geometry.Box
	FontSize float64
}

type ShapeKind string

const (
	ShapePicture     ShapeKind = "picture"
	ShapeTable       ShapeKind = "table"
	ShapeChart       ShapeKind = "chart"
	ShapeObject      ShapeKind = "object"
	ShapeGroup       ShapeKind = "group"
	ShapePlaceholder ShapeKind = "placeholder"
	ShapeText        ShapeKind = "text"
	ShapeOther       ShapeKind = "other"
)

// Shape describes one native shape of a slide.
type Shape struct {
	ID   string
	Name string

	Kind ShapeKind
	Box  geometry.Box

	// Markup is the raw XML of the shape itself, children included.
	Markup string

	Text  string
	Image *Image
	Table [][]string

	Children []Shape
}

type Image struct {
	Content     []byte
	ContentType string
}
