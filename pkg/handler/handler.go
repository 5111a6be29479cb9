package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/geometry"
)

// DefaultDPI is the resolution used to render regions for vision calls.
const DefaultDPI = 144

var (
	ErrNoCompleter = errors.New("no completer configured")
	ErrNoRegion    = errors.New("region has no renderable source")
	ErrExhausted   = errors.New("no extraction method succeeded")
)

// Handler extracts the content of one region synchronously.
type Handler interface {
	Extract(ctx context.Context, r Region) (any, error)
}

// AsyncHandler extracts image-bearing regions as a single pool task.
type AsyncHandler interface {
	Handler
	ExtractAsync(ctx context.Context, r Region) *async.Future[string]
}

// ImageExtractor extracts content recognized inside a standalone image.
type ImageExtractor interface {
	ExtractImage(ctx context.Context, image []byte, contentType string) (any, error)
}

// Region is the input of a handler: either a native slide shape or a bounded area of a page.
type Region struct {
	Document document.Document
	Page     int

	Type element.Type
	Box  geometry.Box

	Shape *document.Shape
}

func (r Region) Native() bool {
	return r.Shape != nil
}

// Text returns the shape text for native regions and the text inside the box otherwise.
func (r Region) Text(ctx context.Context) (string, error) {
	if r.Shape != nil {
		return r.Shape.Text, nil
	}

	if r.Document == nil {
		return "", ErrNoRegion
	}

	return r.Document.Text(ctx, r.Page, r.Box)
}

// Image returns embedded picture bytes for native regions and renders the box otherwise.
func (r Region) Image(ctx context.Context, dpi int) ([]byte, string, error) {
	if r.Shape != nil && r.Shape.Image != nil && len(r.Shape.Image.Content) > 0 {
		return r.Shape.Image.Content, r.Shape.Image.ContentType, nil
	}

	if r.Document == nil {
		return nil, "", ErrNoRegion
	}

	if dpi <= 0 {
		dpi = DefaultDPI
	}

	data, err := r.Document.RenderRegion(ctx, r.Page, r.Box, dpi)

	if err != nil {
		return nil, "", err
	}

	return data, "image/png", nil
}

// Call runs fn as a task of pool and waits for its result. Without a pool fn runs on the calling
// goroutine. Code already running on a pool task must not use it with the same pool.
func Call[T any](pool *async.Pool, fn func() (T, error)) (T, error) {
	if pool == nil {
		return fn()
	}

	return async.Submit(pool, fn).Wait()
}

// Strategy is one layer of a fallback chain. Run reports false when the layer produced nothing.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, bool)
}

// First runs strategies in order and returns the first result together with the name of its layer.
func First[T any](ctx context.Context, strategies ...Strategy[T]) (T, string, bool) {
	for _, s := range strategies {
		if s.Run == nil {
			continue
		}

		if result, ok := s.Run(ctx); ok {
			return result, s.Name, true
		}

		slog.DebugContext(ctx, "extraction layer produced no result", "layer", s.Name)
	}

	var zero T
	return zero, "", false
}
