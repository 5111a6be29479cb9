// Package documenttest provides an in-memory document for tests.
package documenttest

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/geometry"
)

var _ document.Document = (*Document)(nil)

type Page struct {
	Size geometry.Size

	Words  []document.Word
	Shapes []document.Shape
	Markup string

	// Image is returned for every rendered region of the page.
	Image []byte
}

type Document struct {
	DocumentKind document.Kind
	Pages        []Page

	Renders atomic.Int64
	Closed  atomic.Bool
}

func (d *Document) Kind() document.Kind {
	if d.DocumentKind == "" {
		return document.KindPDF
	}

	return d.DocumentKind
}

func (d *Document) PageCount() int {
	return len(d.Pages)
}

func (d *Document) page(index int) (*Page, error) {
	if index < 0 || index >= len(d.Pages) {
		return nil, document.ErrPageRange
	}

	return &d.Pages[index], nil
}

func (d *Document) PageSize(page int) (geometry.Size, error) {
	p, err := d.page(page)

	if err != nil {
		return geometry.Size{}, err
	}

	return p.Size, nil
}

func (d *Document) RenderRegion(ctx context.Context, page int, box geometry.Box, dpi int) ([]byte, error) {
	p, err := d.page(page)

	if err != nil {
		return nil, err
	}

	d.Renders.Add(1)

	if p.Image == nil {
		return nil, document.ErrUnsupported
	}

	return p.Image, nil
}

func (d *Document) Text(ctx context.Context, page int, box geometry.Box) (string, error) {
	words, err := d.Words(ctx, page, box)

	if err != nil {
		return "", err
	}

	var parts []string

	for _, w := range words {
		parts = append(parts, w.Text)
	}

	return strings.Join(parts, " "), nil
}

func (d *Document) Words(ctx context.Context, page int, box geometry.Box) ([]document.Word, error) {
	p, err := d.page(page)

	if err != nil {
		return nil, err
	}

	var result []document.Word

	for _, w := range p.Words {
		if box.Covers(w.Box) {
			result = append(result, w)
		}
	}

	return result, nil
}

func (d *Document) Shapes(ctx context.Context, page int) ([]document.Shape, error) {
	p, err := d.page(page)

	if err != nil {
		return nil, err
	}

	return p.Shapes, nil
}

func (d *Document) Markup(ctx context.Context, page int) (string, error) {
	p, err := d.page(page)

	if err != nil {
		return "", err
	}

	return p.Markup, nil
}

func (d *Document) Close() error {
	d.Closed.Store(true)
	return nil
}
