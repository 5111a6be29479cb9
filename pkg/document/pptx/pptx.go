package pptx

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/geometry"
)

var _ document.Provider = (*Provider)(nil)

// Provider opens PowerPoint presentations. Shapes are read natively, positions are in EMU.
type Provider struct {
}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Open(ctx context.Context, path string) (document.Document, error) {
	r, err := zip.OpenReader(path)

	if err != nil {
		return nil, fmt.Errorf("open presentation: %w", err)
	}

	d := &Document{
		archive: r,
		parts:   make(map[string]*zip.File),

		shapes: make(map[int][]document.Shape),
	}

	for _, f := range r.File {
		d.parts[f.Name] = f
	}

	if err := d.load(); err != nil {
		r.Close()
		return nil, err
	}

	return d, nil
}

var _ document.Document = (*Document)(nil)

type Document struct {
	archive *zip.ReadCloser
	parts   map[string]*zip.File

	size   geometry.Size
	slides []string

	mu     sync.Mutex
	shapes map[int][]document.Shape
}

func (d *Document) Kind() document.Kind {
	return document.KindSlides
}

func (d *Document) PageCount() int {
	return len(d.slides)
}

func (d *Document) PageSize(page int) (geometry.Size, error) {
	if page < 0 || page >= len(d.slides) {
		return geometry.Size{}, document.ErrPageRange
	}

	return d.size, nil
}

// RenderRegion is not available for slides. Pictures carry their own bytes.
func (d *Document) RenderRegion(ctx context.Context, page int, box geometry.Box, dpi int) ([]byte, error) {
	return nil, document.ErrUnsupported
}

// Text returns the text of the shapes inside box, in reading order.
func (d *Document) Text(ctx context.Context, page int, box geometry.Box) (string, error) {
	shapes, err := d.Shapes(ctx, page)

	if err != nil {
		return "", err
	}

	var parts []string

	var walk func([]document.Shape)

	walk = func(shapes []document.Shape) {
		for _, s := range shapes {
			if len(s.Children) > 0 {
				walk(s.Children)
				continue
			}

			if !box.Covers(s.Box) {
				continue
			}

			if text := strings.TrimSpace(s.Text); text != "" {
				parts = append(parts, text)
			}
		}
	}

	walk(shapes)

	return strings.Join(parts, "\n"), nil
}

func (d *Document) Words(ctx context.Context, page int, box geometry.Box) ([]document.Word, error) {
	return nil, document.ErrUnsupported
}

func (d *Document) Shapes(ctx context.Context, page int) ([]document.Shape, error) {
	if page < 0 || page >= len(d.slides) {
		return nil, document.ErrPageRange
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if shapes, ok := d.shapes[page]; ok {
		return shapes, nil
	}

	name := d.slides[page]

	data, err := d.read(name)

	if err != nil {
		return nil, err
	}

	root, err := parse(data)

	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	rels, err := d.relationships(name)

	if err != nil {
		return nil, err
	}

	r := &reader{
		doc:  d,
		rels: rels,
	}

	tree := root.find("spTree")

	if tree == nil {
		return nil, fmt.Errorf("%s has no shape tree", name)
	}

	shapes := r.shapes(tree, identity)
	d.shapes[page] = shapes

	return shapes, nil
}

// Markup returns the raw XML of the whole slide.
func (d *Document) Markup(ctx context.Context, page int) (string, error) {
	if page < 0 || page >= len(d.slides) {
		return "", document.ErrPageRange
	}

	data, err := d.read(d.slides[page])

	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (d *Document) Close() error {
	return d.archive.Close()
}

func (d *Document) load() error {
	const name = "ppt/presentation.xml"

	data, err := d.read(name)

	if err != nil {
		return err
	}

	root, err := parse(data)

	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}

	if sz := root.find("sldSz"); sz != nil {
		d.size = geometry.Size{
			Width:  float64(sz.int("cx")),
			Height: float64(sz.int("cy")),
		}
	}

	if d.size.Width <= 0 || d.size.Height <= 0 {
		return errors.New("presentation has no slide size")
	}

	rels, err := d.relationships(name)

	if err != nil {
		return err
	}

	for _, id := range root.find("sldIdLst").all("sldId") {
		target, ok := rels[id.relation("id")]

		if !ok {
			continue
		}

		d.slides = append(d.slides, target)
	}

	return nil
}

func (d *Document) read(name string) ([]byte, error) {
	f, ok := d.parts[name]

	if !ok {
		return nil, fmt.Errorf("missing part %s", name)
	}

	rc, err := f.Open()

	if err != nil {
		return nil, err
	}

	defer rc.Close()

	return io.ReadAll(rc)
}

// relationships maps the relationship ids of a part to the absolute names of their targets.
func (d *Document) relationships(name string) (map[string]string, error) {
	dir, file := path.Split(name)
	relsName := path.Join(dir, "_rels", file+".rels")

	result := make(map[string]string)

	if _, ok := d.parts[relsName]; !ok {
		return result, nil
	}

	data, err := d.read(relsName)

	if err != nil {
		return nil, err
	}

	root, err := parse(data)

	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relsName, err)
	}

	for _, rel := range root.all("Relationship") {
		if strings.EqualFold(rel.attr("TargetMode"), "External") {
			continue
		}

		target := rel.attr("Target")

		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join(dir, target)
		}

		result[rel.attr("Id")] = target
	}

	return result, nil
}
