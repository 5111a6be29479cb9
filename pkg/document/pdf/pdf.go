package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/adrianliechti/ingester/pkg/command"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/geometry"

	"github.com/ledongthuc/pdf"
)

var _ document.Provider = (*Provider)(nil)

// Provider opens PDF files. Text geometry is read in process, regions are rendered by pdftoppm.
type Provider struct {
	renderer string
	runner   command.Runner
}

type Option func(*Provider)

// WithRenderer sets the path of the pdftoppm binary.
func WithRenderer(path string) Option {
	return func(p *Provider) {
		p.renderer = path
	}
}

// WithRunner replaces the executor of the renderer.
func WithRunner(runner command.Runner) Option {
	return func(p *Provider) {
		p.runner = runner
	}
}

func New(options ...Option) *Provider {
	p := &Provider{
		renderer: "pdftoppm",
		runner:   command.Exec{},
	}

	for _, option := range options {
		option(p)
	}

	return p
}

func (p *Provider) Open(ctx context.Context, path string) (document.Document, error) {
	f, r, err := pdf.Open(path)

	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	return &Document{
		path:     path,
		renderer: p.renderer,
		runner:   p.runner,

		file:   f,
		reader: r,

		words: make(map[int][]document.Word),
	}, nil
}

var _ document.Document = (*Document)(nil)

type Document struct {
	path     string
	renderer string
	runner   command.Runner

	// the reader is not safe for concurrent use
	mu     sync.Mutex
	file   *os.File
	reader *pdf.Reader

	words map[int][]document.Word
}

func (d *Document) Kind() document.Kind {
	return document.KindPDF
}

func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.reader.NumPage()
}

func (d *Document) PageSize(page int) (geometry.Size, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	box, err := d.mediaBox(page)

	if err != nil {
		return geometry.Size{}, err
	}

	return box.Size(), nil
}

func (d *Document) Text(ctx context.Context, page int, box geometry.Box) (string, error) {
	words, err := d.Words(ctx, page, box)

	if err != nil {
		return "", err
	}

	var lines []string
	var line []string

	for i, w := range words {
		if i > 0 && !sameLine(words[i-1], w) {
			lines = append(lines, strings.Join(line, " "))
			line = nil
		}

		line = append(line, w.Text)
	}

	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}

	return strings.Join(lines, "\n"), nil
}

// Words returns the words whose center lies inside box, in reading order.
func (d *Document) Words(ctx context.Context, page int, box geometry.Box) ([]document.Word, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	all, ok := d.words[page]

	if !ok {
		media, err := d.mediaBox(page)

		if err != nil {
			return nil, err
		}

		texts, err := d.content(page)

		if err != nil {
			return nil, err
		}

		all = Words(texts, media)
		d.words[page] = all
	}

	var result []document.Word

	for _, w := range all {
		if box.Covers(w.Box) {
			result = append(result, w)
		}
	}

	return result, nil
}

func (d *Document) Shapes(ctx context.Context, page int) ([]document.Shape, error) {
	return nil, document.ErrUnsupported
}

func (d *Document) Markup(ctx context.Context, page int) (string, error) {
	return "", document.ErrUnsupported
}

func (d *Document) Close() error {
	return d.file.Close()
}

func (d *Document) page(page int) (pdf.Page, error) {
	if page < 0 || page >= d.reader.NumPage() {
		return pdf.Page{}, document.ErrPageRange
	}

	p := d.reader.Page(page + 1)

	if p.V.IsNull() {
		return pdf.Page{}, document.ErrPageRange
	}

	return p, nil
}

// mediaBox returns the page box in PDF user space (bottom-left origin).
func (d *Document) mediaBox(page int) (geometry.Box, error) {
	p, err := d.page(page)

	if err != nil {
		return geometry.Box{}, err
	}

	// MediaBox is inheritable from the page tree
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")

		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}

		var coords [4]float64

		for i := range coords {
			coords[i] = number(box.Index(i))
		}

		result := geometry.NewBox(min(coords[0], coords[2]), min(coords[1], coords[3]), max(coords[0], coords[2]), max(coords[1], coords[3]))

		if result.Empty() {
			break
		}

		return result, nil
	}

	return geometry.Box{}, errors.New("page has no media box")
}

func (d *Document) content(page int) (texts []pdf.Text, err error) {
	p, err := d.page(page)

	if err != nil {
		return nil, err
	}

	// the content parser panics on malformed streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page content: %v", r)
		}
	}()

	return p.Content().Text, nil
}

func number(v pdf.Value) float64 {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	}

	return 0
}
