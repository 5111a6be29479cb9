package ingester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrianliechti/ingester/pkg/analyzer"
	"github.com/adrianliechti/ingester/pkg/cache"
	"github.com/adrianliechti/ingester/pkg/converter"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/document/pdf"
	"github.com/adrianliechti/ingester/pkg/document/pptx"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/extractor"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/handler/image"
	"github.com/adrianliechti/ingester/pkg/handler/table"
	"github.com/adrianliechti/ingester/pkg/otel"

	"go.opentelemetry.io/otel/attribute"
)

var ErrUnsupported = errors.New("unsupported file type")

var slideExtensions = []string{".pptx"}

// Ingester routes a file to its document reader, analyzes every page and extracts its elements.
type Ingester struct {
	providers map[string]document.Provider
	converter converter.Provider

	analyzer  *analyzer.Analyzer
	extractor *extractor.Extractor

	formula handler.Handler
	image   *image.Handler
	table   *table.Handler
	cache   *cache.Cache
}

type Option func(*Ingester)

// WithProvider registers the document reader for a file extension such as ".pdf".
func WithProvider(ext string, p document.Provider) Option {
	return func(i *Ingester) {
		i.providers[strings.ToLower(ext)] = p
	}
}

// WithConverter converts slide decks to PDF before analysis so they go through layout detection.
func WithConverter(c converter.Provider) Option {
	return func(i *Ingester) {
		i.converter = c
	}
}

func WithAnalyzer(a *analyzer.Analyzer) Option {
	return func(i *Ingester) {
		i.analyzer = a
	}
}

func WithFormula(h handler.Handler) Option {
	return func(i *Ingester) {
		i.formula = h
	}
}

// WithImage enables image description. Without it images get the placeholder content.
func WithImage(h *image.Handler) Option {
	return func(i *Ingester) {
		i.image = h
	}
}

func WithTable(h *table.Handler) Option {
	return func(i *Ingester) {
		i.table = h
	}
}

// WithCache reports the entries of c in Stats. The cache itself belongs to the image handler.
func WithCache(c *cache.Cache) Option {
	return func(i *Ingester) {
		i.cache = c
	}
}

func New(options ...Option) *Ingester {
	i := &Ingester{
		providers: map[string]document.Provider{
			".pdf":  pdf.New(),
			".pptx": pptx.New(),
		},

		analyzer: analyzer.New(),
		table:    table.New(),
	}

	for _, option := range options {
		option(i)
	}

	extractorOptions := []extractor.Option{
		extractor.WithTable(i.table),
	}

	if i.formula != nil {
		extractorOptions = append(extractorOptions, extractor.WithFormula(i.formula))
	}

	if i.image != nil {
		extractorOptions = append(extractorOptions, extractor.WithImage(i.image))
	}

	i.extractor = extractor.New(extractorOptions...)

	return i
}

type ProcessOptions struct {
	// MaxPages limits the number of processed pages. Zero processes all pages.
	MaxPages int
}

// Process extracts the elements of every page of the file at path. Pages are numbered from one.
func (i *Ingester) Process(ctx context.Context, path string, options *ProcessOptions) ([]element.Page, error) {
	if options == nil {
		options = new(ProcessOptions)
	}

	ctx, span := otel.Tracer().Start(ctx, "process document")
	defer span.End()

	start := time.Now()
	ext := strings.ToLower(filepath.Ext(path))

	if i.converter != nil && slices.Contains(slideExtensions, ext) {
		converted, err := i.converter.Convert(ctx, path)

		if err != nil {
			return nil, fmt.Errorf("slide conversion failed: %w", err)
		}

		path = converted
		ext = strings.ToLower(filepath.Ext(converted))
	}

	p, ok := i.providers[ext]

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	doc, err := p.Open(ctx, path)

	if err != nil {
		return nil, err
	}

	defer doc.Close()

	count := doc.PageCount()

	if options.MaxPages > 0 {
		count = min(count, options.MaxPages)
	}

	span.SetAttributes(attribute.String("kind", string(doc.Kind())), attribute.Int("pages", count))

	pages := make([]element.Page, 0, count)

	for page := range count {
		candidates, err := i.analyzer.Analyze(ctx, doc, page)

		if err != nil {
			return nil, fmt.Errorf("analyze page %d: %w", page+1, err)
		}

		pages = append(pages, element.Page{
			Number:   page + 1,
			Elements: i.extractor.ExtractPage(ctx, candidates),
		})
	}

	otel.RecordDocument(ctx, string(doc.Kind()), len(pages), time.Since(start))

	slog.InfoContext(ctx, "document processed", "path", filepath.Base(path), "kind", doc.Kind(), "pages", len(pages), "duration_ms", time.Since(start).Milliseconds())

	return pages, nil
}

type Stats struct {
	Image image.Stats `json:"image"`
	Table table.Stats `json:"table"`
	Cache cache.Stats `json:"cache"`
}

func (i *Ingester) Stats() Stats {
	var s Stats

	if i.image != nil {
		s.Image = i.image.Stats()
	}

	if i.table != nil {
		s.Table = i.table.Stats()
	}

	if i.cache != nil {
		s.Cache = i.cache.Stats()
	}

	return s
}
