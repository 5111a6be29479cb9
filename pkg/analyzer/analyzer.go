package analyzer

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/adrianliechti/ingester/pkg/classifier"
	"github.com/adrianliechti/ingester/pkg/detector"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/document/pdf"
	"github.com/adrianliechti/ingester/pkg/extractor"
	"github.com/adrianliechti/ingester/pkg/geometry"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/layout"
	"github.com/adrianliechti/ingester/pkg/otel"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultDPI is the resolution pages are rendered at for layout detection.
const DefaultDPI = 250

var ErrNoDetector = errors.New("no layout detector configured")

// Analyzer turns one page or slide into classified candidates in reading order.
type Analyzer struct {
	detector detector.Provider
	labels   *classifier.Labels

	dpi        int
	confidence float64
	threshold  float64
}

type Option func(*Analyzer)

func WithDetector(d detector.Provider) Option {
	return func(a *Analyzer) {
		a.detector = d
	}
}

// WithIgnore replaces the detector labels that never become elements.
func WithIgnore(labels ...string) Option {
	return func(a *Analyzer) {
		a.labels = classifier.NewLabels(labels...)
	}
}

func WithDPI(dpi int) Option {
	return func(a *Analyzer) {
		a.dpi = dpi
	}
}

func WithConfidence(confidence float64) Option {
	return func(a *Analyzer) {
		a.confidence = confidence
	}
}

// WithThreshold sets the IoU above which same-label detections are duplicates.
func WithThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		a.threshold = threshold
	}
}

func New(options ...Option) *Analyzer {
	a := &Analyzer{
		labels: classifier.NewLabels(),

		dpi:        DefaultDPI,
		confidence: detector.DefaultConfidence,
		threshold:  layout.DefaultIoUThreshold,
	}

	for _, option := range options {
		option(a)
	}

	return a
}

func (a *Analyzer) Analyze(ctx context.Context, doc document.Document, page int) ([]extractor.Candidate, error) {
	ctx, span := otel.Tracer().Start(ctx, "analyze page")
	defer span.End()

	span.SetAttributes(attribute.String("kind", string(doc.Kind())), attribute.Int("page", page))

	var result []extractor.Candidate
	var err error

	switch doc.Kind() {
	case document.KindSlides:
		result, err = a.slide(ctx, doc, page)
	default:
		result, err = a.page(ctx, doc, page)
	}

	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("candidates", len(result)))

	return result, nil
}

func (a *Analyzer) page(ctx context.Context, doc document.Document, page int) ([]extractor.Candidate, error) {
	if a.detector == nil {
		return nil, ErrNoDetector
	}

	size, err := doc.PageSize(page)

	if err != nil {
		return nil, err
	}

	bounds := geometry.FromSize(0, 0, size)

	image, err := doc.RenderRegion(ctx, page, bounds, a.dpi)

	if err != nil {
		return nil, err
	}

	detections, err := a.detector.Detect(ctx, image, &detector.DetectOptions{
		Confidence: a.confidence,
	})

	if err != nil {
		return nil, err
	}

	var kept []layout.Detection

	for _, d := range detections {
		if _, ok := a.labels.Classify(d.Label); ok {
			kept = append(kept, d)
		}
	}

	survivors := inputOrder(kept, layout.Suppress(kept, a.threshold))

	slog.DebugContext(ctx, "page analyzed", "page", page, "detections", len(detections), "kept", len(survivors))

	result := make([]extractor.Candidate, 0, len(survivors))

	for _, d := range survivors {
		typ, _ := a.labels.Classify(d.Label)

		box := pdf.ToPoints(d.Box, a.dpi).Intersect(bounds)

		if box.Empty() {
			continue
		}

		result = append(result, extractor.Candidate{
			Region: handler.Region{
				Document: doc,
				Page:     page,

				Type: typ,
				Box:  box,
			},

			Label:      d.Label,
			Confidence: d.Confidence,
		})
	}

	return result, nil
}

func (a *Analyzer) slide(ctx context.Context, doc document.Document, page int) ([]extractor.Candidate, error) {
	shapes, err := doc.Shapes(ctx, page)

	if err != nil {
		return nil, err
	}

	result := make([]extractor.Candidate, 0, len(shapes))

	for i := range shapes {
		s := &shapes[i]

		result = append(result, extractor.Candidate{
			Region: handler.Region{
				Document: doc,
				Page:     page,

				Type: classifier.Shape(*s),
				Box:  s.Box,

				Shape: s,
			},

			Label:      string(s.Kind),
			Confidence: 1,
		})
	}

	// top to bottom, then left to right
	slices.SortStableFunc(result, func(a, b extractor.Candidate) int {
		return cmp.Or(cmp.Compare(a.Box.YMin, b.Box.YMin), cmp.Compare(a.Box.XMin, b.Box.XMin))
	})

	return result, nil
}

// inputOrder returns the survivors of suppression in the order they were detected.
func inputOrder(detections, survivors []layout.Detection) []layout.Detection {
	remaining := make(map[layout.Detection]int, len(survivors))

	for _, d := range survivors {
		remaining[d]++
	}

	result := make([]layout.Detection, 0, len(survivors))

	for _, d := range detections {
		if remaining[d] == 0 {
			continue
		}

		remaining[d]--
		result = append(result, d)
	}

	return result
}
