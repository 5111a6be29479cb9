package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/handler/fallback"
	"github.com/adrianliechti/ingester/pkg/handler/formula"
	"github.com/adrianliechti/ingester/pkg/handler/table"
	"github.com/adrianliechti/ingester/pkg/handler/text"
	"github.com/adrianliechti/ingester/pkg/otel"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Candidate is a classified region waiting for extraction.
type Candidate struct {
	handler.Region

	Label      string
	Confidence float64
}

// Extractor dispatches the candidates of one page to the handler of their type.
type Extractor struct {
	text    handler.Handler
	table   handler.Handler
	formula handler.Handler
	image   handler.AsyncHandler

	fallback handler.Handler
}

type Option func(*Extractor)

func WithText(h handler.Handler) Option {
	return func(e *Extractor) {
		e.text = h
	}
}

func WithTable(h handler.Handler) Option {
	return func(e *Extractor) {
		e.table = h
	}
}

func WithFormula(h handler.Handler) Option {
	return func(e *Extractor) {
		e.formula = h
	}
}

// WithImage sets the image handler. Without one, images get the fallback placeholder.
func WithImage(h handler.AsyncHandler) Option {
	return func(e *Extractor) {
		e.image = h
	}
}

func New(options ...Option) *Extractor {
	e := &Extractor{
		text:    text.New(),
		table:   table.New(),
		formula: formula.New(),

		fallback: fallback.New(),
	}

	for _, option := range options {
		option(e)
	}

	return e
}

type route int

const (
	routeFallback route = iota
	routeText
	routeTable
	routeFormula
	routeImage
)

func (e *Extractor) route(r handler.Region) route {
	switch r.Type {
	case element.TypeText, element.TypeTitle, element.TypeCaption:
		return routeText

	case element.TypeTable:
		return routeTable

	case element.TypeFormula:
		return routeFormula

	case element.TypeImage:
		if e.image == nil {
			return routeFallback
		}

		return routeImage

	case element.TypeChart:
		// native charts carry no picture to describe
		if e.image == nil || r.Native() {
			return routeFallback
		}

		return routeImage

	case element.TypeGroup, element.TypeUnknown:
		return routeFallback
	}

	return routeFallback
}

func (e *Extractor) resolve(r route) handler.Handler {
	switch r {
	case routeText:
		return e.text
	case routeTable:
		return e.table
	case routeFormula:
		return e.formula
	case routeImage:
		return e.image
	}

	return e.fallback
}

type pending struct {
	index  int
	future *async.Future[string]
}

// ExtractPage extracts every candidate and returns the elements in candidate order. Image work is
// submitted first so it overlaps with the synchronous handlers. A failing element keeps its error and
// never fails the page.
func (e *Extractor) ExtractPage(ctx context.Context, candidates []Candidate) []element.Element {
	ctx, span := otel.Tracer().Start(ctx, "extract page")
	defer span.End()

	span.SetAttributes(attribute.Int("elements", len(candidates)))

	elements := make([]element.Element, len(candidates))
	routes := make([]route, len(candidates))

	var futures []pending

	// submission
	for i, c := range candidates {
		elements[i] = newElement(c)
		routes[i] = e.route(c.Region)

		if routes[i] == routeImage {
			futures = append(futures, pending{
				index:  i,
				future: e.image.ExtractAsync(ctx, c.Region),
			})
		}
	}

	// synchronous
	for i, c := range candidates {
		if routes[i] == routeImage {
			continue
		}

		content, err := e.resolve(routes[i]).Extract(ctx, c.Region)

		if err != nil {
			slog.WarnContext(ctx, "element extraction failed", "type", c.Type, "page", c.Page, "error", err)
			elements[i].Error = err.Error()

			if content == nil {
				content = errorContent(err)
			}
		}

		elements[i].Content = content
	}

	// join
	for _, p := range futures {
		value, err := p.future.Wait()

		if err != nil {
			slog.WarnContext(ctx, "image extraction failed", "page", candidates[p.index].Page, "error", err)

			elements[p.index].Error = err.Error()
			elements[p.index].Content = errorContent(err)

			continue
		}

		elements[p.index].Content = value
	}

	for i := range elements {
		elements[i].ID = uuid.NewString()

		otel.RecordElement(ctx, string(elements[i].Type), elements[i].Error != "")
	}

	return elements
}

func newElement(c Candidate) element.Element {
	el := element.Element{
		Type:  c.Type,
		Label: c.Label,

		Box:        c.Box,
		Confidence: c.Confidence,
	}

	if c.Native() {
		size := c.Box.Size()
		el.Size = &size
	}

	return el
}

func errorContent(err error) string {
	return fmt.Sprintf("<ERROR: %s>", err)
}
