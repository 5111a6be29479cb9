package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type instruments struct {
	elements  metric.Int64Counter
	pages     metric.Int64Counter
	documents metric.Float64Histogram
}

// instruments are created on first use.
var loadInstruments = sync.OnceValue(func() *instruments {
	meter := Meter()

	elements, _ := meter.Int64Counter("ingester.elements",
		metric.WithDescription("Extracted elements by type and outcome"),
	)

	pages, _ := meter.Int64Counter("ingester.pages",
		metric.WithDescription("Processed pages and slides"),
	)

	documents, _ := meter.Float64Histogram("ingester.document.duration",
		metric.WithDescription("Time to process one document"),
		metric.WithUnit("s"),
	)

	return &instruments{
		elements:  elements,
		pages:     pages,
		documents: documents,
	}
})

// RecordElement counts one extracted element of the given type.
func RecordElement(ctx context.Context, typ string, failed bool) {
	loadInstruments().elements.Add(ctx, 1, metric.WithAttributes(
		attribute.String("element.type", typ),
		attribute.Bool("element.failed", failed),
	))
}

// RecordDocument records a processed document of kind ("pdf" or "slides").
func RecordDocument(ctx context.Context, kind string, pages int, duration time.Duration) {
	attrs := metric.WithAttributes(KeyValues([]KeyValue{attribute.String("document.kind", kind)}, EndUserAttrs(ctx))...)

	i := loadInstruments()

	i.pages.Add(ctx, int64(pages), attrs)
	i.documents.Record(ctx, duration.Seconds(), attrs)
}
