package otel

import (
	"context"

	"github.com/adrianliechti/ingester/pkg/detector"
	"github.com/adrianliechti/ingester/pkg/layout"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type Detector interface {
	Observable
	detector.Provider
}

type observableDetector struct {
	model    string
	provider string

	detector detector.Provider
}

func NewDetector(provider, model string, p detector.Provider) Detector {
	return &observableDetector{
		detector: p,

		model:    model,
		provider: provider,
	}
}

func (p *observableDetector) otelSetup() {
}

func (p *observableDetector) Detect(ctx context.Context, image []byte, options *detector.DetectOptions) ([]layout.Detection, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "detect "+p.model)
	defer span.End()

	result, err := p.detector.Detect(ctx, image, options)

	span.SetAttributes(attribute.Int("detections", len(result)))

	return result, err
}
