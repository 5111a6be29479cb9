package detector

import (
	"context"
	"errors"

	"github.com/adrianliechti/ingester/pkg/layout"
)

const DefaultConfidence = 0.4

var ErrUnavailable = errors.New("detector unavailable")

// Provider finds layout regions in a rendered page image. Boxes are pixel coordinates of that image.
type Provider interface {
	Detect(ctx context.Context, image []byte, options *DetectOptions) ([]layout.Detection, error)
}

type DetectOptions struct {
	Confidence float64
}
