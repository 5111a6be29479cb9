package limiter

import (
	"context"

	"github.com/adrianliechti/ingester/pkg/detector"
	"github.com/adrianliechti/ingester/pkg/layout"

	"golang.org/x/time/rate"
)

type Detector interface {
	Limiter
	detector.Provider
}

type limitedDetector struct {
	limiter  *rate.Limiter
	provider detector.Provider
}

func NewDetector(l *rate.Limiter, p detector.Provider) Detector {
	return &limitedDetector{
		limiter:  l,
		provider: p,
	}
}

func (p *limitedDetector) limiterSetup() {
}

func (p *limitedDetector) Detect(ctx context.Context, image []byte, options *detector.DetectOptions) ([]layout.Detection, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return p.provider.Detect(ctx, image, options)
}
