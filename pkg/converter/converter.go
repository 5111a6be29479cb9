package converter

import (
	"context"
)

// Provider converts a document into a PDF and returns the path of the result.
type Provider interface {
	Convert(ctx context.Context, path string) (string, error)
}
