package fallback

import (
	"context"

	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/handler"
)

var _ handler.Handler = (*Handler)(nil)

// Handler answers every region with the unhandled placeholder.
type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) Extract(ctx context.Context, r handler.Region) (any, error) {
	return element.Placeholder, nil
}
