package text

import (
	"context"

	"github.com/adrianliechti/ingester/pkg/handler"
	textutil "github.com/adrianliechti/ingester/pkg/text"
)

var _ handler.Handler = (*Handler)(nil)

// Handler reads the text of a region. Page text has its whitespace collapsed; shape text keeps its
// paragraph breaks.
type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) Extract(ctx context.Context, r handler.Region) (any, error) {
	text, err := r.Text(ctx)

	if err != nil {
		return nil, err
	}

	if r.Native() {
		return textutil.Normalize(text), nil
	}

	return textutil.Collapse(text), nil
}
