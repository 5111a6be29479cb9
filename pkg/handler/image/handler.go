package image

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/cache"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/otel"
	"github.com/adrianliechti/ingester/pkg/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var _ handler.AsyncHandler = (*Handler)(nil)

var (
	//go:embed prompts/*.md
	prompts embed.FS

	schema = handler.Schema[categoryResult]("category", "category of an image")
)

type Category string

const (
	CategoryTable     Category = "table"
	CategoryFormula   Category = "formula"
	CategoryChart     Category = "chart"
	CategoryDiagram   Category = "diagram"
	CategoryFlowchart Category = "flowchart"
	CategoryText      Category = "text"
	CategoryPhoto     Category = "photo"
)

// ParseCategory maps a free-form category answer onto a Category. Unknown answers are photos.
func ParseCategory(s string) Category {
	s = strings.ToLower(s)

	switch {
	case strings.Contains(s, "table"):
		return CategoryTable
	case strings.Contains(s, "formula"), strings.Contains(s, "math"), strings.Contains(s, "equation"):
		return CategoryFormula
	case strings.Contains(s, "flowchart"), strings.Contains(s, "flow chart"):
		return CategoryFlowchart
	case strings.Contains(s, "chart"), strings.Contains(s, "graph"):
		return CategoryChart
	case strings.Contains(s, "diagram"), strings.Contains(s, "technical"):
		return CategoryDiagram
	case strings.Contains(s, "text"):
		return CategoryText
	}

	return CategoryPhoto
}

// Handler describes images. Each image is one pool task that categorizes it, delegates tables and
// formulas to their handlers, describes everything else, and stores the result in the cache.
type Handler struct {
	completer provider.Completer

	pool  *async.Pool
	cache *cache.Cache

	table   handler.ImageExtractor
	formula handler.ImageExtractor

	dpi int

	calls atomic.Int64
	hits  atomic.Int64
}

type Option func(*Handler)

func WithCompleter(completer provider.Completer) Option {
	return func(h *Handler) {
		h.completer = completer
	}
}

func WithPool(pool *async.Pool) Option {
	return func(h *Handler) {
		h.pool = pool
	}
}

// WithCache enables result caching by image content.
func WithCache(cache *cache.Cache) Option {
	return func(h *Handler) {
		h.cache = cache
	}
}

func WithTable(extractor handler.ImageExtractor) Option {
	return func(h *Handler) {
		h.table = extractor
	}
}

func WithFormula(extractor handler.ImageExtractor) Option {
	return func(h *Handler) {
		h.formula = extractor
	}
}

func WithDPI(dpi int) Option {
	return func(h *Handler) {
		h.dpi = dpi
	}
}

func New(options ...Option) *Handler {
	h := &Handler{
		dpi: handler.DefaultDPI,
	}

	for _, option := range options {
		option(h)
	}

	if h.pool == nil {
		h.pool = async.New(async.DefaultWidth)
	}

	return h
}

type Stats struct {
	Calls int `json:"api_calls"`
	Hits  int `json:"cache_hits"`
}

func (h *Handler) Stats() Stats {
	return Stats{
		Calls: int(h.calls.Load()),
		Hits:  int(h.hits.Load()),
	}
}

func (h *Handler) Extract(ctx context.Context, r handler.Region) (any, error) {
	return h.ExtractAsync(ctx, r).Wait()
}

// ExtractAsync returns the future of the region description. Cached results resolve immediately.
func (h *Handler) ExtractAsync(ctx context.Context, r handler.Region) *async.Future[string] {
	image, contentType, err := r.Image(ctx, h.dpi)

	if err != nil {
		return async.Failed[string](err)
	}

	return h.Describe(ctx, image, contentType)
}

// Describe returns the future of the description of image. Cached descriptions resolve without a
// completer.
func (h *Handler) Describe(ctx context.Context, image []byte, contentType string) *async.Future[string] {
	hash := cache.Hash(image)

	if h.cache != nil {
		if value, ok := h.cache.Get(hash); ok {
			h.hits.Add(1)
			return async.Resolved(value)
		}
	}

	if h.completer == nil {
		return async.Failed[string](handler.ErrNoCompleter)
	}

	// the task outlives the request that submitted it
	ctx = context.WithoutCancel(ctx)

	return async.Submit(h.pool, func() (string, error) {
		ctx, span := otel.Tracer().Start(ctx, "describe image")
		defer span.End()

		category := h.categorize(ctx, image, contentType)

		span.SetAttributes(attribute.String("category", string(category)))

		result, err := h.dispatch(ctx, category, image, contentType)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return "", err
		}

		if h.cache != nil {
			if err := h.cache.Set(hash, result); err != nil {
				slog.WarnContext(ctx, "writing image cache failed", "error", err)
			}
		}

		return result, nil
	})
}

type categoryResult struct {
	Type string `json:"type"`
}

func (h *Handler) categorize(ctx context.Context, image []byte, contentType string) Category {
	prompt, _ := prompts.ReadFile("prompts/categorize.md")

	text, err := h.complete(ctx, string(prompt), image, contentType, &provider.CompleteOptions{
		MaxTokens: provider.Ptr(50),

		Format: provider.CompletionFormatJSON,
		Schema: schema,
	})

	if err != nil {
		slog.WarnContext(ctx, "image categorization failed", "error", err)
		return CategoryPhoto
	}

	result, err := handler.Decode[categoryResult](text)

	if err != nil {
		return ParseCategory(text)
	}

	return ParseCategory(result.Type)
}

func (h *Handler) dispatch(ctx context.Context, category Category, image []byte, contentType string) (string, error) {
	var extractor handler.ImageExtractor

	switch category {
	case CategoryTable:
		extractor = h.table
	case CategoryFormula:
		extractor = h.formula
	}

	if extractor == nil {
		return h.describe(ctx, category, image, contentType)
	}

	result, err := extractor.ExtractImage(ctx, image, contentType)

	if err != nil {
		return "", fmt.Errorf("%s extraction: %w", category, err)
	}

	data, err := json.Marshal(result)

	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (h *Handler) describe(ctx context.Context, category Category, image []byte, contentType string) (string, error) {
	// delegated categories fall back to a transcription without their handler
	if category == CategoryTable || category == CategoryFormula {
		category = CategoryText
	}

	prompt, err := prompts.ReadFile("prompts/" + string(category) + ".md")

	if err != nil {
		return "", err
	}

	text, err := h.complete(ctx, string(prompt), image, contentType, &provider.CompleteOptions{
		MaxTokens: provider.Ptr(1000),
	})

	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)

	if text == "" {
		return "", provider.ErrEmptyResponse
	}

	return text, nil
}

func (h *Handler) complete(ctx context.Context, prompt string, image []byte, contentType string, options *provider.CompleteOptions) (string, error) {
	h.calls.Add(1)

	messages := []provider.Message{
		provider.ImageMessage(prompt, image, contentType),
	}

	completion, err := h.completer.Complete(ctx, messages, options)

	if err != nil {
		return "", err
	}

	return completion.Text(), nil
}
