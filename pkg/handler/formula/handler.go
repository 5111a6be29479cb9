package formula

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/omml"
	"github.com/adrianliechti/ingester/pkg/provider"
)

var (
	_ handler.Handler        = (*Handler)(nil)
	_ handler.ImageExtractor = (*Handler)(nil)
)

var (
	//go:embed ocr.md
	promptOCR string

	//go:embed equation.md
	promptEquation string

	schemaOCR      = handler.Schema[ocrResult]("formula", "LaTeX transcription of a formula image")
	schemaEquation = handler.Schema[equationResult]("equation", "LaTeX form of a plain text equation")
)

const (
	SourceMarkup = "omml"
	SourceSlide  = "omml_slide"
	SourceText   = "text_llm"
	SourceOCR    = "ocr"
	SourceFailed = "failed"
)

// StatusParseError marks a vision response that was not valid JSON.
const StatusParseError = "json_parse_error"

// StatusNoLaTeX marks a vision response without a transcription.
const StatusNoLaTeX = "no_latex"

// Confidences are the fixed trust values assigned per layer. They are not calibrated probabilities.
type Confidences struct {
	// Markup applies when converted markup produced LaTeX, MathML when it produced MathML only.
	Markup float64
	MathML float64

	Text      float64
	Heuristic float64

	// OCR applies when the vision model reports no confidence of its own.
	OCR float64
}

var DefaultConfidences = Confidences{
	Markup: 1.0,
	MathML: 0.8,

	Text:      0.9,
	Heuristic: 0.6,

	OCR: 0.95,
}

// Handler transcribes formulas. Layers in order: the shape's own math markup, the math markup of the
// whole slide, the shape text through a language model, and vision OCR of the rendered region.
type Handler struct {
	completer provider.Completer
	text      provider.Completer

	pool *async.Pool

	dpi         int
	confidences Confidences
}

type Option func(*Handler)

func WithCompleter(completer provider.Completer) Option {
	return func(h *Handler) {
		h.completer = completer
	}
}

// WithTextCompleter sets the model that turns formula text into LaTeX. Defaults to the completer.
func WithTextCompleter(completer provider.Completer) Option {
	return func(h *Handler) {
		h.text = completer
	}
}

// WithPool runs the model calls of page and slide regions as tasks of pool.
func WithPool(pool *async.Pool) Option {
	return func(h *Handler) {
		h.pool = pool
	}
}

func WithDPI(dpi int) Option {
	return func(h *Handler) {
		h.dpi = dpi
	}
}

func WithConfidences(confidences Confidences) Option {
	return func(h *Handler) {
		h.confidences = confidences
	}
}

func New(options ...Option) *Handler {
	h := &Handler{
		dpi:         handler.DefaultDPI,
		confidences: DefaultConfidences,
	}

	for _, option := range options {
		option(h)
	}

	if h.text == nil {
		h.text = h.completer
	}

	return h
}

// Extract returns an *element.Formula. When every layer fails the returned formula has no LaTeX, the
// source "failed" and the status of the last model response, together with handler.ErrExhausted.
func (h *Handler) Extract(ctx context.Context, r handler.Region) (any, error) {
	var status string

	strategies := []handler.Strategy[*element.Formula]{
		{Name: SourceOCR, Run: h.ocrLayer(r, &status)},
	}

	// pages carry no math markup or formula text worth a text model call
	if r.Native() {
		strategies = append([]handler.Strategy[*element.Formula]{
			{Name: SourceMarkup, Run: h.markupLayer(r)},
			{Name: SourceSlide, Run: h.slideLayer(r)},
			{Name: SourceText, Run: h.textLayer(r)},
		}, strategies...)
	}

	result, _, ok := handler.First(ctx, strategies...)

	if !ok {
		if status != "" {
			return Failed(status), fmt.Errorf("%w: %s", handler.ErrExhausted, status)
		}

		return Failed(""), handler.ErrExhausted
	}

	return result, nil
}

// ExtractImage transcribes a formula from a standalone image. A response without LaTeX is not an
// error; its status is recorded on the result. The call runs on the calling goroutine.
func (h *Handler) ExtractImage(ctx context.Context, image []byte, contentType string) (any, error) {
	if h.completer == nil {
		return nil, handler.ErrNoCompleter
	}

	return h.recognize(ctx, image, contentType)
}

// Failed is the result of an exhausted chain. An empty status records handler.ErrExhausted.
func Failed(status string) *element.Formula {
	if status == "" {
		status = handler.ErrExhausted.Error()
	}

	return &element.Formula{
		Source:     SourceFailed,
		Confidence: 0,

		Error: status,
	}
}

func (h *Handler) markupLayer(r handler.Region) func(context.Context) (*element.Formula, bool) {
	if r.Shape == nil || !omml.Contains(r.Shape.Markup) {
		return nil
	}

	return func(ctx context.Context) (*element.Formula, bool) {
		return h.convert(ctx, r.Shape.Markup, SourceMarkup)
	}
}

func (h *Handler) slideLayer(r handler.Region) func(context.Context) (*element.Formula, bool) {
	if r.Document == nil || r.Document.Kind() != document.KindSlides {
		return nil
	}

	return func(ctx context.Context) (*element.Formula, bool) {
		markup, err := r.Document.Markup(ctx, r.Page)

		if err != nil {
			slog.DebugContext(ctx, "reading slide markup failed", "page", r.Page, "error", err)
			return nil, false
		}

		return h.convert(ctx, markup, SourceSlide)
	}
}

func (h *Handler) convert(ctx context.Context, markup, source string) (*element.Formula, bool) {
	equations, err := omml.Convert(markup)

	if err != nil {
		slog.DebugContext(ctx, "converting math markup failed", "source", source, "error", err)
		return nil, false
	}

	latex, mathml := omml.Join(equations)

	if latex == "" && mathml == "" {
		return nil, false
	}

	result := &element.Formula{
		MathML: mathml,
		Source: source,

		Confidence: h.confidences.MathML,
	}

	if latex != "" {
		result.LaTeX = &latex
		result.Confidence = h.confidences.Markup
	}

	return result, true
}

type equationResult struct {
	LaTeX *string `json:"latex"`
}

func (h *Handler) textLayer(r handler.Region) func(context.Context) (*element.Formula, bool) {
	if h.text == nil {
		return nil
	}

	return func(ctx context.Context) (*element.Formula, bool) {
		text, err := r.Text(ctx)

		if err != nil {
			return nil, false
		}

		text = strings.TrimSpace(text)

		if text == "" {
			return nil, false
		}

		latex, err := handler.Call(h.pool, func() (string, error) {
			return h.infer(ctx, text)
		})

		if err != nil {
			slog.WarnContext(ctx, "text to latex failed", "error", err)
		}

		confidence := h.confidences.Text

		if latex == "" {
			latex = Heuristic(text)
			confidence = h.confidences.Heuristic
		}

		if latex == "" {
			return nil, false
		}

		return &element.Formula{
			LaTeX:  &latex,
			Source: SourceText,

			Confidence: confidence,
		}, true
	}
}

func (h *Handler) infer(ctx context.Context, text string) (string, error) {
	messages := []provider.Message{
		provider.SystemMessage(promptEquation),
		provider.UserMessage(text),
	}

	completion, err := h.text.Complete(ctx, messages, &provider.CompleteOptions{
		MaxTokens: provider.Ptr(300),

		Format: provider.CompletionFormatJSON,
		Schema: schemaEquation,
	})

	if err != nil {
		return "", err
	}

	result, err := handler.Decode[equationResult](completion.Text())

	if err != nil {
		return "", err
	}

	if result.LaTeX == nil {
		return "", nil
	}

	return strings.TrimSpace(*result.LaTeX), nil
}

// ocrLayer records the status of a response without LaTeX in status.
func (h *Handler) ocrLayer(r handler.Region, status *string) func(context.Context) (*element.Formula, bool) {
	if h.completer == nil {
		return nil
	}

	return func(ctx context.Context) (*element.Formula, bool) {
		image, contentType, err := r.Image(ctx, h.dpi)

		if err != nil {
			slog.WarnContext(ctx, "rendering formula region failed", "page", r.Page, "error", err)
			return nil, false
		}

		result, err := handler.Call(h.pool, func() (*element.Formula, error) {
			return h.recognize(ctx, image, contentType)
		})

		if err != nil {
			slog.WarnContext(ctx, "formula ocr failed", "page", r.Page, "error", err)
			*status = err.Error()

			return nil, false
		}

		if result.LaTeX == nil {
			slog.DebugContext(ctx, "formula ocr returned no latex", "page", r.Page, "status", result.Error)
			*status = result.Error

			return nil, false
		}

		return result, true
	}
}

type ocrResult struct {
	LaTeX      *string  `json:"latex"`
	Confidence *float64 `json:"confidence,omitempty"`

	RawText *string `json:"raw_text,omitempty"`
}

func (h *Handler) recognize(ctx context.Context, image []byte, contentType string) (*element.Formula, error) {
	messages := []provider.Message{
		provider.ImageMessage(promptOCR, image, contentType),
	}

	completion, err := h.completer.Complete(ctx, messages, &provider.CompleteOptions{
		MaxTokens: provider.Ptr(500),

		Format: provider.CompletionFormatJSON,
		Schema: schemaOCR,
	})

	if err != nil {
		return nil, err
	}

	result := &element.Formula{
		Source: SourceOCR,
	}

	response, err := handler.Decode[ocrResult](completion.Text())

	if err != nil {
		result.Error = StatusParseError
		return result, nil
	}

	if response.LaTeX == nil || strings.TrimSpace(*response.LaTeX) == "" {
		result.Error = StatusNoLaTeX
		return result, nil
	}

	latex := strings.TrimSpace(*response.LaTeX)

	result.LaTeX = &latex
	result.Confidence = h.confidences.OCR

	if response.Confidence != nil && *response.Confidence > 0 {
		result.Confidence = min(*response.Confidence, 1)
	}

	return result, nil
}
