package table

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/provider"
	"github.com/adrianliechti/ingester/pkg/tabular"
	textutil "github.com/adrianliechti/ingester/pkg/text"
)

var (
	_ handler.Handler        = (*Handler)(nil)
	_ handler.ImageExtractor = (*Handler)(nil)
)

var (
	//go:embed table.md
	prompt string

	schema = handler.Schema[visionTable]("table", "rows and headers of a table")
)

const (
	SourceNative = "pptx"
	SourceLayout = "layout"
	SourceVision = "vision"
	SourceFailed = "failed"
)

const maxTokens = 1000

// Handler extracts tables. Native tables are read cell by cell; page regions go through the layout
// parser first and a vision model second.
type Handler struct {
	completer provider.Completer
	parser    tabular.Parser

	pool *async.Pool

	dpi int

	parsed atomic.Int64
	vision atomic.Int64
}

type Option func(*Handler)

func WithCompleter(completer provider.Completer) Option {
	return func(h *Handler) {
		h.completer = completer
	}
}

// WithParser sets the deterministic parser. A nil parser disables the layout layer.
func WithParser(parser tabular.Parser) Option {
	return func(h *Handler) {
		h.parser = parser
	}
}

// WithPool runs the vision calls of page and slide regions as tasks of pool.
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

func New(options ...Option) *Handler {
	h := &Handler{
		parser: tabular.New(),

		dpi: handler.DefaultDPI,
	}

	for _, option := range options {
		option(h)
	}

	return h
}

type Stats struct {
	Parsed int `json:"parser_success"`
	Vision int `json:"vision_fallback_used"`
}

func (h *Handler) Stats() Stats {
	return Stats{
		Parsed: int(h.parsed.Load()),
		Vision: int(h.vision.Load()),
	}
}

// Extract returns an *element.Table. When every layer fails the returned table carries the error
// of the vision call, or handler.ErrExhausted, together with handler.ErrExhausted.
func (h *Handler) Extract(ctx context.Context, r handler.Region) (any, error) {
	if r.Shape != nil && len(r.Shape.Table) > 0 {
		return Normalize(r.Shape.Table, SourceNative), nil
	}

	var status string

	result, source, ok := handler.First(ctx,
		handler.Strategy[*element.Table]{Name: SourceLayout, Run: h.layoutLayer(r)},
		handler.Strategy[*element.Table]{Name: SourceVision, Run: h.visionLayer(r, &status)},
	)

	if !ok {
		if status != "" {
			return &element.Table{
				Source: SourceFailed,
				Error:  status,
			}, fmt.Errorf("%w: %s", handler.ErrExhausted, status)
		}

		return &element.Table{
			Source: SourceFailed,
			Error:  handler.ErrExhausted.Error(),
		}, handler.ErrExhausted
	}

	switch source {
	case SourceLayout:
		h.parsed.Add(1)
	case SourceVision:
		h.vision.Add(1)
	}

	return result, nil
}

// ExtractImage recognizes a table in a standalone image. The call runs on the calling goroutine.
func (h *Handler) ExtractImage(ctx context.Context, image []byte, contentType string) (any, error) {
	if h.completer == nil {
		return nil, handler.ErrNoCompleter
	}

	h.vision.Add(1)

	return h.recognize(ctx, image, contentType)
}

func (h *Handler) layoutLayer(r handler.Region) func(context.Context) (*element.Table, bool) {
	if h.parser == nil || r.Document == nil || r.Native() {
		return nil
	}

	return func(ctx context.Context) (*element.Table, bool) {
		words, err := r.Document.Words(ctx, r.Page, r.Box)

		if err != nil {
			slog.DebugContext(ctx, "reading table words failed", "page", r.Page, "error", err)
			return nil, false
		}

		for _, rows := range h.parser.Parse(words) {
			if !empty(rows) {
				return Normalize(rows, SourceLayout), true
			}
		}

		return nil, false
	}
}

func (h *Handler) visionLayer(r handler.Region, status *string) func(context.Context) (*element.Table, bool) {
	if h.completer == nil {
		return nil
	}

	return func(ctx context.Context) (*element.Table, bool) {
		image, contentType, err := r.Image(ctx, h.dpi)

		if err != nil {
			slog.WarnContext(ctx, "rendering table region failed", "page", r.Page, "error", err)
			return nil, false
		}

		result, err := handler.Call(h.pool, func() (*element.Table, error) {
			return h.recognize(ctx, image, contentType)
		})

		if err != nil {
			slog.WarnContext(ctx, "vision table extraction failed", "page", r.Page, "error", err)
			*status = err.Error()

			return nil, false
		}

		return result, len(result.Grid) > 0
	}
}

type visionTable struct {
	Rows    [][]string `json:"rows"`
	Headers []string   `json:"headers,omitempty"`

	Title     *string `json:"title,omitempty"`
	Footnotes *string `json:"footnotes,omitempty"`
}

func (h *Handler) recognize(ctx context.Context, image []byte, contentType string) (*element.Table, error) {
	messages := []provider.Message{
		provider.ImageMessage(prompt, image, contentType),
	}

	completion, err := h.completer.Complete(ctx, messages, &provider.CompleteOptions{
		MaxTokens: provider.Ptr(maxTokens),

		Format: provider.CompletionFormatJSON,
		Schema: schema,
	})

	if err != nil {
		return nil, err
	}

	text := completion.Text()

	if strings.TrimSpace(text) == "" {
		return nil, provider.ErrEmptyResponse
	}

	result, err := handler.Decode[visionTable](text)

	if err != nil {
		// some models answer with a markdown table despite the requested format
		if tables := textutil.ParseTables(text); len(tables) > 0 {
			return Normalize(tables[0], SourceVision), nil
		}

		return nil, err
	}

	rows := result.Rows

	if len(result.Headers) > 0 && (len(rows) == 0 || !slices.Equal(rows[0], result.Headers)) {
		rows = append([][]string{result.Headers}, rows...)
	}

	table := Normalize(rows, SourceVision)

	if result.Title != nil {
		table.Title = strings.TrimSpace(*result.Title)
	}

	if result.Footnotes != nil {
		table.Footnotes = strings.TrimSpace(*result.Footnotes)
	}

	return table, nil
}

// Normalize trims every cell and pads ragged rows with empty cells up to the widest row.
func Normalize(rows [][]string, source string) *element.Table {
	columns := 0

	for _, row := range rows {
		columns = max(columns, len(row))
	}

	grid := make([][]string, 0, len(rows))

	for _, row := range rows {
		cells := make([]string, columns)

		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}

		grid = append(grid, cells)
	}

	return &element.Table{
		Rows:    len(grid),
		Columns: columns,

		Grid:     grid,
		Markdown: textutil.MarkdownTable(grid),

		Source: source,
	}
}

func empty(rows [][]string) bool {
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}

	return true
}
