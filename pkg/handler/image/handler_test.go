package image_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/cache"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/document/documenttest"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/geometry"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/handler/image"
	"github.com/adrianliechti/ingester/pkg/provider"
	"github.com/adrianliechti/ingester/pkg/provider/providertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vision answers categorization requests with category and every other request with description.
func vision(category, description string) *providertest.Completer {
	return &providertest.Completer{
		Func: func(messages []provider.Message, options *provider.CompleteOptions) (string, error) {
			if options != nil && options.Schema != nil {
				return `{"type": "` + category + `"}`, nil
			}

			return description, nil
		},
	}
}

type extractor struct {
	result any
	calls  int
}

func (e *extractor) ExtractImage(ctx context.Context, image []byte, contentType string) (any, error) {
	e.calls++
	return e.result, nil
}

func TestDescribe(t *testing.T) {
	c, err := cache.New("")
	require.NoError(t, err)

	completer := vision("Photo", "  A red bicycle leaning on a wall.\n")

	h := image.New(
		image.WithCompleter(completer),
		image.WithPool(async.New(2)),
		image.WithCache(c),
	)

	value, err := h.Describe(context.Background(), []byte("bicycle"), "image/png").Wait()
	require.NoError(t, err)
	require.Equal(t, "A red bicycle leaning on a wall.", value)

	cached, ok := c.Get(cache.Hash([]byte("bicycle")))
	require.True(t, ok)
	require.Equal(t, value, cached)

	again, err := h.Describe(context.Background(), []byte("bicycle"), "image/png").Wait()
	require.NoError(t, err)
	require.Equal(t, value, again)

	assert.Len(t, completer.Calls(), 2, "categorize and describe run once")
	assert.Equal(t, image.Stats{Calls: 2, Hits: 1}, h.Stats())
}

func TestDescribeCacheHit(t *testing.T) {
	c, err := cache.New("")
	require.NoError(t, err)

	require.NoError(t, c.Set(cache.Hash([]byte("logo")), "cached description"))

	completer := vision("photo", "fresh description")
	h := image.New(image.WithCompleter(completer), image.WithCache(c))

	f := h.Describe(context.Background(), []byte("logo"), "image/png")

	select {
	case <-f.Done():
	default:
		t.Fatal("cache hits resolve immediately")
	}

	value, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, "cached description", value)
	assert.Empty(t, completer.Calls())
}

func TestDescribeDelegatesTable(t *testing.T) {
	tables := &extractor{
		result: &element.Table{Rows: 1, Columns: 1, Grid: [][]string{{"x"}}, Markdown: "| x |\n| --- |", Source: "vision"},
	}

	formulas := &extractor{}

	completer := vision("table", "unused")

	h := image.New(
		image.WithCompleter(completer),
		image.WithTable(tables),
		image.WithFormula(formulas),
	)

	value, err := h.Describe(context.Background(), []byte("grid"), "image/png").Wait()
	require.NoError(t, err)

	assert.JSONEq(t, `{"rowCount": 1, "columnCount": 1, "grid": [["x"]], "markdown": "| x |\n| --- |", "source": "vision"}`, value)
	assert.Equal(t, 1, tables.calls)
	assert.Equal(t, 0, formulas.calls)
	assert.Len(t, completer.Calls(), 1)
}

func TestDescribeWithoutDelegate(t *testing.T) {
	completer := vision("math", "E = mc^2")
	h := image.New(image.WithCompleter(completer))

	value, err := h.Describe(context.Background(), []byte("formula"), "image/png").Wait()
	require.NoError(t, err)
	assert.Equal(t, "E = mc^2", value)

	calls := completer.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Prompt(), "Transcribe all text")
}

func TestDescribeCategorizeFailure(t *testing.T) {
	completer := &providertest.Completer{
		Func: func(messages []provider.Message, options *provider.CompleteOptions) (string, error) {
			if options != nil && options.Schema != nil {
				return "", errors.New("service unavailable")
			}

			return "a landscape", nil
		},
	}

	h := image.New(image.WithCompleter(completer))

	value, err := h.Describe(context.Background(), []byte("hills"), "image/png").Wait()
	require.NoError(t, err)
	assert.Equal(t, "a landscape", value)
}

func TestDescribeWithoutCompleter(t *testing.T) {
	h := image.New()

	_, err := h.Describe(context.Background(), []byte("png"), "image/png").Wait()
	require.ErrorIs(t, err, handler.ErrNoCompleter)
}

func TestDescribeCachedWithoutCompleter(t *testing.T) {
	c, err := cache.New("")
	require.NoError(t, err)

	require.NoError(t, c.Set(cache.Hash([]byte("logo")), "A company logo."))

	h := image.New(image.WithCache(c))

	value, err := h.Describe(context.Background(), []byte("logo"), "image/png").Wait()
	require.NoError(t, err)
	assert.Equal(t, "A company logo.", value)

	_, err = h.Describe(context.Background(), []byte("other"), "image/png").Wait()
	require.ErrorIs(t, err, handler.ErrNoCompleter)

	assert.Equal(t, 1, h.Stats().Hits)
}

func TestExtractAsync(t *testing.T) {
	doc := &documenttest.Document{
		Pages: []documenttest.Page{
			{Image: []byte("rendered")},
		},
	}

	h := image.New(image.WithCompleter(vision("chart", "Revenue grows")))

	r := handler.Region{
		Document: doc,
		Type:     element.TypeImage,
		Box:      geometry.NewBox(0, 0, 10, 10),
	}

	value, err := h.ExtractAsync(context.Background(), r).Wait()
	require.NoError(t, err)
	assert.Equal(t, "Revenue grows", value)

	content, err := h.Extract(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Revenue grows", content)
}

func TestExtractAsyncPicture(t *testing.T) {
	doc := &documenttest.Document{
		DocumentKind: document.KindSlides,
		Pages:        []documenttest.Page{{}},
	}

	h := image.New(image.WithCompleter(vision("photo", "A cat")))

	r := handler.Region{
		Document: doc,
		Type:     element.TypeImage,

		Shape: &document.Shape{
			Kind:  document.ShapePicture,
			Image: &document.Image{Content: []byte("jpeg"), ContentType: "image/jpeg"},
		},
	}

	value, err := h.ExtractAsync(context.Background(), r).Wait()
	require.NoError(t, err)
	assert.Equal(t, "A cat", value)
	assert.Zero(t, doc.Renders.Load(), "embedded pictures are not rendered")
}

func TestExtractAsyncRenderError(t *testing.T) {
	doc := &documenttest.Document{
		Pages: []documenttest.Page{{}},
	}

	h := image.New(image.WithCompleter(vision("photo", "unused")))

	_, err := h.ExtractAsync(context.Background(), handler.Region{Document: doc, Type: element.TypeImage}).Wait()
	require.ErrorIs(t, err, document.ErrUnsupported)
}

func TestParseCategory(t *testing.T) {
	tests := map[string]image.Category{
		"Table":          image.CategoryTable,
		"Math":           image.CategoryFormula,
		"formula":        image.CategoryFormula,
		"Bar Chart":      image.CategoryChart,
		"line graph":     image.CategoryChart,
		"Flowchart":      image.CategoryFlowchart,
		"Technical":      image.CategoryDiagram,
		"diagram":        image.CategoryDiagram,
		"Text":           image.CategoryText,
		"Photo":          image.CategoryPhoto,
		"something else": image.CategoryPhoto,
		"":               image.CategoryPhoto,
	}

	for input, want := range tests {
		assert.Equal(t, want, image.ParseCategory(input), input)
	}
}
