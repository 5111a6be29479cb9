package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adrianliechti/ingester/pkg/analyzer"
	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/cache"
	"github.com/adrianliechti/ingester/pkg/detector"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/document/documenttest"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/extractor"
	"github.com/adrianliechti/ingester/pkg/geometry"
	"github.com/adrianliechti/ingester/pkg/handler/image"
	"github.com/adrianliechti/ingester/pkg/layout"
	"github.com/adrianliechti/ingester/pkg/provider"
	"github.com/adrianliechti/ingester/pkg/provider/providertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	detections []layout.Detection
	err        error

	options *detector.DetectOptions
}

func (d *fakeDetector) Detect(ctx context.Context, image []byte, options *detector.DetectOptions) ([]layout.Detection, error) {
	d.options = options
	return d.detections, d.err
}

func letter() *documenttest.Document {
	return &documenttest.Document{
		Pages: []documenttest.Page{
			{
				Size:  geometry.Size{Width: 612, Height: 792},
				Image: []byte("page"),

				Words: []document.Word{
					{Text: "Introduction", Box: geometry.NewBox(80, 80, 200, 100)},
				},
			},
		},
	}
}

func TestAnalyzePage(t *testing.T) {
	d := &fakeDetector{
		detections: []layout.Detection{
			{Label: "plain text", Box: geometry.NewBox(250, 250, 1000, 500), Confidence: 0.8},
			{Label: "abandon", Box: geometry.NewBox(0, 0, 250, 100), Confidence: 0.99},
			{Label: "table", Box: geometry.NewBox(250, 1000, 1000, 2000), Confidence: 0.6},
			{Label: "table", Box: geometry.NewBox(260, 1010, 1000, 2000), Confidence: 0.9},
		},
	}

	doc := letter()

	candidates, err := analyzer.New(analyzer.WithDetector(d)).Analyze(context.Background(), doc, 0)
	require.NoError(t, err)

	require.Len(t, candidates, 2)

	assert.Equal(t, element.TypeText, candidates[0].Type)
	assert.Equal(t, "plain text", candidates[0].Label)
	assert.InDelta(t, 72, candidates[0].Box.XMin, 1e-9)
	assert.InDelta(t, 144, candidates[0].Box.YMax, 1e-9)

	assert.Equal(t, element.TypeTable, candidates[1].Type)
	assert.Equal(t, 0.9, candidates[1].Confidence, "the stronger duplicate survives")

	assert.Equal(t, detector.DefaultConfidence, d.options.Confidence)
	assert.EqualValues(t, 1, doc.Renders.Load())
}

func TestAnalyzePageErrors(t *testing.T) {
	_, err := analyzer.New().Analyze(context.Background(), letter(), 0)
	require.ErrorIs(t, err, analyzer.ErrNoDetector)

	d := &fakeDetector{err: errors.New("model offline")}

	_, err = analyzer.New(analyzer.WithDetector(d)).Analyze(context.Background(), letter(), 0)
	require.EqualError(t, err, "model offline")

	_, err = analyzer.New(analyzer.WithDetector(d)).Analyze(context.Background(), letter(), 3)
	require.ErrorIs(t, err, document.ErrPageRange)
}

func TestAnalyzeSlide(t *testing.T) {
	doc := &documenttest.Document{
		DocumentKind: document.KindSlides,

		Pages: []documenttest.Page{
			{
				Size: geometry.Size{Width: 9144000, Height: 6858000},

				Shapes: []document.Shape{
					{ID: "3", Kind: document.ShapeText, Box: geometry.NewBox(500, 2000, 900, 2500), Text: "right"},
					{ID: "4", Kind: document.ShapeTable, Box: geometry.NewBox(0, 3000, 900, 4000), Table: [][]string{{"a"}}},
					{ID: "2", Kind: document.ShapeText, Box: geometry.NewBox(0, 2000, 400, 2500), Text: "left"},
					{ID: "1", Kind: document.ShapePlaceholder, Box: geometry.NewBox(0, 0, 900, 1000), Text: "Title"},
				},
			},
		},
	}

	candidates, err := analyzer.New().Analyze(context.Background(), doc, 0)
	require.NoError(t, err)

	require.Len(t, candidates, 4)

	var ids []string

	for _, c := range candidates {
		require.True(t, c.Native())
		ids = append(ids, c.Shape.ID)
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.Equal(t, element.TypeTable, candidates[3].Type)
	assert.Zero(t, doc.Renders.Load(), "slides are never rendered")
}

func TestAnalyzeAndExtract(t *testing.T) {
	d := &fakeDetector{
		detections: []layout.Detection{
			{Label: "abandon", Box: geometry.NewBox(0, 0, 2125, 100), Confidence: 0.99},
			{Label: "text", Box: geometry.NewBox(250, 250, 1000, 500), Confidence: 0.9},
			{Label: "figure", Box: geometry.NewBox(250, 1000, 1000, 2000), Confidence: 0.95},
		},
	}

	c, err := cache.New("")
	require.NoError(t, err)

	completer := &providertest.Completer{
		Func: func(messages []provider.Message, options *provider.CompleteOptions) (string, error) {
			if options != nil && options.Schema != nil {
				return `{"type": "photo"}`, nil
			}

			return "A harbor at dusk.", nil
		},
	}

	e := extractor.New(extractor.WithImage(image.New(
		image.WithCompleter(completer),
		image.WithPool(async.New(2)),
		image.WithCache(c),
	)))

	doc := letter()

	candidates, err := analyzer.New(analyzer.WithDetector(d)).Analyze(context.Background(), doc, 0)
	require.NoError(t, err)

	elements := e.ExtractPage(context.Background(), candidates)
	require.Len(t, elements, 2)

	assert.Equal(t, element.TypeText, elements[0].Type)
	assert.Equal(t, "Introduction", elements[0].Content)

	assert.Equal(t, element.TypeImage, elements[1].Type)
	assert.Equal(t, "A harbor at dusk.", elements[1].Content)

	assert.NotEmpty(t, elements[0].ID)
	assert.NotEqual(t, elements[0].ID, elements[1].ID)
}
