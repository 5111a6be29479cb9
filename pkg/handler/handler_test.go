package handler_test

import (
	"context"
	"testing"

	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/document/documenttest"
	"github.com/adrianliechti/ingester/pkg/geometry"
	"github.com/adrianliechti/ingester/pkg/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirst(t *testing.T) {
	var calls []string

	layer := func(name string, result string, ok bool) handler.Strategy[string] {
		return handler.Strategy[string]{
			Name: name,
			Run: func(ctx context.Context) (string, bool) {
				calls = append(calls, name)
				return result, ok
			},
		}
	}

	result, name, ok := handler.First(context.Background(),
		layer("a", "", false),
		handler.Strategy[string]{Name: "disabled"},
		layer("b", "found", true),
		layer("c", "late", true),
	)

	require.True(t, ok)
	assert.Equal(t, "found", result)
	assert.Equal(t, "b", name)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestFirstExhausted(t *testing.T) {
	_, name, ok := handler.First[int](context.Background())

	require.False(t, ok)
	require.Empty(t, name)
}

func TestRegionImage(t *testing.T) {
	ctx := context.Background()

	t.Run("native picture", func(t *testing.T) {
		r := handler.Region{
			Shape: &document.Shape{
				Image: &document.Image{Content: []byte("jpeg"), ContentType: "image/jpeg"},
			},
		}

		data, contentType, err := r.Image(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg"), data)
		assert.Equal(t, "image/jpeg", contentType)
	})

	t.Run("rendered", func(t *testing.T) {
		doc := &documenttest.Document{
			Pages: []documenttest.Page{{Image: []byte("png")}},
		}

		r := handler.Region{Document: doc, Box: geometry.NewBox(0, 0, 10, 10)}

		data, contentType, err := r.Image(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), data)
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("no source", func(t *testing.T) {
		_, _, err := handler.Region{}.Image(ctx, 0)
		require.ErrorIs(t, err, handler.ErrNoRegion)
	})
}

func TestUnfence(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"Here you go: {\"a\":{\"b\":2}} hope it helps", "{\"a\":{\"b\":2}}"},
		{"no json", "no json"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, handler.Unfence(tt.input))
	}
}

type response struct {
	LaTeX      string  `json:"latex"`
	Confidence float64 `json:"confidence,omitempty"`
}

func TestDecode(t *testing.T) {
	result, err := handler.Decode[response]("```json\n{\"latex\": \"x^2\", \"confidence\": 0.8, \"extra\": true}\n```")
	require.NoError(t, err)
	assert.Equal(t, response{LaTeX: "x^2", Confidence: 0.8}, result)

	_, err = handler.Decode[response]("not json at all")
	require.ErrorIs(t, err, handler.ErrInvalidResponse)

	_, err = handler.Decode[response](`{"confidence": 0.5}`)
	require.ErrorIs(t, err, handler.ErrInvalidResponse, "latex is required")
}

func TestSchema(t *testing.T) {
	schema := handler.Schema[response]("formula", "formula response")

	require.Equal(t, "formula", schema.Name)
	require.Equal(t, "object", schema.Schema["type"])
	require.Contains(t, schema.Schema["properties"], "latex")
}

func TestSchemaInvalidType(t *testing.T) {
	require.Panics(t, func() {
		handler.Schema[func()]("callback", "not representable")
	})
}

func TestCall(t *testing.T) {
	value, err := handler.Call(nil, func() (int, error) {
		return 1, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, value)

	pool := async.New(1)

	value, err = handler.Call(pool, func() (int, error) {
		return 2, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, value)

	_, err = handler.Call(pool, func() (int, error) {
		panic("boom")
	})

	require.ErrorIs(t, err, async.ErrPanic)
}
