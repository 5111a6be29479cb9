package text_test

import (
	"context"
	"testing"

	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/document/documenttest"
	"github.com/adrianliechti/ingester/pkg/geometry"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/handler/text"

	"github.com/stretchr/testify/require"
)

func TestExtractPage(t *testing.T) {
	doc := &documenttest.Document{
		Pages: []documenttest.Page{
			{
				Words: []document.Word{
					{Text: "Hello", Box: geometry.NewBox(0, 0, 20, 10)},
					{Text: " world\n", Box: geometry.NewBox(25, 0, 50, 10)},
					{Text: "outside", Box: geometry.NewBox(500, 500, 520, 510)},
				},
			},
		},
	}

	result, err := text.New().Extract(context.Background(), handler.Region{
		Document: doc,
		Box:      geometry.NewBox(0, 0, 100, 20),
	})

	require.NoError(t, err)
	require.Equal(t, "Hello world", result)
}

func TestExtractShape(t *testing.T) {
	result, err := text.New().Extract(context.Background(), handler.Region{
		Shape: &document.Shape{Text: "  Title\r\n\r\nBody   text  "},
	})

	require.NoError(t, err)
	require.Equal(t, "Title\n\nBody text", result)
}

func TestExtractWithoutSource(t *testing.T) {
	result, err := text.New().Extract(context.Background(), handler.Region{})
	require.ErrorIs(t, err, handler.ErrNoRegion)
	require.Nil(t, result)
}
