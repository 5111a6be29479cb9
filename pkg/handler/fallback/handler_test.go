package fallback_test

import (
	"context"
	"testing"

	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/handler/fallback"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	for _, typ := range []element.Type{element.TypeChart, element.TypeGroup, element.TypeUnknown} {
		content, err := fallback.New().Extract(context.Background(), handler.Region{Type: typ})

		require.NoError(t, err)
		require.Equal(t, element.Placeholder, content)
	}
}
