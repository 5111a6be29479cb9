package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/adrianliechti/ingester/pkg/limiter"
	"github.com/adrianliechti/ingester/pkg/provider"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type countingCompleter struct {
	calls int
}

func (c *countingCompleter) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	c.calls++

	return &provider.Completion{
		Message: &provider.Message{
			Role:    provider.MessageRoleAssistant,
			Content: []provider.Content{provider.TextContent("ok")},
		},
	}, nil
}

func TestCompleter(t *testing.T) {
	inner := &countingCompleter{}
	c := limiter.NewCompleter(rate.NewLimiter(rate.Inf, 1), inner)

	result, err := c.Complete(context.Background(), []provider.Message{provider.UserMessage("hi")}, nil)
	require.NoError(t, err)
	require.Equal(t, "ok", result.Text())
	require.Equal(t, 1, inner.calls)
}

func TestCompleterCancelled(t *testing.T) {
	inner := &countingCompleter{}
	l := rate.NewLimiter(rate.Every(time.Hour), 1)

	c := limiter.NewCompleter(l, inner)

	_, err := c.Complete(context.Background(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = c.Complete(ctx, nil, nil)
	require.Error(t, err)
	require.Equal(t, 1, inner.calls)
}
