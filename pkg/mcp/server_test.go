package mcp_test

import (
	"context"
	"errors"
	"testing"

	mcppkg "github.com/adrianliechti/ingester/pkg/mcp"
	"github.com/adrianliechti/ingester/pkg/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct{}

func (echo) Tools(ctx context.Context) ([]tool.Tool, error) {
	return []tool.Tool{
		{
			Name:        "echo",
			Description: "Echoes its input",

			Parameters: map[string]any{
				"type": "object",

				"properties": map[string]any{
					"text": map[string]any{"type": "string"},
				},
			},
		},
	}, nil
}

func (echo) Execute(ctx context.Context, name string, parameters map[string]any) (any, error) {
	text, _ := parameters["text"].(string)

	if text == "" {
		return nil, errors.New("nothing to echo")
	}

	return map[string]string{"echo": text}, nil
}

func TestServer(t *testing.T) {
	ctx := context.Background()

	s, err := mcppkg.New(ctx, "test", "", []tool.Provider{echo{}})
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	_, err = s.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	defer session.Close()

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "echo", tools.Tools[0].Name)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": "hi"},
	})

	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, `{"echo":"hi"}`, result.Content[0].(*mcp.TextContent).Text)

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{},
	})

	require.NoError(t, err)
	assert.True(t, result.IsError)
}
