package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/adrianliechti/ingester/pkg/tool"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes tool providers over the streamable HTTP transport.
type Server struct {
	http.Handler

	server *mcp.Server
}

func New(ctx context.Context, name, instructions string, tools []tool.Provider) (*Server, error) {
	impl := &mcp.Implementation{
		Name: name,
	}

	opts := &mcp.ServerOptions{
		Instructions: instructions,
		KeepAlive:    time.Second * 30,
	}

	server := mcp.NewServer(impl, opts)

	for _, p := range tools {
		if err := register(ctx, server, p); err != nil {
			return nil, err
		}
	}

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	return &Server{
		Handler: handler,
		server:  server,
	}, nil
}

// Server returns the underlying protocol server, for transports other than HTTP.
func (s *Server) Server() *mcp.Server {
	return s.server
}

func register(ctx context.Context, server *mcp.Server, p tool.Provider) error {
	tools, err := p.Tools(ctx)

	if err != nil {
		return err
	}

	for _, t := range tools {
		data, _ := json.Marshal(t.Parameters)

		schema := new(jsonschema.Schema)

		if err := schema.UnmarshalJSON(data); err != nil {
			return err
		}

		name := t.Name

		handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args map[string]any

			if r := req.Params.Arguments; len(r) > 0 {
				json.Unmarshal(r, &args)
			}

			result, err := p.Execute(ctx, name, args)

			if err != nil {
				slog.WarnContext(ctx, "tool call failed", "tool", name, "error", err)

				return &mcp.CallToolResult{
					IsError: true,

					Content: []mcp.Content{
						&mcp.TextContent{
							Text: err.Error(),
						},
					},
				}, nil
			}

			text, ok := result.(string)

			if !ok {
				data, _ := json.Marshal(result)
				text = string(data)
			}

			return &mcp.CallToolResult{
				Content: []mcp.Content{
					&mcp.TextContent{
						Text: text,
					},
				},
			}, nil
		}

		server.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,

			InputSchema: schema,
		}, handler)
	}

	return nil
}
