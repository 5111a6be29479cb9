package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/ingester"
	"github.com/adrianliechti/ingester/pkg/tool"
)

const ToolName = "extract_document"

var _ tool.Provider = (*Client)(nil)

type Processor interface {
	Process(ctx context.Context, path string, options *ingester.ProcessOptions) ([]element.Page, error)
}

type Client struct {
	processor Processor

	// local paths are only accepted when enabled
	files bool
}

type Option func(*Client)

// WithLocalFiles allows callers to name files on the server by path.
func WithLocalFiles() Option {
	return func(c *Client) {
		c.files = true
	}
}

func New(processor Processor, options ...Option) (*Client, error) {
	if processor == nil {
		return nil, errors.New("missing processor")
	}

	c := &Client{
		processor: processor,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Tools(ctx context.Context) ([]tool.Tool, error) {
	properties := map[string]any{
		"filename": map[string]any{
			"type":        "string",
			"description": "Name of the document including its extension (.pdf or .pptx)",
		},

		"content": map[string]any{
			"type":        "string",
			"description": "Base64 encoded content of the document",
		},

		"max_pages": map[string]any{
			"type":        "integer",
			"description": "Maximum number of pages or slides to process. Omit to process all",
		},
	}

	if c.files {
		properties["path"] = map[string]any{
			"type":        "string",
			"description": "Path of a document on the server, used instead of content",
		}
	}

	tools := []tool.Tool{
		{
			Name:        ToolName,
			Description: "Extract the text, tables, formulas and image descriptions of every page of a PDF or PowerPoint document, in reading order",

			Parameters: map[string]any{
				"type": "object",

				"properties": properties,
			},
		},
	}

	return tools, nil
}

func (c *Client) Execute(ctx context.Context, name string, parameters map[string]any) (any, error) {
	if name != ToolName {
		return nil, tool.ErrInvalidTool
	}

	options := &ingester.ProcessOptions{}

	if val, ok := parameters["max_pages"].(float64); ok && val > 0 {
		options.MaxPages = int(val)
	}

	if path, ok := parameters["path"].(string); ok && path != "" {
		if !c.files {
			return nil, errors.New("local files are not enabled")
		}

		return c.processor.Process(ctx, path, options)
	}

	content, _ := parameters["content"].(string)
	filename, _ := parameters["filename"].(string)

	if content == "" || filename == "" {
		return nil, errors.New("missing content or filename parameter")
	}

	data, err := base64.StdEncoding.DecodeString(content)

	if err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}

	dir, err := os.MkdirTemp("", "ingester-")

	if err != nil {
		return nil, err
	}

	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(filename))

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}

	return c.processor.Process(ctx, path, options)
}
