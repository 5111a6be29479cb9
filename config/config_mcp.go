package config

import (
	"context"

	"github.com/adrianliechti/ingester/pkg/mcp"
	"github.com/adrianliechti/ingester/pkg/tool"
	"github.com/adrianliechti/ingester/pkg/tool/extract"
)

type mcpConfig struct {
	Name string `yaml:"name"`

	Instructions string `yaml:"instructions"`

	// Files lets clients reference documents on the server by path.
	Files bool `yaml:"files"`
}

const defaultInstructions = "Extracts the text, tables, formulas and images of PDF documents and PowerPoint presentations as structured elements in reading order."

func (cfg *Config) registerMCP(f *configFile) error {
	if cfg.Ingester == nil {
		return nil
	}

	c := mcpConfig{
		Name: "ingester",

		Instructions: defaultInstructions,
	}

	if f.MCP != nil {
		if f.MCP.Name != "" {
			c.Name = f.MCP.Name
		}

		if f.MCP.Instructions != "" {
			c.Instructions = f.MCP.Instructions
		}

		c.Files = f.MCP.Files
	}

	var options []extract.Option

	if c.Files {
		options = append(options, extract.WithLocalFiles())
	}

	t, err := extract.New(cfg.Ingester, options...)

	if err != nil {
		return err
	}

	s, err := mcp.New(context.Background(), c.Name, c.Instructions, []tool.Provider{t})

	if err != nil {
		return err
	}

	cfg.MCP = s

	return nil
}
