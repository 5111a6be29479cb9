package soffice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrianliechti/ingester/pkg/command"
	"github.com/adrianliechti/ingester/pkg/converter"
)

var _ converter.Provider = (*Converter)(nil)

// Converter exports documents to PDF with headless LibreOffice.
type Converter struct {
	binary string
	outDir string

	runner command.Runner
}

type Option func(*Converter)

func WithBinary(path string) Option {
	return func(c *Converter) {
		c.binary = path
	}
}

// WithOutputDir sets where converted files are written. Defaults to the temp directory.
func WithOutputDir(dir string) Option {
	return func(c *Converter) {
		c.outDir = dir
	}
}

func WithRunner(runner command.Runner) Option {
	return func(c *Converter) {
		c.runner = runner
	}
}

func New(options ...Option) *Converter {
	c := &Converter{
		binary: "soffice",
		outDir: os.TempDir(),

		runner: command.Exec{},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Convert writes <outDir>/<name>.pdf. An existing output at least as new as its input is reused.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	src, err := os.Stat(path)

	if err != nil {
		return "", fmt.Errorf("source not found: %w", err)
	}

	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".pdf"
	output := filepath.Join(c.outDir, name)

	if dst, err := os.Stat(output); err == nil && !dst.ModTime().Before(src.ModTime()) {
		slog.DebugContext(ctx, "reusing converted document", "path", output)
		return output, nil
	}

	if _, err := c.runner.Run(ctx, c.binary, Args(path, c.outDir)...); err != nil {
		return "", fmt.Errorf("convert %s: %w", filepath.Base(path), err)
	}

	if _, err := os.Stat(output); err != nil {
		return "", errors.New("converter produced no output")
	}

	slog.InfoContext(ctx, "document converted", "source", path, "output", output)

	return output, nil
}

func Args(path, outDir string) []string {
	return []string{
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		path,
	}
}
