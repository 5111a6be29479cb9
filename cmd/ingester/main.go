package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrianliechti/ingester/config"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/export/xlsx"
	"github.com/adrianliechti/ingester/pkg/ingester"
	"github.com/adrianliechti/ingester/pkg/otel"
	"github.com/adrianliechti/ingester/server"
)

var version = "dev"

type options struct {
	config string

	pages    int
	workbook string

	serve bool
}

func main() {
	var o options

	flag.StringVar(&o.config, "config", "config.yaml", "config file")
	flag.IntVar(&o.pages, "pages", 0, "maximum number of pages per document")
	flag.StringVar(&o.workbook, "xlsx", "", "write the elements to an Excel workbook")
	flag.BoolVar(&o.serve, "serve", false, "serve the HTTP and MCP api")

	debug := flag.Bool("debug", false, "enable debug logging")

	flag.Parse()

	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, o, flag.Args())

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, paths []string) error {
	shutdown, err := otel.Setup(ctx, "ingester", version)

	if err != nil {
		slog.Error("failed to set up telemetry", "error", err)
	}

	defer shutdown(context.Background())

	cfg, err := config.Parse(o.config)

	if err != nil {
		return err
	}

	if o.serve {
		s, err := server.New(cfg)

		if err != nil {
			return err
		}

		return s.ListenAndServe(ctx)
	}

	if len(paths) == 0 {
		return errors.New("usage: ingester [flags] <file>...")
	}

	return process(ctx, cfg, o, paths)
}

func process(ctx context.Context, cfg *config.Config, o options, paths []string) error {
	result := make(map[string][]element.Page)

	var all []element.Page

	for _, path := range paths {
		pages, err := cfg.Ingester.Process(ctx, path, &ingester.ProcessOptions{
			MaxPages: o.pages,
		})

		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		result[filepath.Base(path)] = pages
		all = append(all, pages...)
	}

	if o.workbook != "" {
		f, err := os.Create(o.workbook)

		if err != nil {
			return err
		}

		defer f.Close()

		if err := xlsx.Write(f, all); err != nil {
			return err
		}
	}

	stats := cfg.Ingester.Stats()
	slog.Info("documents processed", "documents", len(paths), "pages", len(all), "image_calls", stats.Image.Calls, "cache_hits", stats.Image.Hits)

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if len(paths) == 1 {
		return enc.Encode(result[filepath.Base(paths[0])])
	}

	return enc.Encode(result)
}
