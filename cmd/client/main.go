package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrianliechti/ingester/pkg/client"
)

func main() {
	urlFlag := flag.String("url", "http://localhost:8080", "server url")
	tokenFlag := flag.String("token", "", "server token")
	pagesFlag := flag.Int("pages", 0, "maximum number of pages")
	xlsxFlag := flag.String("xlsx", "", "write the elements to an Excel workbook instead")
	statsFlag := flag.Bool("stats", false, "print the server statistics")

	flag.Parse()

	ctx := context.Background()

	options := []client.RequestOption{}

	if *tokenFlag != "" {
		options = append(options, client.WithToken(*tokenFlag))
	}

	c := client.New(*urlFlag, options...)

	if *statsFlag {
		stats, err := c.Stats.Get(ctx)

		if err != nil {
			panic(err)
		}

		output(stats)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: client [flags] <file>")
		os.Exit(2)
	}

	path := flag.Arg(0)

	f, err := os.Open(path)

	if err != nil {
		panic(err)
	}

	defer f.Close()

	req := client.ExtractionRequest{
		Name:   filepath.Base(path),
		Reader: f,

		MaxPages: *pagesFlag,
	}

	if *xlsxFlag != "" {
		data, err := c.Extractions.Workbook(ctx, req)

		if err != nil {
			panic(err)
		}

		if err := os.WriteFile(*xlsxFlag, data, 0o644); err != nil {
			panic(err)
		}

		return
	}

	result, err := c.Extractions.New(ctx, req)

	if err != nil {
		panic(err)
	}

	output(result.Pages)
}

func output(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	enc.Encode(v)
}
