package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/adrianliechti/ingester/pkg/analyzer"
	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/cache"
	"github.com/adrianliechti/ingester/pkg/converter"
	"github.com/adrianliechti/ingester/pkg/converter/soffice"
	"github.com/adrianliechti/ingester/pkg/document/pdf"
	"github.com/adrianliechti/ingester/pkg/handler"
	"github.com/adrianliechti/ingester/pkg/handler/formula"
	"github.com/adrianliechti/ingester/pkg/handler/image"
	"github.com/adrianliechti/ingester/pkg/handler/table"
	"github.com/adrianliechti/ingester/pkg/ingester"
	"github.com/adrianliechti/ingester/pkg/provider"
)

type rendererConfig struct {
	Path string `yaml:"path"`
	DPI  int    `yaml:"dpi"`
}

type converterConfig struct {
	Type string `yaml:"type"`

	Path   string `yaml:"path"`
	Output string `yaml:"output"`
}

type cacheConfig struct {
	Path string `yaml:"path"`
}

func (cfg *Config) registerIngester(f *configFile) error {
	var err error

	if f.Cache != nil {
		cfg.Cache, err = cache.New(f.Cache.Path)
	} else {
		cfg.Cache, err = cache.New("")
	}

	if err != nil {
		return err
	}

	cfg.Pool = async.New(f.Workers)

	vision, err := cfg.role(f.Models.Vision)

	if err != nil {
		return err
	}

	text, err := cfg.role(f.Models.Text)

	if err != nil {
		return err
	}

	if text == nil {
		text = vision
	}

	dpi := handler.DefaultDPI

	var pdfOptions []pdf.Option

	if r := f.Renderer; r != nil {
		if r.Path != "" {
			pdfOptions = append(pdfOptions, pdf.WithRenderer(r.Path))
		}

		if r.DPI > 0 {
			dpi = r.DPI
		}
	}

	tableHandler := table.New(
		table.WithCompleter(vision),
		table.WithPool(cfg.Pool),
		table.WithDPI(dpi),
	)

	formulaHandler := formula.New(
		formula.WithCompleter(vision),
		formula.WithTextCompleter(text),
		formula.WithPool(cfg.Pool),
		formula.WithDPI(dpi),
	)

	options := []ingester.Option{
		ingester.WithProvider(".pdf", pdf.New(pdfOptions...)),
		ingester.WithAnalyzer(cfg.createAnalyzer(f.Detector)),

		ingester.WithTable(tableHandler),
		ingester.WithFormula(formulaHandler),
		ingester.WithCache(cfg.Cache),
	}

	if vision != nil {
		options = append(options, ingester.WithImage(image.New(
			image.WithCompleter(vision),
			image.WithPool(cfg.Pool),
			image.WithCache(cfg.Cache),
			image.WithTable(tableHandler),
			image.WithFormula(formulaHandler),
			image.WithDPI(dpi),
		)))
	} else {
		slog.Warn("no vision model configured, images keep placeholder content")
	}

	if f.Converter != nil {
		c, err := createConverter(*f.Converter)

		if err != nil {
			return err
		}

		options = append(options, ingester.WithConverter(c))
	}

	cfg.Ingester = ingester.New(options...)

	return nil
}

// role resolves the completer of a model role. An empty role falls back to the default completer,
// which is absent when no provider is configured.
func (cfg *Config) role(id string) (provider.Completer, error) {
	c, err := cfg.Completer(id)

	if err != nil && id == "" {
		return nil, nil
	}

	return c, err
}

func (cfg *Config) createAnalyzer(c *detectorConfig) *analyzer.Analyzer {
	var options []analyzer.Option

	if cfg.detector != nil {
		options = append(options, analyzer.WithDetector(cfg.detector))
	}

	if c != nil {
		if c.DPI > 0 {
			options = append(options, analyzer.WithDPI(c.DPI))
		}

		if c.Confidence != nil {
			options = append(options, analyzer.WithConfidence(*c.Confidence))
		}

		if c.Threshold != nil {
			options = append(options, analyzer.WithThreshold(*c.Threshold))
		}

		if len(c.Ignore) > 0 {
			options = append(options, analyzer.WithIgnore(c.Ignore...))
		}
	}

	return analyzer.New(options...)
}

func createConverter(cfg converterConfig) (converter.Provider, error) {
	switch strings.ToLower(cfg.Type) {
	case "soffice", "libreoffice":
		return sofficeConverter(cfg)

	default:
		return nil, errors.New("invalid converter type: " + cfg.Type)
	}
}

func sofficeConverter(cfg converterConfig) (converter.Provider, error) {
	var options []soffice.Option

	if cfg.Path != "" {
		options = append(options, soffice.WithBinary(cfg.Path))
	}

	if cfg.Output != "" {
		options = append(options, soffice.WithOutputDir(cfg.Output))
	}

	return soffice.New(options...), nil
}
