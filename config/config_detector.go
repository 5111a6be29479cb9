package config

import (
	"errors"
	"strings"

	"github.com/adrianliechti/ingester/pkg/detector"
	"github.com/adrianliechti/ingester/pkg/detector/custom"
	"github.com/adrianliechti/ingester/pkg/limiter"
	"github.com/adrianliechti/ingester/pkg/otel"
)

type detectorConfig struct {
	Type string `yaml:"type"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Proxy *proxyConfig `yaml:"proxy"`
	Limit *int         `yaml:"limit"`

	DPI        int      `yaml:"dpi"`
	Confidence *float64 `yaml:"confidence"`
	Threshold  *float64 `yaml:"threshold"`
	Ignore     []string `yaml:"ignore"`
}

func (cfg *Config) Detector() (detector.Provider, error) {
	if cfg.detector == nil {
		return nil, errors.New("no detector configured")
	}

	return cfg.detector, nil
}

func (cfg *Config) registerDetector(f *configFile) error {
	if f.Detector == nil {
		return nil
	}

	d, err := createDetector(*f.Detector)

	if err != nil {
		return err
	}

	if _, ok := d.(limiter.Detector); !ok {
		d = limiter.NewDetector(createLimiter(f.Detector.Limit), d)
	}

	if _, ok := d.(otel.Detector); !ok {
		d = otel.NewDetector(f.Detector.Type, "layout", d)
	}

	cfg.detector = d

	return nil
}

func createDetector(cfg detectorConfig) (detector.Provider, error) {
	switch strings.ToLower(cfg.Type) {
	case "custom", "doclayout":
		return customDetector(cfg)

	default:
		return nil, errors.New("invalid detector type: " + cfg.Type)
	}
}

func customDetector(cfg detectorConfig) (detector.Provider, error) {
	var options []custom.Option

	if cfg.Token != "" {
		options = append(options, custom.WithToken(cfg.Token))
	}

	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	if client != nil {
		options = append(options, custom.WithClient(client))
	}

	return custom.New(cfg.URL, options...)
}
