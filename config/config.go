package config

import (
	"bytes"
	"os"

	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/auth"
	"github.com/adrianliechti/ingester/pkg/cache"
	"github.com/adrianliechti/ingester/pkg/detector"
	"github.com/adrianliechti/ingester/pkg/ingester"
	"github.com/adrianliechti/ingester/pkg/mcp"
	"github.com/adrianliechti/ingester/pkg/provider"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Address string

	Authorizers []auth.Provider

	Ingester *ingester.Ingester
	MCP      *mcp.Server

	Pool  *async.Pool
	Cache *cache.Cache

	completer map[string]provider.Completer
	detector  detector.Provider
}

func Parse(path string) (*Config, error) {
	file, err := parseFile(path)

	if err != nil {
		return nil, err
	}

	c := &Config{
		Address: ":8080",
	}

	if file.Address != "" {
		c.Address = file.Address
	}

	if err := c.registerAuthorizer(file); err != nil {
		return nil, err
	}

	if err := c.registerProviders(file); err != nil {
		return nil, err
	}

	if err := c.registerDetector(file); err != nil {
		return nil, err
	}

	if err := c.registerIngester(file); err != nil {
		return nil, err
	}

	if err := c.registerMCP(file); err != nil {
		return nil, err
	}

	return c, nil
}

type configFile struct {
	Address string `yaml:"address"`

	Authorizers []authorizerConfig `yaml:"authorizers"`

	Providers []providerConfig `yaml:"providers"`
	Models    modelsConfig     `yaml:"models"`

	Detector  *detectorConfig  `yaml:"detector"`
	Renderer  *rendererConfig  `yaml:"renderer"`
	Converter *converterConfig `yaml:"converter"`

	Cache   *cacheConfig `yaml:"cache"`
	Workers int          `yaml:"workers"`

	MCP *mcpConfig `yaml:"mcp"`
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createLimiter(limit *int) *rate.Limiter {
	if limit == nil {
		return nil
	}

	return rate.NewLimiter(rate.Limit(*limit), *limit)
}
