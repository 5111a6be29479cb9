package config

import (
	"errors"
	"strings"

	"github.com/adrianliechti/ingester/pkg/limiter"
	"github.com/adrianliechti/ingester/pkg/otel"
	"github.com/adrianliechti/ingester/pkg/provider"
	"github.com/adrianliechti/ingester/pkg/provider/anthropic"
	"github.com/adrianliechti/ingester/pkg/provider/bedrock"
	"github.com/adrianliechti/ingester/pkg/provider/google"
	"github.com/adrianliechti/ingester/pkg/provider/openai"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

func (cfg *Config) RegisterCompleter(id string, p provider.Completer) {
	if cfg.completer == nil {
		cfg.completer = make(map[string]provider.Completer)
	}

	if _, ok := cfg.completer[""]; !ok {
		cfg.completer[""] = p
	}

	cfg.completer[id] = p
}

// Completer returns the completer registered as id. The empty id is the first registered completer.
func (cfg *Config) Completer(id string) (provider.Completer, error) {
	if cfg.completer != nil {
		if c, ok := cfg.completer[id]; ok {
			return c, nil
		}
	}

	return nil, errors.New("completer not found: " + id)
}

type providerConfig struct {
	Type string `yaml:"type"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Region  string `yaml:"region"`
	Retries *int   `yaml:"retries"`

	Proxy *proxyConfig `yaml:"proxy"`
	Limit *int         `yaml:"limit"`

	Models yaml.Node `yaml:"models"`
}

type modelConfig struct {
	ID    string `yaml:"id"`
	Limit *int   `yaml:"limit"`
}

// modelsConfig assigns registered models to their roles.
type modelsConfig struct {
	Vision string `yaml:"vision"`
	Text   string `yaml:"text"`
}

type modelContext struct {
	ID string

	Limiter *rate.Limiter
}

func (cfg *Config) registerProviders(f *configFile) error {
	for _, p := range f.Providers {
		if p.Models.Kind != yaml.MappingNode {
			return errors.New("provider without models: " + p.Type)
		}

		var models map[string]modelConfig

		if err := p.Models.Decode(&models); err != nil {
			return err
		}

		// mapping nodes alternate key and value
		for i := 0; i+1 < len(p.Models.Content); i += 2 {
			id := p.Models.Content[i].Value
			model := models[id]

			if model.ID == "" {
				model.ID = id
			}

			limit := model.Limit

			if limit == nil {
				limit = p.Limit
			}

			context := modelContext{
				ID: model.ID,

				Limiter: createLimiter(limit),
			}

			completer, err := createCompleter(p, context)

			if err != nil {
				return err
			}

			if _, ok := completer.(limiter.Completer); !ok {
				completer = limiter.NewCompleter(context.Limiter, completer)
			}

			if _, ok := completer.(otel.Completer); !ok {
				completer = otel.NewCompleter(p.Type, model.ID, completer)
			}

			cfg.RegisterCompleter(id, completer)
		}
	}

	return nil
}

func createCompleter(cfg providerConfig, model modelContext) (provider.Completer, error) {
	switch strings.ToLower(cfg.Type) {
	case "anthropic":
		return anthropicCompleter(cfg, model)

	case "bedrock":
		return bedrockCompleter(cfg, model)

	case "gemini", "google":
		return googleCompleter(cfg, model)

	case "openai", "openai-compatible":
		return openaiCompleter(cfg, model)

	default:
		return nil, errors.New("invalid completer type: " + cfg.Type)
	}
}

func anthropicCompleter(cfg providerConfig, model modelContext) (provider.Completer, error) {
	var options []anthropic.Option

	if cfg.Token != "" {
		options = append(options, anthropic.WithToken(cfg.Token))
	}

	if cfg.Retries != nil {
		options = append(options, anthropic.WithMaxRetries(*cfg.Retries))
	}

	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	if client != nil {
		options = append(options, anthropic.WithClient(client))
	}

	return anthropic.NewCompleter(cfg.URL, model.ID, options...)
}

func bedrockCompleter(cfg providerConfig, model modelContext) (provider.Completer, error) {
	var options []bedrock.Option

	if cfg.Region != "" {
		options = append(options, bedrock.WithRegion(cfg.Region))
	}

	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	if client != nil {
		options = append(options, bedrock.WithClient(client))
	}

	return bedrock.NewCompleter(model.ID, options...)
}

func googleCompleter(cfg providerConfig, model modelContext) (provider.Completer, error) {
	var options []google.Option

	if cfg.URL != "" {
		options = append(options, google.WithURL(cfg.URL))
	}

	if cfg.Token != "" {
		options = append(options, google.WithToken(cfg.Token))
	}

	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	if client != nil {
		options = append(options, google.WithClient(client))
	}

	return google.NewCompleter(model.ID, options...)
}

func openaiCompleter(cfg providerConfig, model modelContext) (provider.Completer, error) {
	var options []openai.Option

	if cfg.Token != "" {
		options = append(options, openai.WithToken(cfg.Token))
	}

	if cfg.Retries != nil {
		options = append(options, openai.WithMaxRetries(*cfg.Retries))
	}

	client, err := cfg.Proxy.proxyClient()

	if err != nil {
		return nil, err
	}

	if client != nil {
		options = append(options, openai.WithClient(client))
	}

	return openai.NewCompleter(cfg.URL, model.ID, options...)
}
