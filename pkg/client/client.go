package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/adrianliechti/ingester/server/api"
)

type Client struct {
	Extractions ExtractionService
	Stats       StatsService
}

func New(url string, opts ...RequestOption) *Client {
	opts = append(opts, WithURL(url))

	return &Client{
		Extractions: NewExtractionService(opts...),
		Stats:       NewStatsService(opts...),
	}
}

type RequestConfig struct {
	URL   string
	Token string

	Client *http.Client
}

type RequestOption func(*RequestConfig)

func WithURL(url string) RequestOption {
	return func(c *RequestConfig) {
		c.URL = strings.TrimRight(url, "/")
	}
}

func WithToken(token string) RequestOption {
	return func(c *RequestConfig) {
		c.Token = token
	}
}

func WithClient(client *http.Client) RequestOption {
	return func(c *RequestConfig) {
		c.Client = client
	}
}

func newRequestConfig(opts ...RequestOption) *RequestConfig {
	c := &RequestConfig{
		Client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *RequestConfig) authorize(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// responseError turns a failed response into an error carrying the server message.
func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var result api.ErrorResult

	if err := json.Unmarshal(data, &result); err == nil && result.Error != "" {
		return errors.New(resp.Status + ": " + result.Error)
	}

	if text := strings.TrimSpace(string(data)); text != "" {
		return errors.New(resp.Status + ": " + text)
	}

	return errors.New(resp.Status)
}

func Ptr[T any](v T) *T {
	return &v
}
