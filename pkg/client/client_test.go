package client_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adrianliechti/ingester/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraction(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/extract", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		assert.Equal(t, "2", r.FormValue("max_pages"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)

		data, _ := io.ReadAll(file)

		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "%PDF", string(data))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"name":"report.pdf","pages":[{"number":1,"elements":[{"id":"a","type":"text","box":{"x_min":0,"y_min":0,"x_max":1,"y_max":1},"content":"Hello"}]}]}`)
	}))

	defer s.Close()

	c := client.New(s.URL+"/", client.WithToken("secret"))

	result, err := c.Extractions.New(context.Background(), client.ExtractionRequest{
		Name:   "report.pdf",
		Reader: strings.NewReader("%PDF"),

		MaxPages: 2,
	})

	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	require.Len(t, result.Pages[0].Elements, 1)
	assert.Equal(t, "Hello", result.Pages[0].Elements[0].Content)
}

func TestExtractionError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnsupportedMediaType)
		w.Write([]byte(`{"error": "unsupported file type"}`))
	}))

	defer s.Close()

	c := client.New(s.URL)

	_, err := c.Extractions.New(context.Background(), client.ExtractionRequest{
		Name:   "notes.txt",
		Reader: strings.NewReader("text"),
	})

	require.ErrorContains(t, err, "unsupported file type")

	_, err = c.Extractions.New(context.Background(), client.ExtractionRequest{Name: "empty.pdf"})
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stats", r.URL.Path)
		io.WriteString(w, `{"image":{"api_calls":3,"cache_hits":1},"table":{},"cache":{},"pool":{"width":30}}`)
	}))

	defer s.Close()

	stats, err := client.New(s.URL).Stats.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Image.Calls)
	assert.Equal(t, 1, stats.Image.Hits)

	require.NotNil(t, stats.Pool)
	assert.Equal(t, 30, stats.Pool.Width)
}
