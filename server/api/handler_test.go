package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/ingester/config"
	"github.com/adrianliechti/ingester/pkg/analyzer"
	"github.com/adrianliechti/ingester/pkg/async"
	"github.com/adrianliechti/ingester/pkg/detector"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/document/documenttest"
	"github.com/adrianliechti/ingester/pkg/geometry"
	"github.com/adrianliechti/ingester/pkg/ingester"
	"github.com/adrianliechti/ingester/pkg/layout"
	"github.com/adrianliechti/ingester/server/api"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type provider struct {
	opened []string
}

func (p *provider) Open(ctx context.Context, path string) (document.Document, error) {
	p.opened = append(p.opened, path)

	doc := &documenttest.Document{}

	for range 3 {
		doc.Pages = append(doc.Pages, documenttest.Page{
			Size:  geometry.Size{Width: 612, Height: 792},
			Image: []byte("page"),

			Words: []document.Word{
				{Text: "Hello", Box: geometry.NewBox(80, 80, 120, 100)},
			},
		})
	}

	return doc, nil
}

type fixedDetector struct{}

func (fixedDetector) Detect(ctx context.Context, image []byte, options *detector.DetectOptions) ([]layout.Detection, error) {
	return []layout.Detection{
		{Label: "text", Box: geometry.NewBox(250, 250, 1000, 500), Confidence: 0.9},
	}, nil
}

func newRouter(t *testing.T, p *provider) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Ingester: ingester.New(
			ingester.WithProvider(".fake", p),
			ingester.WithAnalyzer(analyzer.New(analyzer.WithDetector(fixedDetector{}))),
		),

		Pool: async.New(2),
	}

	h, err := api.New(cfg)
	require.NoError(t, err)

	r := chi.NewRouter()
	h.Attach(r)

	return r
}

func multipartBody(t *testing.T, name string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer

	w := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)

	_, err = part.Write([]byte("content"))
	require.NoError(t, err)

	require.NoError(t, w.Close())

	return &body, w.FormDataContentType()
}

func TestExtract(t *testing.T) {
	p := &provider{}
	r := newRouter(t, p)

	body, contentType := multipartBody(t, "report.fake", map[string]string{"max_pages": "2"})

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result api.ExtractResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, "report.fake", result.Name)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 2, result.Pages[1].Number)

	require.Len(t, result.Pages[0].Elements, 1)
	assert.Equal(t, "Hello", result.Pages[0].Elements[0].Content)

	require.Len(t, p.opened, 1)
	assert.Equal(t, "report.fake", filepath.Base(p.opened[0]))
}

func TestExtractRawBody(t *testing.T) {
	p := &provider{}
	r := newRouter(t, p)

	req := httptest.NewRequest(http.MethodPost, "/extract?format=xlsx", bytes.NewReader([]byte("content")))
	req.Header.Set("Content-Disposition", `attachment; filename="slides.fake"`)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestExtractErrors(t *testing.T) {
	r := newRouter(t, &provider{})

	tests := []struct {
		name string

		target string
		header map[string]string
		body   string

		code int
	}{
		{"empty", "/extract", nil, "", http.StatusBadRequest},
		{"invalid max pages", "/extract?max_pages=-1", nil, "content", http.StatusBadRequest},
		{"unsupported", "/extract", map[string]string{"Content-Disposition": `attachment; filename="notes.txt"`}, "content", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, bytes.NewReader([]byte(tt.body)))

			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code, rec.Body.String())

			var result api.ErrorResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.NotEmpty(t, result.Error)
		})
	}
}

func TestStats(t *testing.T) {
	r := newRouter(t, &provider{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Contains(t, result, "image")
	assert.Contains(t, result, "table")
	assert.Contains(t, result, "cache")
	assert.Contains(t, result, "pool")
}
