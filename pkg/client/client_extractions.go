package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	api "github.com/adrianliechti/ingester/server/api"
)

type Extraction = api.ExtractResult

type ExtractionRequest struct {
	Name   string
	Reader io.Reader

	// MaxPages limits the processed pages. Zero processes all pages.
	MaxPages int
}

type ExtractionService struct {
	Options []RequestOption
}

func NewExtractionService(opts ...RequestOption) ExtractionService {
	return ExtractionService{
		Options: opts,
	}
}

func (r *ExtractionService) New(ctx context.Context, input ExtractionRequest, opts ...RequestOption) (*Extraction, error) {
	resp, err := r.send(ctx, input, "", opts...)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	var result Extraction

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Workbook extracts the document and returns the elements as an Excel workbook.
func (r *ExtractionService) Workbook(ctx context.Context, input ExtractionRequest, opts ...RequestOption) ([]byte, error) {
	resp, err := r.send(ctx, input, "xlsx", opts...)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (r *ExtractionService) send(ctx context.Context, input ExtractionRequest, format string, opts ...RequestOption) (*http.Response, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	if input.Reader == nil {
		return nil, errors.New("missing document")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if input.MaxPages > 0 {
		w.WriteField("max_pages", strconv.Itoa(input.MaxPages))
	}

	if format != "" {
		w.WriteField("format", format)
	}

	file, err := w.CreateFormFile("file", input.Name)

	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(file, input.Reader); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", c.URL+"/v1/extract", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	c.authorize(req)

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}

	return resp, nil
}
