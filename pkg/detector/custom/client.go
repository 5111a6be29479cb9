package custom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/adrianliechti/ingester/pkg/detector"
	"github.com/adrianliechti/ingester/pkg/geometry"
	"github.com/adrianliechti/ingester/pkg/layout"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var _ detector.Provider = &Client{}

// Client calls a layout inference service over HTTP. The service receives the page image as multipart
// upload and answers with {"detections": [{"label", "confidence", "box": [x1, y1, x2, y2]}]}.
type Client struct {
	client *http.Client

	url   string
	token string
}

func New(url string, options ...Option) (*Client, error) {
	c := &Client{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},

		url: url,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

type detectResponse struct {
	Detections []struct {
		Label      string    `json:"label"`
		Confidence float64   `json:"confidence"`
		Box        []float64 `json:"box"`
	} `json:"detections"`
}

func (c *Client) Detect(ctx context.Context, image []byte, options *detector.DetectOptions) ([]layout.Detection, error) {
	if options == nil {
		options = &detector.DetectOptions{
			Confidence: detector.DefaultConfidence,
		}
	}

	var body bytes.Buffer

	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", multipart.FileContentDisposition("file", "page.png"))
	h.Set("Content-Type", "image/png")

	f, err := w.CreatePart(h)

	if err != nil {
		return nil, err
	}

	if _, err := f.Write(image); err != nil {
		return nil, err
	}

	if err := w.WriteField("confidence", strconv.FormatFloat(options.Confidence, 'f', -1, 64)); err != nil {
		return nil, err
	}

	w.Close()

	req, _ := http.NewRequestWithContext(ctx, "POST", strings.TrimRight(c.url, "/")+"/detect", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", detector.ErrUnavailable, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp)
	}

	var result detectResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	detections := make([]layout.Detection, 0, len(result.Detections))

	for _, d := range result.Detections {
		if len(d.Box) != 4 {
			continue
		}

		if d.Confidence < options.Confidence {
			continue
		}

		detections = append(detections, layout.Detection{
			Label: d.Label,

			Box:        geometry.NewBox(d.Box[0], d.Box[1], d.Box[2], d.Box[3]),
			Confidence: d.Confidence,
		})
	}

	return detections, nil
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	if len(data) == 0 {
		return errors.New(http.StatusText(resp.StatusCode))
	}

	return errors.New(string(data))
}
