package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// maxResponseSize bounds how much of a service answer is read.
const maxResponseSize = 1 << 20

// HTTPParser uploads receipts to an external parsing service.
// The file is sent as the "file" field of a multipart form and the service
// answers with JSON that Paths knows how to read.
type HTTPParser struct {
	Endpoint string
	APIKey   string
	Paths    Paths
	Client   *http.Client
}

// NewHTTPParser creates a parser posting to endpoint with DefaultPaths.
func NewHTTPParser(endpoint, apiKey string) *HTTPParser {
	return &HTTPParser{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Paths:    DefaultPaths,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Parse uploads file and decodes the service answer.
func (p *HTTPParser) Parse(ctx context.Context, file []byte, mimeType string) (*Receipt, error) {
	if len(file) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedReceipt)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="receipt"`)
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, fmt.Errorf("failed to write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	slog.Debug("Receipt service answered",
		"endpoint", p.Endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read answer: %v", ErrUnavailable, err)
	}

	return Decode(data, p.Paths)
}
