// internal/pdf/generator.go
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport-backend/internal/config"
)

const convertPath = "/forms/chromium/convert/html"

// maximum accepted PDF body
const maxResponseSize = 32 << 20

var ErrEmptyDocument = errors.New("pdf: empty html document")

// Generator turns a rendered HTML document into a downloadable file.
type Generator interface {
	GenerateFromHTML(ctx context.Context, html, filename string) ([]byte, error)
	ContentType() string
}

// New picks the HTTP converter when a service URL is configured and falls
// back to returning the HTML itself.
func New(cfg config.PDFConfig) Generator {
	if strings.TrimSpace(cfg.ServiceURL) == "" {
		logrus.Warn("PDF_SERVICE_URL not set; exports will be served as HTML")
		return NopGenerator{}
	}
	return NewHTTPGenerator(cfg)
}

// HTTPGenerator posts the document to a Chromium HTML conversion endpoint.
type HTTPGenerator struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPGenerator(cfg config.PDFConfig) *HTTPGenerator {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPGenerator{
		baseURL: strings.TrimRight(cfg.ServiceURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (g *HTTPGenerator) ContentType() string { return "application/pdf" }

func (g *HTTPGenerator) GenerateFromHTML(ctx context.Context, html, filename string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyDocument
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	if err := writer.WriteField("printBackground", "true"); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+convertPath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Gotenberg-Output-Filename", strings.TrimSuffix(filename, ".pdf"))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if len(data) == 0 {
		return nil, errors.New("pdf service returned an empty document")
	}

	logrus.WithFields(logrus.Fields{
		"filename": filename,
		"bytes":    len(data),
	}).Debug("PDF generated")
	return data, nil
}

// NopGenerator returns the HTML unchanged.
type NopGenerator struct{}

func (NopGenerator) ContentType() string { return "text/html; charset=utf-8" }

func (NopGenerator) GenerateFromHTML(_ context.Context, html, _ string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyDocument
	}
	return []byte(html), nil
}
