// Package ocr is a thin client for the remote OCR API that turns chat image
// attachments into text. It makes no judgment about text quality; noisy
// output is cleaned up by the extraction side.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client posts image bytes to the OCR service and returns extracted text.
type Client struct {
	apiURL string
	http   *http.Client
	logger *slog.Logger
}

func NewClient(apiURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiURL: apiURL,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Enabled reports whether an OCR endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiURL != ""
}

// ocrResponse covers the field names the OCR service has used across
// versions.
type ocrResponse struct {
	Text          string `json:"text"`
	ExtractedText string `json:"extracted_text"`
	OCRText       string `json:"ocr_text"`
}

func (r ocrResponse) text() string {
	switch {
	case r.Text != "":
		return r.Text
	case r.ExtractedText != "":
		return r.ExtractedText
	default:
		return r.OCRText
	}
}

// ExtractDataURL decodes a base64 data-URL image payload (the shape chat
// clients send) and runs it through the OCR API.
func (c *Client) ExtractDataURL(ctx context.Context, dataURL string) (string, error) {
	payload := dataURL
	contentType := "image/png"
	filename := "image.png"
	if header, rest, found := strings.Cut(dataURL, ","); found && strings.HasPrefix(header, "data:") {
		payload = rest
		if strings.Contains(header, "image/jpeg") || strings.Contains(header, "image/jpg") {
			contentType = "image/jpeg"
			filename = "image.jpg"
		}
	}
	img, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}
	return c.Extract(ctx, img, filename, contentType)
}

// Extract uploads image bytes as multipart form data and returns the OCR
// text. The service answers either JSON or plain text.
func (c *Client) Extract(ctx context.Context, image []byte, filename, contentType string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("ocr: no API endpoint configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("ocr: build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("ocr: write form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("ocr: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &body)
	if err != nil {
		return "", fmt.Errorf("ocr: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Info("ocr.request", "bytes", len(image), "content_type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr: call API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("ocr: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr: API status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	text := string(raw)
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var decoded ocrResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return "", fmt.Errorf("ocr: decode response: %w", err)
		}
		text = decoded.text()
	}
	text = strings.TrimSpace(text)
	c.logger.Info("ocr.response", "chars", len(text))
	return text, nil
}

func truncateBody(b []byte) string {
	const max = 200
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max])
}
