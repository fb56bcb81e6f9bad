package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/seguro/backend/internal/config"
)

// Transformer rewrites uploaded content before storage. The returned reader
// carries the transformed bytes; callers hash and size what they actually
// store, never the input.
type Transformer interface {
	Transform(ctx context.Context, filename, mimeType string, content io.Reader) (io.ReadCloser, error)
}

// WatermarkClient calls the external watermark service over HTTP multipart.
type WatermarkClient struct {
	URL        string
	HTTPClient *http.Client
}

func NewWatermarkClient(cfg config.WatermarkConfig) *WatermarkClient {
	return &WatermarkClient{
		URL: cfg.URL,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (w *WatermarkClient) Transform(ctx context.Context, filename, mimeType string, content io.Reader) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		defer writer.Close()

		part, partErr := writer.CreateFormFile("files", filename)
		if partErr != nil {
			_ = pw.CloseWithError(partErr)
			return
		}

		if _, copyErr := io.Copy(part, content); copyErr != nil {
			_ = pw.CloseWithError(copyErr)
			return
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(w.URL, "/")+"/forms/watermark/apply", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", mimeType)

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("watermark transform failed: %s", string(body))
	}

	return resp.Body, nil
}
