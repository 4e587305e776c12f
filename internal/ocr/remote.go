package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"biblioaccess/internal/config"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/services"
)

// remoteProcessor posts the file to an external OCR service and decodes the
// Document it returns.
type remoteProcessor struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

func newRemoteProcessor(cfg *config.Config, logger *slog.Logger) *remoteProcessor {
	timeout := time.Duration(cfg.OCR.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &remoteProcessor{
		endpoint: cfg.OCR.RemoteEndpoint,
		apiKey:   cfg.OCR.RemoteAPIKey,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (p *remoteProcessor) Process(ctx context.Context, filePath string) (*Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "ocr", "process", "source file missing", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file into form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "ocr", "process", "remote service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.FromHTTPStatus(resp.StatusCode)
		return nil, services.Wrap(marker, "ocr", "process",
			fmt.Sprintf("remote service returned %d", resp.StatusCode), nil)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if doc.Metadata.ProcessingTime == 0 {
		doc.Metadata.ProcessingTime = elapsedSeconds(start)
	}
	doc.RecomputeStatistics()

	p.logger.Info("document processed remotely",
		logging.String("file", doc.Metadata.FileName),
		logging.Int("pages", doc.Metadata.TotalPages))
	return &doc, nil
}
