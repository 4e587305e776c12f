package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"biblioaccess/internal/config"
	"biblioaccess/internal/logging"
)

// Processor turns an uploaded file into a processed Document.
type Processor interface {
	Process(ctx context.Context, filePath string) (*Document, error)
}

// NewProcessor builds the processor selected by configuration: "local" runs
// pdfcpu-based extraction in this process, "remote" delegates to an HTTP
// service.
func NewProcessor(cfg *config.Config, logger *slog.Logger) (Processor, error) {
	switch cfg.OCR.Processor {
	case "local":
		return newLocalProcessor(cfg, logging.NewComponentLogger(logger, "ocr-local")), nil
	case "remote":
		return newRemoteProcessor(cfg, logging.NewComponentLogger(logger, "ocr-remote")), nil
	default:
		return nil, fmt.Errorf("unknown ocr processor %q", cfg.OCR.Processor)
	}
}

func elapsedSeconds(start time.Time) float64 {
	return time.Since(start).Seconds()
}
