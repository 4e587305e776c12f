package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"biblioaccess/internal/config"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/services"
)

// localProcessor extracts text from PDF content streams with pdfcpu, one
// worker per page up to the configured limit. It reports full confidence
// because extraction is deterministic, unlike a recognition engine.
type localProcessor struct {
	workers int
	logger  *slog.Logger
}

func newLocalProcessor(cfg *config.Config, logger *slog.Logger) *localProcessor {
	workers := cfg.OCR.PageWorkers
	if workers <= 0 {
		workers = 4
	}
	return &localProcessor{workers: workers, logger: logger}
}

func (p *localProcessor) Process(ctx context.Context, filePath string) (*Document, error) {
	start := time.Now()

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "ocr", "process", "source file missing", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(filePath, conf); err != nil {
		return nil, services.Wrap(services.ErrValidation, "ocr", "process", "not a readable PDF", err)
	}

	pageCount, err := api.PageCountFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	pages := make([]Page, pageCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 1; i <= pageCount; i++ {
		pageNumber := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := extractPageText(filePath, pageNumber, conf)
			if err != nil {
				return fmt.Errorf("page %d: %w", pageNumber, err)
			}
			page := Page{Number: pageNumber, Text: text, Confidence: 1}
			page.CountPage()
			pages[pageNumber-1] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}

	doc := &Document{
		Status:  "success",
		Message: "Documento procesado",
		Metadata: Metadata{
			FileName:       filepath.Base(filePath),
			FileSize:       info.Size(),
			TotalPages:     pageCount,
			ProcessingTime: elapsedSeconds(start),
		},
		Pages: pages,
	}
	doc.RecomputeStatistics()

	p.logger.Info("document processed",
		logging.String("file", doc.Metadata.FileName),
		logging.Int("pages", pageCount),
		logging.Int("words", doc.Metadata.Statistics.TotalWords))
	return doc, nil
}

func extractPageText(filePath string, pageNumber int, conf *model.Configuration) (string, error) {
	dir, err := os.MkdirTemp("", "biblioaccess-ocr-*")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := api.ExtractContentFile(filePath, dir, []string{strconv.Itoa(pageNumber)}, conf); err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read extraction dir: %w", err)
	}
	var parts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return "", fmt.Errorf("read extracted page: %w", err)
		}
		if text := textFromContentStream(data); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// textFromContentStream pulls the literal strings out of a PDF content
// stream, the parenthesized operands of text-showing operators. Escapes for
// parens and backslashes are honored; everything else is passed through.
func textFromContentStream(data []byte) string {
	var b strings.Builder
	depth := 0
	escaped := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if depth == 0 {
			if c == '(' {
				depth = 1
			}
			continue
		}
		if escaped {
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '(', ')', '\\':
				b.WriteByte(c)
			}
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
