package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/nfse-extractor/constants"
)

type Config struct {
	Backend   string // constants.BackendNative (default) | constants.BackendPdftotext
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
}

type Result struct {
	Text     string
	Pages    int // pages that carried text
	Method   string
	Duration time.Duration
	Warnings []string
}

const (
	MethodNative    = "pdf-native"
	MethodPdftotext = "pdftotext"
)

// Extractor reads the text layer of PDF files. It never rasterizes or OCRs.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = constants.BackendNative
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner swaps the command runner used by the pdftotext backend.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract returns the text of every page that has a text layer, joined by newlines in page order.
// An empty Text with a nil error means the document has no extractable text.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		e.logger.Error("unsupported input extension", "path", path, "extension", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	e.logger.Debug("starting text extraction", "path", path, "backend", e.cfg.Backend)

	var (
		pages []string
		res   Result
		err   error
	)
	switch e.cfg.Backend {
	case constants.BackendPdftotext:
		res.Method = MethodPdftotext
		pages, res.Warnings, err = e.pdfToText(ctx, path)
	case constants.BackendNative:
		res.Method = MethodNative
		pages, res.Warnings, err = e.readNative(path)
	default:
		return Result{}, fmt.Errorf("unknown pdf backend: %q", e.cfg.Backend)
	}
	if err != nil {
		res.Duration = time.Since(start)
		return res, err
	}

	res.Text, res.Pages = joinPages(pages)
	res.Duration = time.Since(start)
	return res, nil
}
