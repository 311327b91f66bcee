package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/common"
	"github.com/joseph-ayodele/nfse-extractor/internal/entity"
	"github.com/joseph-ayodele/nfse-extractor/internal/extract"
	"github.com/joseph-ayodele/nfse-extractor/internal/patterns"
)

// Result is the outcome of processing one document: a record, or the reason it was skipped.
type Result struct {
	Path     string
	Status   constants.DocStatus
	Record   *entity.Record
	Err      error
	Pages    int
	Duration time.Duration
}

// OK reports whether a record was produced.
func (r Result) OK() bool { return r.Status == constants.DocStatusOK && r.Record != nil }

// Processor coordinates text extraction then rule-based field extraction for one document.
type Processor struct {
	logger  *slog.Logger
	text    extract.TextExtractor
	catalog *patterns.Catalog
}

func NewProcessor(logger *slog.Logger, text extract.TextExtractor, catalog *patterns.Catalog) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, text: text, catalog: catalog}
}

// ProcessFile reads path and builds its record. It never returns an error:
// empty or unreadable documents come back as skipped Results so the batch can continue.
func (p *Processor) ProcessFile(ctx context.Context, path string) (res Result) {
	start := time.Now()
	name := filepath.Base(path)
	logger := common.LoggerFromContext(ctx, p.logger).With("file", name)
	res.Path = path

	defer func() {
		if r := recover(); r != nil {
			logger.Error("processor.panic", "panic", fmt.Sprint(r))
			res = Result{Path: path, Status: constants.DocStatusFailed, Err: fmt.Errorf("unexpected failure: %v", r)}
		}
		res.Duration = time.Since(start)
	}()

	// 1) text layer
	tr, err := p.text.Extract(ctx, path)
	if err != nil {
		logger.Error("processor.extract.failed", "error", err)
		res.Status = constants.DocStatusFailed
		res.Err = fmt.Errorf("extract %s: %w", name, err)
		return res
	}
	res.Pages = tr.Pages
	if strings.TrimSpace(tr.Text) == "" {
		logger.Warn("processor.text.empty", "pages", tr.Pages, "method", tr.Method)
		res.Status = constants.DocStatusEmptyText
		res.Err = fmt.Errorf("%s: %w", name, common.ErrEmptyText)
		return res
	}
	logger.Debug("processor.text.ok",
		"method", tr.Method,
		"pages", tr.Pages,
		"bytes", len(tr.Text),
		"duration_ms", tr.Duration.Milliseconds(),
	)

	// 2) fields
	res.Record = p.buildRecord(name, tr.Text, logger)
	res.Status = constants.DocStatusOK
	return res
}

// ProcessText builds a record for filename from already extracted text.
// It returns nil when text is empty.
func (p *Processor) ProcessText(filename, text string) *entity.Record {
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("processor.text.empty", "file", filename)
		return nil
	}
	return p.buildRecord(filename, text, p.logger.With("file", filename))
}

func (p *Processor) buildRecord(filename, text string, logger *slog.Logger) *entity.Record {
	rules := p.catalog.Rules()
	fields := make(map[string]entity.Value, len(rules))
	missing := 0
	for _, rule := range rules {
		raw, ok := extract.Extract(text, rule, logger)
		if !ok {
			missing++
		}
		fields[rule.Field] = extract.Normalize(rule.Field, raw, ok, logger)
	}
	rec := entity.NewRecord(filename, fields)
	logger.Info("processor.record.built", "fields", len(rules), "missing", missing)
	return rec
}
