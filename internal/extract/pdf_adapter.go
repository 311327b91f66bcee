package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/nfse-extractor/internal/pdftext"
)

type PDFAdapter struct {
	extractor *pdftext.Extractor
	logger    *slog.Logger
}

func NewPDFAdapter(e *pdftext.Extractor, l *slog.Logger) *PDFAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &PDFAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *PDFAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.extractor.Extract(ctx, path)
	if err != nil {
		return TextExtractionResult{}, err
	}
	for _, w := range r.Warnings {
		a.logger.Warn("pdftext.warning", "path", path, "warning", w)
	}
	return TextExtractionResult{
		Text:     r.Text,
		Pages:    r.Pages,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, nil
}
