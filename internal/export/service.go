package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/common"
	"github.com/joseph-ayodele/nfse-extractor/internal/entity"
)

// TimestampLayout is embedded in artifact names (minute resolution).
const TimestampLayout = "2006-01-02_15-04"

const baseName = "dados_extraidos"

// Writer serializes a Table to one file.
type Writer interface {
	Ext() string
	Write(ctx context.Context, path string, t *Table) error
}

// Service is a tiny façade that builds the report table and writes the artifact.
type Service struct {
	outputDir string
	writer    Writer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService picks the writer for format (xlsx, csv or sqlite).
func NewService(outputDir, format string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := WriterFor(format)
	if err != nil {
		return nil, err
	}
	return &Service{outputDir: outputDir, writer: w, logger: logger, now: time.Now}, nil
}

// WriterFor maps a report format name to its Writer.
func WriterFor(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case constants.FormatXLSX, "":
		return xlsxWriter{}, nil
	case constants.FormatCSV:
		return csvWriter{}, nil
	case constants.FormatSQLite:
		return sqliteWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}

// Export builds the table and writes exactly one artifact. No file is written
// when records is empty; the error then wraps common.ErrNoRecords.
func (s *Service) Export(ctx context.Context, records []*entity.Record, columns []string) (string, *Table, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, s.logger)

	t, err := Build(records, columns, logger)
	if err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", t, fmt.Errorf("create output dir: %w", err)
	}
	path, err := s.nextPath()
	if err != nil {
		return "", t, err
	}
	if err := s.writer.Write(ctx, path, t); err != nil {
		return "", t, fmt.Errorf("%s write: %w", s.writer.Ext(), err)
	}

	logger.Info("export.report.ok",
		"path", path,
		"format", s.writer.Ext(),
		"rows", len(t.Rows),
		"columns", len(t.Columns),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return path, t, nil
}

// nextPath returns a timestamped artifact path that does not exist yet.
func (s *Service) nextPath() (string, error) {
	stamp := s.now().Format(TimestampLayout)
	ext := s.writer.Ext()
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.%s", baseName, stamp, ext))
	for i := 2; ; i++ {
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		path = filepath.Join(s.outputDir, fmt.Sprintf("%s_%s_%d.%s", baseName, stamp, i, ext))
	}
}
