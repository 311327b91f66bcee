package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/common"
	"github.com/joseph-ayodele/nfse-extractor/internal/core"
	"github.com/joseph-ayodele/nfse-extractor/internal/entity"
	"github.com/joseph-ayodele/nfse-extractor/internal/export"
	"github.com/joseph-ayodele/nfse-extractor/internal/ingest"
)

// State is the batch lifecycle position.
type State string

const (
	StateIdle        State = "IDLE"
	StateEnumerating State = "ENUMERATING"
	StateExtracting  State = "EXTRACTING"
	StateAggregating State = "AGGREGATING"
	StateSerialized  State = "SERIALIZED"
	StateEmptySkip   State = "EMPTY_SKIP"
	StateFailed      State = "FAILED"
)

// FileProcessor turns one document into a record or a skip.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) core.Result
}

// Exporter writes the aggregated report.
type Exporter interface {
	Export(ctx context.Context, records []*entity.Record, columns []string) (string, *export.Table, error)
}

// Progress is reported once per document, after it was processed.
type Progress struct {
	Index  int // 1-based
	Total  int
	File   string
	Status constants.DocStatus
	Err    error
}

type ProgressFunc func(Progress)

// Options configures a Runner.
type Options struct {
	InputDir    string
	Ingest      ingest.Options
	Columns     []string
	PreviewRows int
	Progress    ProgressFunc
}

// Summary describes one finished run.
type Summary struct {
	RunID        string
	State        State
	Found        int
	Deduplicated int
	Processed    int
	SkippedEmpty int
	Failed       int
	OutputPath   string
	Preview      string
	Results      []core.Result
	Elapsed      time.Duration
}

// Runner drives a batch: enumerate inputs, process them one by one, then export.
type Runner struct {
	logger    *slog.Logger
	processor FileProcessor
	exporter  Exporter
	opts      Options
}

func NewRunner(logger *slog.Logger, processor FileProcessor, exporter Exporter, opts Options) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Columns) == 0 {
		opts.Columns = constants.FixedColumns
	}
	return &Runner{logger: logger, processor: processor, exporter: exporter, opts: opts}
}

// Run executes one batch. Documents are processed sequentially in enumeration order.
//
// Enumeration failure and cancellation are fatal and nothing is written.
// A batch without any record returns a Summary in StateEmptySkip together
// with an error wrapping common.ErrNoRecords.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = common.WithRunID(ctx, runID)
	}
	// A logger already in ctx is taken to carry the run id.
	logger, ok := common.ContextLogger(ctx)
	if !ok {
		logger = r.logger.With("run_id", runID)
		ctx = common.WithLogger(ctx, logger)
	}

	sum := Summary{RunID: runID, State: StateIdle}

	logger.Info("pipeline.run.start", "input_dir", r.opts.InputDir, "recursive", r.opts.Ingest.Recursive)

	// 1) enumerate
	sum.State = StateEnumerating
	inputs, stats, err := ingest.ListDirectory(r.opts.InputDir, r.opts.Ingest, logger)
	if err != nil {
		sum.State = StateFailed
		logger.Error("pipeline.enumerate.failed", "input_dir", r.opts.InputDir, "error", err)
		return r.finish(sum, start), err
	}
	sum.Found = len(inputs)
	sum.Deduplicated = int(stats.Deduplicated)
	logger.Info("pipeline.enumerate.ok",
		"found", sum.Found,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
	)
	if sum.Found == 0 {
		logger.Warn("pipeline.input.empty", "input_dir", r.opts.InputDir)
	}

	// 2) extract, normalize, record
	sum.State = StateExtracting
	records := make([]*entity.Record, 0, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			sum.State = StateFailed
			logger.Warn("pipeline.run.cancelled", "processed", i, "error", err)
			return r.finish(sum, start), fmt.Errorf("run cancelled: %w", err)
		}

		res := r.processor.ProcessFile(ctx, in.Path)
		sum.Results = append(sum.Results, res)
		attrs := []any{"file", in.Name, "status", res.Status, "duration_ms", res.Duration.Milliseconds()}
		if in.HashHex != "" {
			attrs = append(attrs, "sha256", in.HashHex)
		}
		logger.Debug("pipeline.document.done", attrs...)
		switch res.Status {
		case constants.DocStatusOK:
			sum.Processed++
			records = append(records, res.Record)
		case constants.DocStatusEmptyText:
			sum.SkippedEmpty++
		default:
			sum.Failed++
		}
		if r.opts.Progress != nil {
			r.opts.Progress(Progress{Index: i + 1, Total: len(inputs), File: in.Name, Status: res.Status, Err: res.Err})
		}
	}

	// 3) aggregate and serialize
	sum.State = StateAggregating
	path, table, err := r.exporter.Export(ctx, records, r.opts.Columns)
	if err != nil {
		if errors.Is(err, common.ErrNoRecords) {
			sum.State = StateEmptySkip
			logger.Warn("pipeline.report.skipped", "found", sum.Found, "skipped_empty", sum.SkippedEmpty, "failed", sum.Failed)
			return r.finish(sum, start), err
		}
		sum.State = StateFailed
		logger.Error("pipeline.export.failed", "error", err)
		return r.finish(sum, start), err
	}
	sum.OutputPath = path
	sum.Preview = export.Preview(table, r.opts.PreviewRows)
	sum.State = StateSerialized

	logger.Info("pipeline.run.ok",
		"found", sum.Found,
		"processed", sum.Processed,
		"skipped_empty", sum.SkippedEmpty,
		"failed", sum.Failed,
		"output", sum.OutputPath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return r.finish(sum, start), nil
}

func (r *Runner) finish(sum Summary, start time.Time) Summary {
	sum.Elapsed = time.Since(start)
	return sum
}
