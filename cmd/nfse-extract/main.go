package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/common"
	"github.com/joseph-ayodele/nfse-extractor/internal/core"
	"github.com/joseph-ayodele/nfse-extractor/internal/export"
	"github.com/joseph-ayodele/nfse-extractor/internal/extract"
	"github.com/joseph-ayodele/nfse-extractor/internal/ingest"
	"github.com/joseph-ayodele/nfse-extractor/internal/patterns"
	"github.com/joseph-ayodele/nfse-extractor/internal/pdftext"
	"github.com/joseph-ayodele/nfse-extractor/internal/pipeline"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nfse-extract",
		Short: "Extract NFS-e fields from PDF invoices into a report",
		Long: `nfse-extract reads every PDF in the input directory, pulls the
invoice fields out of its text layer with the pattern catalog and writes
one timestamped report (dados_extraidos_<YYYY-MM-DD_HH-MM>.<ext>).

Scanned PDFs without a text layer are skipped, not OCRed.

Example:
  nfse-extract
  nfse-extract --input notas/ --output relatorios/ --format csv`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			applyFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("input", "", "directory with the NFS-e PDFs (env NFSE_INPUT_DIR)")
	f.String("output", "", "directory for the generated report (env NFSE_OUTPUT_DIR)")
	f.String("log-dir", "", "directory for extrator.log (env NFSE_LOG_DIR)")
	f.String("patterns", "", "YAML pattern catalog replacing the built-in one (env NFSE_PATTERNS_FILE)")
	f.String("format", "", "report format: xlsx, csv or sqlite (env NFSE_REPORT_FORMAT)")
	f.String("backend", "", "text layer backend: native or pdftotext (env NFSE_PDF_BACKEND)")
	f.Int("preview", 0, "rows of the report to print, 0 disables (env NFSE_PREVIEW_ROWS)")
	f.Bool("recursive", false, "descend into subdirectories of the input directory (env NFSE_RECURSIVE)")
	f.Bool("skip-hidden", false, "ignore dot-files and dot-directories (env NFSE_SKIP_HIDDEN)")
	f.Bool("dedupe", false, "process only the first of several PDFs with identical content (env NFSE_DEDUPE)")
	return cmd
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, cfg *common.Config) {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("input", &cfg.Paths.InputDir)
	str("output", &cfg.Paths.OutputDir)
	str("log-dir", &cfg.Paths.LogDir)
	str("patterns", &cfg.Paths.PatternsFile)
	str("format", &cfg.Report.Format)
	str("backend", &cfg.PDF.Backend)
	if f.Changed("preview") {
		cfg.Report.PreviewRows, _ = f.GetInt("preview")
	}
	boolean := func(name string, dst *bool) {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}
	boolean("recursive", &cfg.Paths.Recursive)
	boolean("skip-hidden", &cfg.Paths.SkipHidden)
	boolean("dedupe", &cfg.Paths.Dedupe)
}

// run wires the components for one batch and prints its outcome to out.
// Only fatal errors are returned; an empty batch is reported as a warning.
func run(ctx context.Context, cfg *common.Config, out io.Writer) error {
	fileLogger, closeLog, err := common.OpenLogFile(cfg.Paths.LogDir, cfg.Log.FileName, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	runID := uuid.NewString()
	logger := fileLogger.With("run_id", runID)
	ctx = common.WithLogger(common.WithRunID(ctx, runID), logger)

	catalog, err := patterns.Load(cfg.Paths.PatternsFile, logger)
	if err != nil {
		logger.Error("catalog.load.failed", "path", cfg.Paths.PatternsFile, "error", err)
		return err
	}

	pdf := pdftext.NewExtractor(pdftext.Config{
		Backend:   cfg.PDF.Backend,
		Pdftotext: cfg.PDF.Pdftotext,
		MaxPages:  cfg.PDF.MaxPages,
	}, logger)
	processor := core.NewProcessor(logger, extract.NewPDFAdapter(pdf, logger), catalog)

	exporter, err := export.NewService(cfg.Paths.OutputDir, cfg.Report.Format, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Lendo notas em %s\n", cfg.Paths.InputDir)
	runner := pipeline.NewRunner(logger, processor, exporter, pipeline.Options{
		InputDir: cfg.Paths.InputDir,
		Ingest: ingest.Options{
			Recursive:  cfg.Paths.Recursive,
			SkipHidden: cfg.Paths.SkipHidden,
			Dedupe:     cfg.Paths.Dedupe,
		},
		PreviewRows: cfg.Report.PreviewRows,
		Progress: func(p pipeline.Progress) {
			fmt.Fprintf(out, "[%d/%d] %s: %s\n", p.Index, p.Total, p.File, progressLabel(p.Status))
		},
	})

	sum, err := runner.Run(ctx)
	if err != nil && !errors.Is(err, common.ErrNoRecords) {
		return err
	}

	fmt.Fprintf(out, "\nArquivos encontrados: %d\n", sum.Found)
	if sum.Deduplicated > 0 {
		fmt.Fprintf(out, "Duplicados ignorados: %d\n", sum.Deduplicated)
	}
	fmt.Fprintf(out, "Processados: %d\n", sum.Processed)
	fmt.Fprintf(out, "Sem texto: %d\n", sum.SkippedEmpty)
	fmt.Fprintf(out, "Com erro: %d\n", sum.Failed)

	if errors.Is(err, common.ErrNoRecords) {
		fmt.Fprintln(out, "Aviso: nenhum dado extraido, relatorio nao gerado.")
		return nil
	}
	fmt.Fprintf(out, "Relatorio: %s\n", sum.OutputPath)
	if sum.Preview != "" {
		fmt.Fprintf(out, "\n%s", sum.Preview)
	}
	return nil
}

func progressLabel(s constants.DocStatus) string {
	switch s {
	case constants.DocStatusOK:
		return "ok"
	case constants.DocStatusEmptyText:
		return "sem texto, ignorado"
	default:
		return "erro, ignorado"
	}
}
