package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/common"
	"github.com/joseph-ayodele/nfse-extractor/internal/core"
	"github.com/joseph-ayodele/nfse-extractor/internal/export"
	"github.com/joseph-ayodele/nfse-extractor/internal/extract"
	"github.com/joseph-ayodele/nfse-extractor/internal/patterns"
)

// fakeText serves canned text by file name.
type fakeText struct {
	texts map[string]string
	errs  map[string]error
}

func (f *fakeText) Extract(_ context.Context, path string) (extract.TextExtractionResult, error) {
	name := filepath.Base(path)
	if err, ok := f.errs[name]; ok {
		return extract.TextExtractionResult{}, err
	}
	return extract.TextExtractionResult{Text: f.texts[name], Pages: 1, Method: "fake"}, nil
}

type fixture struct {
	inputDir  string
	outputDir string
	logs      *bytes.Buffer
	logger    *slog.Logger
}

func newFixture(t *testing.T, files ...string) fixture {
	t.Helper()
	root := t.TempDir()
	fx := fixture{
		inputDir:  filepath.Join(root, "entrada"),
		outputDir: filepath.Join(root, "saida"),
		logs:      &bytes.Buffer{},
	}
	fx.logger = slog.New(slog.NewJSONHandler(fx.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	require.NoError(t, os.MkdirAll(fx.inputDir, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(fx.inputDir, f), []byte("%PDF-1.4"), 0o644))
	}
	return fx
}

func (fx fixture) runner(t *testing.T, text extract.TextExtractor, progress ProgressFunc) *Runner {
	t.Helper()
	catalog, err := patterns.Default(fx.logger)
	require.NoError(t, err)
	exporter, err := export.NewService(fx.outputDir, constants.FormatCSV, fx.logger)
	require.NoError(t, err)
	return NewRunner(fx.logger, core.NewProcessor(fx.logger, text, catalog), exporter, Options{
		InputDir:    fx.inputDir,
		PreviewRows: 5,
		Progress:    progress,
	})
}

func TestRunner_Run(t *testing.T) {
	fx := newFixture(t, "b_nota.pdf", "a_nota.PDF", "c_scan.pdf", "d_quebrado.pdf", "leiame.txt")
	text := &fakeText{
		texts: map[string]string{
			"a_nota.PDF": "Numero da Nota 123\nVALOR TOTAL DOS SERVIÇOS = R$ 1.500,00\n",
			"b_nota.pdf": "Numero da Nota 124\nVALOR TOTAL DOS SERVIÇOS = R$ 980,10\n",
			"c_scan.pdf": "",
		},
		errs: map[string]error{"d_quebrado.pdf": errors.New("malformed xref")},
	}

	var seen []Progress
	sum, err := fx.runner(t, text, func(p Progress) { seen = append(seen, p) }).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateSerialized, sum.State)
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 4, sum.Found)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 1, sum.SkippedEmpty)
	assert.Equal(t, 1, sum.Failed)
	assert.Len(t, sum.Results, 4)

	require.Len(t, seen, 4)
	names := make([]string, len(seen))
	for i, p := range seen {
		names[i] = p.File
		assert.Equal(t, i+1, p.Index)
		assert.Equal(t, 4, p.Total)
	}
	assert.Equal(t, []string{"a_nota.PDF", "b_nota.pdf", "c_scan.pdf", "d_quebrado.pdf"}, names)
	assert.Equal(t, constants.DocStatusEmptyText, seen[2].Status)
	assert.Equal(t, constants.DocStatusFailed, seen[3].Status)
	assert.Error(t, seen[3].Err)

	// one artifact, rows in enumeration order
	assert.Equal(t, fx.outputDir, filepath.Dir(sum.OutputPath))
	entries, err := os.ReadDir(fx.outputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	f, err := os.Open(sum.OutputPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, constants.FixedColumns, rows[0])
	assert.Equal(t, []string{"a_nota.PDF", "123"}, rows[1][:2])
	assert.Equal(t, "1500", rows[1][7])
	assert.Equal(t, "0", rows[1][9])
	assert.Equal(t, []string{"b_nota.pdf", "124"}, rows[2][:2])
	assert.Equal(t, "980.1", rows[2][7])

	assert.Contains(t, sum.Preview, "a_nota.PDF")
	assert.Contains(t, sum.Preview, "1500.00")

	assertRunID(t, fx.logs, sum.RunID)
	assert.Contains(t, fx.logs.String(), "processor.extract.failed")
}

// assertRunID decodes every JSON log line and checks it carries runID.
func assertRunID(t *testing.T, logs *bytes.Buffer, runID string) {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.NotEmpty(t, lines)
	for i, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line %d", i+1)
		assert.Equal(t, runID, entry["run_id"], "line %d: %s", i+1, entry["msg"])
	}
}

func TestRunner_Run_UsesContextRunID(t *testing.T) {
	fx := newFixture(t, "nota.pdf")
	text := &fakeText{texts: map[string]string{"nota.pdf": "Numero da Nota 7"}}

	ctx := common.WithRunID(context.Background(), "run-42")
	sum, err := fx.runner(t, text, nil).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, "run-42", sum.RunID)
	assertRunID(t, fx.logs, "run-42")
}

func TestRunner_Run_Dedupe(t *testing.T) {
	fx := newFixture(t, "a.pdf", "b.pdf")
	text := &fakeText{texts: map[string]string{"a.pdf": "Numero da Nota 1", "b.pdf": "Numero da Nota 1"}}
	r := fx.runner(t, text, nil)
	r.opts.Ingest.Dedupe = true

	sum, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sum.Found)
	assert.Equal(t, 1, sum.Deduplicated)
	assert.Equal(t, 1, sum.Processed)
	assert.Contains(t, fx.logs.String(), `"sha256":"`)
}

func TestRunner_Run_EmptyBatch(t *testing.T) {
	t.Run("no documents", func(t *testing.T) {
		fx := newFixture(t)
		sum, err := fx.runner(t, &fakeText{}, nil).Run(context.Background())

		assert.ErrorIs(t, err, common.ErrNoRecords)
		assert.Equal(t, StateEmptySkip, sum.State)
		assert.Zero(t, sum.Found)
		assert.Empty(t, sum.OutputPath)
		assert.NoDirExists(t, fx.outputDir)
	})

	t.Run("only empty text layers", func(t *testing.T) {
		fx := newFixture(t, "scan1.pdf", "scan2.pdf")
		sum, err := fx.runner(t, &fakeText{}, nil).Run(context.Background())

		assert.ErrorIs(t, err, common.ErrNoRecords)
		assert.Equal(t, StateEmptySkip, sum.State)
		assert.Equal(t, 2, sum.Found)
		assert.Equal(t, 2, sum.SkippedEmpty)
		assert.NoDirExists(t, fx.outputDir)
	})
}

func TestRunner_Run_MissingInputDir(t *testing.T) {
	fx := newFixture(t)
	r := fx.runner(t, &fakeText{}, nil)
	r.opts.InputDir = filepath.Join(fx.inputDir, "nao-existe")

	sum, err := r.Run(context.Background())

	assert.ErrorIs(t, err, common.ErrInputDir)
	assert.Equal(t, StateFailed, sum.State)
	assert.NoDirExists(t, fx.outputDir)
}

func TestRunner_Run_Cancelled(t *testing.T) {
	fx := newFixture(t, "a.pdf", "b.pdf")
	text := &fakeText{texts: map[string]string{"a.pdf": "Numero da Nota 1", "b.pdf": "Numero da Nota 2"}}

	ctx, cancel := context.WithCancel(context.Background())
	sum, err := fx.runner(t, text, func(p Progress) {
		if p.Index == 1 {
			cancel()
		}
	}).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, sum.State)
	assert.Equal(t, 1, sum.Processed)
	assert.NoDirExists(t, fx.outputDir)
}
