package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/common"
	"github.com/joseph-ayodele/nfse-extractor/internal/entity"
)

func sampleRecords() []*entity.Record {
	return []*entity.Record{
		entity.NewRecord("nota1.pdf", map[string]entity.Value{
			constants.FieldInvoiceNumber: entity.Text("123"),
			constants.FieldTotalValue:    entity.Number(1500),
			"campo_extra":                entity.Text("ignored"),
		}),
		entity.NewRecord("nota2.pdf", map[string]entity.Value{
			constants.FieldPayerName: entity.Text("CLIENTE S.A."),
			constants.FieldTaxRate:   entity.Number(2.5),
		}),
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 14, 7, 59, 0, time.Local)
}

func newTestService(t *testing.T, format string) (*Service, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "saida")
	s, err := NewService(dir, format, nil)
	require.NoError(t, err)
	s.now = fixedClock
	return s, dir
}

func TestBuild(t *testing.T) {
	t.Run("fills every column in order", func(t *testing.T) {
		tbl, err := Build(sampleRecords(), constants.FixedColumns, nil)
		require.NoError(t, err)

		assert.Equal(t, constants.FixedColumns, tbl.Columns)
		require.Len(t, tbl.Rows, 2)
		for _, row := range tbl.Rows {
			assert.Len(t, row, len(constants.FixedColumns))
		}

		row := tbl.Rows[0]
		assert.Equal(t, entity.Text("nota1.pdf"), row[0])
		assert.Equal(t, entity.Text("123"), row[1])
		assert.Equal(t, entity.Number(1500), row[7])
		// defaults
		assert.Equal(t, entity.Number(0), row[9])  // valor_iss
		assert.Equal(t, entity.Text(""), row[6])   // razao_social_tomador
		assert.Equal(t, entity.Text(""), row[11])  // municipio_prestacao
	})

	t.Run("custom column order", func(t *testing.T) {
		cols := []string{constants.FieldTotalValue, constants.FieldSourceFile}
		tbl, err := Build(sampleRecords(), cols, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"1500", "nota1.pdf"}, tbl.Strings(0))
		assert.Equal(t, []string{"0", "nota2.pdf"}, tbl.Strings(1))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Build(nil, constants.FixedColumns, nil)
		assert.ErrorIs(t, err, common.ErrNoRecords)

		_, err = Build([]*entity.Record{nil}, constants.FixedColumns, nil)
		assert.ErrorIs(t, err, common.ErrNoRecords)
	})
}

func TestService_Export_Empty(t *testing.T) {
	s, dir := newTestService(t, constants.FormatXLSX)

	path, tbl, err := s.Export(context.Background(), nil, constants.FixedColumns)

	assert.ErrorIs(t, err, common.ErrNoRecords)
	assert.Empty(t, path)
	assert.Nil(t, tbl)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "no output directory or artifact expected")
}

func TestService_Export_XLSX(t *testing.T) {
	s, dir := newTestService(t, constants.FormatXLSX)

	path, _, err := s.Export(context.Background(), sampleRecords(), constants.FixedColumns)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dados_extraidos_2024-03-05_14-07.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, constants.FixedColumns, rows[0])
	assert.Equal(t, "nota1.pdf", rows[1][0])
	assert.Equal(t, "123", rows[1][1])
	assert.Equal(t, "1500", rows[1][7])

	second, err := f.GetCellValue(sheetName, "K3")
	require.NoError(t, err)
	assert.Equal(t, "2.5", second)

	width, err := f.GetColWidth(sheetName, "E") // razao_social_prestador
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)
	width, err = f.GetColWidth(sheetName, "A") // arquivo
	require.NoError(t, err)
	assert.Equal(t, 32.0, width)
}

func TestService_Export_DoesNotOverwrite(t *testing.T) {
	s, dir := newTestService(t, constants.FormatCSV)

	first, _, err := s.Export(context.Background(), sampleRecords(), nil)
	require.NoError(t, err)
	second, _, err := s.Export(context.Background(), sampleRecords(), nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "dados_extraidos_2024-03-05_14-07.csv"), first)
	assert.Equal(t, filepath.Join(dir, "dados_extraidos_2024-03-05_14-07_2.csv"), second)
}

func TestService_Export_CSV(t *testing.T) {
	s, _ := newTestService(t, constants.FormatCSV)

	path, _, err := s.Export(context.Background(), sampleRecords(), constants.FixedColumns)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, constants.FixedColumns, records[0])
	assert.Equal(t, "1500", records[1][7])
	assert.Equal(t, "CLIENTE S.A.", records[2][6])
	assert.Equal(t, "0", records[2][7])
}

func TestService_Export_CSV_RequiresFixedColumns(t *testing.T) {
	s, dir := newTestService(t, constants.FormatCSV)

	path, _, err := s.Export(context.Background(), sampleRecords(), []string{constants.FieldSourceFile, constants.FieldTotalValue})

	require.Error(t, err)
	assert.Empty(t, path)
	entries, rerr := os.ReadDir(dir)
	require.NoError(t, rerr)
	assert.Empty(t, entries)
}

func TestNewInvoiceRow(t *testing.T) {
	tbl, err := Build(sampleRecords(), constants.FixedColumns, nil)
	require.NoError(t, err)

	row := newInvoiceRow(tbl.Columns, tbl.Rows[0])

	assert.Equal(t, "nota1.pdf", row.SourceFile)
	assert.Equal(t, "123", row.InvoiceNumber)
	assert.Equal(t, 1500.0, row.TotalValue)
	assert.Zero(t, row.TaxAmount)
	assert.Empty(t, row.PayerName)
}

func TestService_Export_SQLite(t *testing.T) {
	s, _ := newTestService(t, constants.FormatSQLite)

	path, _, err := s.Export(context.Background(), sampleRecords(), constants.FixedColumns)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM notas`).Scan(&count))
	assert.Equal(t, 2, count)

	var total, rate float64
	var number, payer string
	require.NoError(t, db.QueryRow(`SELECT valor_total, numero_nota FROM notas WHERE arquivo = ?`, "nota1.pdf").Scan(&total, &number))
	assert.Equal(t, 1500.0, total)
	assert.Equal(t, "123", number)
	require.NoError(t, db.QueryRow(`SELECT aliquota, razao_social_tomador FROM notas WHERE arquivo = ?`, "nota2.pdf").Scan(&rate, &payer))
	assert.Equal(t, 2.5, rate)
	assert.Equal(t, "CLIENTE S.A.", payer)
}

func TestWriterFor(t *testing.T) {
	for _, f := range []string{"", constants.FormatXLSX, constants.FormatCSV, constants.FormatSQLite} {
		_, err := WriterFor(f)
		assert.NoError(t, err, f)
	}
	_, err := WriterFor("ods")
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	tbl, err := Build(sampleRecords(), []string{constants.FieldSourceFile, constants.FieldTotalValue}, nil)
	require.NoError(t, err)

	out := Preview(tbl, 1)

	assert.Contains(t, out, "arquivo")
	assert.Contains(t, out, "valor_total")
	assert.Contains(t, out, "nota1.pdf")
	assert.Contains(t, out, "1500.00")
	assert.NotContains(t, out, "nota2.pdf")

	assert.Empty(t, Preview(tbl, 0))
	assert.Empty(t, Preview(nil, 5))
}
