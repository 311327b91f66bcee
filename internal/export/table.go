package export

import (
	"log/slog"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/common"
	"github.com/joseph-ayodele/nfse-extractor/internal/entity"
)

// Table is the report: a fixed column schema and one row per record.
// Every row has exactly len(Columns) values.
type Table struct {
	Columns []string
	Rows    [][]entity.Value
}

// Build lays records out under columns, in column order, substituting type
// defaults for missing values. Fields outside columns are dropped.
// It returns common.ErrNoRecords when there is nothing to report.
func Build(records []*entity.Record, columns []string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(columns) == 0 {
		columns = constants.FixedColumns
	}
	if len(records) == 0 {
		logger.Warn("export.build.empty", "columns", len(columns))
		return nil, common.NewAppError("EMPTY_REPORT", "no records to report", common.ErrNoRecords)
	}

	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]entity.Value, 0, len(records)),
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		row := make([]entity.Value, len(columns))
		for i, col := range columns {
			row[i] = rec.GetOrDefault(col)
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		logger.Warn("export.build.empty", "columns", len(columns))
		return nil, common.NewAppError("EMPTY_REPORT", "no records to report", common.ErrNoRecords)
	}
	return t, nil
}

// Strings renders row i as cell strings.
func (t *Table) Strings(i int) []string {
	out := make([]string, len(t.Rows[i]))
	for j, v := range t.Rows[i] {
		out[j] = v.String()
	}
	return out
}
