package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nfse-extractor/constants"
)

const sheetName = "Notas"

type xlsxWriter struct{}

func (xlsxWriter) Ext() string { return constants.FormatXLSX }

func (xlsxWriter) Write(_ context.Context, path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	for i, h := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v.Any()); err != nil {
				return err
			}
		}
	}

	// Widen text columns; amounts keep the default width
	for i, h := range t.Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := 14.0
		switch h {
		case constants.FieldProviderName, constants.FieldPayerName, constants.FieldMunicipality:
			width = 40
		case constants.FieldSourceFile:
			width = 32
		case constants.FieldProviderTaxID, constants.FieldPayerTaxID:
			width = 20
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("column %s width: %w", col, err)
		}
	}

	return f.SaveAs(path)
}
