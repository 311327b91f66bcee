package export

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/gocarina/gocsv"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/entity"
)

// invoiceRow is one CSV line. Field order and tags follow constants.FixedColumns.
type invoiceRow struct {
	SourceFile     string  `csv:"arquivo"`
	InvoiceNumber  string  `csv:"numero_nota"`
	IssueDate      string  `csv:"data_emissao"`
	ProviderTaxID  string  `csv:"cnpj_prestador"`
	ProviderName   string  `csv:"razao_social_prestador"`
	PayerTaxID     string  `csv:"cnpj_tomador"`
	PayerName      string  `csv:"razao_social_tomador"`
	TotalValue     float64 `csv:"valor_total"`
	TaxBase        float64 `csv:"base_calculo"`
	TaxAmount      float64 `csv:"valor_iss"`
	TaxRate        float64 `csv:"aliquota"`
	Municipality   string  `csv:"municipio_prestacao"`
	WithheldIRRF   float64 `csv:"valor_irrf"`
	WithheldINSS   float64 `csv:"valor_inss"`
	WithheldCOFINS float64 `csv:"valor_cofins"`
	WithheldPIS    float64 `csv:"valor_pis"`
}

func newInvoiceRow(columns []string, values []entity.Value) invoiceRow {
	var r invoiceRow
	for i, col := range columns {
		v := values[i]
		switch col {
		case constants.FieldSourceFile:
			r.SourceFile = v.Text
		case constants.FieldInvoiceNumber:
			r.InvoiceNumber = v.Text
		case constants.FieldIssueDate:
			r.IssueDate = v.Text
		case constants.FieldProviderTaxID:
			r.ProviderTaxID = v.Text
		case constants.FieldProviderName:
			r.ProviderName = v.Text
		case constants.FieldPayerTaxID:
			r.PayerTaxID = v.Text
		case constants.FieldPayerName:
			r.PayerName = v.Text
		case constants.FieldTotalValue:
			r.TotalValue = v.Number
		case constants.FieldTaxBase:
			r.TaxBase = v.Number
		case constants.FieldTaxAmount:
			r.TaxAmount = v.Number
		case constants.FieldTaxRate:
			r.TaxRate = v.Number
		case constants.FieldMunicipality:
			r.Municipality = v.Text
		case constants.FieldWithheldIRRF:
			r.WithheldIRRF = v.Number
		case constants.FieldWithheldINSS:
			r.WithheldINSS = v.Number
		case constants.FieldWithheldCOFINS:
			r.WithheldCOFINS = v.Number
		case constants.FieldWithheldPIS:
			r.WithheldPIS = v.Number
		}
	}
	return r
}

type csvWriter struct{}

func (csvWriter) Ext() string { return constants.FormatCSV }

// Write marshals the table through invoiceRow, so it only accepts the fixed column layout.
func (csvWriter) Write(_ context.Context, path string, t *Table) (err error) {
	if !slices.Equal(t.Columns, constants.FixedColumns) {
		return fmt.Errorf("csv report needs the fixed column layout, got %d custom columns", len(t.Columns))
	}

	rows := make([]invoiceRow, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = newInvoiceRow(t.Columns, row)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}
	return nil
}
