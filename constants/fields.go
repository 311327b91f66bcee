package constants

import "strings"

// Field names as they appear in records and report headers.
const (
	FieldSourceFile     = "arquivo"
	FieldInvoiceNumber  = "numero_nota"
	FieldIssueDate      = "data_emissao"
	FieldProviderTaxID  = "cnpj_prestador"
	FieldProviderName   = "razao_social_prestador"
	FieldPayerTaxID     = "cnpj_tomador"
	FieldPayerName      = "razao_social_tomador"
	FieldTotalValue     = "valor_total"
	FieldTaxBase        = "base_calculo"
	FieldTaxAmount      = "valor_iss"
	FieldTaxRate        = "aliquota"
	FieldMunicipality   = "municipio_prestacao"
	FieldWithheldIRRF   = "valor_irrf"
	FieldWithheldINSS   = "valor_inss"
	FieldWithheldCOFINS = "valor_cofins"
	FieldWithheldPIS    = "valor_pis"
)

// FixedColumns is the report column order. Every emitted row carries all of them.
var FixedColumns = []string{
	FieldSourceFile,
	FieldInvoiceNumber,
	FieldIssueDate,
	FieldProviderTaxID,
	FieldProviderName,
	FieldPayerTaxID,
	FieldPayerName,
	FieldTotalValue,
	FieldTaxBase,
	FieldTaxAmount,
	FieldTaxRate,
	FieldMunicipality,
	FieldWithheldIRRF,
	FieldWithheldINSS,
	FieldWithheldCOFINS,
	FieldWithheldPIS,
}

// numericMarkers flag monetary and percentage fields.
var numericMarkers = []string{"valor", "aliquota", "base_calculo"}

// IsNumericField reports whether values of field are monetary/percentage quantities.
func IsNumericField(field string) bool {
	name := strings.ToLower(field)
	for _, m := range numericMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
