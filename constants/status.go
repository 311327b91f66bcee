package constants

// DocStatus is the per-document processing outcome.
type DocStatus string

const (
	DocStatusOK        DocStatus = "OK"         // record produced
	DocStatusEmptyText DocStatus = "EMPTY_TEXT" // no text layer, skipped
	DocStatusFailed    DocStatus = "FAILED"     // unreadable or extraction error, skipped
)

// Report formats.
const (
	FormatXLSX   = "xlsx"
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Text-layer backends.
const (
	BackendNative    = "native"
	BackendPdftotext = "pdftotext"
)
