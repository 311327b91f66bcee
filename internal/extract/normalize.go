package extract

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/nfse-extractor/constants"
	"github.com/joseph-ayodele/nfse-extractor/internal/entity"
)

// zeroToken is how the documents print an empty amount.
const zeroToken = "0,00"

// Normalize converts a captured string into a typed value for field.
// Numeric fields never fail: anything unparseable becomes 0 with a warning.
func Normalize(field, raw string, ok bool, logger *slog.Logger) entity.Value {
	if !constants.IsNumericField(field) {
		if !ok {
			return entity.Text("")
		}
		return entity.Text(strings.TrimSpace(raw))
	}

	s := strings.TrimSpace(raw)
	if !ok || s == "" || s == zeroToken {
		return entity.Number(0)
	}
	f, err := ParseLocaleNumber(s)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("normalize.number.invalid", "field", field, "raw", raw, "error", err)
		return entity.Number(0)
	}
	return entity.Number(f)
}

// ParseLocaleNumber parses a pt-BR formatted number: '.' groups thousands and ',' is the decimal mark.
func ParseLocaleNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
