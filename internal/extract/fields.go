package extract

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/nfse-extractor/internal/patterns"
)

// Extract resolves one field against text: patterns are tried in order and the
// first match wins. A broken pattern counts as no match.
// ok is false when nothing matched.
func Extract(text string, rule patterns.Rule, logger *slog.Logger) (value string, ok bool) {
	if logger == nil {
		logger = slog.Default()
	}
	for i, p := range rule.Patterns {
		if p.Broken() {
			logger.Debug("extract.pattern.skipped", "field", rule.Field, "index", i, "error", p.Err())
			continue
		}
		if raw, found := p.Find(text); found {
			return strings.TrimSpace(raw), true
		}
	}
	return "", false
}
