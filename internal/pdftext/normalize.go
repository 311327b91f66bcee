package pdftext

import (
	"regexp"
	"strings"
)

var (
	reCRLF = regexp.MustCompile(`\r\n?`)
	reNUL  = regexp.MustCompile(`\x00+`)
)

// Normalize cleans one page of extracted text. Line structure and inner
// spacing are kept as extracted; only line endings, NUL bytes and trailing
// blanks change.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reNUL.ReplaceAllString(s, "")
	// trim trailing spaces on lines
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// joinPages normalizes pages, drops the empty ones and joins the rest with '\n'.
func joinPages(pages []string) (string, int) {
	var b strings.Builder
	n := 0
	for _, p := range pages {
		p = Normalize(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p)
		n++
	}
	return b.String(), n
}
