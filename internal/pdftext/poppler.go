package pdftext

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxStderrWarnings caps how many distinct pdftotext diagnostics reach Result.Warnings.
const maxStderrWarnings = 5

func (e *Extractor) pdfToText(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	// pdftotext -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	start := time.Now()
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	warnings = stderrWarnings(errb)
	if err != nil {
		e.logger.Error("pdftotext.failed",
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr_lines", len(warnings),
		)
		return nil, warnings, fmt.Errorf("pdftotext: %w", err)
	}
	e.logger.Debug("pdftotext.ok",
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", len(out),
		"warnings", len(warnings),
	)
	// A form-feed \f is used as page separator by default
	return strings.Split(string(out), "\f"), warnings, nil
}

// stderrWarnings turns pdftotext diagnostics into warnings: one per distinct
// non-empty line, first seen order, capped at maxStderrWarnings plus a tally line.
func stderrWarnings(stderr []byte) []string {
	var (
		out     []string
		seen    = map[string]struct{}{}
		dropped int
	)
	for _, line := range strings.Split(string(stderr), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		if len(out) == maxStderrWarnings {
			dropped++
			continue
		}
		out = append(out, line)
	}
	if dropped > 0 {
		out = append(out, fmt.Sprintf("%d more pdftotext messages", dropped))
	}
	return out
}
