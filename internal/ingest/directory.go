package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/nfse-extractor/internal/common"
)

// ListDirectory walks root in lexical order and returns the PDF inputs it finds.
// Failing to read root itself is fatal and wrapped in common.ErrInputDir;
// unreadable entries below it are logged and skipped.
func ListDirectory(root string, opts Options, logger *slog.Logger) ([]Input, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError("INPUT_ERROR", "root path is required", common.ErrInputDir)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, DirStats{}, common.NewAppError("INPUT_ERROR", root, fmt.Errorf("%w: %v", common.ErrInputDir, err))
	}
	if !info.IsDir() {
		return nil, DirStats{}, common.NewAppError("INPUT_ERROR", root+" is not a directory", common.ErrInputDir)
	}

	var (
		inputs []Input
		stats  DirStats
		seen   = map[string]string{}
	)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("ingest.walk.failed", "path", path, "error", walkErr)
			return nil // continue walking
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if !opts.Recursive || (opts.SkipHidden && IsHidden(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if opts.SkipHidden && IsHidden(path) {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		in := Input{Path: path, Name: d.Name()}
		if opts.Dedupe {
			sum, herr := hashFile(path)
			if herr != nil {
				// keep it; the processor reports the read failure for this file
				logger.Warn("ingest.hash.failed", "path", path, "error", herr)
			} else {
				if first, dup := seen[sum]; dup {
					logger.Info("ingest.duplicate.skipped", "path", path, "duplicate_of", first)
					stats.Deduplicated++
					return nil
				}
				seen[sum] = path
				in.HashHex = sum
			}
		}
		inputs = append(inputs, in)
		return nil
	})
	if err != nil {
		return inputs, stats, common.NewAppError("INPUT_ERROR", "walk "+root, fmt.Errorf("%w: %v", common.ErrInputDir, err))
	}
	return inputs, stats, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
