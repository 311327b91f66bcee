package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/nfse-extractor/internal/common"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(inputs []Input) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		out[i] = in.Name
	}
	return out
}

func TestListDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"), "b")
	touch(t, filepath.Join(root, "A.PDF"), "a")
	touch(t, filepath.Join(root, "c.Pdf"), "c")
	touch(t, filepath.Join(root, "notes.txt"), "x")
	touch(t, filepath.Join(root, ".hidden.pdf"), "h")
	touch(t, filepath.Join(root, "sub", "d.pdf"), "d")
	touch(t, filepath.Join(root, "copy.pdf"), "b")

	t.Run("top level only, case-insensitive extension, lexical order", func(t *testing.T) {
		inputs, stats, err := ListDirectory(root, Options{SkipHidden: true}, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"A.PDF", "b.pdf", "c.Pdf", "copy.pdf"}, names(inputs))
		assert.Equal(t, uint32(4), stats.Matched)
		assert.Equal(t, uint32(6), stats.Scanned)
	})

	t.Run("hidden files included when not skipped", func(t *testing.T) {
		inputs, _, err := ListDirectory(root, Options{}, nil)

		require.NoError(t, err)
		assert.Contains(t, names(inputs), ".hidden.pdf")
	})

	t.Run("recursive", func(t *testing.T) {
		inputs, _, err := ListDirectory(root, Options{Recursive: true, SkipHidden: true}, nil)

		require.NoError(t, err)
		assert.Contains(t, names(inputs), "d.pdf")
		assert.Len(t, inputs, 5)
	})

	t.Run("dedupe by content", func(t *testing.T) {
		inputs, stats, err := ListDirectory(root, Options{SkipHidden: true, Dedupe: true}, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"A.PDF", "b.pdf", "c.Pdf"}, names(inputs))
		assert.Equal(t, uint32(1), stats.Deduplicated)
		assert.Len(t, inputs[1].HashHex, 64)
	})
}

func TestListDirectory_Errors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "x.pdf")
	touch(t, file, "x")

	tests := []struct {
		name string
		root string
	}{
		{"empty root", "  "},
		{"missing root", filepath.Join(root, "missing")},
		{"root is a file", file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ListDirectory(tt.root, Options{}, nil)
			assert.ErrorIs(t, err, common.ErrInputDir)
		})
	}
}

func TestListDirectory_Empty(t *testing.T) {
	inputs, stats, err := ListDirectory(t.TempDir(), Options{}, nil)

	require.NoError(t, err)
	assert.Empty(t, inputs)
	assert.Zero(t, stats.Matched)
}
