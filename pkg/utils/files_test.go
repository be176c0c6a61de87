package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, dir, ext string
		want         string
	}{
		{"prog.src", "", ".tac", "prog.tac"},
		{"prog", "", ".tac", "prog.tac"},
		{filepath.Join("a", "b.src"), "", ".tac", filepath.Join("a", "b.tac")},
		{filepath.Join("a", "b.src"), "out", ".tac", filepath.Join("out", "b.tac")},
		{"x.y.src", "", ".tac", "x.y.tac"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.in, tt.dir, tt.ext), tt.in)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.src")
	require.NoError(t, os.WriteFile(path, []byte("int x;"), 0644))

	full, src, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "int x;", src)
	assert.True(t, filepath.IsAbs(full))

	_, _, err = ReadSource(filepath.Join(dir, "missing.src"))
	assert.True(t, os.IsNotExist(err))
}
