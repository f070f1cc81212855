package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInput(t *testing.T) {
	got, err := readInput([]string{"17736:3057;4::", "ignored-file"}, "")
	require.NoError(t, err)
	assert.Equal(t, "17736:3057;4:: ignored-file", got)

	path := filepath.Join(t.TempDir(), "fit.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n[Nightmare, HQ]\nMega Pulse Laser II\n\n"), 0o644))
	got, err = readInput(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "[Nightmare, HQ]\nMega Pulse Laser II", got)

	_, err = readInput(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
