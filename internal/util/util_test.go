package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(dir, "missing")))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "9606_0_001c7b", SafeName("9606_0:001c7b"))
	assert.Equal(t, "Homo_sapiens", SafeName("Homo sapiens"))
	assert.Equal(t, "a.b-c", SafeName("a.b-c"))
	assert.Equal(t, "x_y", SafeName("x/y"))
}
