package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectScratchAbsent(t *testing.T) {
	result := InspectScratch(filepath.Join(t.TempDir(), "missing.part0"), 100)
	assert.Equal(t, ClassAbsent, result.Class)
	assert.Equal(t, int64(0), result.ResumeBytes)
	assert.True(t, result.Valid)
	assert.False(t, result.Complete)
}

func TestInspectScratchPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.part0")
	require.NoError(t, os.WriteFile(path, make([]byte, 40), 0644))

	result := InspectScratch(path, 100)
	assert.Equal(t, ClassPartial, result.Class)
	assert.Equal(t, int64(40), result.ResumeBytes)
	assert.True(t, result.Valid)
	assert.False(t, result.Complete)
}

func TestInspectScratchComplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.part0")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0644))

	result := InspectScratch(path, 100)
	assert.Equal(t, ClassComplete, result.Class)
	assert.Equal(t, int64(100), result.ResumeBytes)
	assert.True(t, result.Valid)
	assert.True(t, result.Complete)
}

func TestInspectScratchOverlongDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.part0")
	require.NoError(t, os.WriteFile(path, make([]byte, 150), 0644))

	result := InspectScratch(path, 100)
	assert.Equal(t, ClassOverlong, result.Class)
	assert.Equal(t, int64(0), result.ResumeBytes)
	assert.False(t, result.Valid)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "overlong scratch file must be deleted")
}

func TestInspectScratchZeroLengthSegment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.part0")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	result := InspectScratch(path, 0)
	assert.Equal(t, ClassComplete, result.Class)
	assert.True(t, result.Complete)
}
