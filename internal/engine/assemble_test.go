package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/halver/sluice/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScratchFiles(t *testing.T, dir string, data []byte, plan []Segment) []string {
	t.Helper()
	paths := make([]string, len(plan))
	for i, segment := range plan {
		paths[i] = utils.ScratchPath(dir, "obj.bin", i)
		require.NoError(t, os.WriteFile(paths[i], data[segment.Start:segment.End+1], 0644))
	}
	return paths
}

func TestAssembleConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()
	data := testObject(t, 1_000_000)
	plan := BuildPlan(int64(len(data)), 4)
	paths := writeScratchFiles(t, dir, data, plan)
	finalPath := filepath.Join(dir, "obj.bin")

	require.NoError(t, Assemble(plan, paths, finalPath, int64(len(data))))

	got, err := os.ReadFile(finalPath)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
	for _, path := range paths {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "scratch files must be deleted after assembly")
	}
}

func TestAssembleRejectsTruncatedScratch(t *testing.T) {
	dir := t.TempDir()
	data := testObject(t, 1_000_000)
	plan := BuildPlan(int64(len(data)), 4)
	paths := writeScratchFiles(t, dir, data, plan)
	finalPath := filepath.Join(dir, "obj.bin")

	// Corrupt one scratch file to L-1 just before assembly.
	require.NoError(t, os.Truncate(paths[2], plan[2].Length()-1))

	err := Assemble(plan, paths, finalPath, int64(len(data)))
	require.ErrorIs(t, err, ErrSegmentVerify)

	_, serr := os.Stat(finalPath)
	assert.True(t, os.IsNotExist(serr), "final file must not be produced on verification failure")
	for i, path := range paths {
		if i == 2 {
			continue
		}
		_, err := os.Stat(path)
		assert.NoError(t, err, "scratch files must survive a failed assembly")
	}
}

func TestAssembleRejectsMissingScratch(t *testing.T) {
	dir := t.TempDir()
	data := testObject(t, 100_000)
	plan := BuildPlan(int64(len(data)), 2)
	paths := writeScratchFiles(t, dir, data, plan)
	require.NoError(t, os.Remove(paths[1]))

	err := Assemble(plan, paths, filepath.Join(dir, "obj.bin"), int64(len(data)))
	assert.ErrorIs(t, err, ErrSegmentVerify)
}

func TestAssembleZeroSizeObject(t *testing.T) {
	dir := t.TempDir()
	plan := BuildPlan(0, 3)
	paths := make([]string, len(plan))
	for i := range plan {
		paths[i] = utils.ScratchPath(dir, "obj.bin", i)
		require.NoError(t, os.WriteFile(paths[i], nil, 0644))
	}
	finalPath := filepath.Join(dir, "obj.bin")

	require.NoError(t, Assemble(plan, paths, finalPath, 0))

	info, err := os.Stat(finalPath)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}
