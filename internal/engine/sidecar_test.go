package engine

import (
	"os"
	"testing"

	"github.com/halver/sluice/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileScratchKeepsMatchingObject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeSidecar(sidecarPath(dir, "obj.bin"), "path/obj.bin", 1000))
	scratch := utils.ScratchPath(dir, "obj.bin", 0)
	require.NoError(t, os.WriteFile(scratch, make([]byte, 100), 0644))

	purged, err := reconcileScratch(dir, "obj.bin", "path/obj.bin", 1000, 4)
	require.NoError(t, err)
	assert.False(t, purged)

	info, err := os.Stat(scratch)
	require.NoError(t, err)
	assert.Equal(t, int64(100), info.Size())
}

func TestReconcileScratchPurgesSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeSidecar(sidecarPath(dir, "obj.bin"), "path/obj.bin", 1000))
	scratch := utils.ScratchPath(dir, "obj.bin", 1)
	require.NoError(t, os.WriteFile(scratch, make([]byte, 100), 0644))

	purged, err := reconcileScratch(dir, "obj.bin", "path/obj.bin", 2000, 4)
	require.NoError(t, err)
	assert.True(t, purged)

	_, serr := os.Stat(scratch)
	assert.True(t, os.IsNotExist(serr))
}

func TestReconcileScratchPurgesKeyMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeSidecar(sidecarPath(dir, "obj.bin"), "other/obj.bin", 1000))
	scratch := utils.ScratchPath(dir, "obj.bin", 2)
	require.NoError(t, os.WriteFile(scratch, make([]byte, 100), 0644))

	purged, err := reconcileScratch(dir, "obj.bin", "path/obj.bin", 1000, 4)
	require.NoError(t, err)
	assert.True(t, purged)
}

func TestReconcileScratchPurgesOrphanScratch(t *testing.T) {
	dir := t.TempDir()
	scratch := utils.ScratchPath(dir, "obj.bin", 0)
	require.NoError(t, os.WriteFile(scratch, make([]byte, 100), 0644))

	purged, err := reconcileScratch(dir, "obj.bin", "path/obj.bin", 1000, 4)
	require.NoError(t, err)
	assert.True(t, purged, "scratch without a sidecar must not be trusted")

	_, serr := os.Stat(scratch)
	assert.True(t, os.IsNotExist(serr))
}

func TestReconcileScratchWritesSidecar(t *testing.T) {
	dir := t.TempDir()
	_, err := reconcileScratch(dir, "obj.bin", "path/obj.bin", 1000, 4)
	require.NoError(t, err)

	_, serr := os.Stat(sidecarPath(dir, "obj.bin"))
	assert.NoError(t, serr)
}
