package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "path/to/file.bin", NormalizeKey("mybucket", "mybucket/path/to/file.bin"))
	assert.Equal(t, "path/to/file.bin", NormalizeKey("mybucket", "path/to/file.bin"))
	assert.Equal(t, "path/to/file.bin", NormalizeKey("mybucket", "s3://mybucket/path/to/file.bin"))
	assert.Equal(t, "mybucket2/file.bin", NormalizeKey("mybucket", "mybucket2/file.bin"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "file.bin", BaseName("path/to/file.bin"))
	assert.Equal(t, "file.bin", BaseName("file.bin"))
	assert.Equal(t, "dir", BaseName("path/dir/"))
	assert.Equal(t, "download", BaseName(""))
}

func TestScratchPath(t *testing.T) {
	assert.Equal(t, "files/obj.bin.part3", ScratchPath("files", "obj.bin", 3))
}

func TestPartFileRegex(t *testing.T) {
	assert.True(t, PartFileRegex.MatchString("obj.bin.part0"))
	assert.True(t, PartFileRegex.MatchString("obj.bin.part12"))
	assert.False(t, PartFileRegex.MatchString("obj.bin.part"))
	assert.False(t, PartFileRegex.MatchString("obj.bin"))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.00 KB", FormatBytes(1024))
	assert.Equal(t, "1.50 MB", FormatBytes(1024*1024*3/2))
	assert.Equal(t, "2.00 GB", FormatBytes(2*1024*1024*1024))
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "0 B/s", FormatSpeed(0))
	assert.Equal(t, "1.00 MB/s", FormatSpeed(1024*1024))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "2m 5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h 1m", FormatDuration(3660*time.Second))
}

func TestDefaultLogFileName(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	assert.Equal(t, "download_log_2025-06-01T12-30-45.txt", DefaultLogFileName(now))
}
