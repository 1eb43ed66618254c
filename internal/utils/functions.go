package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// NormalizeKey strips an optional "bucket/" prefix from an object key.
func NormalizeKey(bucket, key string) string {
	key = strings.TrimPrefix(key, "s3://")
	return strings.TrimPrefix(key, bucket+"/")
}

// ScratchPath returns the per-segment scratch file path for a download.
func ScratchPath(downloadDir, baseName string, segment int) string {
	return filepath.Join(downloadDir, fmt.Sprintf("%s.part%d", baseName, segment))
}

// BaseName returns the final path component of an object key.
func BaseName(key string) string {
	parts := strings.Split(strings.TrimSuffix(key, "/"), "/")
	name := parts[len(parts)-1]
	if name == "" {
		name = "download"
	}
	return name
}

// DefaultLogFileName stamps a fresh log file name with wall-clock time.
func DefaultLogFileName(now time.Time) string {
	return fmt.Sprintf("download_log_%s.txt", now.Format("2006-01-02T15-04-05"))
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func FormatSpeed(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	formatted := FormatBytes(uint64(bytesPerSec))
	return formatted[:len(formatted)-1] + "B/s" // Slice off "B" and add "B/s"
}

func FormatDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	} else if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}
