package utils

import (
	"regexp"
	"time"
)

const DefaultBufferSize = 1024 * 1024 * 8 // 8MB buffer

const (
	DefaultRegion      = "ap-east-1"
	DefaultConnections = 10
	DefaultDownloadDir = "files"
)

// Engine pacing.
const (
	RetryBackoff    = 1 * time.Second
	SpawnStagger    = 100 * time.Millisecond
	DisplayInterval = 500 * time.Millisecond
)

var PartFileRegex = regexp.MustCompile(`\.part(\d+)$`)
