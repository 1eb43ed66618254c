package engine

import (
	"os"

	"github.com/rs/zerolog/log"
)

// Classification is the resume inspector's verdict on a scratch file.
type Classification int

const (
	ClassAbsent Classification = iota
	ClassPartial
	ClassComplete
	ClassOverlong
	ClassError
)

// InspectResult reports how much of a segment already sits on disk.
type InspectResult struct {
	Class       Classification
	ResumeBytes int64
	Valid       bool
	Complete    bool
}

// InspectScratch classifies a scratch file against its expected length. An
// overlong file is deleted as a side effect so the segment restarts from
// zero; every other case leaves the file untouched.
func InspectScratch(path string, expected int64) InspectResult {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return InspectResult{Class: ClassAbsent, Valid: true}
	}
	if err != nil {
		log.Error().Str("op", "engine/inspect").Err(err).Msgf("error inspecting scratch file %s", path)
		return InspectResult{Class: ClassError}
	}
	size := info.Size()
	switch {
	case size == expected:
		return InspectResult{Class: ClassComplete, ResumeBytes: expected, Valid: true, Complete: true}
	case size > expected:
		log.Error().Str("op", "engine/inspect").
			Msgf("scratch file %s is %d bytes but segment expects %d, deleting", path, size, expected)
		if err := os.Remove(path); err != nil {
			log.Error().Str("op", "engine/inspect").Err(err).Msgf("error deleting overlong scratch file %s", path)
		}
		return InspectResult{Class: ClassOverlong}
	default:
		return InspectResult{Class: ClassPartial, ResumeBytes: size, Valid: true}
	}
}
