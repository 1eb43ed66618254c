package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// Fatal, non-retryable verification failures. Everything upstream of assembly
// retries; once assembly starts, a mismatch means the run is lost.
var (
	ErrSegmentVerify  = errors.New("segment verification failed")
	ErrAssemblyVerify = errors.New("assembled file verification failed")
)

// Assemble concatenates verified scratch files in segment order into the
// final file, verifies the result against the object size, and removes the
// scratch files.
func Assemble(plan []Segment, scratchPaths []string, finalPath string, totalSize int64) error {
	for i, segment := range plan {
		info, err := os.Stat(scratchPaths[i])
		if err != nil {
			return fmt.Errorf("%w: error reading segment %d scratch file: %v", ErrSegmentVerify, i, err)
		}
		if info.Size() != segment.Length() {
			return fmt.Errorf("%w: segment %d is %d bytes, expected %d", ErrSegmentVerify, i, info.Size(), segment.Length())
		}
	}

	finalFile, err := os.OpenFile(finalPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error creating final file: %v", err)
	}
	defer finalFile.Close()

	var totalWritten int64
	for i := range plan {
		written, err := appendScratch(scratchPaths[i], finalFile)
		if err != nil {
			return fmt.Errorf("error copying segment %d: %v", i, err)
		}
		totalWritten += written
	}
	if err := finalFile.Sync(); err != nil {
		return fmt.Errorf("error syncing final file: %v", err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return fmt.Errorf("%w: error reading final file: %v", ErrAssemblyVerify, err)
	}
	if info.Size() != totalSize {
		return fmt.Errorf("%w: final file is %d bytes, expected %d", ErrAssemblyVerify, info.Size(), totalSize)
	}
	if totalWritten != totalSize {
		return fmt.Errorf("%w: wrote %d bytes, expected %d", ErrAssemblyVerify, totalWritten, totalSize)
	}

	for i, path := range scratchPaths {
		if err := os.Remove(path); err != nil {
			log.Warn().Str("op", "engine/assemble").Err(err).
				Msgf("error deleting scratch file for segment %d", i)
		}
	}
	return nil
}

// appendScratch streams one scratch file into the final file.
func appendScratch(srcPath string, dst io.Writer) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return io.Copy(dst, src)
}
