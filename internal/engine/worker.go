package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/halver/sluice/internal/progress"
	"github.com/halver/sluice/internal/transport"
	"github.com/halver/sluice/internal/utils"
	"github.com/rs/zerolog/log"
)

// worker drives one segment's lifecycle: inspect scratch state, fetch the
// remaining byte range, stream it to disk, verify, and retry forever on any
// failure. It exits only on success or context cancellation.
type worker struct {
	job       *utils.DownloadJob
	transport transport.Transport
	tracker   *progress.Tracker
	segment   Segment
	scratch   string
}

// run is the unbounded retry loop. The returned path is the verified scratch
// file; the only error it ever returns is the context's.
func (w *worker) run(ctx context.Context) (string, error) {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		attempt++
		start := time.Now()

		state := InspectScratch(w.scratch, w.segment.Length())
		if state.Complete {
			w.tracker.StartAttempt(w.segment.ID, attempt, 100)
			w.tracker.MarkCompleted(w.segment.ID, progress.StatusCompletedExists)
			w.tracker.UpdateProgress(w.segment.ID, w.segment.Length(), 0)
			log.Info().Str("op", "engine/worker").
				Msgf("segment %d already complete on disk (%d bytes)", w.segment.ID, w.segment.Length())
			return w.scratch, nil
		}
		resume := state.ResumeBytes
		remaining := w.segment.Length() - resume
		if remaining <= 0 {
			// Covers zero-length segments, which never touch the network.
			if err := w.ensureScratch(); err != nil {
				log.Error().Str("op", "engine/worker").Err(err).Msgf("segment %d scratch create failed", w.segment.ID)
				w.sleepBeforeRetry(ctx, attempt, 0, err)
				continue
			}
			w.tracker.StartAttempt(w.segment.ID, attempt, 100)
			w.tracker.MarkCompleted(w.segment.ID, progress.StatusCompletedResumed)
			w.tracker.UpdateProgress(w.segment.ID, w.segment.Length(), 0)
			log.Info().Str("op", "engine/worker").Msgf("segment %d fully covered by resume data", w.segment.ID)
			return w.scratch, nil
		}

		resumePct := float64(resume) / float64(w.segment.Length()) * 100
		w.tracker.StartAttempt(w.segment.ID, attempt, resumePct)
		log.Info().Str("op", "engine/worker").
			Msgf("segment %d attempt %d: fetching bytes=%d-%d (%d of %d already on disk)",
				w.segment.ID, attempt, w.segment.Start+resume, w.segment.End, resume, w.segment.Length())

		err := w.attempt(ctx, resume)
		if err == nil {
			w.tracker.MarkCompleted(w.segment.ID, progress.StatusCompleted)
			w.tracker.UpdateProgress(w.segment.ID, w.segment.Length(), 0)
			log.Info().Str("op", "engine/worker").
				Msgf("segment %d completed in %s (attempt %d)", w.segment.ID, time.Since(start), attempt)
			return w.scratch, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Error().Str("op", "engine/worker").Err(err).
			Msgf("segment %d attempt %d failed", w.segment.ID, attempt)
		savedPct := w.savedPct()
		w.sleepBeforeRetry(ctx, attempt, savedPct, err)
	}
}

// attempt streams bytes [start+resume, end] into the scratch file and
// verifies the on-disk length afterward. Scratch bytes written before a
// failure stay on disk as the next attempt's resume baseline.
func (w *worker) attempt(ctx context.Context, resume int64) error {
	start := w.segment.Start + resume
	remaining := w.segment.End - start + 1
	reported, body, err := w.transport.GetRange(ctx, w.job.Bucket, w.job.Key, start, w.segment.End)
	if err != nil {
		return fmt.Errorf("error fetching range: %v", err)
	}
	defer body.Close()
	if reported >= 0 && reported != remaining {
		return fmt.Errorf("short response: expected %d remaining bytes, server reported %d", remaining, reported)
	}

	flag := os.O_WRONLY | os.O_CREATE
	if resume > 0 {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	scratchFile, err := os.OpenFile(w.scratch, flag, 0644)
	if err != nil {
		return fmt.Errorf("error opening scratch file: %v", err)
	}
	defer scratchFile.Close()

	buffer := make([]byte, utils.DefaultBufferSize)
	var sessionBytes int64
	lastReport := time.Now()
	var lastBytes int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := scratchFile.Write(buffer[:bytesRead]); writeErr != nil {
				return fmt.Errorf("error writing scratch file: %v", writeErr)
			}
			sessionBytes += int64(bytesRead)
			if since := time.Since(lastReport); since >= time.Second {
				speed := float64(sessionBytes-lastBytes) / since.Seconds()
				w.tracker.UpdateProgress(w.segment.ID, resume+sessionBytes, speed)
				log.Debug().Str("op", "engine/worker").
					Msgf("segment %d: %d/%d bytes, %s", w.segment.ID, resume+sessionBytes, w.segment.Length(), utils.FormatSpeed(speed))
				lastReport = time.Now()
				lastBytes = sessionBytes
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return fmt.Errorf("error reading stream: %v", readErr)
		}
	}
	scratchFile.Sync()

	info, err := os.Stat(w.scratch)
	if err != nil {
		return fmt.Errorf("error verifying scratch file: %v", err)
	}
	if info.Size() != w.segment.Length() {
		return fmt.Errorf("length mismatch: scratch file is %d bytes, segment expects %d", info.Size(), w.segment.Length())
	}
	w.tracker.UpdateProgress(w.segment.ID, w.segment.Length(), 0)
	return nil
}

// ensureScratch creates an empty scratch file for a zero-length segment so
// assembly can stat every part uniformly.
func (w *worker) ensureScratch() error {
	if _, err := os.Stat(w.scratch); err == nil {
		return nil
	}
	f, err := os.OpenFile(w.scratch, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

func (w *worker) savedPct() float64 {
	if w.segment.Length() == 0 {
		return 100
	}
	if info, err := os.Stat(w.scratch); err == nil {
		return float64(info.Size()) / float64(w.segment.Length()) * 100
	}
	return 0
}

// sleepBeforeRetry applies the fixed 1-second backoff, or returns early on
// cancellation.
func (w *worker) sleepBeforeRetry(ctx context.Context, attempt int, savedPct float64, cause error) {
	w.tracker.MarkRetrying(w.segment.ID, attempt, savedPct, cause)
	select {
	case <-ctx.Done():
	case <-time.After(utils.RetryBackoff):
	}
}
