package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/halver/sluice/internal/progress"
	"github.com/halver/sluice/internal/transport"
	"github.com/halver/sluice/internal/utils"
	"github.com/rs/zerolog/log"
)

// Engine orchestrates one object download: head, plan, workers, display,
// assembly. Instances are reusable sequentially.
type Engine struct {
	transport transport.Transport
}

func New(t transport.Transport) *Engine {
	return &Engine{transport: t}
}

// Download runs the full segmented download for job. On cancellation it
// returns ctx's error after preserving scratch state; every other error it
// returns is fatal.
func (e *Engine) Download(ctx context.Context, job *utils.DownloadJob) (*utils.DownloadResult, error) {
	startTime := time.Now()
	log.Info().Str("op", "engine/supervisor").Str("job", job.ID).
		Msgf("starting download of s3://%s/%s with %d connections", job.Bucket, job.Key, job.Connections)

	totalSize, err := e.transport.Head(ctx, job.Bucket, job.Key)
	if err != nil {
		return nil, fmt.Errorf("error getting object size: %v", err)
	}
	log.Info().Str("op", "engine/supervisor").Msgf("object size is %d bytes", totalSize)

	if err := os.MkdirAll(job.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating download directory: %v", err)
	}
	baseName := utils.BaseName(job.Key)
	finalPath := filepath.Join(job.DownloadDir, baseName)

	if info, err := os.Stat(finalPath); err == nil && info.Size() == totalSize {
		log.Info().Str("op", "engine/supervisor").
			Msgf("final file %s already present with matching size, nothing to do", finalPath)
		return &utils.DownloadResult{
			OutputPath: finalPath,
			Size:       totalSize,
			Elapsed:    time.Since(startTime),
		}, nil
	}

	if _, err := reconcileScratch(job.DownloadDir, baseName, job.Key, totalSize, job.Connections); err != nil {
		return nil, err
	}

	plan := BuildPlan(totalSize, job.Connections)
	tracker := progress.NewTracker(job.Connections, totalSize)
	scratchPaths := make([]string, job.Connections)
	for i, segment := range plan {
		tracker.SetExpected(i, segment.Length())
		scratchPaths[i] = utils.ScratchPath(job.DownloadDir, baseName, i)
		e.primeSegment(tracker, segment, scratchPaths[i])
	}

	display := progress.NewDisplay(tracker)
	display.Start()

	var wg sync.WaitGroup
	workerErrs := make([]error, job.Connections)
	for i, segment := range plan {
		w := &worker{
			job:       job,
			transport: e.transport,
			tracker:   tracker,
			segment:   segment,
			scratch:   scratchPaths[i],
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, workerErrs[i] = w.run(ctx)
		}(i)
		if i < len(plan)-1 {
			// Stagger spawns so N connections don't all dial at once.
			select {
			case <-ctx.Done():
			case <-time.After(utils.SpawnStagger):
			}
		}
	}
	wg.Wait()

	if ctx.Err() != nil {
		display.Stop()
		display.FinalReport()
		log.Info().Str("op", "engine/supervisor").Msg("download cancelled, scratch files preserved")
		return nil, ctx.Err()
	}
	for _, werr := range workerErrs {
		if werr != nil {
			display.Stop()
			display.FinalReport()
			return nil, werr
		}
	}

	display.Stop()
	log.Info().Str("op", "engine/supervisor").Msg("all segments complete, assembling")
	if err := Assemble(plan, scratchPaths, finalPath, totalSize); err != nil {
		display.FinalReport()
		log.Error().Str("op", "engine/supervisor").Err(err).Msg("assembly failed")
		return nil, err
	}
	removeSidecar(job.DownloadDir, baseName)

	elapsed := time.Since(startTime)
	result := &utils.DownloadResult{
		OutputPath:   finalPath,
		Size:         totalSize,
		Elapsed:      elapsed,
		TotalRetries: tracker.TotalRetries(),
		MaxRetries:   tracker.MaxRetries(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		result.AvgSpeed = float64(totalSize) / secs
	}
	log.Info().Str("op", "engine/supervisor").
		Msgf("download complete: %s in %s, %d total attempts (max %d on one segment), %s avg",
			utils.FormatBytes(uint64(totalSize)), utils.FormatDuration(elapsed),
			result.TotalRetries, result.MaxRetries, utils.FormatSpeed(result.AvgSpeed))
	return result, nil
}

// primeSegment seeds the tracker from whatever scratch state survived a
// previous run, before any worker touches the file.
func (e *Engine) primeSegment(tracker *progress.Tracker, segment Segment, scratch string) {
	state := InspectScratch(scratch, segment.Length())
	switch {
	case state.Complete:
		tracker.Prime(segment.ID, segment.Length(), progress.StatusCompletedExists)
	case state.ResumeBytes > 0:
		tracker.Prime(segment.ID, state.ResumeBytes, progress.StatusResuming)
		log.Info().Str("op", "engine/supervisor").
			Msgf("segment %d resuming from %d/%d bytes", segment.ID, state.ResumeBytes, segment.Length())
	}
}
