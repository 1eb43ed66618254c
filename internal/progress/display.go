package progress

import (
	"fmt"
	"time"

	"github.com/halver/sluice/internal/output"
	"github.com/halver/sluice/internal/utils"
	"github.com/rs/zerolog/log"
)

// Display rewrites a single terminal line with aggregate progress on a fixed
// cadence.
type Display struct {
	tracker  *Tracker
	interval time.Duration
	doneCh   chan struct{}
	stopped  chan struct{}
}

func NewDisplay(tracker *Tracker) *Display {
	return &Display{
		tracker:  tracker,
		interval: utils.DisplayInterval,
		doneCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (d *Display) Start() {
	go func() {
		defer close(d.stopped)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.render()
			case <-d.doneCh:
				d.render()
				fmt.Println()
				return
			}
		}
	}()
}

func (d *Display) Stop() {
	select {
	case <-d.doneCh:
	default:
		close(d.doneCh)
	}
	<-d.stopped
}

func (d *Display) render() {
	snap := d.tracker.Snapshot()
	eta := "unknown"
	if snap.ETAMethod != "unknown" {
		eta = fmt.Sprintf("%s (%s)", utils.FormatDuration(snap.ETA), snap.ETAMethod)
	}
	line := fmt.Sprintf("%s %s/%s %s avg %s active(%d/%d) %s inst ETA %s %s C:%d D:%d P:%d R:%d retries %d (max %d)",
		output.ProgressBar(snap.TotalDownloaded, snap.TotalSize, 20),
		utils.FormatBytes(uint64(snap.TotalDownloaded)),
		utils.FormatBytes(uint64(snap.TotalSize)),
		utils.FormatSpeed(snap.OverallAvgSpeed),
		utils.FormatSpeed(snap.ActiveSpeed),
		snap.ActiveCount,
		d.tracker.Segments(),
		utils.FormatSpeed(snap.InstantSpeed),
		eta,
		output.StyleSymbols["dot"],
		snap.Completed,
		snap.Downloading,
		snap.Pending,
		snap.Retrying,
		snap.TotalRetries,
		snap.MaxRetries,
	)
	if width := output.TerminalWidth(); len(line) > width {
		line = line[:width]
	}
	fmt.Printf("\r\033[K%s", line)
}

// FinalReport writes every segment's closing state to the log, then the
// aggregate line. Used on cancellation and on fatal errors.
func (d *Display) FinalReport() {
	states := d.tracker.SegmentStates()
	for i, st := range states {
		pct := 100.0
		if st.Expected > 0 {
			pct = float64(st.Downloaded) / float64(st.Expected) * 100
		}
		log.Info().Str("op", "progress/display").
			Msgf("segment %d: %s, %d/%d bytes (%.1f%%), %d attempts",
				i, d.tracker.StatusText(i), st.Downloaded, st.Expected, pct, st.Retries)
	}
	snap := d.tracker.Snapshot()
	log.Info().Str("op", "progress/display").
		Msgf("overall: %s/%s downloaded, %d retries, elapsed %s",
			utils.FormatBytes(uint64(snap.TotalDownloaded)),
			utils.FormatBytes(uint64(snap.TotalSize)),
			snap.TotalRetries,
			utils.FormatDuration(snap.Elapsed))
}
