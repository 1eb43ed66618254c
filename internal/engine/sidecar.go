package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// sidecar records which object a set of scratch files belongs to. Scratch
// bytes are only trusted as resume state when the recorded key and size match
// the current head response.
type sidecar struct {
	Key  string `yaml:"key"`
	Size int64  `yaml:"size"`
}

func sidecarPath(downloadDir, baseName string) string {
	return filepath.Join(downloadDir, baseName+".sluice.yml")
}

// reconcileScratch purges scratch files that belong to a different object (or
// to no recorded object at all), then records the current one. Returns true
// when existing scratch files were invalidated.
func reconcileScratch(downloadDir, baseName, key string, size int64, segments int) (bool, error) {
	path := sidecarPath(downloadDir, baseName)
	raw, err := os.ReadFile(path)
	if err == nil {
		var sc sidecar
		if uerr := yaml.Unmarshal(raw, &sc); uerr == nil && sc.Key == key && sc.Size == size {
			return false, writeSidecar(path, key, size)
		}
		log.Info().Str("op", "engine/sidecar").
			Msgf("scratch files for %s belong to a different object, discarding", baseName)
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("error reading sidecar: %v", err)
	}

	purged := false
	for i := range segments {
		scratch := filepath.Join(downloadDir, fmt.Sprintf("%s.part%d", baseName, i))
		if _, serr := os.Stat(scratch); serr == nil {
			if rerr := os.Remove(scratch); rerr != nil {
				return purged, fmt.Errorf("error removing stale scratch file %s: %v", scratch, rerr)
			}
			purged = true
		}
	}
	if purged && os.IsNotExist(err) {
		log.Info().Str("op", "engine/sidecar").
			Msgf("scratch files for %s have no sidecar, discarded", baseName)
	}
	return purged, writeSidecar(path, key, size)
}

func writeSidecar(path, key string, size int64) error {
	raw, err := yaml.Marshal(sidecar{Key: key, Size: size})
	if err != nil {
		return fmt.Errorf("error encoding sidecar: %v", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("error writing sidecar: %v", err)
	}
	return nil
}

// removeSidecar cleans up after a successful assembly.
func removeSidecar(downloadDir, baseName string) {
	if err := os.Remove(sidecarPath(downloadDir, baseName)); err != nil && !os.IsNotExist(err) {
		log.Warn().Str("op", "engine/sidecar").Err(err).Msg("error removing sidecar")
	}
}
