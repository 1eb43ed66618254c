package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger points the global logger at the download log file. Lines come out
// as "[<RFC3339>] [<LEVEL>] <message>" so the log survives as a plain text
// record of the run.
func InitLogger(w io.Writer, debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
		FormatTimestamp: func(i any) string {
			return fmt.Sprintf("[%s]", i)
		},
		FormatLevel: func(i any) string {
			return fmt.Sprintf("[%s]", strings.ToUpper(fmt.Sprintf("%s", i)))
		},
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// OpenLogFile creates the log sink inside the download directory.
func OpenLogFile(downloadDir, name string) (*os.File, error) {
	if name == "" {
		name = DefaultLogFileName(time.Now())
	}
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating download directory: %v", err)
	}
	f, err := os.OpenFile(filepath.Join(downloadDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %v", err)
	}
	return f, nil
}
