package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger logs at info unless verbose is set; per-wiki progress is debug
// so a plain run stays quiet. debug also records callers and every request.
func InitLogger(verbose, debug bool) {
	GlobalDebugFlag = debug
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose || debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	SetLogOutput(os.Stderr)
	if debug {
		log.Logger = log.With().Caller().Logger()
	}
}

// TagRun stamps every following log line with the run id.
func TagRun(runID string) {
	log.Logger = log.With().Str("run", runID).Logger()
}

func SetLogOutput(w io.Writer) {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}
