package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestTagRun(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	TagRun("run-42")
	log.Info().Str("op", "utils/logger").Msg("hello")
	log.Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, "run-42") || !strings.Contains(out, "hello") {
		t.Errorf("unexpected log output %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged at info level: %q", out)
	}
}

func TestInitLoggerLevels(t *testing.T) {
	previous := log.Logger
	defer func() {
		log.Logger = previous
		GlobalDebugFlag = false
	}()
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	tests := []struct {
		verbose, debug bool
		level          zerolog.Level
	}{
		{false, false, zerolog.InfoLevel},
		{true, false, zerolog.DebugLevel},
		{false, true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		InitLogger(tt.verbose, tt.debug)
		if got := zerolog.GlobalLevel(); got != tt.level {
			t.Errorf("InitLogger(%v, %v) level = %s, want %s", tt.verbose, tt.debug, got, tt.level)
		}
		if GlobalDebugFlag != tt.debug {
			t.Errorf("InitLogger(%v, %v) debug flag = %v", tt.verbose, tt.debug, GlobalDebugFlag)
		}
	}
}
