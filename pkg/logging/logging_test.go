package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupLevels(t *testing.T) {
	var b bytes.Buffer
	logger := SetupWithWriter("development", &b)
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level in development but found %s", logger.GetLevel())
	}
	logger.Debug().Str("scenario", "one-stop-sm").Msg("simulated")
	if !strings.Contains(b.String(), "simulated") {
		t.Errorf("expected debug line in output: %q", b.String())
	}

	logger = SetupWithWriter("production", &b)
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level in production but found %s", logger.GetLevel())
	}
}
