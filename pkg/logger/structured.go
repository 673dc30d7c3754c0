package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var root zerolog.Logger

// InitStructured configures the process logger. Dev-like environments get a
// human-readable console writer; everything else emits JSON to stdout.
func InitStructured(env string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stdout
	switch env {
	case "development", "dev", "local":
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	root = zerolog.New(w).With().
		Timestamp().
		Str("service", "pagemill-backend").
		Logger()
}

// GetLogger returns the process logger
func GetLogger() *zerolog.Logger {
	return &root
}
