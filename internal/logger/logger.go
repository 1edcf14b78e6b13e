// Package logger provides the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init configures the global logger to write JSON lines to stdout.
func Init() {
	InitWithWriter(os.Stdout)
	Info("logger initialized", nil)
}

// InitWithWriter is Init with an explicit sink, used by tests.
func InitWithWriter(w io.Writer) {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}

	mu.Lock()
	base = zerolog.New(w).With().
		Str("service", "kadabite-app").
		Timestamp().
		Logger()
	mu.Unlock()
}

// L returns the underlying zerolog logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

func Info(msg string, fields map[string]any) {
	L().Info().Fields(fields).Msg(msg)
}

func Warn(msg string, fields map[string]any) {
	L().Warn().Fields(fields).Msg(msg)
}

func Error(msg string, fields map[string]any) {
	L().Error().Fields(fields).Msg(msg)
}

// Fatal logs and exits the process.
func Fatal(msg string, fields map[string]any) {
	L().WithLevel(zerolog.FatalLevel).Fields(fields).Msg(msg)
	os.Exit(1)
}
