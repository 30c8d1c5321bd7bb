package pyjamaz

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns a human-readable console logger writing to stderr at
// info level, suitable for CLI use. Library callers that want structured
// output should build their own zerolog.Logger and set it on Options.
func NewLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}

// silentLogger is the default when Options.Logger is unset — the library
// stays quiet unless a caller opts in.
func silentLogger() zerolog.Logger {
	return zerolog.Nop()
}
