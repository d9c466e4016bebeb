package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ForCLI builds the logger razor commands use: pretty records on w and, when
// logFile is set, JSON records appended to that file. With debug both sinks
// log at Debug and the file records also carry their source location. The
// returned func closes the file.
func ForCLI(w io.Writer, debug bool, logFile string) (*slog.Logger, func() error, error) {
	term := New(WithWriter(w), WithDebug(debug), WithFormat(FormatPretty))
	if logFile == "" {
		return term, func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := New(WithWriter(f), WithDebug(debug), WithFormat(FormatJSON), WithSource(debug))
	return Multi(term, file), f.Close, nil
}
