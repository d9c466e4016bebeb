package logger

import (
	"io"
	"log/slog"
)

// Format selects the handler behind a logger.
type Format int

const (
	// FormatText is slog's logfmt-style text handler.
	FormatText Format = iota

	// FormatPretty is the charmbracelet/log terminal handler.
	FormatPretty

	// FormatJSON writes one JSON object per record, as in --log-file.
	FormatJSON
)

// Option configures a logger created with New.
type Option func(*config)

// WithDebug lowers the level to Debug, where evictions, rejected stores and
// sampled batches are recorded.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithFormat picks the handler.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithWriter sends records to w instead of os.Stdout.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters sends every record to each of ws. Nil writers are skipped.
func WithWriters(ws ...io.Writer) Option {
	return func(c *config) {
		c.writers = nil
		for _, w := range ws {
			if w != nil {
				c.writers = append(c.writers, w)
			}
		}
	}
}

// WithSource annotates records with the file:line of the log call.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
