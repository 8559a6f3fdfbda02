package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Page is the source path of the page a record concerns.
func Page(path string) slog.Attr { return slog.String("page", path) }

// Stage is a transform stage name.
func Stage(name string) slog.Attr { return slog.String("stage", name) }

// Handler is a content handler name.
func Handler(name string) slog.Attr { return slog.String("handler", name) }

// Err is an error value. A nil error yields an empty attribute, which
// handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// Formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to w in the given format.
func New(w io.Writer, format string, level slog.Leveler) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatConsole:
		return slog.New(NewConsoleHandler(w, level)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
