// Package logging provides the console slog handler and shared attribute
// helpers.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ConsoleHandler writes one line per record, prefixed by a level glyph:
//
//	-- debug
//	== info
//	 ! warn
//	!! error
//
// Attributes follow the message as key=value pairs.
type ConsoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	styles styles
}

type styles struct {
	debug, info, warn, error lipgloss.Style
	dim, plain               lipgloss.Style
}

// NewConsoleHandler creates a ConsoleHandler writing to w. Colors are
// dropped when w is not a terminal.
func NewConsoleHandler(w io.Writer, level slog.Leveler) *ConsoleHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	r := lipgloss.NewRenderer(w)
	return &ConsoleHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		styles: styles{
			debug: r.NewStyle().Foreground(lipgloss.Color("8")),
			info:  r.NewStyle().Foreground(lipgloss.Color("2")),
			warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
			error: r.NewStyle().Foreground(lipgloss.Color("1")),
			dim:   r.NewStyle().Faint(true),
			plain: r.NewStyle(),
		},
	}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	glyph, msgStyle := h.decorate(r.Level)

	var buf bytes.Buffer
	buf.WriteString(glyph)
	buf.WriteByte(' ')
	buf.WriteString(msgStyle.Render(r.Message))

	var pairs []string
	for _, a := range h.attrs {
		pairs = appendAttr(pairs, "", a)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		pairs = appendAttr(pairs, prefix, a)
		return true
	})
	if len(pairs) > 0 {
		buf.WriteByte(' ')
		buf.WriteString(h.styles.dim.Render(strings.Join(pairs, " ")))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *ConsoleHandler) decorate(level slog.Level) (string, lipgloss.Style) {
	switch {
	case level >= slog.LevelError:
		return h.styles.error.Render("!!"), h.styles.error
	case level >= slog.LevelWarn:
		return h.styles.warn.Render(" !"), h.styles.warn
	case level >= slog.LevelInfo:
		return h.styles.info.Render("=="), h.styles.plain
	default:
		return h.styles.debug.Render("--"), h.styles.dim
	}
}

func appendAttr(pairs []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return pairs
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key == "" {
			key = prefix
		}
		for _, ga := range a.Value.Group() {
			pairs = appendAttr(pairs, key, ga)
		}
		return pairs
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\n\"=") {
		val = fmt.Sprintf("%q", val)
	}
	return append(pairs, key+"="+val)
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	prefix := strings.Join(h.groups, ".")
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}
