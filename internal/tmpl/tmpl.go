// Package tmpl builds escaped HTML fragments for render variants.
//
// A Result always holds markup that is safe to emit: text enters through
// Escape, Format arguments or Builder.Text and is escaped on the way in; Raw is
// the only way to insert markup verbatim.
package tmpl

import (
	"fmt"
	"html"
	"strings"
)

// Result is an escaped HTML fragment.
type Result struct {
	html string
}

// Empty is the zero Result.
var Empty = Result{}

// Escape returns text as an escaped fragment.
func Escape(text string) Result {
	return Result{html: html.EscapeString(text)}
}

// Raw returns markup unchanged. Use it only for trusted markup such as the
// output of a Markdown renderer.
func Raw(markup string) Result {
	return Result{html: markup}
}

// Join concatenates fragments.
func Join(parts ...Result) Result {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.html)
	}
	return Result{html: b.String()}
}

// Format formats args into format. The format string is trusted markup;
// Result arguments are inserted as-is, everything else is rendered with %v
// semantics and escaped. Use only %s and %v verbs.
func Format(format string, args ...any) Result {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = value(a)
	}
	return Result{html: fmt.Sprintf(format, escaped...)}
}

// String returns the escaped markup.
func (r Result) String() string {
	return r.html
}

// IsEmpty reports whether r holds no markup.
func (r Result) IsEmpty() bool {
	return r.html == ""
}

func value(a any) string {
	switch v := a.(type) {
	case nil:
		return ""
	case Result:
		return v.html
	case *Result:
		if v == nil {
			return ""
		}
		return v.html
	case string:
		return html.EscapeString(v)
	case fmt.Stringer:
		return html.EscapeString(v.String())
	default:
		return html.EscapeString(fmt.Sprint(v))
	}
}

// Builder accumulates a Result.
type Builder struct {
	b strings.Builder
}

// Raw appends markup verbatim.
func (b *Builder) Raw(markup string) *Builder {
	b.b.WriteString(markup)
	return b
}

// Text appends escaped text.
func (b *Builder) Text(text string) *Builder {
	b.b.WriteString(html.EscapeString(text))
	return b
}

// Append appends fragments.
func (b *Builder) Append(parts ...Result) *Builder {
	for _, p := range parts {
		b.b.WriteString(p.html)
	}
	return b
}

// Printf appends Format(format, args...).
func (b *Builder) Printf(format string, args ...any) *Builder {
	return b.Append(Format(format, args...))
}

// Result returns the accumulated fragment.
func (b *Builder) Result() Result {
	return Result{html: b.b.String()}
}
