// Package frontmatter splits TOML metadata blocks from content files.
//
// A content file is a TOML block, a line holding only "+++", then the body:
//
//	title = "Home"
//	tags = ["news"]
//	+++
//	# Hi
//
// An optional "+++" line before the block is accepted. A file without a
// delimiter line is all body.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Delimiter separates metadata from body.
const Delimiter = "+++"

// Split separates the metadata block from the body. Line endings are
// normalized to "\n".
func Split(text string) (meta, body string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if rest, ok := strings.CutPrefix(text, Delimiter+"\n"); ok {
		text = rest
	}

	if strings.HasPrefix(text, Delimiter+"\n") || text == Delimiter {
		return "", strings.TrimPrefix(text[len(Delimiter):], "\n")
	}

	idx := strings.Index(text, "\n"+Delimiter+"\n")
	if idx < 0 {
		if before, ok := strings.CutSuffix(text, "\n"+Delimiter); ok {
			return before, ""
		}
		return "", text
	}
	return text[:idx], text[idx+len(Delimiter)+2:]
}

// ParseError is a malformed metadata block.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("toml error at [%d:%d]: %s", e.Line, e.Column, e.Message)
}

// Parse decodes a TOML metadata block. An empty block yields an empty map.
func Parse(meta string) (map[string]any, error) {
	out := map[string]any{}
	if strings.TrimSpace(meta) == "" {
		return out, nil
	}
	if err := toml.Unmarshal([]byte(meta), &out); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, &ParseError{Line: row, Column: col, Message: de.Error()}
		}
		return nil, &ParseError{Message: err.Error()}
	}
	return out, nil
}

// DeriveTitle returns the text of the first H1 heading in body, or "".
func DeriveTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// Strings reads a string list value, dropping blanks and duplicates. A single
// string is treated as a one-element list.
func Strings(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = []string{t}
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
