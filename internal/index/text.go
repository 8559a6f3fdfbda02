package index

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extract returns the <title> text and the visible body text of an HTML
// document or fragment. Whitespace runs collapse to single spaces.
func Extract(markup string) (title, text string) {
	z := html.NewTokenizer(strings.NewReader(markup))
	var (
		body    strings.Builder
		head    strings.Builder
		skip    int
		inTitle bool
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; keep what was read.
			return collapse(head.String()), collapse(body.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Title:
				inTitle = true
			case atom.Script, atom.Style, atom.Head:
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Title:
				inTitle = false
			case atom.Script, atom.Style, atom.Head:
				if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			switch {
			case inTitle:
				head.Write(z.Text())
			case skip == 0:
				body.Write(z.Text())
				body.WriteByte(' ')
			}
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
