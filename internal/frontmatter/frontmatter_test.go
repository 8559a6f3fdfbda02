package frontmatter

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantMeta string
		wantBody string
	}{
		{"meta and body", "title = \"Home\"\n+++\n# Hi\n", "title = \"Home\"", "# Hi\n"},
		{"leading delimiter", "+++\ntitle = \"Home\"\n+++\n# Hi", "title = \"Home\"", "# Hi"},
		{"no delimiter", "# Just a heading\n", "", "# Just a heading\n"},
		{"empty meta", "+++\nbody", "", "body"},
		{"crlf", "a = 1\r\n+++\r\nbody\r\n", "a = 1", "body\n"},
		{"trailing delimiter", "a = 1\n+++", "a = 1", ""},
		{"only first delimiter splits", "a = 1\n+++\nx\n+++\ny", "a = 1", "x\n+++\ny"},
		{"delimiter needs its own line", "a = 1\n+++ x\nbody", "", "a = 1\n+++ x\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body := Split(tt.in)
			if meta != tt.wantMeta {
				t.Errorf("meta = %q, want %q", meta, tt.wantMeta)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParse(t *testing.T) {
	m, err := Parse("title = \"Home\"\ntags = [\"a\", \"b\"]\ndraft = true")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["title"] != "Home" {
		t.Errorf("title = %v", m["title"])
	}
	if m["draft"] != true {
		t.Errorf("draft = %v", m["draft"])
	}
	if got := Strings(m["tags"]); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("tags = %v", got)
	}
}

func TestParse_Empty(t *testing.T) {
	m, err := Parse("  \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestParse_ErrorHasPosition(t *testing.T) {
	_, err := Parse("title = \"ok\"\nbroken = = 1\n")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Line != 2 {
		t.Errorf("line = %d, want 2", pe.Line)
	}
	if pe.Column < 1 {
		t.Errorf("column = %d, want > 0", pe.Column)
	}
}

func TestDeriveTitle(t *testing.T) {
	if got := DeriveTitle("some text\n# My Heading\nmore"); got != "My Heading" {
		t.Errorf("title = %q", got)
	}
	if got := DeriveTitle("## Not it\n"); got != "" {
		t.Errorf("title = %q, want empty", got)
	}
}

func TestStrings_Dedup(t *testing.T) {
	got := Strings([]any{"go", " go ", "", "ssg", 3})
	if len(got) != 2 || got[0] != "go" || got[1] != "ssg" {
		t.Errorf("Strings = %v", got)
	}
	if got := Strings("one"); len(got) != 1 || got[0] != "one" {
		t.Errorf("Strings(string) = %v", got)
	}
	if got := Strings(nil); len(got) != 0 {
		t.Errorf("Strings(nil) = %v", got)
	}
}
