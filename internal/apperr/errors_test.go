package apperr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := New(KindDuplicatePage, "cannot add duplicate page '%s'", "/a")
	if !errors.Is(err, ErrDuplicatePage) {
		t.Fatal("expected duplicate page error to match sentinel")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("duplicate page error should not match not found")
	}
}

func TestIs_ThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("build: %w", New(KindUnknownExtension, "no content handler for extension '.x'"))
	if !errors.Is(err, ErrUnknownExtension) {
		t.Fatal("expected wrapped error to match sentinel")
	}
	if KindOf(err) != KindUnknownExtension {
		t.Errorf("KindOf = %q", KindOf(err))
	}
}

func TestWrap_UnwrapsCause(t *testing.T) {
	err := Wrap(os.ErrPermission, KindPermission, "output directory write permission denied")
	if !errors.Is(err, os.ErrPermission) {
		t.Error("expected cause to be reachable")
	}
	want := "output directory write permission denied: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWith_CopiesData(t *testing.T) {
	base := New(KindParse, "bad toml")
	a := base.With("line", 3)
	b := a.With("column", 7)
	if base.Data != nil {
		t.Error("base data should stay nil")
	}
	if len(a.Data) != 1 || len(b.Data) != 2 {
		t.Errorf("data sizes = %d, %d", len(a.Data), len(b.Data))
	}
	if DataOf(b)["column"] != 7 {
		t.Errorf("column = %v", DataOf(b)["column"])
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("plain errors should be internal")
	}
}
