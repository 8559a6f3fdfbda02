package internal

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Transform.Operations = []string{"@render"}
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestFullConfig_BadLogFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Transform.Operations = []string{"@render"}
	cfg.App.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown log format should fail validation")
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	p := writeConfig(t, "config.toml", `
[site]
title = "Blog"

[transform]
operations = ["parse", "@render"]

[handlers.markdown]
extensions = [".md"]
options = { hard_wraps = true }

[app]
log_level = "debug"
log_format = "json"

[app.http]
port = 9000

[auth]
mode = "token"
token = "s3cret"
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Site.Title != "Blog" || cfg.Content.Path != "content" {
		t.Errorf("site = %+v, content = %+v", cfg.Site, cfg.Content)
	}
	if got := cfg.Handlers["markdown"].Options["hard_wraps"]; got != true {
		t.Errorf("hard_wraps = %v", got)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9000 || !cfg.Auth.AuthEnabled() {
		t.Errorf("app = %+v, auth = %+v", cfg.App, cfg.Auth)
	}
	if cfg.Index.Path != ".apogee/index.db" {
		t.Errorf("index path default lost: %q", cfg.Index.Path)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	p := writeConfig(t, "config.yaml", `
site:
  title: Yaml Site
transform:
  operations: ["@render"]
index:
  path: ""
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Site.Title != "Yaml Site" || cfg.Index.Path != "" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfig_MissingRender(t *testing.T) {
	p := writeConfig(t, "config.toml", "[transform]\noperations = [\"parse\"]\n")
	if _, err := LoadConfig(p); !errors.Is(err, apperr.ErrUnknownOperation) {
		t.Errorf("err = %v, want unknown operation", err)
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	p := writeConfig(t, "config.toml", "[site]\ntitle = \n")
	_, err := LoadConfig(p)
	if !errors.Is(err, apperr.ErrParse) {
		t.Fatalf("err = %v, want parse error", err)
	}
	if line := apperr.DataOf(err)["line"]; line != 2 {
		t.Errorf("line = %v, want 2", line)
	}
}

func TestResolve(t *testing.T) {
	if got := resolve("/site", "dist/index.db"); got != filepath.Join("/site", "dist/index.db") {
		t.Errorf("relative = %q", got)
	}
	if got := resolve("/site", "/abs.db"); got != "/abs.db" {
		t.Errorf("absolute = %q", got)
	}
	if got := resolve("/site", ""); got != "" {
		t.Errorf("empty = %q", got)
	}
}
