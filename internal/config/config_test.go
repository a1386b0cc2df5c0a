package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultHasReasonableValues(t *testing.T) {
	cfg := Default()
	if cfg.Upstream.BaseURL == "" {
		t.Fatalf("expected default backend url")
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
	if !cfg.UI.ShowActionLog {
		t.Fatalf("expected ShowActionLog default true")
	}
	if cfg.UI.ActionLogMax <= 0 {
		t.Fatalf("expected positive ActionLogMax")
	}
	if cfg.Upstream.Timeout <= 0 {
		t.Fatalf("expected positive timeout")
	}
	if cfg.Upstream.Links.EditAufgabe == "" || cfg.Upstream.API.TableData == "" {
		t.Fatalf("expected default url templates")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUFGABEN_BACKEND_URL", "http://backend:9000/")
	t.Setenv("AUFGABEN_LOG_LEVEL", "debug")
	t.Setenv("AUFGABEN_UI_SHOW_ACTIONLOG", "0")
	t.Setenv("AUFGABEN_ACTIONLOG_MAX", "50")
	t.Setenv("AUFGABEN_BACKEND_TIMEOUT", "3s")

	cfg, err := Load("__does_not_exist.yaml")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://backend:9000" {
		t.Fatalf("backend env override failed: %q", cfg.Upstream.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level env override failed: %q", cfg.Logging.Level)
	}
	if cfg.UI.ShowActionLog {
		t.Fatalf("UI.ShowActionLog expected false via env")
	}
	if cfg.UI.ActionLogMax != 50 {
		t.Fatalf("UI.ActionLogMax expected 50 via env, got %d", cfg.UI.ActionLogMax)
	}
	if cfg.Upstream.Timeout != 3*time.Second {
		t.Fatalf("timeout override failed: %v", cfg.Upstream.Timeout)
	}
}

func TestLoadFromFileAndPrefsPath(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("listen: '127.0.0.1:9000'\nprefsDir: '" + filepath.ToSlash(dir) + "'\nlogging:\n  level: 'warn'\nui:\n  showActionLog: false\n  actionLogMax: 12\nupstream:\n  baseURL: 'http://django:8000'\n  timeout: 5s\n  links:\n    editAufgabe: '/x/{id}/edit'\n")
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, yaml, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Fatalf("file load failed for listen: %q", cfg.Listen)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("file load failed for logging.level: %q", cfg.Logging.Level)
	}
	if cfg.UI.ShowActionLog {
		t.Fatalf("file load failed for ui.showActionLog")
	}
	if cfg.UI.ActionLogMax != 12 {
		t.Fatalf("file load failed for ui.actionLogMax: %d", cfg.UI.ActionLogMax)
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Fatalf("file load failed for timeout: %v", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.Links.EditAufgabe != "/x/{id}/edit" {
		t.Fatalf("links not loaded: %q", cfg.Upstream.Links.EditAufgabe)
	}
	// nicht gesetzte Felder behalten Defaults
	if cfg.Upstream.API.TableData == "" {
		t.Fatalf("api defaults lost on partial load")
	}

	p, ok := PrefsPathForUser(cfg, "../alice")
	if !ok {
		t.Fatalf("expected prefs path for alice")
	}
	if filepath.Dir(p) != dir {
		t.Fatalf("prefs path escaped dir: %q", p)
	}
}
