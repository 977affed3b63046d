package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// neutralizeEnv clears every FORGE_* override for the duration of a test.
func neutralizeEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FORGE_TABLES", "FORGE_DB", "FORGE_BROWSER_URL", "FORGE_LOG_LEVEL", "FORGE_DEBUG"} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "specforge" {
		t.Errorf("expected Name=specforge, got %s", cfg.Name)
	}
	if !cfg.Browser.Headless {
		t.Error("expected Browser.Headless=true")
	}
	if cfg.Browser.MaxElements != 200 {
		t.Errorf("expected Browser.MaxElements=200, got %d", cfg.Browser.MaxElements)
	}
	if cfg.Render.Framework != "playwright-ts" {
		t.Errorf("expected Render.Framework=playwright-ts, got %s", cfg.Render.Framework)
	}
	if !cfg.Render.HeaderComments {
		t.Error("expected Render.HeaderComments=true")
	}
	if cfg.Store.Path != filepath.Join(".forge", "forge.db") {
		t.Errorf("unexpected Store.Path: %s", cfg.Store.Path)
	}
	if cfg.Logging.DebugMode {
		t.Error("expected Logging.DebugMode=false")
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	neutralizeEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Tables.PackPath = "packs/site.yaml"
	cfg.Browser.Headless = false
	cfg.Logging.DebugMode = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Tables.PackPath != "packs/site.yaml" {
		t.Errorf("expected PackPath=packs/site.yaml, got %s", loaded.Tables.PackPath)
	}
	if loaded.Browser.Headless {
		t.Error("expected Browser.Headless=false after round-trip")
	}
	if !loaded.Logging.DebugMode {
		t.Error("expected Logging.DebugMode=true after round-trip")
	}
	if loaded.Render.Framework != "playwright-ts" {
		t.Errorf("expected untouched Render.Framework, got %s", loaded.Render.Framework)
	}
}

func TestConfig_LoadMissingReturnsDefaults(t *testing.T) {
	neutralizeEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "specforge" {
		t.Errorf("expected default config, got Name=%s", cfg.Name)
	}
}

func TestConfig_LoadPartialKeepsDefaults(t *testing.T) {
	neutralizeEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "browser:\n  headless: false\nlogging:\n  debug_mode: true\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Browser.Headless {
		t.Error("expected headless override to apply")
	}
	if cfg.Browser.NavigationTimeout != "30s" {
		t.Errorf("expected default navigation_timeout, got %s", cfg.Browser.NavigationTimeout)
	}
	if cfg.Store.Path != filepath.Join(".forge", "forge.db") {
		t.Errorf("expected default store path, got %s", cfg.Store.Path)
	}
}

func TestConfig_LoadMalformed(t *testing.T) {
	neutralizeEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("browser: [not, a, mapping\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Store.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty store path")
	}

	cfg = DefaultConfig()
	cfg.Browser.NavigationTimeout = "fast"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unparseable timeout")
	}

	cfg = DefaultConfig()
	cfg.Browser.MaxElements = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative max_elements")
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown log level")
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetNavigationTimeout() != 30*time.Second {
		t.Errorf("expected 30s default, got %v", cfg.GetNavigationTimeout())
	}

	cfg.Browser.NavigationTimeout = "5s"
	if cfg.GetNavigationTimeout() != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.GetNavigationTimeout())
	}

	cfg.Browser.NavigationTimeout = "soon"
	if cfg.GetNavigationTimeout() != 30*time.Second {
		t.Errorf("expected 30s fallback, got %v", cfg.GetNavigationTimeout())
	}
}

func TestFindWorkspaceRoot_PrefersForgeDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".forge"), 0o755); err != nil {
		t.Fatalf("mkdir .forge: %v", err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	origWD, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	got, err := FindWorkspaceRoot()
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	if got != root {
		t.Fatalf("FindWorkspaceRoot=%q, want %q", got, root)
	}
}

func TestFindWorkspaceRoot_FallsBackToGoMod(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n\ngo 1.22\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	nested := filepath.Join(root, "subdir")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	origWD, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	got, err := FindWorkspaceRoot()
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	if got != root {
		t.Fatalf("FindWorkspaceRoot=%q, want %q", got, root)
	}
}

func TestDefaultPath_UsesWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".forge"), 0o755); err != nil {
		t.Fatalf("mkdir .forge: %v", err)
	}
	nested := filepath.Join(root, "x", "y")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	origWD, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	got := DefaultPath()
	want := filepath.Join(root, ".forge", "config.yaml")
	if got != want {
		t.Fatalf("DefaultPath=%q, want %q", got, want)
	}
}
