package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePack(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	return path
}

func TestCollectPacksWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "a.yaml", "version: v1\n")
	writePack(t, dir, "b.yml", "version: v2\n")
	writePack(t, dir, "notes.txt", "not a pack\n")

	files, err := collectPacks(dir, nil)
	if err != nil {
		t.Fatalf("collectPacks: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 pack files, got %d: %v", len(files), files)
	}
}

func TestCollectPacksExplicitArgsWin(t *testing.T) {
	dir := t.TempDir()
	pack := writePack(t, dir, "a.yaml", "version: v1\n")

	files, err := collectPacks(dir, []string{pack})
	if err != nil {
		t.Fatalf("collectPacks: %v", err)
	}
	if len(files) != 1 || files[0] != pack {
		t.Fatalf("expected the explicit file only, got %v", files)
	}

	if _, err := collectPacks(dir, []string{filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}

func TestLintPackRejectsBrokenPack(t *testing.T) {
	dir := t.TempDir()
	pack := writePack(t, dir, "broken.yaml", `
version: broken
domains:
  - domain: functional
    keywords: []
`)

	issues := lintPack(pack)
	if len(issues) != 1 {
		t.Fatalf("expected one error, got %v", issues)
	}
	if issues[0].Severity != severityError {
		t.Fatalf("expected error severity, got %s", issues[0].Severity)
	}
	if !strings.Contains(issues[0].Message, "no keywords") {
		t.Fatalf("unexpected message: %s", issues[0].Message)
	}
}

func TestLintPackWarnsOnMissingVersion(t *testing.T) {
	dir := t.TempDir()
	pack := writePack(t, dir, "unversioned.yaml", `
strong_signals:
  - "screen reader"
`)

	issues := lintPack(pack)
	found := false
	for _, it := range issues {
		if it.Severity == severityWarning && strings.Contains(it.Message, "no version") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected missing-version warning, got %v", issues)
	}
}

func TestLintPackWarnsOnEmptyOverride(t *testing.T) {
	dir := t.TempDir()
	pack := writePack(t, dir, "empty.yaml", "version: v1\n")

	issues := lintPack(pack)
	found := false
	for _, it := range issues {
		if strings.Contains(it.Message, "overrides nothing") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected empty-override warning, got %v", issues)
	}
}

func TestLintPackFlagsCrossDomainKeyword(t *testing.T) {
	dir := t.TempDir()
	pack := writePack(t, dir, "shared.yaml", `
version: v1
domains:
  - domain: functional
    keywords: ["click", "token"]
`)

	// "token" is also an api keyword in the built-in tables the pack
	// overlays, so the resulting table set scores it for both domains.
	issues := lintPack(pack)
	found := false
	for _, it := range issues {
		if it.Severity == severityWarning && strings.Contains(it.Message, `"token"`) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cross-domain keyword warning, got %v", issues)
	}
}

func TestLintPackFlagsRepeatedKeyword(t *testing.T) {
	dir := t.TempDir()
	pack := writePack(t, dir, "repeat.yaml", `
version: v1
domains:
  - domain: security
    keywords: ["xss", "xss", "csrf"]
`)

	issues := lintPack(pack)
	found := false
	for _, it := range issues {
		if strings.Contains(it.Message, "repeated in domain security") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected repeated-keyword warning, got %v", issues)
	}
}

func TestLintPackCleanPack(t *testing.T) {
	dir := t.TempDir()
	pack := writePack(t, dir, "clean.yaml", `
version: team-2025
domains:
  - domain: security
    keywords: ["xss", "csrf", "clickjacking"]
`)

	issues := lintPack(pack)
	if len(issues) != 0 {
		t.Fatalf("expected a clean pack, got %v", issues)
	}
}
