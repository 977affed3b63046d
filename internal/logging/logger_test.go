package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".forge")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func resetLogging() {
	CloseAll()
	CloseAudit()
	st.mu.Lock()
	st.dir = ""
	st.floor = levelDebug
	st.filter = nil
	st.mu.Unlock()
}

func logFiles(t *testing.T, ws string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(ws, ".forge", "logs"))
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func hasCategoryFile(names []string, cat Category) bool {
	for _, n := range names {
		if strings.HasSuffix(n, "_"+string(cat)+".log") {
			return true
		}
	}
	return false
}

func TestEveryCategoryGetsItsOwnFile(t *testing.T) {
	ws := t.TempDir()
	writeTestConfig(t, ws, `logging:
  debug_mode: true
  level: debug
`)

	resetLogging()
	defer resetLogging()

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("debug mode should be on")
	}

	Classify("scored %d domains", 4)
	RecognizeDebug("pattern pass")
	Synth("built requirement set")
	TemplateDebug("selection features")
	Render("rendered script")
	Compiler("pipeline done")
	Tables("pack loaded")
	Snapshot("captured page")
	StoreDebug("row inserted")
	REPL("session started")
	CloseAll()

	names := logFiles(t, ws)
	for _, cat := range []Category{
		CategoryBoot, CategoryClassify, CategoryRecognize, CategorySynth,
		CategoryTemplate, CategoryRender, CategoryCompiler, CategoryTables,
		CategorySnapshot, CategoryStore, CategoryREPL,
	} {
		if !hasCategoryFile(names, cat) {
			t.Errorf("no log file for category %s", cat)
		}
	}
}

func TestSilentWithoutDebugMode(t *testing.T) {
	ws := t.TempDir()
	writeTestConfig(t, ws, `logging:
  debug_mode: false
`)

	resetLogging()
	defer resetLogging()

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if IsDebugMode() {
		t.Error("debug mode should be off")
	}

	Classify("must not be written")
	CompilerError("not even errors")

	if _, err := os.Stat(filepath.Join(ws, ".forge", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory should not exist in production mode")
	}
}

func TestMissingConfigMeansProductionMode(t *testing.T) {
	resetLogging()
	defer resetLogging()

	if err := Initialize(t.TempDir()); err != nil {
		t.Fatalf("Initialize should tolerate a missing config: %v", err)
	}
	if IsDebugMode() {
		t.Error("missing config should default to production mode")
	}
}

func TestCategoryFilterSuppressesListedCategories(t *testing.T) {
	ws := t.TempDir()
	writeTestConfig(t, ws, `logging:
  debug_mode: true
  level: debug
  categories:
    classify: true
    synth: false
`)

	resetLogging()
	defer resetLogging()

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	Classify("kept")
	Synth("filtered out")
	Render("unlisted categories stay on")
	CloseAll()

	names := logFiles(t, ws)
	if !hasCategoryFile(names, CategoryClassify) {
		t.Error("classify should be enabled")
	}
	if hasCategoryFile(names, CategorySynth) {
		t.Error("synth is filtered off and should have no file")
	}
	if !hasCategoryFile(names, CategoryRender) {
		t.Error("render is unlisted and should default to enabled")
	}
}

func TestLevelFloorDropsQuietMessages(t *testing.T) {
	ws := t.TempDir()
	writeTestConfig(t, ws, `logging:
  debug_mode: true
  level: warn
`)

	resetLogging()
	defer resetLogging()

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	Classify("info, below the floor")
	ClassifyDebug("debug, below the floor")
	SnapshotWarn("warn passes")
	CompilerError("error passes")
	CloseAll()

	names := logFiles(t, ws)
	if hasCategoryFile(names, CategoryClassify) {
		t.Error("classify wrote below the level floor")
	}
	if !hasCategoryFile(names, CategorySnapshot) {
		t.Error("warn-level message should have been written")
	}
	if !hasCategoryFile(names, CategoryCompiler) {
		t.Error("error-level message should have been written")
	}
}

func TestAuditEvents(t *testing.T) {
	ws := t.TempDir()
	writeTestConfig(t, ws, `logging:
  debug_mode: true
  level: debug
`)

	resetLogging()
	defer resetLogging()

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := InitAudit(); err != nil {
		t.Fatalf("InitAudit: %v", err)
	}

	a := AuditWithRequest("req-123")
	a.CompileStart(42, true)
	a.ClassifyResult("accessibility", 0.85, true)
	a.TemplateSelected("aria-compliance", []string{"aria-compliance", "page-scan"})
	a.CompileComplete("accessibility", "aria-compliance", 12, false)
	CloseAudit()

	var auditName string
	for _, n := range logFiles(t, ws) {
		if strings.HasSuffix(n, "_audit.log") {
			auditName = n
		}
	}
	if auditName == "" {
		t.Fatal("no audit log file created")
	}

	data, err := os.ReadFile(filepath.Join(ws, ".forge", "logs", auditName))
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		`"event":"compile_start"`,
		`"event":"classify_result"`,
		`"event":"template_selected"`,
		`"event":"compile_complete"`,
		`"req":"req-123"`,
		`"domain":"accessibility"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("audit log missing %s\ncontent:\n%s", want, content)
		}
	}
}

func TestAuditBeforeInitIsDropped(t *testing.T) {
	resetLogging()
	defer resetLogging()

	// Neither Initialize nor InitAudit has run; events must vanish quietly.
	Audit().StoreRecord("tc-1", "orphan event")
}

func TestUninitializedCallsAreSafe(t *testing.T) {
	resetLogging()
	defer resetLogging()

	Boot("no workspace yet")
	CompilerError("still fine")

	timer := StartTimer(CategoryCompiler, "noop-op")
	if d := timer.Stop(); d < 0 {
		t.Errorf("Stop returned negative duration: %v", d)
	}
}
