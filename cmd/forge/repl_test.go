package main

import (
	"path/filepath"
	"strings"
	"testing"

	"specforge/internal/classify"
	"specforge/internal/compiler"
	"specforge/internal/config"
	"specforge/internal/store"
	"specforge/internal/types"
)

// newTestModel builds a full session model against a temp workspace.
func newTestModel(t *testing.T) replModel {
	t.Helper()

	ws := t.TempDir()
	cfg := config.DefaultConfig()

	comp, tables, err := buildCompiler(cfg)
	if err != nil {
		t.Fatalf("buildCompiler: %v", err)
	}

	st, err := store.New(filepath.Join(ws, "forge.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return initREPL(cfg, filepath.Join(ws, ".forge", "config.yaml"), ws, comp, tables, st)
}

func TestFormatResultIncludesScript(t *testing.T) {
	r := &compiler.Result{
		TestCase: types.TestCase{
			Name:     "verify_login_form",
			Domain:   "forms",
			Template: "form-validation",
			Script:   "test('verify_login_form', async ({ page }) => {});",
		},
		Intent: types.Intent{Confidence: 0.82},
	}

	out := formatResult(r)
	if !strings.Contains(out, "verify_login_form") {
		t.Fatalf("expected test name in output, got: %s", out)
	}
	if !strings.Contains(out, "```ts") {
		t.Fatalf("expected a fenced script block, got: %s", out)
	}
	if strings.Contains(out, "fallback") {
		t.Fatalf("clean result should not mention fallback: %s", out)
	}

	r.Fallback = true
	if out := formatResult(r); !strings.Contains(out, "fallback") {
		t.Fatalf("expected fallback marker, got: %s", out)
	}
}

func TestFormatTables(t *testing.T) {
	out := formatTables(classify.DefaultTables())
	if !strings.Contains(out, "accessibility") {
		t.Fatalf("expected accessibility domain listed, got: %s", out)
	}
	if !strings.Contains(out, "keyword(s)") {
		t.Fatalf("expected keyword counts, got: %s", out)
	}
}

func TestHandleCommandUnknown(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.handleCommand("/bogus")
	got := updated.(replModel)
	if len(got.history) != 1 {
		t.Fatalf("expected one response, got %d", len(got.history))
	}
	if !strings.Contains(got.history[0].content, "/bogus") {
		t.Fatalf("expected the command echoed back, got: %s", got.history[0].content)
	}
}

func TestHandleCommandHelp(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.handleCommand("/help")
	got := updated.(replModel)
	if len(got.history) != 1 {
		t.Fatalf("expected one response, got %d", len(got.history))
	}
	if !strings.Contains(got.history[0].content, "/tables") {
		t.Fatalf("help should list /tables, got: %s", got.history[0].content)
	}
}

func TestHandleCommandSnapshotClear(t *testing.T) {
	m := newTestModel(t)
	m.snap = &types.StructuralSnapshot{URL: "https://example.com"}

	updated, _ := m.handleCommand("/snapshot clear")
	got := updated.(replModel)
	if got.snap != nil {
		t.Fatal("expected snapshot to be dropped")
	}
}

func TestHandleCommandDebugPersists(t *testing.T) {
	t.Setenv("FORGE_DEBUG", "")
	m := newTestModel(t)

	updated, _ := m.handleCommand("/debug")
	got := updated.(replModel)
	if !got.cfg.Logging.DebugMode {
		t.Fatal("expected debug mode enabled")
	}

	onDisk, err := config.Load(m.cfgPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if !onDisk.Logging.DebugMode {
		t.Fatal("expected debug flag persisted")
	}

	updated, _ = got.handleCommand("/debug")
	got = updated.(replModel)
	if got.cfg.Logging.DebugMode {
		t.Fatal("expected debug mode disabled again")
	}
}

func TestHandleSubmitCompileFlow(t *testing.T) {
	m := newTestModel(t)
	m.textinput.SetValue("test keyboard navigation on the menu")

	updated, cmd := m.handleSubmit()
	got := updated.(replModel)
	if !got.isLoading {
		t.Fatal("expected loading state after submit")
	}
	if cmd == nil {
		t.Fatal("expected a background command")
	}
	if len(got.history) != 1 || got.history[0].role != "user" {
		t.Fatalf("expected the instruction in the transcript, got %+v", got.history)
	}

	// Run the pipeline command directly and feed the message back in.
	msg := got.compileInstruction("test keyboard navigation on the menu")()
	cm, ok := msg.(compileMsg)
	if !ok {
		t.Fatalf("expected compileMsg, got %T", msg)
	}
	if cm.result.TestCase.Script == "" {
		t.Fatal("expected a rendered script")
	}

	after, _ := got.Update(cm)
	final := after.(replModel)
	if final.isLoading {
		t.Fatal("expected loading cleared")
	}
	if final.last == nil {
		t.Fatal("expected the result retained for /save")
	}
	if final.compileCount != 1 {
		t.Fatalf("expected one compile counted, got %d", final.compileCount)
	}
}

func TestSaveLast(t *testing.T) {
	m := newTestModel(t)

	if out := m.saveLast(); len(out.history) == 0 || !strings.Contains(out.history[0].content, "Nothing to save") {
		t.Fatal("expected a nothing-to-save response")
	}

	msg := m.compileInstruction("check color contrast on the landing page")()
	m.last = msg.(compileMsg).result

	saved := m.saveLast()
	if !saved.saved {
		t.Fatal("expected saved state")
	}

	rows, err := saved.st.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one recorded test case, got %d", len(rows))
	}

	again := saved.saveLast()
	last := again.history[len(again.history)-1]
	if !strings.Contains(last.content, "already recorded") {
		t.Fatalf("expected duplicate-save notice, got: %s", last.content)
	}
}

func TestFormatStatusReportsSnapshotState(t *testing.T) {
	m := newTestModel(t)

	out := m.formatStatus()
	if !strings.Contains(out, "none") {
		t.Fatalf("expected no-snapshot state, got: %s", out)
	}

	m.snap = &types.StructuralSnapshot{
		URL:                 "https://example.com",
		InteractiveElements: []types.Element{{Tag: "button"}},
	}
	out = m.formatStatus()
	if !strings.Contains(out, "example.com") {
		t.Fatalf("expected snapshot URL, got: %s", out)
	}
}
