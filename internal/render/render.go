// Package render serializes a selected template plus its requirement set
// into an executable Playwright TypeScript test. Rendering builds a small
// intermediate script tree (imports, setup, one fragment per requirement in
// synthesis order, closing scan) and serializes it once, so output is
// deterministic and idempotent. Like the rest of the pipeline it never
// fails: an internal fault degrades to a minimal labeled fallback script.
package render

import (
	"fmt"
	"strings"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/logging"
	"specforge/internal/templates"
	"specforge/internal/types"
)

const (
	importPlaywright = "import { test, expect } from '@playwright/test';"
	importAxe        = "import AxeBuilder from '@axe-core/playwright';"
)

// Input carries everything one rendering needs. The requirement set is the
// pipeline's synthesized specification; the selection contributes template,
// test name and scan configuration; URL is the navigation target from the
// structural snapshot.
type Input struct {
	Name      string
	URL       string
	Set       *types.RequirementSet
	Selection templates.Selection
}

// Renderer turns inputs into generated source. The zero value renders with
// header comments on; construct with NewRenderer.
type Renderer struct {
	skipHeader bool
}

// NewRenderer returns a renderer with default settings.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// SetHeaderComments controls whether the template banner is emitted above
// the test function.
func (r *Renderer) SetHeaderComments(enabled bool) {
	r.skipHeader = !enabled
}

var defaultRenderer = NewRenderer()

// Render runs the default renderer.
func Render(in Input) string {
	return defaultRenderer.Render(in)
}

// RenderScan runs the default renderer's scan companion.
func RenderScan(t templates.Template, cfg types.ScanConfig) string {
	return defaultRenderer.RenderScan(t, cfg)
}

// Render produces the complete test source for the input. Never panics: an
// internal fault is recovered into the minimal fallback script.
func (r *Renderer) Render(in Input) (out string) {
	timer := logging.StartTimer(logging.CategoryRender, "Renderer.Render")
	defer timer.Stop()
	defer func() {
		if rec := recover(); rec != nil {
			logging.Render("recovered to fallback script: %v",
				fmt.Errorf("%w: %v", forgeerrors.ErrCodeGeneration, rec))
			out = FallbackScript(in.Name)
		}
	}()

	set := in.Set
	if set == nil {
		set = &types.RequirementSet{}
	}

	hasAPI := len(set.APICalls) > 0
	hasA11y := set.RequirementCount() > len(set.APICalls)
	emitScan := in.Selection.Template.Name != templates.NameAPISequence || hasA11y
	needsPage := emitScan || hasA11y

	s := &script{name: r.title(in)}
	s.imports = scriptImports(in.Selection.Template, emitScan)
	if !r.skipHeader {
		s.header = scriptHeader(in.Selection.Template, set)
	}
	if needsPage {
		s.fixtures = append(s.fixtures, "page")
	}
	if hasAPI {
		s.fixtures = append(s.fixtures, "request")
	}
	if len(s.fixtures) == 0 {
		s.fixtures = []string{"page"}
		needsPage = true
	}

	var apiFragments []fragment
	if hasAPI {
		apiFragments = renderAPISteps(set.APICalls, &s.setup)
	}
	if needsPage {
		url := in.URL
		if url == "" {
			url = "/"
		}
		s.setup = append(s.setup, fmt.Sprintf("await page.goto(%s);", jsString(url)))
	}

	for i, req := range set.DOMInspections {
		s.fragments = append(s.fragments, domFragment(req, i+1))
	}
	for _, req := range set.KeyboardNavigations {
		s.fragments = append(s.fragments, keyboardFragment(req))
	}
	for _, req := range set.ARIACompliances {
		s.fragments = append(s.fragments, ariaFragment(req))
	}
	for i, req := range set.VisualAccessibilities {
		s.fragments = append(s.fragments, visualFragment(req, i+1))
	}
	for i, req := range set.ComplianceGuidelines {
		s.fragments = append(s.fragments, complianceFragment(req, i+1))
	}
	s.fragments = append(s.fragments, apiFragments...)

	if len(s.fragments) == 0 && needsPage {
		s.fragments = append(s.fragments, fragment{
			comment: "page renders",
			lines:   []string{"await expect(page.locator('body')).toBeVisible();"},
		})
	}
	if emitScan {
		s.closing = append(s.closing, scanFragment(set.Scan))
	}

	logging.RenderDebug("rendered %d fragments (template=%s scan=%v)",
		len(s.fragments), in.Selection.Template.Name, emitScan)
	return s.text()
}

// RenderScan renders just the scanning-engine block for a template, the
// boilerplate a caller can splice into an existing test body. The API
// sequence template carries no scanner, so it renders nothing.
func (r *Renderer) RenderScan(t templates.Template, cfg types.ScanConfig) string {
	if t.Name == templates.NameAPISequence {
		return ""
	}
	f := scanFragment(cfg)
	var b strings.Builder
	b.WriteString("// ")
	b.WriteString(f.comment)
	b.WriteByte('\n')
	for _, line := range f.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Renderer) title(in Input) string {
	switch {
	case in.Name != "":
		return in.Name
	case in.Selection.TestName != "":
		return in.Selection.TestName
	case in.Selection.Template.Name != "":
		return in.Selection.Template.Name
	default:
		return "generated-test"
	}
}

// scriptImports starts from the template's import list, adding the scanner
// import when the scan block will render and the template does not already
// carry it.
func scriptImports(t templates.Template, emitScan bool) []string {
	imports := append([]string(nil), t.Imports...)
	if len(imports) == 0 {
		imports = []string{importPlaywright}
	}
	if emitScan && !containsScanner(imports) {
		imports = append(imports, importAxe)
	}
	return imports
}

func containsScanner(imports []string) bool {
	for _, imp := range imports {
		if strings.Contains(imp, "AxeBuilder") {
			return true
		}
	}
	return false
}

func scriptHeader(t templates.Template, set *types.RequirementSet) []string {
	name := t.Name
	if name == "" {
		name = "custom"
	}
	version := t.Version
	if version == "" {
		version = "0.0.0"
	}
	header := []string{fmt.Sprintf("Template: %s v%s", name, version)}
	if set.Fallback {
		header = append(header, "Fallback output: requirements degraded to the minimal default set.")
	}
	return header
}

// FallbackScript is the minimal valid test substituted when rendering
// faults. The leading comment labels the degraded output so readers can
// tell it apart from a requested test.
func FallbackScript(name string) string {
	if name == "" {
		name = "generated-test"
	}
	var b strings.Builder
	b.WriteString(importPlaywright)
	b.WriteString("\n\n")
	b.WriteString("// Fallback test: rendering failed, this minimal page check replaces the requested test.\n")
	fmt.Fprintf(&b, "test(%s, async ({ page }) => {\n", jsString(name))
	b.WriteString(indent + "await page.goto('/');\n")
	b.WriteString(indent + "await expect(page.locator('body')).toBeVisible();\n")
	b.WriteString("});\n")
	return b.String()
}
