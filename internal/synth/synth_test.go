package synth

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"specforge/internal/classify"
	"specforge/internal/types"
)

func defaultScan() types.ScanConfig {
	return types.ScanConfig{
		RuleSets: []string{"wcag2a", "wcag2aa", "wcag21aa"},
		Policy:   types.PolicyFailOnViolation,
		Report:   types.ReportSummary,
	}
}

func TestParseInstructionsKeyboardNavigation(t *testing.T) {
	snap := &types.StructuralSnapshot{
		URL:                 "https://app.example.com/login",
		InteractiveElements: []types.Element{{Tag: "button", Text: "Submit"}},
	}

	got := ParseInstructions("test keyboard navigation", snap)

	want := types.RequirementSet{
		KeyboardNavigations: []types.KeyboardNavigation{{
			Type:     types.KeyboardTabSequence,
			Keys:     []string{"Tab"},
			Checks:   []string{"focus-order-matches-dom"},
			Criteria: []string{"2.1.1"},
		}},
		Scan:         defaultScan(),
		SourceDomain: types.DomainAccessibility,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseInstructions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstructionsAPISequence(t *testing.T) {
	instruction := `Send a GET request to "https://api.example.com/users" and verify status code equals 200`

	got := ParseInstructions(instruction, nil)

	if got.SourceDomain != types.DomainAPI {
		t.Fatalf("SourceDomain = %q, want %q", got.SourceDomain, types.DomainAPI)
	}
	want := []types.APICall{
		{Type: types.APISendRequest, Method: "GET", URL: "https://api.example.com/users"},
		{Type: types.APIVerify, Target: "status", Expected: "200", ExpectStatus: 200},
	}
	if diff := cmp.Diff(want, got.APICalls); diff != "" {
		t.Errorf("APICalls mismatch (-want +got):\n%s", diff)
	}
	if n := got.RequirementCount(); n != len(want) {
		t.Errorf("RequirementCount() = %d, want %d: API instruction leaked into other families", n, len(want))
	}
}

func TestParseInstructionsEmptyInstruction(t *testing.T) {
	for _, instruction := range []string{"", "   ", "\t\n"} {
		got := ParseInstructions(instruction, nil)
		if !got.Empty() {
			t.Errorf("ParseInstructions(%q) produced %d requirements, want none", instruction, got.RequirementCount())
		}
		if got.SourceDomain != types.DomainFunctional {
			t.Errorf("ParseInstructions(%q) SourceDomain = %q, want %q", instruction, got.SourceDomain, types.DomainFunctional)
		}
		if got.Fallback {
			t.Errorf("ParseInstructions(%q) marked as fallback", instruction)
		}
		if diff := cmp.Diff(defaultScan(), got.Scan); diff != "" {
			t.Errorf("ParseInstructions(%q) scan mismatch (-want +got):\n%s", instruction, diff)
		}
	}
}

func TestParseInstructionsVagueInstructionMinimalDefault(t *testing.T) {
	got := ParseInstructions("test the website", nil)

	want := types.RequirementSet{
		KeyboardNavigations: []types.KeyboardNavigation{{
			Type:     types.KeyboardTabSequence,
			Keys:     []string{"Tab"},
			Checks:   []string{"focus-order-matches-dom"},
			Criteria: []string{"2.4.3"},
		}},
		ARIACompliances: []types.ARIACompliance{{
			Type:       types.ARIALabels,
			Attributes: []string{"aria-label", "aria-labelledby"},
			Scope:      []string{"button", "a", "input", "select", "textarea"},
			Criteria:   []string{"4.1.2"},
		}},
		Scan:         defaultScan(),
		SourceDomain: types.DomainFunctional,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseInstructions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstructionsMinimalDefaultScopeFromSnapshot(t *testing.T) {
	snap := &types.StructuralSnapshot{
		URL: "https://app.example.com",
		InteractiveElements: []types.Element{
			{Tag: "button"}, {Tag: "a"}, {Tag: "BUTTON"},
		},
	}

	got := ParseInstructions("test the website", snap)

	if len(got.ARIACompliances) != 1 {
		t.Fatalf("got %d ARIA requirements, want 1", len(got.ARIACompliances))
	}
	wantScope := []string{"button", "a"}
	if diff := cmp.Diff(wantScope, got.ARIACompliances[0].Scope); diff != "" {
		t.Errorf("default scope mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstructionsAPIDefault(t *testing.T) {
	snap := &types.StructuralSnapshot{URL: "https://app.example.com/dashboard"}

	got := ParseInstructions("hit the api endpoint", snap)

	want := []types.APICall{
		{Type: types.APISendRequest, Method: "GET", URL: "https://app.example.com/dashboard"},
		{Type: types.APIVerify, Target: "status", Expected: "200", ExpectStatus: 200},
	}
	if diff := cmp.Diff(want, got.APICalls); diff != "" {
		t.Errorf("APICalls mismatch (-want +got):\n%s", diff)
	}

	// Without a snapshot the request is emitted with the URL left for the
	// template's base-URL placeholder.
	got = ParseInstructions("hit the api endpoint", nil)
	if len(got.APICalls) != 2 || got.APICalls[0].URL != "" {
		t.Errorf("nil snapshot: APICalls = %+v, want request with empty URL plus verify", got.APICalls)
	}
}

func TestParseInstructionsNumberedSteps(t *testing.T) {
	instruction := "1. Press Tab to reach the search field, 2. verify the focus indicator is visible, 3. check color contrast meets 4.5:1"

	got := ParseInstructions(instruction, nil)

	wantKeyboard := []types.KeyboardNavigation{
		{
			Type:     types.KeyboardTabSequence,
			Keys:     []string{"Tab"},
			Checks:   []string{"focus-order-matches-dom"},
			Criteria: []string{"2.4.3"},
		},
		{
			Type:     types.KeyboardFocusVisible,
			Keys:     []string{"Tab"},
			Checks:   []string{"focus-outline-visible"},
			Criteria: []string{"2.4.7"},
		},
	}
	if diff := cmp.Diff(wantKeyboard, got.KeyboardNavigations); diff != "" {
		t.Errorf("KeyboardNavigations mismatch (-want +got):\n%s", diff)
	}

	wantVisual := []types.VisualAccessibility{{
		Type:      types.VisualColorContrast,
		Threshold: "4.5:1",
		Checks:    []string{"contrast-ratio-meets-threshold"},
		Criteria:  []string{"1.4.3"},
	}}
	if diff := cmp.Diff(wantVisual, got.VisualAccessibilities); diff != "" {
		t.Errorf("VisualAccessibilities mismatch (-want +got):\n%s", diff)
	}
	if len(got.APICalls) != 0 {
		t.Errorf("APICalls = %+v, want none", got.APICalls)
	}
}

func TestParseInstructionsAPIStepsOrderedWithAuth(t *testing.T) {
	instruction := `Send a POST request to https://api.example.com/sessions with body {"user":"admin"} and a bearer token; store the response token as authToken; verify response time is under 500 ms`

	got := ParseInstructions(instruction, nil)

	if got.SourceDomain != types.DomainAPI {
		t.Fatalf("SourceDomain = %q, want %q", got.SourceDomain, types.DomainAPI)
	}
	want := []types.APICall{
		{
			Type:   types.APISendRequest,
			Method: "POST",
			URL:    "https://api.example.com/sessions",
			Body:   `{"user":"admin"}`,
			Auth:   true,
		},
		{Type: types.APIStore, Target: "token", StoreAs: "authToken"},
		{Type: types.APIVerify, Target: "response-time", PerformanceMs: 500},
	}
	if diff := cmp.Diff(want, got.APICalls); diff != "" {
		t.Errorf("APICalls mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstructionsMixedDirectSteps(t *testing.T) {
	instruction := "check aria labels and color contrast on the form, then verify wcag 2.1 aa compliance"

	got := ParseInstructions(instruction, nil)

	wantARIA := []types.ARIACompliance{{
		Type:       types.ARIALabels,
		Attributes: []string{"aria-label", "aria-labelledby"},
		Scope:      []string{"button", "a", "input"},
		Criteria:   []string{"4.1.2"},
	}}
	if diff := cmp.Diff(wantARIA, got.ARIACompliances); diff != "" {
		t.Errorf("ARIACompliances mismatch (-want +got):\n%s", diff)
	}
	if len(got.VisualAccessibilities) != 1 || got.VisualAccessibilities[0].Type != types.VisualColorContrast {
		t.Fatalf("VisualAccessibilities = %+v, want one color-contrast check", got.VisualAccessibilities)
	}
	if len(got.ComplianceGuidelines) != 1 {
		t.Fatalf("ComplianceGuidelines = %+v, want one audit", got.ComplianceGuidelines)
	}
	g := got.ComplianceGuidelines[0]
	if g.Level != types.ComplianceWCAGAA {
		t.Errorf("audit level = %q, want %q", g.Level, types.ComplianceWCAGAA)
	}
	if len(g.Criteria) == 0 || len(g.Guidelines) != len(g.Criteria) {
		t.Errorf("audit criteria/guidelines = %v / %v, want matched non-empty lists", g.Criteria, g.Guidelines)
	}
}

func TestParseInstructionsScanConfig(t *testing.T) {
	tests := []struct {
		instruction string
		want        types.ScanConfig
	}{
		{
			instruction: "check accessibility",
			want:        defaultScan(),
		},
		{
			instruction: "verify wcag 2.2 compliance with a detailed report, log only",
			want: types.ScanConfig{
				RuleSets: []string{"wcag2a", "wcag2aa", "wcag21aa", "wcag22aa"},
				Policy:   types.PolicyLogOnly,
				Report:   types.ReportDetailed,
			},
		},
		{
			instruction: "run a section 508 audit",
			want: types.ScanConfig{
				RuleSets: []string{"wcag2a", "wcag2aa", "wcag21aa", "section508"},
				Policy:   types.PolicyFailOnViolation,
				Report:   types.ReportSummary,
			},
		},
		{
			instruction: "check against wcag 2.0 and warn on violations",
			want: types.ScanConfig{
				RuleSets: []string{"wcag2a", "wcag2aa"},
				Policy:   types.PolicyWarnOnViolation,
				Report:   types.ReportSummary,
			},
		},
	}
	for _, tt := range tests {
		got := ParseInstructions(tt.instruction, nil)
		if diff := cmp.Diff(tt.want, got.Scan); diff != "" {
			t.Errorf("ParseInstructions(%q) scan mismatch (-want +got):\n%s", tt.instruction, diff)
		}
	}
}

func TestParseInstructionsCriteriaNeverEmpty(t *testing.T) {
	instructions := []string{
		"check alt text and form labels",
		"test keyboard navigation",
		"verify aria-live regions announce updates",
		"audit wcag 2.1 aa compliance",
		"check color contrast",
		"test the website",
		"press tab then press enter",
		"inspect heading structure",
		"check focus trap in the dialog, verify focus order",
	}
	for _, instruction := range instructions {
		set := ParseInstructions(instruction, nil)
		assertCriteria := func(kind string, criteria []string) {
			t.Helper()
			if len(criteria) == 0 {
				t.Errorf("ParseInstructions(%q): %s requirement has empty criteria", instruction, kind)
			}
			for _, c := range criteria {
				if !types.ValidCriterion(c) {
					t.Errorf("ParseInstructions(%q): %s criterion %q is malformed", instruction, kind, c)
				}
			}
		}
		for _, r := range set.DOMInspections {
			assertCriteria("dom", r.Criteria)
		}
		for _, r := range set.KeyboardNavigations {
			assertCriteria("keyboard", r.Criteria)
		}
		for _, r := range set.ARIACompliances {
			assertCriteria("aria", r.Criteria)
		}
		for _, r := range set.VisualAccessibilities {
			assertCriteria("visual", r.Criteria)
		}
		for _, r := range set.ComplianceGuidelines {
			assertCriteria("compliance", r.Criteria)
		}
	}
}

func TestParseInstructionsDeterministic(t *testing.T) {
	instruction := "check aria labels and color contrast on the form, then verify wcag 2.1 aa compliance"
	snap := &types.StructuralSnapshot{
		URL:                 "https://app.example.com",
		InteractiveElements: []types.Element{{Tag: "button", AriaLabel: "Save"}},
	}

	first := ParseInstructions(instruction, snap)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, ParseInstructions(instruction, snap)); diff != "" {
			t.Fatalf("run %d diverged (-first +rerun):\n%s", i+1, diff)
		}
	}
}

func TestParseInstructionsNeverPanics(t *testing.T) {
	inputs := []string{
		strings.Repeat("click aria tab contrast wcag 1.2.3, ", 200),
		"\x00\x01\x02 press tab \xff",
		"按下 tab 键然后 vérifier le contraste",
		"🎯🎯🎯",
		strings.Repeat("1. do the thing ", 500),
		"verify " + strings.Repeat("a", 50000),
	}
	for _, instruction := range inputs {
		set := ParseInstructions(instruction, nil)
		if len(set.Scan.RuleSets) == 0 || set.Scan.Policy == "" || set.Scan.Report == "" {
			t.Errorf("ParseInstructions(%.40q...) returned incomplete scan config: %+v", instruction, set.Scan)
		}
		if set.SourceDomain == "" {
			t.Errorf("ParseInstructions(%.40q...) returned empty source domain", instruction)
		}
	}
}

func TestFallbackSet(t *testing.T) {
	set := fallbackSet(nil)

	if !set.Fallback {
		t.Fatal("fallbackSet() not marked as fallback")
	}
	if len(set.ARIACompliances) != 1 || len(set.KeyboardNavigations) != 1 {
		t.Fatalf("fallbackSet() = %+v, want the minimal default pair", set)
	}
	if len(set.ARIACompliances[0].Criteria) == 0 || len(set.KeyboardNavigations[0].Criteria) == 0 {
		t.Error("fallbackSet() requirements carry empty criteria")
	}
	if diff := cmp.Diff(defaultScan(), set.Scan); diff != "" {
		t.Errorf("fallbackSet() scan mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizerCustomTables(t *testing.T) {
	tables := &classify.Tables{
		Version: "onsite",
		Enhanced: []classify.A11yEntry{{
			Phrase:       "hero caption",
			Weight:       0.9,
			Category:     types.PatternImageAlt,
			ElementTypes: []string{"img.hero"},
			Compliance:   []string{"1.1.1"},
		}},
	}
	s := NewSynthesizer(tables)

	got := s.ParseInstructions("check the hero caption", nil)

	want := []types.DOMInspection{{
		Type:            types.DOMImageAlt,
		Selectors:       []string{"img.hero"},
		ValidationRules: []string{"has-alt-attribute", "alt-text-meaningful"},
		Criteria:        []string{"1.1.1"},
	}}
	if diff := cmp.Diff(want, got.DOMInspections); diff != "" {
		t.Errorf("DOMInspections mismatch (-want +got):\n%s", diff)
	}
}
