package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"specforge/internal/types"
)

func fragmentText(f fragment) string {
	return f.comment + "\n" + strings.Join(f.lines, "\n")
}

func TestDOMFragments(t *testing.T) {
	tests := []struct {
		name string
		req  types.DOMInspection
		want []string
	}{
		{
			name: "image alt",
			req:  types.DOMInspection{Type: types.DOMImageAlt, Selectors: []string{"img"}, Criteria: []string{"1.1.1"}},
			want: []string{
				"dom-inspection: image-alt (criteria 1.1.1)",
				`await expect(el).toHaveAttribute('alt', /\S+/);`,
			},
		},
		{
			name: "form labels",
			req:  types.DOMInspection{Type: types.DOMFormLabels, Selectors: []string{"input", "select", "textarea"}},
			want: []string{
				"page.locator('input, select, textarea')",
				"label[for=",
				"expect(byFor > 0 || byAria).toBe(true);",
			},
		},
		{
			name: "heading structure",
			req:  types.DOMInspection{Type: types.DOMHeadingStructure},
			want: []string{
				"expect(await page.locator('h1').count()).toBe(1);",
				"const headingLevels1",
				"toBeLessThanOrEqual(1);",
			},
		},
		{
			name: "landmark roles",
			req:  types.DOMInspection{Type: types.DOMLandmarkRoles, Selectors: []string{"main", "nav", "header", "footer", "aside"}},
			want: []string{
				"await expect(page.locator('main')).toHaveCount(1);",
				"page.locator('nav, header, footer, aside')",
			},
		},
		{
			name: "link text",
			req:  types.DOMInspection{Type: types.DOMLinkText, Selectors: []string{"a"}},
			want: []string{
				"expect(text.length).toBeGreaterThan(0);",
				"not.toContain(text);",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fragmentText(domFragment(tt.req, 1))
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("fragment missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestVisualFragments(t *testing.T) {
	tests := []struct {
		name string
		req  types.VisualAccessibility
		want []string
	}{
		{
			name: "color contrast",
			req:  types.VisualAccessibility{Type: types.VisualColorContrast, Threshold: "4.5:1"},
			want: []string{
				"visual-accessibility: color-contrast threshold 4.5:1",
				".withRules(['color-contrast'])",
				"expect(contrastResults1.violations).toEqual([]);",
			},
		},
		{
			name: "text resize",
			req:  types.VisualAccessibility{Type: types.VisualTextResize, Threshold: "200%"},
			want: []string{
				"document.body.style.zoom = '200%';",
				"await expect(page.locator('body')).toBeVisible();",
				"document.body.style.zoom = '';",
			},
		},
		{
			name: "focus indicator",
			req:  types.VisualAccessibility{Type: types.VisualFocusIndicator},
			want: []string{
				"await page.keyboard.press('Tab');",
				"getComputedStyle(el).outlineStyle",
				"expect(outlineStyle1).not.toBe('none');",
			},
		},
		{
			name: "motion reduction",
			req:  types.VisualAccessibility{Type: types.VisualMotionReduction},
			want: []string{
				"await page.emulateMedia({ reducedMotion: 'reduce' });",
				"document.getAnimations().length",
				"expect(runningAnimations1).toBe(0);",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fragmentText(visualFragment(tt.req, 1))
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("fragment missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestAriaLiveFragment(t *testing.T) {
	req := types.ARIACompliance{
		Type:  types.ARIALive,
		Scope: []string{"[aria-live]", "[role=status]", "[role=alert]"},
	}
	got := fragmentText(ariaFragment(req))
	want := "expect(await page.locator('[aria-live], [role=status], [role=alert]').count()).toBeGreaterThan(0);"
	if !strings.Contains(got, want) {
		t.Errorf("fragment missing %q:\n%s", want, got)
	}
}

func TestKeyboardFragmentPressesEveryKey(t *testing.T) {
	req := types.KeyboardNavigation{
		Type:     types.KeyboardTrap,
		Keys:     []string{"Tab", "Shift+Tab", "Escape"},
		Criteria: []string{"2.1.2"},
	}
	got := fragmentText(keyboardFragment(req))
	for _, key := range req.Keys {
		if !strings.Contains(got, "await page.keyboard.press('"+key+"');") {
			t.Errorf("fragment missing press for %q:\n%s", key, got)
		}
	}
	if n := strings.Count(got, "await expect(page.locator(':focus')).toBeVisible();"); n != len(req.Keys) {
		t.Errorf("focus checks = %d, want one per key (%d)", n, len(req.Keys))
	}
}

func TestComplianceTags(t *testing.T) {
	tests := []struct {
		level types.ComplianceLevel
		want  []string
	}{
		{types.ComplianceWCAGA, []string{"wcag2a"}},
		{types.ComplianceWCAGAA, []string{"wcag2a", "wcag2aa"}},
		{types.ComplianceWCAGAAA, []string{"wcag2a", "wcag2aa", "wcag2aaa"}},
		{types.ComplianceSection508, []string{"section508"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, complianceTags(tt.level)); diff != "" {
			t.Errorf("complianceTags(%s) mismatch (-want +got):\n%s", tt.level, diff)
		}
	}
}

func TestJSHelpers(t *testing.T) {
	if got := jsString(`it's a "test"`); got != `'it\'s a "test"'` {
		t.Errorf("jsString() = %s", got)
	}
	if got := jsString("line\nbreak"); got != `'line\nbreak'` {
		t.Errorf("jsString() = %s", got)
	}
	if got := jsStringList([]string{"a", "b"}); got != "['a', 'b']" {
		t.Errorf("jsStringList() = %s", got)
	}

	identTests := []struct {
		in, want string
	}{
		{"authToken", "authToken"},
		{"user-id", "user_id"},
		{"9lives", "_9lives"},
		{"", "_"},
	}
	for _, tt := range identTests {
		if got := jsIdent(tt.in); got != tt.want {
			t.Errorf("jsIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := jsAccess("token"); got != ".token" {
		t.Errorf("jsAccess() = %q", got)
	}
	if got := jsAccess("user id"); got != "['user id']" {
		t.Errorf("jsAccess() = %q", got)
	}
	if got := envKey("session"); got != "SESSION" {
		t.Errorf("envKey() = %q", got)
	}
	if got := envKey("api-token"); got != "API_TOKEN" {
		t.Errorf("envKey() = %q", got)
	}
}
