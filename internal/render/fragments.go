package render

import (
	"fmt"
	"strings"

	"specforge/internal/types"
)

// =============================================================================
// ACCESSIBILITY FRAGMENTS
// =============================================================================
//
// One builder per requirement family. The ordinal n is the requirement's
// 1-based position inside its family and suffixes any const the fragment
// declares, so repeated requirements never redeclare a name.

func domFragment(req types.DOMInspection, n int) fragment {
	f := fragment{comment: banner("dom-inspection", string(req.Type), req.Criteria)}
	switch req.Type {
	case types.DOMImageAlt:
		sel := selectorList(req.Selectors, []string{"img"})
		f.lines = []string{
			fmt.Sprintf("for (const el of await page.locator(%s).all()) {", jsString(sel)),
			indent + "await expect(el).toHaveAttribute('alt', /\\S+/);",
			"}",
		}
	case types.DOMFormLabels:
		sel := selectorList(req.Selectors, []string{"input", "select", "textarea"})
		f.lines = []string{
			fmt.Sprintf("for (const el of await page.locator(%s).all()) {", jsString(sel)),
			indent + "const id = await el.getAttribute('id');",
			indent + "const byFor = id ? await page.locator(`label[for=\"${id}\"]`).count() : 0;",
			indent + "const byAria = (await el.getAttribute('aria-label')) !== null",
			indent + indent + "|| (await el.getAttribute('aria-labelledby')) !== null;",
			indent + "expect(byFor > 0 || byAria).toBe(true);",
			"}",
		}
	case types.DOMHeadingStructure:
		sel := selectorList(req.Selectors, []string{"h1", "h2", "h3", "h4", "h5", "h6"})
		levels := fmt.Sprintf("headingLevels%d", n)
		f.lines = []string{
			"expect(await page.locator('h1').count()).toBe(1);",
			fmt.Sprintf("const %s = await page.locator(%s).evaluateAll(", levels, jsString(sel)),
			indent + "(els) => els.map((el) => Number(el.tagName.slice(1))));",
			fmt.Sprintf("for (let i = 1; i < %s.length; i++) {", levels),
			indent + fmt.Sprintf("expect(%s[i] - %s[i - 1]).toBeLessThanOrEqual(1);", levels, levels),
			"}",
		}
	case types.DOMLandmarkRoles:
		others := landmarkPresence(req.Selectors)
		f.lines = []string{
			"await expect(page.locator('main')).toHaveCount(1);",
			fmt.Sprintf("expect(await page.locator(%s).count()).toBeGreaterThan(0);", jsString(others)),
		}
	case types.DOMLinkText:
		sel := selectorList(req.Selectors, []string{"a"})
		f.lines = []string{
			fmt.Sprintf("for (const el of await page.locator(%s).all()) {", jsString(sel)),
			indent + "const text = ((await el.textContent()) ?? '').trim().toLowerCase();",
			indent + "expect(text.length).toBeGreaterThan(0);",
			indent + "expect(['click here', 'here', 'more', 'read more', 'link']).not.toContain(text);",
			"}",
		}
	default:
		f.lines = []string{
			fmt.Sprintf("expect(await page.locator(%s).count()).toBeGreaterThan(0);",
				jsString(selectorList(req.Selectors, []string{"body"}))),
		}
	}
	return f
}

// landmarkPresence drops "main" from the presence check since it gets its own
// exact-count assertion.
func landmarkPresence(selectors []string) string {
	var others []string
	for _, s := range selectors {
		if s != "main" {
			others = append(others, s)
		}
	}
	if len(others) == 0 {
		others = []string{"nav", "header", "footer", "aside"}
	}
	return strings.Join(others, ", ")
}

func keyboardFragment(req types.KeyboardNavigation) fragment {
	f := fragment{comment: banner("keyboard-navigation", string(req.Type), req.Criteria)}
	if len(req.Checks) > 0 {
		f.comment += " checks " + strings.Join(req.Checks, ", ")
	}
	keys := req.Keys
	if len(keys) == 0 {
		keys = []string{"Tab"}
	}
	for _, key := range keys {
		f.lines = append(f.lines,
			fmt.Sprintf("await page.keyboard.press(%s);", jsString(key)),
			"await expect(page.locator(':focus')).toBeVisible();",
		)
	}
	return f
}

func ariaFragment(req types.ARIACompliance) fragment {
	f := fragment{comment: banner("aria-compliance", string(req.Type), req.Criteria)}
	scope := strings.Join(req.Scope, ", ")
	if scope == "" {
		scope = "button, a, input"
	}
	if req.Type == types.ARIALive {
		f.lines = []string{
			fmt.Sprintf("expect(await page.locator(%s).count()).toBeGreaterThan(0);", jsString(scope)),
		}
		return f
	}
	attrs := req.Attributes
	if len(attrs) == 0 {
		attrs = []string{"aria-label"}
	}
	f.lines = append(f.lines, fmt.Sprintf("for (const el of await page.locator(%s).all()) {", jsString(scope)))
	for i, attr := range attrs {
		lead := indent + "const present = "
		if i > 0 {
			lead = indent + indent + "|| "
		}
		tail := ""
		if i == len(attrs)-1 {
			tail = ";"
		}
		f.lines = append(f.lines, fmt.Sprintf("%s(await el.getAttribute(%s)) !== null%s", lead, jsString(attr), tail))
	}
	f.lines = append(f.lines,
		indent+"expect(present).toBe(true);",
		"}",
	)
	return f
}

func visualFragment(req types.VisualAccessibility, n int) fragment {
	label := string(req.Type)
	if req.Threshold != "" {
		label += " threshold " + req.Threshold
	}
	f := fragment{comment: banner("visual-accessibility", label, req.Criteria)}
	switch req.Type {
	case types.VisualColorContrast:
		results := fmt.Sprintf("contrastResults%d", n)
		f.lines = []string{
			fmt.Sprintf("const %s = await new AxeBuilder({ page })", results),
			indent + ".withRules(['color-contrast'])",
			indent + ".analyze();",
			fmt.Sprintf("expect(%s.violations).toEqual([]);", results),
		}
	case types.VisualTextResize:
		zoom := req.Threshold
		if zoom == "" {
			zoom = "200%"
		}
		f.lines = []string{
			fmt.Sprintf("await page.evaluate(() => { document.body.style.zoom = %s; });", jsString(zoom)),
			"await expect(page.locator('body')).toBeVisible();",
			"await page.evaluate(() => { document.body.style.zoom = ''; });",
		}
	case types.VisualFocusIndicator:
		outline := fmt.Sprintf("outlineStyle%d", n)
		f.lines = []string{
			"await page.keyboard.press('Tab');",
			fmt.Sprintf("const %s = await page.locator(':focus').evaluate((el) => getComputedStyle(el).outlineStyle);", outline),
			fmt.Sprintf("expect(%s).not.toBe('none');", outline),
		}
	case types.VisualMotionReduction:
		running := fmt.Sprintf("runningAnimations%d", n)
		f.lines = []string{
			"await page.emulateMedia({ reducedMotion: 'reduce' });",
			fmt.Sprintf("const %s = await page.evaluate(() => document.getAnimations().length);", running),
			fmt.Sprintf("expect(%s).toBe(0);", running),
		}
	default:
		f.lines = []string{"await expect(page.locator('body')).toBeVisible();"}
	}
	return f
}

func complianceFragment(req types.ComplianceGuideline, n int) fragment {
	f := fragment{comment: banner("compliance-audit", string(req.Level), req.Criteria)}
	results := fmt.Sprintf("auditResults%d", n)
	f.lines = []string{
		fmt.Sprintf("const %s = await new AxeBuilder({ page })", results),
		indent + fmt.Sprintf(".withTags(%s)", jsStringList(complianceTags(req.Level))),
		indent + ".analyze();",
		fmt.Sprintf("expect(%s.violations).toEqual([]);", results),
	}
	return f
}

// complianceTags maps a conformance level onto scanning-engine rule tags.
func complianceTags(level types.ComplianceLevel) []string {
	switch level {
	case types.ComplianceWCAGA:
		return []string{"wcag2a"}
	case types.ComplianceWCAGAAA:
		return []string{"wcag2a", "wcag2aa", "wcag2aaa"}
	case types.ComplianceSection508:
		return []string{"section508"}
	default:
		return []string{"wcag2a", "wcag2aa"}
	}
}

// =============================================================================
// SCAN FRAGMENT
// =============================================================================

// scanFragment renders the scanning-engine block every non-API test closes
// with. The violation policy decides whether violations fail the test or are
// only reported.
func scanFragment(cfg types.ScanConfig) fragment {
	ruleSets := cfg.RuleSets
	if len(ruleSets) == 0 {
		ruleSets = []string{"wcag2a", "wcag2aa", "wcag21aa"}
	}
	policy := cfg.Policy
	if policy == "" {
		policy = types.PolicyFailOnViolation
	}

	f := fragment{
		comment: fmt.Sprintf("page-scan: %s (%s)", strings.Join(ruleSets, ", "), policy),
		lines: []string{
			"const scanResults = await new AxeBuilder({ page })",
			indent + fmt.Sprintf(".withTags(%s)", jsStringList(ruleSets)),
			indent + ".analyze();",
		},
	}
	if cfg.Report == types.ReportDetailed {
		f.lines = append(f.lines, "console.log(JSON.stringify(scanResults.violations, null, 2));")
	}
	switch policy {
	case types.PolicyWarnOnViolation:
		f.lines = append(f.lines,
			"for (const violation of scanResults.violations) {",
			indent+"console.warn(`axe violation: ${violation.id} (${violation.impact})`);",
			"}",
		)
	case types.PolicyLogOnly:
		f.lines = append(f.lines,
			"for (const violation of scanResults.violations) {",
			indent+"console.log(`axe violation: ${violation.id} (${violation.impact})`);",
			"}",
		)
	default:
		f.lines = append(f.lines, "expect(scanResults.violations).toEqual([]);")
	}
	return f
}

// banner builds a fragment's comment line: family, sub-type, criteria refs.
func banner(family, detail string, criteria []string) string {
	if len(criteria) == 0 {
		return fmt.Sprintf("%s: %s", family, detail)
	}
	return fmt.Sprintf("%s: %s (criteria %s)", family, detail, strings.Join(criteria, ", "))
}
