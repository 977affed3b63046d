package synth

import (
	"regexp"
	"strconv"
	"strings"

	"specforge/internal/recognize"
	"specforge/internal/types"
)

// =============================================================================
// DIRECT-INSTRUCTION STEPS
// =============================================================================
// An instruction with explicit step verbs or list structure is the author's
// own test plan: it is split into steps and sniffed per step instead of being
// run through the pattern recognizer. A step contributes one requirement per
// category it matches; steps that match nothing contribute nothing.

var (
	stepVerbRe = regexp.MustCompile(`(?i)\b(press|store|verify|load|send)\b`)
	numberedRe = regexp.MustCompile(`(?:^|\s)\d+[.)]\s+`)

	// connectorVerbRe rewrites "and <verb>" / "then <verb>" joints into hard
	// step breaks. Connectors not followed by an action verb stay inside the
	// clause, so "body {...} and a bearer token" remains one step while
	// "... and verify status code" becomes two.
	connectorVerbRe = regexp.MustCompile(`(?i)(?:,\s+|\s+)(?:and\s+then|and|then)\s+(press|store|verify|load|send|check|click|expect|assert|confirm|ensure|inspect|measure|hit|call|navigate|open|go|test|scan|run)\b`)
	splitRe         = regexp.MustCompile(`\s*(?:;|\r?\n|,\s+)\s*`)

	methodRe  = regexp.MustCompile(`(?i)\b(get|post|put|delete|patch|head)\b`)
	urlRe     = regexp.MustCompile(`https?://[^\s"'<>]+`)
	pathRe    = regexp.MustCompile(`(?:^|\s)(/[^\s"',;]+)`)
	statusRe  = regexp.MustCompile(`\b([1-5]\d{2})\b`)
	millisRe  = regexp.MustCompile(`\b(\d+)\s*(?:ms\b|millisecond)`)
	secondsRe = regexp.MustCompile(`\b(\d+)\s*sec(?:ond)?s?\b`)
	quotedRe  = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	storeRe   = regexp.MustCompile(`(?i)\bstore\s+(?:the\s+)?(.+?)(?:\s+as\s+([A-Za-z_][A-Za-z0-9_]*))?\s*$`)
	loadRe    = regexp.MustCompile(`(?i)\bload\s+(?:the\s+|saved\s+|stored\s+)*([A-Za-z0-9_.-]+)`)
	headerRe  = regexp.MustCompile(`(?i)\bheader\s+"?([A-Za-z][A-Za-z0-9-]*)"?`)
	bodyRe    = regexp.MustCompile(`(?i)\b(?:body|payload)\s+(\{.*\}|'[^']*'|"[^"]*")`)
)

// isDirectInstruction reports whether the instruction reads as an explicit
// step sequence.
func isDirectInstruction(lower string) bool {
	return stepVerbRe.MatchString(lower) ||
		numberedRe.MatchString(lower) ||
		strings.ContainsAny(lower, ";,")
}

// splitSteps breaks an instruction into ordered steps. Splitting runs on the
// raw text so extracted URLs, variable names and quoted payloads keep their
// case.
func splitSteps(raw string) []string {
	s := numberedRe.ReplaceAllString(raw, ";")
	s = connectorVerbRe.ReplaceAllString(s, ";$1")
	parts := splitRe.Split(s, -1)
	steps := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), ".,;"))
		lower := strings.ToLower(p)
		switch {
		case strings.HasPrefix(lower, "and "):
			p = strings.TrimSpace(p[4:])
		case strings.HasPrefix(lower, "then "):
			p = strings.TrimSpace(p[5:])
		}
		if p == "" || strings.EqualFold(p, "then") || strings.EqualFold(p, "and") {
			continue
		}
		steps = append(steps, p)
	}
	return steps
}

// applySteps sniffs every step in order. API steps are classified exclusively
// (a step is one of verify/store/load/send); the accessibility rules below
// each apply independently, so one step can feed several categories.
func applySteps(set *types.RequirementSet, steps []string) {
	for _, step := range steps {
		lower := strings.ToLower(step)
		applyAPIStep(set, step, lower)
		for _, rule := range a11yStepRules {
			if rule.match(lower) {
				rule.apply(step, lower, set)
			}
		}
	}
}

// =============================================================================
// API STEP PARSING
// =============================================================================

// applyAPIStep appends at most one API call for the step. Order of appends
// follows step order, which downstream rendering preserves: a verify step
// refers to the request sent before it.
func applyAPIStep(set *types.RequirementSet, step, lower string) {
	switch {
	case isVerifyStep(lower):
		set.APICalls = append(set.APICalls, buildVerifyCall(step, lower))
	case strings.Contains(lower, "store") && storeRe.MatchString(step):
		set.APICalls = append(set.APICalls, buildStoreCall(step))
	case isLoadStep(lower):
		set.APICalls = append(set.APICalls, buildLoadCall(step))
	case isSendStep(lower):
		set.APICalls = append(set.APICalls, buildSendCall(step, lower))
	}
}

// isVerifyStep requires both a verification verb and an API-shaped target, so
// "verify alt text" stays with the accessibility rules.
func isVerifyStep(lower string) bool {
	verb := strings.HasPrefix(lower, "verify") || strings.HasPrefix(lower, "expect") ||
		strings.HasPrefix(lower, "assert")
	if !verb {
		return false
	}
	for _, target := range []string{"status", "code", "response", "body", "header", "json", "latency", " ms", "millisecond", "second", "time"} {
		if strings.Contains(lower, target) {
			return true
		}
	}
	return false
}

func isLoadStep(lower string) bool {
	m := loadRe.FindStringSubmatch(lower)
	if m == nil {
		return false
	}
	switch m[1] {
	case "page", "site", "website", "url":
		// Navigation, not a stored-value load; the template navigates anyway.
		return false
	}
	return true
}

func isSendStep(lower string) bool {
	if strings.Contains(lower, "request") || urlRe.MatchString(lower) {
		return true
	}
	return methodRe.MatchString(lower) && (strings.Contains(lower, "send") ||
		strings.Contains(lower, "call") || strings.Contains(lower, "hit"))
}

func buildSendCall(step, lower string) types.APICall {
	call := types.APICall{Type: types.APISendRequest, Method: "GET"}

	if m := methodRe.FindString(lower); m != "" {
		call.Method = strings.ToUpper(m)
	}
	if u := urlRe.FindString(step); u != "" {
		call.URL = strings.TrimRight(u, `",.;:!?)`)
	} else if m := pathRe.FindStringSubmatch(step); m != nil {
		call.URL = m[1]
	}
	if m := headerRe.FindStringSubmatch(step); m != nil && !headerStopword(m[1]) {
		if value := tailValue(step, lower); value != "" {
			call.Headers = map[string]string{canonicalHeader(m[1]): value}
		}
	}
	if m := bodyRe.FindStringSubmatch(step); m != nil {
		call.Body = strings.Trim(m[1], `"'`)
	}
	if strings.Contains(lower, "bearer") || strings.Contains(lower, "auth") {
		call.Auth = true
	}
	call.PerformanceMs = performanceMs(lower)
	return call
}

func buildVerifyCall(step, lower string) types.APICall {
	call := types.APICall{Type: types.APIVerify}
	call.PerformanceMs = performanceMs(lower)

	switch {
	case strings.Contains(lower, "status") || strings.Contains(lower, "code"):
		call.Target = "status"
		if m := statusRe.FindString(lower); m != "" {
			call.Expected = m
			call.ExpectStatus, _ = strconv.Atoi(m)
		}
	case call.PerformanceMs > 0:
		call.Target = "response-time"
	case strings.Contains(lower, "header"):
		call.Target = "header"
		if m := headerRe.FindStringSubmatch(step); m != nil && !headerStopword(m[1]) {
			call.Target = "header:" + canonicalHeader(m[1])
		}
		call.Expected = tailValue(step, lower)
	default:
		call.Target = "body"
		call.Expected = tailValue(step, lower)
	}
	return call
}

func buildStoreCall(step string) types.APICall {
	call := types.APICall{Type: types.APIStore}
	if m := storeRe.FindStringSubmatch(step); m != nil {
		call.Target = normalizeStoreTarget(m[1])
		call.StoreAs = m[2]
	}
	if call.StoreAs == "" {
		call.StoreAs = "stored"
	}
	return call
}

func buildLoadCall(step string) types.APICall {
	call := types.APICall{Type: types.APILoad}
	if m := loadRe.FindStringSubmatch(step); m != nil {
		call.Target = strings.ToLower(m[1])
	}
	return call
}

// tailValue pulls the expected value out of a verify clause: a quoted string
// first, else whatever follows the comparison word.
func tailValue(step, lower string) string {
	if m := quotedRe.FindStringSubmatch(step); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	for _, word := range []string{" equals ", " contains ", " is ", " to be ", " matches "} {
		if i := strings.Index(lower, word); i >= 0 {
			return strings.TrimSpace(step[i+len(word):])
		}
	}
	return ""
}

func performanceMs(lower string) int {
	if m := millisRe.FindStringSubmatch(lower); m != nil {
		ms, _ := strconv.Atoi(m[1])
		return ms
	}
	if m := secondsRe.FindStringSubmatch(lower); m != nil {
		s, _ := strconv.Atoi(m[1])
		return s * 1000
	}
	return 0
}

func normalizeStoreTarget(target string) string {
	t := strings.ToLower(strings.TrimSpace(target))
	t = strings.TrimPrefix(t, "the ")
	t = strings.TrimPrefix(t, "response ")
	return t
}

// headerStopword filters filler words that land after "header" in prose
// ("verify the header and body match") so they are not taken for names.
func headerStopword(word string) bool {
	switch strings.ToLower(word) {
	case "and", "or", "the", "is", "are", "to", "value", "values", "with":
		return true
	}
	return false
}

// canonicalHeader normalizes header names to their wire casing.
func canonicalHeader(name string) string {
	parts := strings.Split(strings.ToLower(name), "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}

// =============================================================================
// ACCESSIBILITY STEP RULES
// =============================================================================

type a11yStepRule struct {
	match func(lower string) bool
	apply func(step, lower string, set *types.RequirementSet)
}

func containsAny(lower string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

var tabWordRe = regexp.MustCompile(`\btab(?:bing|s)?\b`)

var a11yStepRules = []a11yStepRule{
	{
		// Live regions run before the generic ARIA rule so "aria-live" does
		// not also synthesize a label check.
		match: func(lower string) bool {
			return containsAny(lower, "aria-live", "live region", "announce")
		},
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeARIA(set, types.ARIACompliance{
				Type:       types.ARIALive,
				Attributes: []string{"aria-live"},
				Scope:      []string{"[aria-live]", "[role=status]", "[role=alert]"},
				Criteria:   recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool {
			return containsAny(lower, "aria", "role", "screen reader") &&
				!containsAny(lower, "aria-live", "live region")
		},
		apply: func(step, lower string, set *types.RequirementSet) {
			subtype, attrs := ariaSubtype(lower)
			mergeARIA(set, types.ARIACompliance{
				Type:       subtype,
				Attributes: attrs,
				Scope:      []string{"button", "a", "input"},
				Criteria:   recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool { return containsAny(lower, "alt", "image") },
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeDOM(set, types.DOMInspection{
				Type:            types.DOMImageAlt,
				Selectors:       []string{"img"},
				ValidationRules: []string{"has-alt-attribute", "alt-text-meaningful"},
				Criteria:        recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool {
			return strings.Contains(lower, "label") && !strings.Contains(lower, "aria")
		},
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeDOM(set, types.DOMInspection{
				Type:            types.DOMFormLabels,
				Selectors:       []string{"input", "select", "textarea"},
				ValidationRules: []string{"has-associated-label"},
				Criteria:        recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool { return strings.Contains(lower, "heading") },
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeDOM(set, types.DOMInspection{
				Type:            types.DOMHeadingStructure,
				Selectors:       []string{"h1", "h2", "h3", "h4", "h5", "h6"},
				ValidationRules: []string{"heading-levels-sequential", "single-h1"},
				Criteria:        recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool { return strings.Contains(lower, "landmark") },
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeDOM(set, types.DOMInspection{
				Type:            types.DOMLandmarkRoles,
				Selectors:       []string{"main", "nav", "header", "footer", "aside"},
				ValidationRules: []string{"landmarks-present", "landmarks-unique"},
				Criteria:        recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool {
			return containsAny(lower, "link text", "link purpose")
		},
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeDOM(set, types.DOMInspection{
				Type:            types.DOMLinkText,
				Selectors:       []string{"a"},
				ValidationRules: []string{"link-text-descriptive"},
				Criteria:        recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool { return strings.Contains(lower, "press") },
		apply: func(step, lower string, set *types.RequirementSet) {
			keys := pressedKeys(lower)
			subtype := types.KeyboardShortcuts
			checks := []string{"activation-follows-key"}
			if tabOnly(keys) {
				subtype = types.KeyboardTabSequence
				checks = []string{"focus-order-matches-dom"}
			}
			mergeKeyboard(set, types.KeyboardNavigation{
				Type:     subtype,
				Keys:     keys,
				Checks:   checks,
				Criteria: recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool {
			return (tabWordRe.MatchString(lower) || strings.Contains(lower, "keyboard")) &&
				!containsAny(lower, "trap", "press")
		},
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeKeyboard(set, types.KeyboardNavigation{
				Type:     types.KeyboardTabSequence,
				Keys:     []string{"Tab"},
				Checks:   []string{"focus-order-matches-dom"},
				Criteria: recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool { return containsAny(lower, "focus", "trap") },
		apply: func(step, lower string, set *types.RequirementSet) {
			subtype, keys, checks := keyboardSubtype(lower)
			mergeKeyboard(set, types.KeyboardNavigation{
				Type:     subtype,
				Keys:     keys,
				Checks:   checks,
				Criteria: recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool { return containsAny(lower, "contrast", "color blind") },
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeVisual(set, types.VisualAccessibility{
				Type:      types.VisualColorContrast,
				Threshold: contrastThreshold(lower),
				Checks:    []string{"contrast-ratio-meets-threshold"},
				Criteria:  recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool { return containsAny(lower, "resize", "zoom", "text size") },
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeVisual(set, types.VisualAccessibility{
				Type:      types.VisualTextResize,
				Threshold: "200%",
				Checks:    []string{"content-intact-at-zoom"},
				Criteria:  recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool { return containsAny(lower, "motion", "animation") },
		apply: func(step, lower string, set *types.RequirementSet) {
			mergeVisual(set, types.VisualAccessibility{
				Type:     types.VisualMotionReduction,
				Checks:   []string{"respects-prefers-reduced-motion"},
				Criteria: recognize.ExtractCriteria(lower),
			})
		},
	},
	{
		match: func(lower string) bool {
			return containsAny(lower, "wcag", "508", "compliance", "conformance", "audit")
		},
		apply: func(step, lower string, set *types.RequirementSet) {
			g := types.ComplianceGuideline{Level: complianceLevel(lower)}
			for _, ref := range recognize.ExtractCriteria(lower) {
				g.Criteria = appendMissing(g.Criteria, ref)
				g.Guidelines = appendMissing(g.Guidelines, guidelineName(ref))
			}
			mergeGuideline(set, g)
		},
	},
}

// keyPatterns maps spoken key names to automation identifiers. Matched
// spans are blanked as they are claimed so "shift+tab" does not also count
// as "tab".
var keyPatterns = []struct {
	re  *regexp.Regexp
	key string
}{
	{regexp.MustCompile(`\bshift[+ ]tab\b`), "Shift+Tab"},
	{regexp.MustCompile(`\btab\b`), "Tab"},
	{regexp.MustCompile(`\benter\b|\breturn key\b`), "Enter"},
	{regexp.MustCompile(`\bescape\b|\besc\b`), "Escape"},
	{regexp.MustCompile(`\bspace(?:bar)?\b`), "Space"},
	{regexp.MustCompile(`\b(?:arrow down|down arrow)\b`), "ArrowDown"},
	{regexp.MustCompile(`\b(?:arrow up|up arrow)\b`), "ArrowUp"},
	{regexp.MustCompile(`\b(?:arrow left|left arrow)\b`), "ArrowLeft"},
	{regexp.MustCompile(`\b(?:arrow right|right arrow)\b`), "ArrowRight"},
}

// pressedKeys extracts the keys named in a press step, defaulting to Tab.
func pressedKeys(lower string) []string {
	var keys []string
	remaining := lower
	for _, kp := range keyPatterns {
		if kp.re.MatchString(remaining) {
			keys = append(keys, kp.key)
			remaining = kp.re.ReplaceAllString(remaining, " ")
		}
	}
	if len(keys) == 0 {
		keys = []string{"Tab"}
	}
	return keys
}

func tabOnly(keys []string) bool {
	for _, k := range keys {
		if k != "Tab" && k != "Shift+Tab" {
			return false
		}
	}
	return true
}
