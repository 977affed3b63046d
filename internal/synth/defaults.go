package synth

import (
	"specforge/internal/types"
)

// =============================================================================
// CANONICAL DEFAULTS
// =============================================================================
// Synthesized requirements never leave with an empty criteria list: when an
// instruction names no explicit criterion, the canonical list for the
// requirement type applies.

var domCriteria = map[types.DOMInspectionType][]string{
	types.DOMImageAlt:         {"1.1.1"},
	types.DOMFormLabels:       {"1.3.1", "3.3.2"},
	types.DOMHeadingStructure: {"1.3.1", "2.4.6"},
	types.DOMLandmarkRoles:    {"1.3.1"},
	types.DOMLinkText:         {"2.4.4"},
}

var keyboardCriteria = map[types.KeyboardNavigationType][]string{
	types.KeyboardTabSequence:  {"2.4.3"},
	types.KeyboardFocusOrder:   {"2.4.3"},
	types.KeyboardFocusVisible: {"2.4.7"},
	types.KeyboardTrap:         {"2.1.2"},
	types.KeyboardShortcuts:    {"2.1.4"},
}

var ariaCriteria = map[types.ARIAComplianceType][]string{
	types.ARIALabels:         {"4.1.2"},
	types.ARIARoles:          {"4.1.2"},
	types.ARIALive:           {"4.1.3"},
	types.ARIAStates:         {"4.1.2"},
	types.ARIAAccessibleName: {"4.1.2", "2.5.3"},
}

var visualCriteria = map[types.VisualAccessibilityType][]string{
	types.VisualColorContrast:   {"1.4.3"},
	types.VisualTextResize:      {"1.4.4"},
	types.VisualFocusIndicator:  {"2.4.7"},
	types.VisualMotionReduction: {"2.3.3"},
}

var complianceCriteria = map[types.ComplianceLevel][]string{
	types.ComplianceWCAGA:      {"1.1.1", "2.1.1", "4.1.2"},
	types.ComplianceWCAGAA:     {"1.1.1", "1.3.1", "1.4.3", "2.1.1", "2.4.3", "2.4.7", "4.1.2"},
	types.ComplianceWCAGAAA:    {"1.4.6", "2.1.3", "2.4.8"},
	types.ComplianceSection508: {"1.1.1", "2.1.1", "4.1.2"},
}

// guidelineNames maps criterion identifiers to their guideline names, used
// when an audit requirement is derived from explicit references.
var guidelineNames = map[string]string{
	"1.1.1": "Non-text Content",
	"1.3.1": "Info and Relationships",
	"1.4.1": "Use of Color",
	"1.4.3": "Contrast (Minimum)",
	"1.4.4": "Resize Text",
	"1.4.6": "Contrast (Enhanced)",
	"2.1.1": "Keyboard",
	"2.1.2": "No Keyboard Trap",
	"2.1.3": "Keyboard (No Exception)",
	"2.1.4": "Character Key Shortcuts",
	"2.3.3": "Animation from Interactions",
	"2.4.3": "Focus Order",
	"2.4.4": "Link Purpose (In Context)",
	"2.4.6": "Headings and Labels",
	"2.4.7": "Focus Visible",
	"2.4.8": "Location",
	"2.5.3": "Label in Name",
	"3.3.2": "Labels or Instructions",
	"4.1.2": "Name, Role, Value",
	"4.1.3": "Status Messages",
}

// guidelineName resolves a criterion to its guideline name, falling back to
// the bare identifier for criteria outside the table.
func guidelineName(ref string) string {
	if name, ok := guidelineNames[ref]; ok {
		return name
	}
	return "Criterion " + ref
}

// ensureCriteria backfills the canonical defaults on every requirement whose
// criteria list came out empty. The per-family generic covers requirement
// types outside the canonical maps, so the non-empty invariant holds even for
// values injected by future pack extensions.
func ensureCriteria(set *types.RequirementSet) {
	for i := range set.DOMInspections {
		if len(set.DOMInspections[i].Criteria) == 0 {
			set.DOMInspections[i].Criteria = criteriaOr(domCriteria[set.DOMInspections[i].Type], "1.3.1")
		}
	}
	for i := range set.KeyboardNavigations {
		if len(set.KeyboardNavigations[i].Criteria) == 0 {
			set.KeyboardNavigations[i].Criteria = criteriaOr(keyboardCriteria[set.KeyboardNavigations[i].Type], "2.1.1")
		}
	}
	for i := range set.ARIACompliances {
		if len(set.ARIACompliances[i].Criteria) == 0 {
			set.ARIACompliances[i].Criteria = criteriaOr(ariaCriteria[set.ARIACompliances[i].Type], "4.1.2")
		}
	}
	for i := range set.VisualAccessibilities {
		if len(set.VisualAccessibilities[i].Criteria) == 0 {
			set.VisualAccessibilities[i].Criteria = criteriaOr(visualCriteria[set.VisualAccessibilities[i].Type], "1.4.3")
		}
	}
	for i := range set.ComplianceGuidelines {
		g := &set.ComplianceGuidelines[i]
		if len(g.Criteria) == 0 {
			g.Criteria = criteriaOr(complianceCriteria[g.Level], "4.1.2")
		}
		if len(g.Guidelines) == 0 {
			for _, ref := range g.Criteria {
				g.Guidelines = appendMissing(g.Guidelines, guidelineName(ref))
			}
		}
	}
}

func criteriaOr(canonical []string, generic string) []string {
	if len(canonical) == 0 {
		return []string{generic}
	}
	return cloneStrings(canonical)
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// appendMissing unions extras into list, keeping first-seen order.
func appendMissing(list []string, extras ...string) []string {
	for _, e := range extras {
		found := false
		for _, have := range list {
			if have == e {
				found = true
				break
			}
		}
		if !found {
			list = append(list, e)
		}
	}
	return list
}
