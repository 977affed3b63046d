package synth

import (
	"strings"

	"specforge/internal/types"
)

// =============================================================================
// PATTERN -> REQUIREMENT MAPPING
// =============================================================================
// The general path converts recognized patterns into typed requirements
// through an ordered list of (predicate, handler) pairs. Every rule whose
// predicate matches applies, and handlers merge into the set rather than
// append blindly, so overlapping triggers ("focus visible" + "focus") do not
// duplicate requirements of the same subtype.

type patternRule struct {
	match func(types.Pattern) bool
	apply func(types.Pattern, *types.RequirementSet)
}

func categoryIs(c types.PatternCategory) func(types.Pattern) bool {
	return func(p types.Pattern) bool { return p.Category == c }
}

var patternRules = []patternRule{
	{
		match: categoryIs(types.PatternImageAlt),
		apply: func(p types.Pattern, set *types.RequirementSet) {
			mergeDOM(set, types.DOMInspection{
				Type:            types.DOMImageAlt,
				Selectors:       selectorsOr(p, "img"),
				ValidationRules: []string{"has-alt-attribute", "alt-text-meaningful"},
				Criteria:        cloneStrings(p.Context.ComplianceReferences),
			})
		},
	},
	{
		match: categoryIs(types.PatternFormLabels),
		apply: func(p types.Pattern, set *types.RequirementSet) {
			mergeDOM(set, types.DOMInspection{
				Type:            types.DOMFormLabels,
				Selectors:       selectorsOr(p, "input", "select", "textarea"),
				ValidationRules: []string{"has-associated-label"},
				Criteria:        cloneStrings(p.Context.ComplianceReferences),
			})
		},
	},
	{
		match: categoryIs(types.PatternTabSequence),
		apply: func(p types.Pattern, set *types.RequirementSet) {
			mergeKeyboard(set, types.KeyboardNavigation{
				Type:     types.KeyboardTabSequence,
				Keys:     []string{"Tab"},
				Checks:   []string{"focus-order-matches-dom"},
				Criteria: cloneStrings(p.Context.ComplianceReferences),
			})
		},
	},
	{
		match: categoryIs(types.PatternFocusManagement),
		apply: func(p types.Pattern, set *types.RequirementSet) {
			subtype, keys, checks := keyboardSubtype(p.Text)
			mergeKeyboard(set, types.KeyboardNavigation{
				Type:     subtype,
				Keys:     keys,
				Checks:   checks,
				Criteria: cloneStrings(p.Context.ComplianceReferences),
			})
		},
	},
	{
		match: categoryIs(types.PatternARIAAttributes),
		apply: func(p types.Pattern, set *types.RequirementSet) {
			subtype, attrs := ariaSubtype(p.Text)
			mergeARIA(set, types.ARIACompliance{
				Type:       subtype,
				Attributes: attrs,
				Scope:      selectorsOr(p, "button", "a", "input"),
				Criteria:   cloneStrings(p.Context.ComplianceReferences),
			})
		},
	},
	{
		match: categoryIs(types.PatternLiveRegions),
		apply: func(p types.Pattern, set *types.RequirementSet) {
			mergeARIA(set, types.ARIACompliance{
				Type:       types.ARIALive,
				Attributes: []string{"aria-live"},
				Scope:      selectorsOr(p, "[aria-live]", "[role=status]", "[role=alert]"),
				Criteria:   cloneStrings(p.Context.ComplianceReferences),
			})
		},
	},
	{
		match: categoryIs(types.PatternColorContrast),
		apply: func(p types.Pattern, set *types.RequirementSet) {
			mergeVisual(set, types.VisualAccessibility{
				Type:      types.VisualColorContrast,
				Threshold: contrastThreshold(p.Text),
				Checks:    []string{"contrast-ratio-meets-threshold"},
				Criteria:  cloneStrings(p.Context.ComplianceReferences),
			})
		},
	},
	{
		match: categoryIs(types.PatternComplianceCriteria),
		apply: func(p types.Pattern, set *types.RequirementSet) {
			g := types.ComplianceGuideline{Level: complianceLevel(p.Text)}
			for _, ref := range p.Context.ComplianceReferences {
				g.Criteria = appendMissing(g.Criteria, ref)
				g.Guidelines = appendMissing(g.Guidelines, guidelineName(ref))
			}
			mergeGuideline(set, g)
		},
	},
}

// applyPatterns folds recognized patterns into requirements via the rule
// table, preserving pattern order.
func applyPatterns(set *types.RequirementSet, patterns []types.Pattern) {
	for _, p := range patterns {
		for _, rule := range patternRules {
			if rule.match(p) {
				rule.apply(p, set)
			}
		}
	}
}

// keyboardSubtype refines a focus-management trigger into the concrete check.
func keyboardSubtype(text string) (types.KeyboardNavigationType, []string, []string) {
	switch {
	case strings.Contains(text, "trap"):
		return types.KeyboardTrap, []string{"Tab", "Shift+Tab"}, []string{"focus-stays-in-dialog", "escape-releases-focus"}
	case strings.Contains(text, "visible") || strings.Contains(text, "indicator") || strings.Contains(text, "ring"):
		return types.KeyboardFocusVisible, []string{"Tab"}, []string{"focus-outline-visible"}
	default:
		return types.KeyboardFocusOrder, []string{"Tab"}, []string{"focus-order-logical"}
	}
}

// ariaSubtype refines an ARIA trigger into the attribute set under test.
func ariaSubtype(text string) (types.ARIAComplianceType, []string) {
	switch {
	case strings.Contains(text, "role"):
		return types.ARIARoles, []string{"role"}
	case strings.Contains(text, "accessible name"):
		return types.ARIAAccessibleName, []string{"aria-label", "aria-labelledby", "title"}
	case strings.Contains(text, "describedby") || strings.Contains(text, "state"):
		return types.ARIAStates, []string{"aria-describedby", "aria-expanded", "aria-checked"}
	default:
		return types.ARIALabels, []string{"aria-label", "aria-labelledby"}
	}
}

// contrastThreshold picks the ratio the check enforces. Large-text audits ask
// for 3:1; everything else gets the AA body-text ratio.
func contrastThreshold(text string) string {
	if strings.Contains(text, "3:1") && !strings.Contains(text, "4.5") {
		return "3:1"
	}
	return "4.5:1"
}

// complianceLevel reads a conformance target out of trigger text.
func complianceLevel(text string) types.ComplianceLevel {
	switch {
	case strings.Contains(text, "508"):
		return types.ComplianceSection508
	case strings.Contains(text, "aaa"):
		return types.ComplianceWCAGAAA
	default:
		return types.ComplianceWCAGAA
	}
}

// selectorsOr returns the pattern's element hints, or the given defaults when
// the pattern carries none.
func selectorsOr(p types.Pattern, defaults ...string) []string {
	if len(p.Context.ElementTypes) > 0 {
		return cloneStrings(p.Context.ElementTypes)
	}
	return defaults
}

// =============================================================================
// MERGE HELPERS
// =============================================================================

func mergeDOM(set *types.RequirementSet, in types.DOMInspection) {
	for i := range set.DOMInspections {
		if set.DOMInspections[i].Type == in.Type {
			set.DOMInspections[i].Selectors = appendMissing(set.DOMInspections[i].Selectors, in.Selectors...)
			set.DOMInspections[i].ValidationRules = appendMissing(set.DOMInspections[i].ValidationRules, in.ValidationRules...)
			set.DOMInspections[i].Criteria = appendMissing(set.DOMInspections[i].Criteria, in.Criteria...)
			return
		}
	}
	set.DOMInspections = append(set.DOMInspections, in)
}

func mergeKeyboard(set *types.RequirementSet, in types.KeyboardNavigation) {
	for i := range set.KeyboardNavigations {
		if set.KeyboardNavigations[i].Type == in.Type {
			set.KeyboardNavigations[i].Keys = appendMissing(set.KeyboardNavigations[i].Keys, in.Keys...)
			set.KeyboardNavigations[i].Checks = appendMissing(set.KeyboardNavigations[i].Checks, in.Checks...)
			set.KeyboardNavigations[i].Criteria = appendMissing(set.KeyboardNavigations[i].Criteria, in.Criteria...)
			return
		}
	}
	set.KeyboardNavigations = append(set.KeyboardNavigations, in)
}

func mergeARIA(set *types.RequirementSet, in types.ARIACompliance) {
	for i := range set.ARIACompliances {
		if set.ARIACompliances[i].Type == in.Type {
			set.ARIACompliances[i].Attributes = appendMissing(set.ARIACompliances[i].Attributes, in.Attributes...)
			set.ARIACompliances[i].Scope = appendMissing(set.ARIACompliances[i].Scope, in.Scope...)
			set.ARIACompliances[i].Criteria = appendMissing(set.ARIACompliances[i].Criteria, in.Criteria...)
			return
		}
	}
	set.ARIACompliances = append(set.ARIACompliances, in)
}

func mergeVisual(set *types.RequirementSet, in types.VisualAccessibility) {
	for i := range set.VisualAccessibilities {
		if set.VisualAccessibilities[i].Type == in.Type {
			if set.VisualAccessibilities[i].Threshold == "" {
				set.VisualAccessibilities[i].Threshold = in.Threshold
			}
			set.VisualAccessibilities[i].Checks = appendMissing(set.VisualAccessibilities[i].Checks, in.Checks...)
			set.VisualAccessibilities[i].Criteria = appendMissing(set.VisualAccessibilities[i].Criteria, in.Criteria...)
			return
		}
	}
	set.VisualAccessibilities = append(set.VisualAccessibilities, in)
}

func mergeGuideline(set *types.RequirementSet, in types.ComplianceGuideline) {
	for i := range set.ComplianceGuidelines {
		if set.ComplianceGuidelines[i].Level == in.Level {
			set.ComplianceGuidelines[i].Guidelines = appendMissing(set.ComplianceGuidelines[i].Guidelines, in.Guidelines...)
			set.ComplianceGuidelines[i].Criteria = appendMissing(set.ComplianceGuidelines[i].Criteria, in.Criteria...)
			return
		}
	}
	set.ComplianceGuidelines = append(set.ComplianceGuidelines, in)
}
