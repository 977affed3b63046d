package recognize

import (
	"specforge/internal/types"
)

// =============================================================================
// RECOGNIZER TRIGGER CORPUS
// =============================================================================
// One spec per pattern category, scanned in the order listed here. Trigger
// order inside a spec is significant: emitted patterns keep it, which keeps
// synthesized requirement order reproducible. Weights encode specificity,
// so "aria-label" outranks a bare "aria".

// trigger is one phrase the recognizer scans for, with its synthesis hints.
type trigger struct {
	phrase   string
	weight   float64
	elements []string
	criteria []string
}

// categorySpec groups the triggers of one pattern category with the
// interaction and validation hints every pattern in the category shares.
type categorySpec struct {
	category     types.PatternCategory
	interactions []string
	validations  []string
	triggers     []trigger
}

// builtinSpecs is the fixed recognizer order: images, form labels, tab
// sequence, focus, ARIA, live regions, contrast, compliance.
var builtinSpecs = []categorySpec{
	{
		category:     types.PatternImageAlt,
		interactions: []string{"inspect"},
		validations:  []string{"attribute-present", "attribute-nonempty"},
		triggers: []trigger{
			{phrase: "alt text", weight: 0.9, elements: []string{"img"}, criteria: []string{"1.1.1"}},
			{phrase: "alt attribute", weight: 0.9, elements: []string{"img", "[role=img]"}, criteria: []string{"1.1.1"}},
			{phrase: "image description", weight: 0.7, elements: []string{"img"}, criteria: []string{"1.1.1"}},
			{phrase: "decorative image", weight: 0.75, elements: []string{"img[alt='']"}, criteria: []string{"1.1.1"}},
			{phrase: "image", weight: 0.5, elements: []string{"img"}, criteria: []string{"1.1.1"}},
		},
	},
	{
		category:     types.PatternFormLabels,
		interactions: []string{"inspect"},
		validations:  []string{"label-associated"},
		triggers: []trigger{
			{phrase: "form label", weight: 0.85, elements: []string{"input", "select", "textarea", "label"}, criteria: []string{"1.3.1", "3.3.2"}},
			{phrase: "label for", weight: 0.8, elements: []string{"label[for]"}, criteria: []string{"1.3.1"}},
			{phrase: "input label", weight: 0.8, elements: []string{"input", "label"}, criteria: []string{"3.3.2"}},
			{phrase: "unlabeled", weight: 0.75, elements: []string{"input", "select", "textarea"}, criteria: []string{"3.3.2"}},
			{phrase: "label", weight: 0.55, elements: []string{"label"}, criteria: []string{"3.3.2"}},
		},
	},
	{
		category:     types.PatternTabSequence,
		interactions: []string{"press-tab"},
		validations:  []string{"order"},
		triggers: []trigger{
			{phrase: "tab order", weight: 0.9, elements: []string{"a", "button", "input", "[tabindex]"}, criteria: []string{"2.4.3"}},
			{phrase: "tab sequence", weight: 0.9, elements: []string{"a", "button", "input", "[tabindex]"}, criteria: []string{"2.4.3"}},
			{phrase: "keyboard navigation", weight: 0.85, elements: []string{"a", "button", "input", "[tabindex]"}, criteria: []string{"2.1.1"}},
			{phrase: "keyboard accessible", weight: 0.8, elements: []string{"a", "button", "input"}, criteria: []string{"2.1.1"}},
			{phrase: "tab through", weight: 0.8, elements: []string{"a", "button", "input"}, criteria: []string{"2.4.3"}},
			{phrase: "tab key", weight: 0.8, elements: []string{"[tabindex]"}, criteria: []string{"2.1.1"}},
		},
	},
	{
		category:     types.PatternFocusManagement,
		interactions: []string{"press-tab", "press-shift-tab"},
		validations:  []string{"visibility", "containment"},
		triggers: []trigger{
			{phrase: "keyboard trap", weight: 0.9, elements: []string{"dialog", "[role=dialog]"}, criteria: []string{"2.1.2"}},
			{phrase: "focus order", weight: 0.85, elements: []string{"a", "button", "input"}, criteria: []string{"2.4.3"}},
			{phrase: "focus visible", weight: 0.85, elements: []string{":focus"}, criteria: []string{"2.4.7"}},
			{phrase: "focus indicator", weight: 0.85, elements: []string{":focus"}, criteria: []string{"2.4.7"}},
			{phrase: "focus ring", weight: 0.8, elements: []string{":focus"}, criteria: []string{"2.4.7"}},
			{phrase: "focus management", weight: 0.85, elements: []string{":focus"}, criteria: []string{"2.4.3"}},
			{phrase: "focus", weight: 0.6, elements: []string{":focus"}, criteria: []string{"2.4.7"}},
		},
	},
	{
		category:     types.PatternARIAAttributes,
		interactions: []string{"inspect"},
		validations:  []string{"attribute-present", "name-computed"},
		triggers: []trigger{
			{phrase: "aria-labelledby", weight: 0.95, elements: []string{"[aria-labelledby]"}, criteria: []string{"4.1.2"}},
			{phrase: "aria-describedby", weight: 0.95, elements: []string{"[aria-describedby]"}, criteria: []string{"4.1.2"}},
			{phrase: "aria-label", weight: 0.95, elements: []string{"[aria-label]"}, criteria: []string{"4.1.2"}},
			{phrase: "role attribute", weight: 0.9, elements: []string{"[role]"}, criteria: []string{"4.1.2"}},
			{phrase: "aria role", weight: 0.9, elements: []string{"[role]"}, criteria: []string{"4.1.2"}},
			{phrase: "screen reader", weight: 0.9, elements: []string{"[aria-label]", "[role]"}, criteria: []string{"4.1.2"}},
			{phrase: "accessible name", weight: 0.85, elements: []string{"button", "a", "[aria-label]"}, criteria: []string{"4.1.2", "2.5.3"}},
			{phrase: "aria", weight: 0.7, elements: []string{"[aria-label]", "[role]"}, criteria: []string{"4.1.2"}},
		},
	},
	{
		category:     types.PatternLiveRegions,
		interactions: []string{"observe"},
		validations:  []string{"announcement"},
		triggers: []trigger{
			{phrase: "aria-live", weight: 0.95, elements: []string{"[aria-live]"}, criteria: []string{"4.1.3"}},
			{phrase: "live region", weight: 0.85, elements: []string{"[aria-live]", "[role=status]", "[role=alert]"}, criteria: []string{"4.1.3"}},
			{phrase: "status message", weight: 0.7, elements: []string{"[role=status]"}, criteria: []string{"4.1.3"}},
			{phrase: "dynamic content", weight: 0.6, elements: []string{"[aria-live]"}, criteria: []string{"4.1.3"}},
			{phrase: "announcement", weight: 0.6, elements: []string{"[aria-live]"}, criteria: []string{"4.1.3"}},
		},
	},
	{
		category:     types.PatternColorContrast,
		interactions: []string{"measure"},
		validations:  []string{"contrast-threshold"},
		triggers: []trigger{
			{phrase: "4.5:1", weight: 0.95, elements: []string{"body", "p", "span", "a", "button"}, criteria: []string{"1.4.3"}},
			{phrase: "color contrast", weight: 0.9, elements: []string{"body", "p", "span", "a", "button"}, criteria: []string{"1.4.3"}},
			{phrase: "contrast ratio", weight: 0.9, elements: []string{"body", "p", "span", "a", "button"}, criteria: []string{"1.4.3"}},
			{phrase: "color blind", weight: 0.7, elements: []string{"body"}, criteria: []string{"1.4.1"}},
			{phrase: "contrast", weight: 0.7, elements: []string{"body", "p", "a"}, criteria: []string{"1.4.3"}},
		},
	},
	{
		category:     types.PatternComplianceCriteria,
		interactions: []string{"audit"},
		validations:  []string{"criterion"},
		triggers: []trigger{
			{phrase: "wcag 2.2", weight: 0.9},
			{phrase: "wcag 2.1", weight: 0.9},
			{phrase: "wcag 2.0", weight: 0.85},
			{phrase: "level aaa", weight: 0.85},
			{phrase: "level aa", weight: 0.85},
			{phrase: "section 508", weight: 0.85, criteria: []string{"1.1.1", "2.1.1"}},
			{phrase: "ada compliance", weight: 0.8},
			{phrase: "wcag", weight: 0.8},
		},
	},
}
