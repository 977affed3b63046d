package classify

import (
	"specforge/internal/types"
)

// =============================================================================
// KEYWORD TABLES - Deterministic Natural Language Understanding
// =============================================================================
// The tables define the corpus in Go structures to avoid parsing fragility.
// Matching is lowercase substring matching; no statistical models anywhere.
// YAML packs (loader.go) can replace any table wholesale for a deployment.

// TablesVersion identifies the built-in corpus revision.
const TablesVersion = "2025.08"

// DomainTable holds the trigger phrases for one scored domain.
type DomainTable struct {
	Domain   types.Domain
	Keywords []string
}

// A11yEntry is one enhanced accessibility trigger. Weight orders competing
// entries; element types and compliance refs are synthesis hints surfaced to
// downstream consumers.
type A11yEntry struct {
	Phrase       string
	Weight       float64
	Category     types.PatternCategory
	ElementTypes []string
	Compliance   []string
}

// Tables bundles every lookup table the classifier consults. Immutable after
// construction; build via DefaultTables or the YAML loader.
type Tables struct {
	Version       string
	Domains       []DomainTable
	Enhanced      []A11yEntry
	StrongSignals []string
}

// DefaultDomainData defines the base domain corpus.
var DefaultDomainData = []DomainTable{
	{
		Domain: types.DomainFunctional,
		Keywords: []string{
			"click", "submit", "button", "form", "login", "log in", "sign up",
			"navigate", "fill", "select", "checkout", "search", "workflow",
			"user flow", "end to end", "e2e", "smoke", "regression", "dropdown",
			"upload", "input field", "validate",
		},
	},
	{
		Domain: types.DomainAccessibility,
		Keywords: []string{
			"accessibility", "a11y", "wcag", "aria", "screen reader", "keyboard",
			"contrast", "alt text", "alt attribute", "focus", "tab order",
			"tab sequence", "assistive", "landmark", "skip link", "semantic",
			"section 508", "voiceover", "nvda", "color blind", "accessible",
		},
	},
	{
		Domain: types.DomainAPI,
		Keywords: []string{
			"api", "endpoint", "request", "response", "status code",
			"get request", "post request", "put request", "delete request",
			"rest api", "json", "payload", "header", "token", "graphql",
			"webhook", "latency", "rate limit", "bearer", "response time",
		},
	},
	{
		Domain: types.DomainSecurity,
		// "https" stays out of this table: URL arguments would trip it on
		// every API instruction.
		Keywords: []string{
			"security", "xss", "sql injection", "csrf", "vulnerability",
			"sanitize", "penetration", "injection", "certificate",
			"encryption", "owasp", "session hijack", "brute force",
			"auth bypass", "secure",
		},
	},
}

// DefaultA11yData defines the enhanced accessibility trigger corpus. Entry
// order is significant: earlier entries win when phrases overlap.
var DefaultA11yData = []A11yEntry{
	{
		Phrase: "screen reader", Weight: 0.9, Category: types.PatternARIAAttributes,
		ElementTypes: []string{"[aria-label]", "[role]"},
		Compliance:   []string{"4.1.2"},
	},
	{
		Phrase: "aria-label", Weight: 0.95, Category: types.PatternARIAAttributes,
		ElementTypes: []string{"[aria-label]"},
		Compliance:   []string{"4.1.2"},
	},
	{
		Phrase: "aria-live", Weight: 0.95, Category: types.PatternLiveRegions,
		ElementTypes: []string{"[aria-live]"},
		Compliance:   []string{"4.1.3"},
	},
	{
		Phrase: "role attribute", Weight: 0.9, Category: types.PatternARIAAttributes,
		ElementTypes: []string{"[role]"},
		Compliance:   []string{"4.1.2"},
	},
	{
		Phrase: "accessible name", Weight: 0.85, Category: types.PatternARIAAttributes,
		ElementTypes: []string{"button", "a", "[aria-label]"},
		Compliance:   []string{"4.1.2", "2.5.3"},
	},
	{
		Phrase: "alt text", Weight: 0.9, Category: types.PatternImageAlt,
		ElementTypes: []string{"img"},
		Compliance:   []string{"1.1.1"},
	},
	{
		Phrase: "alt attribute", Weight: 0.9, Category: types.PatternImageAlt,
		ElementTypes: []string{"img", "[role=img]"},
		Compliance:   []string{"1.1.1"},
	},
	{
		Phrase: "image description", Weight: 0.7, Category: types.PatternImageAlt,
		ElementTypes: []string{"img"},
		Compliance:   []string{"1.1.1"},
	},
	{
		Phrase: "form label", Weight: 0.85, Category: types.PatternFormLabels,
		ElementTypes: []string{"input", "select", "textarea", "label"},
		Compliance:   []string{"1.3.1", "3.3.2"},
	},
	{
		Phrase: "tab order", Weight: 0.9, Category: types.PatternTabSequence,
		ElementTypes: []string{"a", "button", "input", "[tabindex]"},
		Compliance:   []string{"2.4.3"},
	},
	{
		Phrase: "tab sequence", Weight: 0.9, Category: types.PatternTabSequence,
		ElementTypes: []string{"a", "button", "input", "[tabindex]"},
		Compliance:   []string{"2.4.3"},
	},
	{
		Phrase: "keyboard navigation", Weight: 0.85, Category: types.PatternTabSequence,
		ElementTypes: []string{"a", "button", "input", "[tabindex]"},
		Compliance:   []string{"2.1.1"},
	},
	{
		Phrase: "keyboard trap", Weight: 0.9, Category: types.PatternFocusManagement,
		ElementTypes: []string{"dialog", "[role=dialog]"},
		Compliance:   []string{"2.1.2"},
	},
	{
		Phrase: "focus order", Weight: 0.85, Category: types.PatternFocusManagement,
		ElementTypes: []string{"a", "button", "input"},
		Compliance:   []string{"2.4.3"},
	},
	{
		Phrase: "focus visible", Weight: 0.85, Category: types.PatternFocusManagement,
		ElementTypes: []string{":focus"},
		Compliance:   []string{"2.4.7"},
	},
	{
		Phrase: "focus indicator", Weight: 0.85, Category: types.PatternFocusManagement,
		ElementTypes: []string{":focus"},
		Compliance:   []string{"2.4.7"},
	},
	{
		Phrase: "color contrast", Weight: 0.9, Category: types.PatternColorContrast,
		ElementTypes: []string{"body", "p", "span", "a", "button"},
		Compliance:   []string{"1.4.3"},
	},
	{
		Phrase: "contrast ratio", Weight: 0.9, Category: types.PatternColorContrast,
		ElementTypes: []string{"body", "p", "span", "a", "button"},
		Compliance:   []string{"1.4.3"},
	},
	{
		Phrase: "live region", Weight: 0.85, Category: types.PatternLiveRegions,
		ElementTypes: []string{"[aria-live]", "[role=status]", "[role=alert]"},
		Compliance:   []string{"4.1.3"},
	},
	{
		Phrase: "announcement", Weight: 0.6, Category: types.PatternLiveRegions,
		ElementTypes: []string{"[aria-live]"},
		Compliance:   []string{"4.1.3"},
	},
	{
		Phrase: "heading structure", Weight: 0.8, Category: types.PatternComplianceCriteria,
		ElementTypes: []string{"h1", "h2", "h3", "h4", "h5", "h6"},
		Compliance:   []string{"1.3.1", "2.4.6"},
	},
	{
		Phrase: "wcag", Weight: 0.8, Category: types.PatternComplianceCriteria,
		Compliance: []string{},
	},
	{
		Phrase: "section 508", Weight: 0.8, Category: types.PatternComplianceCriteria,
		Compliance: []string{"1.1.1", "2.1.1"},
	},
}

// DefaultStrongSignals lists substrings that force the enhanced accessibility
// parse regardless of how the domain scores land.
var DefaultStrongSignals = []string{
	"wcag",
	"aria-",
	"screen reader",
	"a11y",
	"assistive technology",
	"contrast ratio",
	"section 508",
}

// DefaultTables assembles the built-in corpus.
func DefaultTables() *Tables {
	return &Tables{
		Version:       TablesVersion,
		Domains:       DefaultDomainData,
		Enhanced:      DefaultA11yData,
		StrongSignals: DefaultStrongSignals,
	}
}

// DomainKeywords returns the keyword list for a domain, nil when the domain
// carries no table.
func (t *Tables) DomainKeywords(d types.Domain) []string {
	for _, dt := range t.Domains {
		if dt.Domain == d {
			return dt.Keywords
		}
	}
	return nil
}
