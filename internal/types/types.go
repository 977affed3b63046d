// Package types provides shared type definitions used across specforge packages.
// This package exists to break import cycles between classify, synth, templates,
// and render. Types in this package should be foundational data structures with
// no complex dependencies.
package types

// =============================================================================
// TEST DOMAINS
// =============================================================================

// Domain identifies a testing domain an instruction can target.
type Domain string

const (
	DomainFunctional    Domain = "functional"
	DomainAccessibility Domain = "accessibility"
	DomainAPI           Domain = "api"
	DomainSecurity      Domain = "security"

	// DomainMixed is assigned as primary when two or more domains score
	// above the mixed threshold. It never appears in keyword tables.
	DomainMixed Domain = "mixed"
)

// ScoredDomains lists the domains that carry keyword tables, in the stable
// order used to break confidence ties during classification.
var ScoredDomains = []Domain{
	DomainFunctional,
	DomainAccessibility,
	DomainAPI,
	DomainSecurity,
}

// =============================================================================
// CLASSIFIED INTENT
// =============================================================================

// Intent is the result of classifying a natural-language test instruction.
type Intent struct {
	PrimaryDomain    Domain              `json:"primary_domain"`
	SecondaryDomains []Domain            `json:"secondary_domains,omitempty"`
	Confidence       float64             `json:"confidence"` // always in [0, 1]
	MatchedKeywords  map[Domain][]string `json:"matched_keywords,omitempty"`

	// EnhancedAccessibility requests the richer accessibility parse even when
	// accessibility is not the primary domain (strong signals, mixed intents).
	EnhancedAccessibility bool `json:"enhanced_accessibility"`
}

// IsMixed reports whether the instruction spans multiple domains.
func (i Intent) IsMixed() bool {
	return i.PrimaryDomain == DomainMixed
}

// InvolvesAccessibility reports whether accessibility appears anywhere in the
// classification, primary or secondary.
func (i Intent) InvolvesAccessibility() bool {
	if i.PrimaryDomain == DomainAccessibility {
		return true
	}
	for _, d := range i.SecondaryDomains {
		if d == DomainAccessibility {
			return true
		}
	}
	return len(i.MatchedKeywords[DomainAccessibility]) > 0
}

// =============================================================================
// RECOGNIZED PATTERNS
// =============================================================================

// PatternCategory identifies which recognizer produced a pattern. One category
// per recognition concern; the synthesizer refines categories into concrete
// requirement types.
type PatternCategory string

const (
	PatternImageAlt           PatternCategory = "image-alt"
	PatternFormLabels         PatternCategory = "form-labels"
	PatternTabSequence        PatternCategory = "tab-sequence"
	PatternFocusManagement    PatternCategory = "focus-management"
	PatternARIAAttributes     PatternCategory = "aria-attributes"
	PatternLiveRegions        PatternCategory = "live-regions"
	PatternColorContrast      PatternCategory = "color-contrast"
	PatternComplianceCriteria PatternCategory = "compliance-criteria"
)

// Pattern is a single recognized accessibility concern inside an instruction.
type Pattern struct {
	Text       string          `json:"text"`       // the phrase that triggered recognition
	Confidence float64         `json:"confidence"` // (0, 1]; higher = more specific trigger
	Category   PatternCategory `json:"category"`
	Keywords   []string        `json:"keywords,omitempty"`
	Context    PatternContext  `json:"context"`
}

// PatternContext carries the structured hints a pattern contributes to
// requirement synthesis.
type PatternContext struct {
	ElementTypes         []string `json:"element_types,omitempty"`
	InteractionTypes     []string `json:"interaction_types,omitempty"`
	ValidationTypes      []string `json:"validation_types,omitempty"`
	ComplianceReferences []string `json:"compliance_references,omitempty"` // "1.4.3" style
}
