package types

import "regexp"

// criterionRe matches dotted success-criterion identifiers like "1.4.3".
var criterionRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidCriterion reports whether s is a well-formed dotted success-criterion
// identifier.
func ValidCriterion(s string) bool {
	return criterionRe.MatchString(s)
}

// =============================================================================
// REQUIREMENT VARIANTS
// =============================================================================
//
// Each variant is a typed record with a closed type enum. Criteria lists hold
// success-criterion identifiers in dotted "1.4.3" form and are never empty on
// synthesized requirements; the synthesizer fills canonical defaults when an
// instruction names none.

// DOMInspectionType enumerates structural checks performed against the DOM.
type DOMInspectionType string

const (
	DOMImageAlt         DOMInspectionType = "image-alt"
	DOMFormLabels       DOMInspectionType = "form-labels"
	DOMHeadingStructure DOMInspectionType = "heading-structure"
	DOMLandmarkRoles    DOMInspectionType = "landmark-roles"
	DOMLinkText         DOMInspectionType = "link-text"
)

// DOMInspection checks static page structure: alt text, labels, headings,
// landmarks, link text.
type DOMInspection struct {
	Type            DOMInspectionType `json:"type"`
	Selectors       []string          `json:"selectors"`        // elements the check walks
	ValidationRules []string          `json:"validation_rules"` // rule identifiers applied per element
	Criteria        []string          `json:"criteria"`
}

// KeyboardNavigationType enumerates keyboard interaction checks.
type KeyboardNavigationType string

const (
	KeyboardTabSequence  KeyboardNavigationType = "tab-sequence"
	KeyboardFocusOrder   KeyboardNavigationType = "focus-order"
	KeyboardFocusVisible KeyboardNavigationType = "focus-visible"
	KeyboardTrap         KeyboardNavigationType = "keyboard-trap"
	KeyboardShortcuts    KeyboardNavigationType = "shortcut-keys"
)

// KeyboardNavigation drives the page by key presses and asserts focus state
// after each step.
type KeyboardNavigation struct {
	Type     KeyboardNavigationType `json:"type"`
	Keys     []string               `json:"keys"`   // key presses in order: "Tab", "Enter", ...
	Checks   []string               `json:"checks"` // focus assertions run after the sequence
	Criteria []string               `json:"criteria"`
}

// ARIAComplianceType enumerates ARIA attribute checks.
type ARIAComplianceType string

const (
	ARIALabels         ARIAComplianceType = "aria-labels"
	ARIARoles          ARIAComplianceType = "aria-roles"
	ARIALive           ARIAComplianceType = "aria-live"
	ARIAStates         ARIAComplianceType = "aria-states"
	ARIAAccessibleName ARIAComplianceType = "accessible-name"
)

// ARIACompliance verifies ARIA attributes on a scoped set of elements.
type ARIACompliance struct {
	Type       ARIAComplianceType `json:"type"`
	Attributes []string           `json:"attributes"` // attribute names under test
	Scope      []string           `json:"scope"`      // selectors the check runs against
	Criteria   []string           `json:"criteria"`
}

// VisualAccessibilityType enumerates perception-level checks.
type VisualAccessibilityType string

const (
	VisualColorContrast   VisualAccessibilityType = "color-contrast"
	VisualTextResize      VisualAccessibilityType = "text-resize"
	VisualFocusIndicator  VisualAccessibilityType = "focus-indicator"
	VisualMotionReduction VisualAccessibilityType = "motion-reduction"
)

// VisualAccessibility covers contrast, resize, focus indication and motion.
type VisualAccessibility struct {
	Type      VisualAccessibilityType `json:"type"`
	Threshold string                  `json:"threshold,omitempty"` // "4.5:1" for contrast, "200%" for resize
	Checks    []string                `json:"checks"`
	Criteria  []string                `json:"criteria"`
}

// ComplianceLevel enumerates the conformance targets an audit can run against.
type ComplianceLevel string

const (
	ComplianceWCAGA      ComplianceLevel = "wcag-a"
	ComplianceWCAGAA     ComplianceLevel = "wcag-aa"
	ComplianceWCAGAAA    ComplianceLevel = "wcag-aaa"
	ComplianceSection508 ComplianceLevel = "section-508"
)

// ComplianceGuideline pins a whole-page audit to a conformance level.
type ComplianceGuideline struct {
	Level      ComplianceLevel `json:"level"`
	Guidelines []string        `json:"guidelines"` // human-readable guideline names
	Criteria   []string        `json:"criteria"`
}

// APICallType enumerates the step kinds of an API test sequence.
type APICallType string

const (
	APISendRequest APICallType = "send_request"
	APIVerify      APICallType = "verify"
	APIStore       APICallType = "store"
	APILoad        APICallType = "load"
)

// APICall is one ordered step of an API test. Steps keep instruction order:
// a verify step always refers to the most recent send_request before it.
type APICall struct {
	Type          APICallType       `json:"type"`
	Method        string            `json:"method,omitempty"` // GET, POST, PUT, DELETE, PATCH
	URL           string            `json:"url,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	Body          string            `json:"body,omitempty"`
	ExpectStatus  int               `json:"expect_status,omitempty"`
	Auth          bool              `json:"auth,omitempty"`     // attach Authorization header from stored token
	StoreAs       string            `json:"store_as,omitempty"` // variable name for store steps
	Target        string            `json:"target,omitempty"`   // verify target: "status", "body", "header:<name>"
	Expected      string            `json:"expected,omitempty"`
	PerformanceMs int               `json:"performance_ms,omitempty"` // response-time threshold, 0 = unchecked
}

// =============================================================================
// SCANNING-ENGINE CONFIGURATION
// =============================================================================

// ViolationPolicy controls what the generated test does when the scanning
// engine reports violations.
type ViolationPolicy string

const (
	PolicyFailOnViolation ViolationPolicy = "fail-on-violation"
	PolicyWarnOnViolation ViolationPolicy = "warn-on-violation"
	PolicyLogOnly         ViolationPolicy = "log-only"
)

// ReportLevel controls how much scan output the generated test emits.
type ReportLevel string

const (
	ReportSummary  ReportLevel = "summary"
	ReportDetailed ReportLevel = "detailed"
)

// ScanConfig configures the automated scanning engine embedded in every
// generated test.
type ScanConfig struct {
	RuleSets []string        `json:"rule_sets"` // engine rule-set tags, e.g. "wcag21aa"
	Policy   ViolationPolicy `json:"policy"`
	Report   ReportLevel     `json:"report"`
}

// ruleSets lists the scanning-engine rule-set tags the pipeline can emit or
// accept from configuration.
var ruleSets = map[string]bool{
	"wcag2a":        true,
	"wcag2aa":       true,
	"wcag2aaa":      true,
	"wcag21aa":      true,
	"wcag22aa":      true,
	"section508":    true,
	"best-practice": true,
}

// ValidRuleSet reports whether tag names a known scanning-engine rule set.
func ValidRuleSet(tag string) bool {
	return ruleSets[tag]
}

// =============================================================================
// REQUIREMENT SET
// =============================================================================

// Feature names a requirement family for template selection.
type Feature string

const (
	FeatureDOM        Feature = "dom-inspection"
	FeatureKeyboard   Feature = "keyboard-navigation"
	FeatureARIA       Feature = "aria-compliance"
	FeatureVisual     Feature = "visual-accessibility"
	FeatureCompliance Feature = "compliance-audit"
	FeatureAPI        Feature = "api-sequence"

	// FeatureScan is active on every requirement set.
	FeatureScan Feature = "page-scan"
)

// RequirementSet is the complete synthesized specification for one
// instruction. Slice order within each family is synthesis order and is
// preserved through rendering.
type RequirementSet struct {
	DOMInspections        []DOMInspection       `json:"dom_inspections,omitempty"`
	KeyboardNavigations   []KeyboardNavigation  `json:"keyboard_navigations,omitempty"`
	ARIACompliances       []ARIACompliance      `json:"aria_compliances,omitempty"`
	VisualAccessibilities []VisualAccessibility `json:"visual_accessibilities,omitempty"`
	ComplianceGuidelines  []ComplianceGuideline `json:"compliance_guidelines,omitempty"`
	APICalls              []APICall             `json:"api_calls,omitempty"`

	Scan         ScanConfig `json:"scan"`
	SourceDomain Domain     `json:"source_domain"`

	// Fallback marks sets produced by the degraded path rather than by
	// pattern recognition.
	Fallback bool `json:"fallback,omitempty"`
}

// Empty reports whether the set carries no substantive requirements.
func (rs *RequirementSet) Empty() bool {
	return len(rs.DOMInspections) == 0 &&
		len(rs.KeyboardNavigations) == 0 &&
		len(rs.ARIACompliances) == 0 &&
		len(rs.VisualAccessibilities) == 0 &&
		len(rs.ComplianceGuidelines) == 0 &&
		len(rs.APICalls) == 0
}

// ActiveFeatures returns the features with at least one requirement, in the
// fixed family order, always ending with the scan feature.
func (rs *RequirementSet) ActiveFeatures() []Feature {
	var feats []Feature
	if len(rs.DOMInspections) > 0 {
		feats = append(feats, FeatureDOM)
	}
	if len(rs.KeyboardNavigations) > 0 {
		feats = append(feats, FeatureKeyboard)
	}
	if len(rs.ARIACompliances) > 0 {
		feats = append(feats, FeatureARIA)
	}
	if len(rs.VisualAccessibilities) > 0 {
		feats = append(feats, FeatureVisual)
	}
	if len(rs.ComplianceGuidelines) > 0 {
		feats = append(feats, FeatureCompliance)
	}
	if len(rs.APICalls) > 0 {
		feats = append(feats, FeatureAPI)
	}
	return append(feats, FeatureScan)
}

// RequirementCount returns the total number of requirements across families.
func (rs *RequirementSet) RequirementCount() int {
	return len(rs.DOMInspections) +
		len(rs.KeyboardNavigations) +
		len(rs.ARIACompliances) +
		len(rs.VisualAccessibilities) +
		len(rs.ComplianceGuidelines) +
		len(rs.APICalls)
}
