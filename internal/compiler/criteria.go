package compiler

import (
	"fmt"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/types"
)

// ComplianceValidator checks the compliance surface of a synthesized set:
// every criteria reference must be a dotted success-criterion id and every
// scan rule set must name a known engine tag. Builtin synthesis always
// passes; the checks exist for custom table packs and hand-built sets.
type ComplianceValidator struct{}

// ValidateCriteria walks the whole set and reports malformed references.
func (v *ComplianceValidator) ValidateCriteria(set *types.RequirementSet) []ValidationIssue {
	if set == nil {
		return nil
	}
	var issues []ValidationIssue
	check := func(field string, refs []string) {
		for _, ref := range refs {
			if !types.ValidCriterion(ref) {
				issues = append(issues, ValidationIssue{
					Field:   field,
					Code:    CodeBadCriterion,
					Message: fmt.Sprintf("%s: %q is not a dotted success-criterion id", field, ref),
				})
			}
		}
	}

	for i, r := range set.DOMInspections {
		check(fmt.Sprintf("dom_inspections[%d].criteria", i), r.Criteria)
	}
	for i, r := range set.KeyboardNavigations {
		check(fmt.Sprintf("keyboard_navigations[%d].criteria", i), r.Criteria)
	}
	for i, r := range set.ARIACompliances {
		check(fmt.Sprintf("aria_compliances[%d].criteria", i), r.Criteria)
	}
	for i, r := range set.VisualAccessibilities {
		check(fmt.Sprintf("visual_accessibilities[%d].criteria", i), r.Criteria)
	}
	for i, r := range set.ComplianceGuidelines {
		check(fmt.Sprintf("compliance_guidelines[%d].criteria", i), r.Criteria)
	}

	for i, tag := range set.Scan.RuleSets {
		if !types.ValidRuleSet(tag) {
			issues = append(issues, ValidationIssue{
				Field:   fmt.Sprintf("scan.rule_sets[%d]", i),
				Code:    CodeBadRuleSet,
				Message: fmt.Sprintf("unknown scanning rule set %q", tag),
			})
		}
	}
	return issues
}

// Err reduces the validation to a single checkable error, nil when the set
// is clean. The first issue decides the wrapped sentinel.
func (v *ComplianceValidator) Err(set *types.RequirementSet) error {
	issues := v.ValidateCriteria(set)
	if len(issues) == 0 {
		return nil
	}
	if issues[0].Code == CodeBadRuleSet {
		return fmt.Errorf("%w: %d issue(s), first: %s", forgeerrors.ErrScanningEngineConfig, len(issues), issues[0].Message)
	}
	return fmt.Errorf("%w: %d issue(s), first: %s", forgeerrors.ErrComplianceValidation, len(issues), issues[0].Message)
}
