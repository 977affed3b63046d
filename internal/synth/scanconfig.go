package synth

import (
	"strings"

	"specforge/internal/types"
)

// defaultRuleSets is the most recent stable AA rule-set stack the scanning
// engine ships with.
var defaultRuleSets = []string{"wcag2a", "wcag2aa", "wcag21aa"}

// deriveScanConfig reads scanning-engine configuration straight off the raw
// instruction text, independent of which requirements were synthesized.
// Version mentions pick the rule-set stack, named regulations append their
// rule set, and explicit language relaxes the violation policy.
func deriveScanConfig(lower string) types.ScanConfig {
	cfg := types.ScanConfig{
		RuleSets: cloneStrings(defaultRuleSets),
		Policy:   types.PolicyFailOnViolation,
		Report:   types.ReportSummary,
	}

	switch {
	case strings.Contains(lower, "wcag 2.2") || strings.Contains(lower, "wcag22"):
		cfg.RuleSets = []string{"wcag2a", "wcag2aa", "wcag21aa", "wcag22aa"}
	case strings.Contains(lower, "wcag 2.0") || strings.Contains(lower, "wcag20"):
		cfg.RuleSets = []string{"wcag2a", "wcag2aa"}
	}

	if strings.Contains(lower, "508") {
		cfg.RuleSets = appendMissing(cfg.RuleSets, "section508")
	}
	if strings.Contains(lower, "best practice") || strings.Contains(lower, "best-practice") {
		cfg.RuleSets = appendMissing(cfg.RuleSets, "best-practice")
	}

	switch {
	case strings.Contains(lower, "log only") || strings.Contains(lower, "log-only"):
		cfg.Policy = types.PolicyLogOnly
	case strings.Contains(lower, "warn"):
		cfg.Policy = types.PolicyWarnOnViolation
	}

	if strings.Contains(lower, "detailed") || strings.Contains(lower, "verbose") {
		cfg.Report = types.ReportDetailed
	}

	return cfg
}
