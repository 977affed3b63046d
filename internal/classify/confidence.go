package classify

import "strings"

// =============================================================================
// CONFIDENCE ARITHMETIC
// =============================================================================
// Hand-tuned heuristics, not derived math. The constants are safe to retune,
// but suites are reproduced byte-for-byte across runs, so retuning shifts
// template choice for previously stable instructions. Bump TablesVersion when
// they move.

const (
	// baseFloor is the confidence for a single keyword match.
	baseFloor = 0.7
	// basePerMatch is added for every additional distinct match.
	basePerMatch = 0.1
	// baseCeiling caps the base before bonuses apply.
	baseCeiling = 0.95
	// repeatBonus is added per extra occurrence of an already-matched keyword.
	repeatBonus = 0.05
	// diversityBonus is added per distinct match beyond the first, up to
	// diversityCap extra matches.
	diversityBonus = 0.05
	diversityCap   = 2
)

// scoreDomain computes the confidence for one domain table against a
// lower-cased instruction. Returns the clamped confidence and the distinct
// keywords that matched, in table order.
func scoreDomain(lower string, keywords []string) (float64, []string) {
	var matched []string
	repeats := 0.0
	for _, kw := range keywords {
		occ := strings.Count(lower, strings.ToLower(kw))
		if occ == 0 {
			continue
		}
		matched = append(matched, kw)
		if occ > 1 {
			repeats += repeatBonus * float64(occ-1)
		}
	}

	n := len(matched)
	if n == 0 {
		return 0, nil
	}

	base := baseFloor + basePerMatch*float64(n-1)
	if base > baseCeiling {
		base = baseCeiling
	}

	extra := n - 1
	if extra > diversityCap {
		extra = diversityCap
	}
	diversity := diversityBonus * float64(extra)

	return capScore(base + repeats + diversity), matched
}

// capScore clamps a confidence to the [0, 1] interval.
func capScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	if s < 0 {
		return 0
	}
	return s
}
