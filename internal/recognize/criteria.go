package recognize

import (
	"regexp"
)

// criterionRefRe matches explicit success-criterion references ("2.4.7")
// anywhere in free text. WCAG version mentions like "wcag 2.1" have only two
// number groups and never match.
var criterionRefRe = regexp.MustCompile(`\b\d+\.\d+\.\d+\b`)

// ExtractCriteria pulls explicit criterion references out of an instruction,
// deduplicated in first-occurrence order. Explicit references take precedence
// over any phrase-derived defaults downstream.
func ExtractCriteria(text string) []string {
	refs := criterionRefRe.FindAllString(text, -1)
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}

// mergeCriteria lists explicit references first, then the phrase-derived
// defaults that are not already covered.
func mergeCriteria(explicit, derived []string) []string {
	if len(explicit) == 0 {
		if len(derived) == 0 {
			return nil
		}
		out := make([]string, len(derived))
		copy(out, derived)
		return out
	}
	out := make([]string, 0, len(explicit)+len(derived))
	seen := make(map[string]bool, len(explicit)+len(derived))
	for _, ref := range explicit {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	for _, ref := range derived {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out
}
