// Package recognize scans instructions for accessibility testing patterns.
// Eight recognizers run in a fixed order, one per pattern category, each
// matching its own trigger table. Like classification, recognition is pure:
// same instruction in, same patterns out, no I/O.
package recognize

import (
	"strings"

	"specforge/internal/classify"
	"specforge/internal/logging"
	"specforge/internal/types"
)

// explicitRefConfidence scores a literal criterion reference ("2.4.7"), the
// most specific signal an instruction can carry.
const explicitRefConfidence = 0.95

// Recognizer matches accessibility trigger phrases against instructions.
// Pack-loaded table entries override built-in triggers with the same phrase
// and append otherwise, so deployments retune recognition the same way they
// retune classification.
type Recognizer struct {
	specs []categorySpec
}

// NewRecognizer builds a recognizer over the enhanced entries of the given
// tables; nil means the built-in corpus.
func NewRecognizer(tables *classify.Tables) *Recognizer {
	if tables == nil {
		tables = classify.DefaultTables()
	}
	return &Recognizer{specs: mergeSpecs(tables)}
}

var defaultRecognizer = NewRecognizer(nil)

// Recognize runs the built-in corpus. Safe for concurrent use.
func Recognize(instruction string) []types.Pattern {
	return defaultRecognizer.Recognize(instruction)
}

// Recognize returns every pattern the instruction triggers, in recognizer
// order, then trigger-table order within a category. Explicit criterion
// references produce their own compliance patterns and take precedence over
// phrase-derived references on every emitted pattern.
func (r *Recognizer) Recognize(instruction string) []types.Pattern {
	lower := strings.ToLower(strings.TrimSpace(instruction))
	if lower == "" {
		return nil
	}

	explicit := ExtractCriteria(lower)

	var patterns []types.Pattern
	for _, spec := range r.specs {
		for _, tr := range spec.triggers {
			if !strings.Contains(lower, tr.phrase) {
				continue
			}
			patterns = append(patterns, types.Pattern{
				Text:       tr.phrase,
				Confidence: tr.weight,
				Category:   spec.category,
				Keywords:   []string{tr.phrase},
				Context: types.PatternContext{
					ElementTypes:         cloneStrings(tr.elements),
					InteractionTypes:     cloneStrings(spec.interactions),
					ValidationTypes:      cloneStrings(spec.validations),
					ComplianceReferences: mergeCriteria(explicit, tr.criteria),
				},
			})
		}
		if spec.category == types.PatternComplianceCriteria {
			for _, ref := range explicit {
				patterns = append(patterns, types.Pattern{
					Text:       ref,
					Confidence: explicitRefConfidence,
					Category:   types.PatternComplianceCriteria,
					Keywords:   []string{ref},
					Context: types.PatternContext{
						InteractionTypes:     cloneStrings(spec.interactions),
						ValidationTypes:      cloneStrings(spec.validations),
						ComplianceReferences: []string{ref},
					},
				})
			}
		}
	}

	if len(patterns) > 0 {
		logging.RecognizeDebug("recognized %d patterns for %q", len(patterns), truncate(lower, 80))
	}
	return patterns
}

// mergeSpecs overlays table enhanced entries on the built-in trigger corpus.
// Matching phrases replace the built-in weight and hints; new phrases append
// in entry order.
func mergeSpecs(tables *classify.Tables) []categorySpec {
	specs := make([]categorySpec, len(builtinSpecs))
	for i, spec := range builtinSpecs {
		specs[i] = spec
		specs[i].triggers = make([]trigger, len(spec.triggers))
		copy(specs[i].triggers, spec.triggers)
	}

	for _, e := range tables.Enhanced {
		phrase := strings.ToLower(strings.TrimSpace(e.Phrase))
		if phrase == "" {
			continue
		}
		for i := range specs {
			if specs[i].category != e.Category {
				continue
			}
			replaced := false
			for j := range specs[i].triggers {
				if specs[i].triggers[j].phrase == phrase {
					specs[i].triggers[j] = trigger{
						phrase:   phrase,
						weight:   e.Weight,
						elements: e.ElementTypes,
						criteria: e.Compliance,
					}
					replaced = true
					break
				}
			}
			if !replaced {
				specs[i].triggers = append(specs[i].triggers, trigger{
					phrase:   phrase,
					weight:   e.Weight,
					elements: e.ElementTypes,
					criteria: e.Compliance,
				})
			}
			break
		}
	}
	return specs
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
