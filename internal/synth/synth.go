// Package synth derives structured requirement sets from natural-language
// instructions. It owns the middle of the pipeline: classification and
// pattern recognition happen internally, so callers hand over raw text plus
// an optional structural snapshot and get back a types.RequirementSet ready
// for template selection.
//
// Two branches produce requirements. Instructions written as explicit step
// sequences (step verbs, numbering, comma/semicolon lists) are split and
// sniffed step by step, preserving step order for API calls. Everything else
// goes through the pattern recognizer and the pattern→requirement mapping
// rules. Either way the result is total: empty input yields an empty set,
// unrecognizable input yields the minimal default set, and an internal fault
// degrades to a fallback-marked set. This package never returns an error.
package synth

import (
	"strings"

	"specforge/internal/classify"
	"specforge/internal/logging"
	"specforge/internal/recognize"
	"specforge/internal/types"
)

// Synthesizer turns instructions into requirement sets. The zero value is
// not usable; construct with NewSynthesizer.
type Synthesizer struct {
	classifier *classify.Classifier
	recognizer *recognize.Recognizer
}

// NewSynthesizer builds a synthesizer over the given tables. Passing nil
// uses the built-in defaults; a custom pack retunes classification and
// recognition together, which keeps the two stages consistent.
func NewSynthesizer(tables *classify.Tables) *Synthesizer {
	return &Synthesizer{
		classifier: classify.NewClassifier(tables),
		recognizer: recognize.NewRecognizer(tables),
	}
}

var defaultSynthesizer = NewSynthesizer(nil)

// ParseInstructions runs the default synthesizer.
func ParseInstructions(instruction string, snap *types.StructuralSnapshot) types.RequirementSet {
	return defaultSynthesizer.ParseInstructions(instruction, snap)
}

// ParseInstructions derives the requirement set for an instruction.
//
// The classifier runs first so the set carries a source domain even when no
// requirement can be derived. Empty input returns an empty set with the
// default scan config. A non-empty instruction that produces nothing gets
// the minimal default set so downstream selection always has a feature to
// key on.
func (s *Synthesizer) ParseInstructions(instruction string, snap *types.StructuralSnapshot) (set types.RequirementSet) {
	defer func() {
		if r := recover(); r != nil {
			logging.Synth("synthesis panic recovered, emitting fallback set: %v", r)
			set = fallbackSet(snap)
		}
	}()

	trimmed := strings.TrimSpace(instruction)
	lower := strings.ToLower(trimmed)

	intent := s.classifier.Classify(instruction, snap)
	set.SourceDomain = intent.PrimaryDomain
	set.Scan = deriveScanConfig(lower)

	if trimmed == "" {
		return set
	}

	direct := isDirectInstruction(lower)
	if direct {
		applySteps(&set, splitSteps(trimmed))
	} else {
		applyPatterns(&set, s.recognizer.Recognize(trimmed))
	}

	if set.Empty() {
		synthesizeDefaults(&set, intent, snap)
	}
	ensureCriteria(&set)

	logging.SynthDebug("synthesized %d requirements (domain=%s direct=%v enhanced=%v)",
		set.RequirementCount(), set.SourceDomain, direct, intent.EnhancedAccessibility)
	return set
}

// synthesizeDefaults fills a set that came up empty from a non-empty
// instruction. API-leaning instructions get a canonical request/verify pair;
// everything else gets the minimal accessibility pair, scoped to what the
// snapshot says is on the page.
func synthesizeDefaults(set *types.RequirementSet, intent types.Intent, snap *types.StructuralSnapshot) {
	if intent.PrimaryDomain == types.DomainAPI {
		var url string
		if snap != nil {
			url = snap.URL
		}
		set.APICalls = append(set.APICalls,
			types.APICall{Type: types.APISendRequest, Method: "GET", URL: url},
			types.APICall{Type: types.APIVerify, Target: "status", Expected: "200", ExpectStatus: 200},
		)
		return
	}

	scope := snapshotScope(snap)
	set.ARIACompliances = append(set.ARIACompliances, types.ARIACompliance{
		Type:       types.ARIALabels,
		Attributes: []string{"aria-label", "aria-labelledby"},
		Scope:      scope,
	})
	set.KeyboardNavigations = append(set.KeyboardNavigations, types.KeyboardNavigation{
		Type:   types.KeyboardTabSequence,
		Keys:   []string{"Tab"},
		Checks: []string{"focus-order-matches-dom"},
	})
}

// snapshotScope collects the distinct interactive tags from the snapshot,
// falling back to the usual focusable elements when nothing is known.
func snapshotScope(snap *types.StructuralSnapshot) []string {
	fallback := []string{"button", "a", "input", "select", "textarea"}
	if snap == nil {
		return fallback
	}
	var scope []string
	for _, el := range snap.InteractiveElements {
		if tag := strings.ToLower(strings.TrimSpace(el.Tag)); tag != "" {
			scope = appendMissing(scope, tag)
		}
	}
	if len(scope) == 0 {
		return fallback
	}
	return scope
}

// fallbackSet is the never-fail guarantee: a well-typed minimal set marked
// as a fallback.
func fallbackSet(snap *types.StructuralSnapshot) types.RequirementSet {
	var set types.RequirementSet
	set.Fallback = true
	set.SourceDomain = types.DomainFunctional
	set.Scan = deriveScanConfig("")
	synthesizeDefaults(&set, types.Intent{PrimaryDomain: types.DomainFunctional}, snap)
	ensureCriteria(&set)
	return set
}
