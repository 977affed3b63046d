// Package classify turns free-form test instructions into scored domain
// intents using static keyword tables. Classification is pure and
// deterministic: the same instruction and snapshot always produce the same
// Intent, and nothing here performs I/O.
package classify

import (
	"sort"
	"strings"

	"specforge/internal/logging"
	"specforge/internal/types"
)

// mixedThreshold is the confidence both domains must clear before the
// instruction is treated as spanning multiple domains.
const mixedThreshold = 0.6

// Snapshot boost values. The API domain is never snapshot-adjusted: page
// structure says nothing about API intent.
const (
	interactiveBoost = 0.10
	formBoost        = 0.10
	ariaBoost        = 0.15
)

// Classifier scores instructions against an immutable table set.
type Classifier struct {
	tables *Tables
}

// NewClassifier builds a classifier over the given tables; nil means the
// built-in corpus.
func NewClassifier(t *Tables) *Classifier {
	if t == nil {
		t = DefaultTables()
	}
	return &Classifier{tables: t}
}

// defaultClassifier backs the package-level Classify convenience.
var defaultClassifier = NewClassifier(nil)

// Classify runs the built-in corpus. Safe for concurrent use.
func Classify(instruction string, snap *types.StructuralSnapshot) types.Intent {
	return defaultClassifier.Classify(instruction, snap)
}

// Classify scores the instruction against every domain table, applies
// snapshot-based adjustments, and resolves primary/secondary domains. Empty
// or whitespace-only input classifies as functional with zero confidence.
func (c *Classifier) Classify(instruction string, snap *types.StructuralSnapshot) types.Intent {
	trimmed := strings.TrimSpace(instruction)
	if trimmed == "" {
		return types.Intent{PrimaryDomain: types.DomainFunctional}
	}
	lower := strings.ToLower(trimmed)

	scores := make(map[types.Domain]float64, len(c.tables.Domains))
	matched := make(map[types.Domain][]string)
	for _, dt := range c.tables.Domains {
		score, kws := scoreDomain(lower, dt.Keywords)
		scores[dt.Domain] = score
		if len(kws) > 0 {
			matched[dt.Domain] = kws
		}
	}

	applySnapshotBoosts(scores, snap)

	ranked := rankDomains(scores)
	top := ranked[0]

	intent := types.Intent{
		PrimaryDomain: top.domain,
		Confidence:    top.score,
	}
	if len(matched) > 0 {
		intent.MatchedKeywords = matched
	}
	if top.score == 0 {
		// Nothing matched anywhere: default to functional, zero confidence.
		intent.PrimaryDomain = types.DomainFunctional
		intent.EnhancedAccessibility = c.wantEnhanced(lower, intent)
		return intent
	}

	over := 0
	for _, ds := range ranked {
		if ds.score > mixedThreshold {
			over++
		}
	}
	if over >= 2 {
		intent.PrimaryDomain = types.DomainMixed
	}

	for _, ds := range ranked {
		if ds.score <= 0 {
			continue
		}
		// Under a mixed primary every scoring domain is listed as secondary,
		// since the primary no longer names any one of them.
		if intent.PrimaryDomain != types.DomainMixed && ds.domain == top.domain {
			continue
		}
		intent.SecondaryDomains = append(intent.SecondaryDomains, ds.domain)
	}

	intent.EnhancedAccessibility = c.wantEnhanced(lower, intent)

	logging.ClassifyDebug("classified %q: primary=%s conf=%.2f secondary=%v enhanced=%v",
		truncate(trimmed, 80), intent.PrimaryDomain, intent.Confidence,
		intent.SecondaryDomains, intent.EnhancedAccessibility)
	return intent
}

// Tables exposes the classifier's table set for diagnostics.
func (c *Classifier) Tables() *Tables {
	return c.tables
}

// applySnapshotBoosts nudges scores using page structure. Boosts only refine
// an existing signal or the functional default; they never invent an
// accessibility intent the text did not hint at (hence the score > 0 guard).
func applySnapshotBoosts(scores map[types.Domain]float64, snap *types.StructuralSnapshot) {
	if snap == nil {
		return
	}
	if snap.HasInteractive() {
		scores[types.DomainFunctional] = capScore(scores[types.DomainFunctional] + interactiveBoost)
	}
	if snap.HasForms() {
		scores[types.DomainFunctional] = capScore(scores[types.DomainFunctional] + formBoost)
	}
	if snap.HasAriaMetadata() && scores[types.DomainAccessibility] > 0 {
		scores[types.DomainAccessibility] = capScore(scores[types.DomainAccessibility] + ariaBoost)
	}
}

type domainScore struct {
	domain types.Domain
	score  float64
}

// rankDomains orders domains by confidence. Ties keep the ScoredDomains
// order, which makes classification deterministic for equal scores.
func rankDomains(scores map[types.Domain]float64) []domainScore {
	ranked := make([]domainScore, 0, len(types.ScoredDomains))
	for _, d := range types.ScoredDomains {
		ranked = append(ranked, domainScore{domain: d, score: scores[d]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked
}

// wantEnhanced decides whether downstream synthesis should run the richer
// accessibility parse. Rules are checked in order; first hit wins.
func (c *Classifier) wantEnhanced(lower string, intent types.Intent) bool {
	if intent.PrimaryDomain == types.DomainAccessibility {
		return true
	}
	if intent.PrimaryDomain == types.DomainMixed && len(intent.MatchedKeywords[types.DomainAccessibility]) > 0 {
		return true
	}

	enhanced := c.countEnhancedMatches(lower)
	if enhanced >= 1 && hasDomain(intent.SecondaryDomains, types.DomainAccessibility) {
		return true
	}
	for _, sig := range c.tables.StrongSignals {
		if strings.Contains(lower, strings.ToLower(sig)) {
			return true
		}
	}
	return enhanced >= 2
}

// countEnhancedMatches counts distinct enhanced-table phrases present in the
// instruction.
func (c *Classifier) countEnhancedMatches(lower string) int {
	n := 0
	for _, e := range c.tables.Enhanced {
		if strings.Contains(lower, strings.ToLower(e.Phrase)) {
			n++
		}
	}
	return n
}

func hasDomain(domains []types.Domain, want types.Domain) bool {
	for _, d := range domains {
		if d == want {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
