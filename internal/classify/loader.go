package classify

import (
	"fmt"
	"os"
	"strings"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/logging"
	"specforge/internal/types"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// YAML TABLE PACKS
// =============================================================================
// A pack replaces tables wholesale, per section: a pack listing a domain
// replaces that domain's keyword list; a pack with an enhanced section
// replaces the whole enhanced table; same for strong signals. Sections the
// pack omits keep the built-in defaults. Packs never merge entry-by-entry,
// so a deployed pack file fully describes what it overrides.

// yamlPack matches the on-disk table pack structure.
type yamlPack struct {
	Version string `yaml:"version"`

	Domains []struct {
		Domain   string   `yaml:"domain"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"domains,omitempty"`

	Enhanced []struct {
		Phrase       string   `yaml:"phrase"`
		Weight       float64  `yaml:"weight"`
		Category     string   `yaml:"category"`
		ElementTypes []string `yaml:"element_types,omitempty"`
		Compliance   []string `yaml:"compliance,omitempty"`
	} `yaml:"enhanced,omitempty"`

	StrongSignals []string `yaml:"strong_signals,omitempty"`
}

// knownPatternCategories guards pack entries against typos.
var knownPatternCategories = map[types.PatternCategory]bool{
	types.PatternImageAlt:           true,
	types.PatternFormLabels:         true,
	types.PatternTabSequence:        true,
	types.PatternFocusManagement:    true,
	types.PatternARIAAttributes:     true,
	types.PatternLiveRegions:        true,
	types.PatternColorContrast:      true,
	types.PatternComplianceCriteria: true,
}

// LoadPack reads a YAML table pack from disk and overlays it on the built-in
// defaults.
func LoadPack(path string) (*Tables, error) {
	timer := logging.StartTimer(logging.CategoryTables, "LoadPack")
	defer timer.Stop()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table pack %s: %w", path, err)
	}

	tables, err := ParsePack(data)
	if err != nil {
		return nil, fmt.Errorf("table pack %s: %w", path, err)
	}

	logging.Audit().PackLoaded(path, len(tables.Domains), len(tables.Enhanced))
	logging.Tables("loaded table pack %s (version %s)", path, tables.Version)
	return tables, nil
}

// ParsePack validates raw pack bytes and builds the resulting table set.
func ParsePack(data []byte) (*Tables, error) {
	var pack yamlPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("%w: %v", forgeerrors.ErrParsing, err)
	}

	if err := validatePack(&pack); err != nil {
		return nil, err
	}

	tables := DefaultTables()
	if pack.Version != "" {
		tables.Version = pack.Version
	}

	if len(pack.Domains) > 0 {
		// Copy the default slice before splicing replacements in, so the
		// package-level defaults stay untouched.
		domains := make([]DomainTable, len(DefaultDomainData))
		copy(domains, DefaultDomainData)
		for _, pd := range pack.Domains {
			d := types.Domain(pd.Domain)
			replaced := false
			for i := range domains {
				if domains[i].Domain == d {
					domains[i] = DomainTable{Domain: d, Keywords: pd.Keywords}
					replaced = true
					break
				}
			}
			if !replaced {
				domains = append(domains, DomainTable{Domain: d, Keywords: pd.Keywords})
			}
		}
		tables.Domains = domains
	}

	if len(pack.Enhanced) > 0 {
		enhanced := make([]A11yEntry, 0, len(pack.Enhanced))
		for _, pe := range pack.Enhanced {
			enhanced = append(enhanced, A11yEntry{
				Phrase:       pe.Phrase,
				Weight:       pe.Weight,
				Category:     types.PatternCategory(pe.Category),
				ElementTypes: pe.ElementTypes,
				Compliance:   pe.Compliance,
			})
		}
		tables.Enhanced = enhanced
	}

	if len(pack.StrongSignals) > 0 {
		tables.StrongSignals = pack.StrongSignals
	}

	return tables, nil
}

// validatePack reports the first structural problem in a pack. tablelint
// runs the same checks offline.
func validatePack(pack *yamlPack) error {
	scored := make(map[string]bool, len(types.ScoredDomains))
	for _, d := range types.ScoredDomains {
		scored[string(d)] = true
	}

	seenDomains := make(map[string]bool)
	for i, pd := range pack.Domains {
		if !scored[pd.Domain] {
			return fmt.Errorf("%w: domains[%d]: unknown domain %q", forgeerrors.ErrParsing, i, pd.Domain)
		}
		if seenDomains[pd.Domain] {
			return fmt.Errorf("%w: domains[%d]: duplicate domain %q", forgeerrors.ErrParsing, i, pd.Domain)
		}
		seenDomains[pd.Domain] = true
		if len(pd.Keywords) == 0 {
			return fmt.Errorf("%w: domains[%d]: domain %q has no keywords", forgeerrors.ErrParsing, i, pd.Domain)
		}
		for j, kw := range pd.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: domains[%d].keywords[%d]: empty keyword", forgeerrors.ErrParsing, i, j)
			}
		}
	}

	seenPhrases := make(map[string]bool)
	for i, pe := range pack.Enhanced {
		phrase := strings.ToLower(strings.TrimSpace(pe.Phrase))
		if phrase == "" {
			return fmt.Errorf("%w: enhanced[%d]: empty phrase", forgeerrors.ErrParsing, i)
		}
		if seenPhrases[phrase] {
			return fmt.Errorf("%w: enhanced[%d]: duplicate phrase %q", forgeerrors.ErrParsing, i, pe.Phrase)
		}
		seenPhrases[phrase] = true
		if pe.Weight <= 0 || pe.Weight > 1 {
			return fmt.Errorf("%w: enhanced[%d] (%q): weight %v outside (0, 1]", forgeerrors.ErrParsing, i, pe.Phrase, pe.Weight)
		}
		if !knownPatternCategories[types.PatternCategory(pe.Category)] {
			return fmt.Errorf("%w: enhanced[%d] (%q): unknown category %q", forgeerrors.ErrParsing, i, pe.Phrase, pe.Category)
		}
		for j, ref := range pe.Compliance {
			if !types.ValidCriterion(ref) {
				return fmt.Errorf("%w: enhanced[%d].compliance[%d]: malformed criterion %q", forgeerrors.ErrParsing, i, j, ref)
			}
		}
	}

	for i, sig := range pack.StrongSignals {
		if strings.TrimSpace(sig) == "" {
			return fmt.Errorf("%w: strong_signals[%d]: empty signal", forgeerrors.ErrParsing, i)
		}
	}

	return nil
}
