package templates

import (
	"fmt"
	"regexp"
	"strings"

	"specforge/internal/logging"
	"specforge/internal/types"
)

// singleConcern maps each substantive feature to its template.
var singleConcern = map[types.Feature]string{
	types.FeatureDOM:        NameDOMInspection,
	types.FeatureKeyboard:   NameKeyboard,
	types.FeatureARIA:       NameARIA,
	types.FeatureVisual:     NameVisual,
	types.FeatureCompliance: NameCompliance,
	types.FeatureAPI:        NameAPISequence,
}

// Selector picks templates out of a registry. The zero value is not usable;
// construct with NewSelector.
type Selector struct {
	registry *Registry
}

// NewSelector builds a selector over the given registry, defaulting to the
// builtin one when nil.
func NewSelector(r *Registry) *Selector {
	if r == nil {
		r = DefaultRegistry()
	}
	return &Selector{registry: r}
}

var defaultSelector = NewSelector(nil)

// Select runs the default selector.
func Select(set *types.RequirementSet, instruction string) (Selection, error) {
	return defaultSelector.Select(set, instruction)
}

// Select picks the template for a requirement set. With the always-active
// scan feature counted, at most two active features means a lone substantive
// family, which gets its single-concern template; no substantive family at
// all gets the page smoke test; anything broader gets the comprehensive
// template. The instruction contributes only the test name, never the
// template choice.
func (s *Selector) Select(set *types.RequirementSet, instruction string) (Selection, error) {
	active := set.ActiveFeatures()
	substantive := active[:len(active)-1] // the scan feature is always last

	var name string
	switch {
	case len(substantive) == 0:
		name = NamePageSmoke
	case len(substantive) == 1:
		name = singleConcern[substantive[0]]
	default:
		name = NameComprehensive
	}

	tmpl, err := s.registry.Get(name)
	if err != nil {
		return Selection{}, fmt.Errorf("selecting for features %v: %w", active, err)
	}

	sel := Selection{
		Template: *tmpl,
		TestName: testName(instruction, name),
		Scan:     set.Scan,
	}
	sel.Scan.RuleSets = append([]string(nil), set.Scan.RuleSets...)
	for _, f := range active {
		sel.Customizations = append(sel.Customizations, customize(f, set))
	}

	logging.TemplateDebug("selected %s for features %v", name, active)
	return sel, nil
}

// customize summarizes one feature's requirements: distinct sub-types in
// synthesis order, plus the API auth/timing toggles.
func customize(f types.Feature, set *types.RequirementSet) Customization {
	c := Customization{Feature: f}
	switch f {
	case types.FeatureDOM:
		for _, r := range set.DOMInspections {
			c.Subtypes = appendMissing(c.Subtypes, string(r.Type))
		}
	case types.FeatureKeyboard:
		for _, r := range set.KeyboardNavigations {
			c.Subtypes = appendMissing(c.Subtypes, string(r.Type))
		}
	case types.FeatureARIA:
		for _, r := range set.ARIACompliances {
			c.Subtypes = appendMissing(c.Subtypes, string(r.Type))
		}
	case types.FeatureVisual:
		for _, r := range set.VisualAccessibilities {
			c.Subtypes = appendMissing(c.Subtypes, string(r.Type))
		}
	case types.FeatureCompliance:
		for _, r := range set.ComplianceGuidelines {
			c.Subtypes = appendMissing(c.Subtypes, string(r.Level))
		}
	case types.FeatureAPI:
		for _, r := range set.APICalls {
			c.Subtypes = appendMissing(c.Subtypes, string(r.Type))
			if r.Auth {
				c.Auth = true
			}
			if r.PerformanceMs > 0 {
				c.Timed = true
			}
		}
	case types.FeatureScan:
		c.Subtypes = append([]string(nil), set.Scan.RuleSets...)
	}
	return c
}

var nameWordRe = regexp.MustCompile(`[a-z0-9]+`)

// testName slugs the instruction's leading words; empty instructions take
// the template name.
func testName(instruction, template string) string {
	words := nameWordRe.FindAllString(strings.ToLower(instruction), 8)
	if len(words) == 0 {
		return template
	}
	return strings.Join(words, "-")
}

func appendMissing(list []string, extras ...string) []string {
	for _, e := range extras {
		found := false
		for _, have := range list {
			if have == e {
				found = true
				break
			}
		}
		if !found {
			list = append(list, e)
		}
	}
	return list
}
