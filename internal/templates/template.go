// Package templates holds the named script skeletons generated tests are
// built from, plus the feature-driven selector that picks one for a
// requirement set. Selection is a pure function of the set's shape: which
// requirement families are populated decides between the single-concern
// templates and the comprehensive one, and the instruction text only
// contributes the test name.
package templates

import (
	"specforge/internal/types"
)

// Registered template names. Single-concern templates map one-to-one onto
// requirement families; page-smoke covers sets with no substantive
// requirements and accessibility-comprehensive covers everything else.
const (
	NameDOMInspection = "dom-inspection"
	NameKeyboard      = "keyboard-navigation"
	NameARIA          = "aria-compliance"
	NameVisual        = "visual-accessibility"
	NameCompliance    = "compliance-audit"
	NameAPISequence   = "api-sequence"
	NamePageSmoke     = "page-smoke"
	NameComprehensive = "accessibility-comprehensive"
)

// Template is a versioned script skeleton. Imports and framework identify
// the automation stack the renderer writes for; Features documents which
// requirement families the skeleton serves.
type Template struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Framework   string          `json:"framework"`
	Imports     []string        `json:"imports"`
	Features    []types.Feature `json:"features"`
}

// Clone returns a deep copy so callers can mutate without touching registry
// state.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Imports = append([]string(nil), t.Imports...)
	clone.Features = append([]types.Feature(nil), t.Features...)
	return &clone
}

// Customization carries per-feature configuration attached to a selection:
// which requirement sub-types were present, and for API sequences whether
// auth and timing code are needed.
type Customization struct {
	Feature  types.Feature `json:"feature"`
	Subtypes []string      `json:"subtypes,omitempty"`
	Auth     bool          `json:"auth,omitempty"`
	Timed    bool          `json:"timed,omitempty"`
}

// Selection is the selector's verdict: the template to render, one
// customization per active feature, the scan configuration, and a
// deterministic test name derived from the instruction.
type Selection struct {
	Template       Template         `json:"template"`
	TestName       string           `json:"test_name"`
	Customizations []Customization  `json:"customizations"`
	Scan           types.ScanConfig `json:"scan"`
}

// Customization returns the customization for a feature, if present.
func (s *Selection) Customization(f types.Feature) (Customization, bool) {
	for _, c := range s.Customizations {
		if c.Feature == f {
			return c, true
		}
	}
	return Customization{}, false
}

const (
	// FrameworkPlaywrightTS is the only framework the renderer currently
	// emits.
	FrameworkPlaywrightTS = "playwright-ts"

	importPlaywright = `import { test, expect } from '@playwright/test';`
	importAxe        = `import AxeBuilder from '@axe-core/playwright';`
)

// builtinVersion is bumped when a skeleton's rendered shape changes.
const builtinVersion = "1.0.0"

func builtinTemplates() []*Template {
	return []*Template{
		{
			Name:        NameDOMInspection,
			Version:     builtinVersion,
			Description: "Static DOM checks: image alternatives, labels, headings, landmarks, link text.",
			Framework:   FrameworkPlaywrightTS,
			Imports:     []string{importPlaywright, importAxe},
			Features:    []types.Feature{types.FeatureDOM, types.FeatureScan},
		},
		{
			Name:        NameKeyboard,
			Version:     builtinVersion,
			Description: "Keyboard interaction checks: tab order, focus visibility, traps, shortcuts.",
			Framework:   FrameworkPlaywrightTS,
			Imports:     []string{importPlaywright, importAxe},
			Features:    []types.Feature{types.FeatureKeyboard, types.FeatureScan},
		},
		{
			Name:        NameARIA,
			Version:     builtinVersion,
			Description: "ARIA semantics checks: labels, roles, live regions, states, accessible names.",
			Framework:   FrameworkPlaywrightTS,
			Imports:     []string{importPlaywright, importAxe},
			Features:    []types.Feature{types.FeatureARIA, types.FeatureScan},
		},
		{
			Name:        NameVisual,
			Version:     builtinVersion,
			Description: "Visual checks: color contrast, text resize, focus indicators, reduced motion.",
			Framework:   FrameworkPlaywrightTS,
			Imports:     []string{importPlaywright, importAxe},
			Features:    []types.Feature{types.FeatureVisual, types.FeatureScan},
		},
		{
			Name:        NameCompliance,
			Version:     builtinVersion,
			Description: "Guideline audit against a named conformance level.",
			Framework:   FrameworkPlaywrightTS,
			Imports:     []string{importPlaywright, importAxe},
			Features:    []types.Feature{types.FeatureCompliance, types.FeatureScan},
		},
		{
			Name:        NameAPISequence,
			Version:     builtinVersion,
			Description: "Ordered API request/verify sequence with optional auth and timing.",
			Framework:   FrameworkPlaywrightTS,
			Imports:     []string{importPlaywright},
			Features:    []types.Feature{types.FeatureAPI, types.FeatureScan},
		},
		{
			Name:        NamePageSmoke,
			Version:     builtinVersion,
			Description: "Generic page smoke test: load, title, baseline scan.",
			Framework:   FrameworkPlaywrightTS,
			Imports:     []string{importPlaywright, importAxe},
			Features:    []types.Feature{types.FeatureScan},
		},
		{
			Name:        NameComprehensive,
			Version:     builtinVersion,
			Description: "Comprehensive accessibility suite covering every requirement family.",
			Framework:   FrameworkPlaywrightTS,
			Imports:     []string{importPlaywright, importAxe},
			Features: []types.Feature{
				types.FeatureDOM, types.FeatureKeyboard, types.FeatureARIA,
				types.FeatureVisual, types.FeatureCompliance, types.FeatureAPI,
				types.FeatureScan,
			},
		},
	}
}
