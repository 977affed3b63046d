// Package compiler orchestrates the full pipeline: pre-flight validation,
// intent classification, requirement synthesis, template selection and
// script rendering, producing a persistable test case. The pipeline always
// produces output: stage faults degrade to documented fallbacks and surface
// as soft results, never as errors. The returned error is non-nil only for
// programmer-contract violations.
package compiler

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"specforge/internal/classify"
	forgeerrors "specforge/internal/errors"
	"specforge/internal/logging"
	"specforge/internal/render"
	"specforge/internal/synth"
	"specforge/internal/templates"
	"specforge/internal/types"
)

// Compiler wires the pipeline stages together. Construct with NewCompiler;
// all stages are pure, so one compiler is safe for concurrent use.
type Compiler struct {
	classifier  *classify.Classifier
	synthesizer *synth.Synthesizer
	selector    *templates.Selector
	renderer    *render.Renderer
	validator   *ComplianceValidator
}

// CompilerOption is a functional option for configuring the compiler.
type CompilerOption func(*Compiler) error

// WithTables rebuilds the classification and synthesis stages over a custom
// keyword table pack. One table set feeds both stages so recognition stays
// consistent with classification.
func WithTables(t *classify.Tables) CompilerOption {
	return func(c *Compiler) error {
		if t == nil {
			return fmt.Errorf("%w: nil tables", forgeerrors.ErrMissingDependency)
		}
		c.classifier = classify.NewClassifier(t)
		c.synthesizer = synth.NewSynthesizer(t)
		return nil
	}
}

// WithRegistry selects templates out of a custom registry instead of the
// builtin catalog.
func WithRegistry(r *templates.Registry) CompilerOption {
	return func(c *Compiler) error {
		if r == nil {
			return fmt.Errorf("%w: nil template registry", forgeerrors.ErrMissingDependency)
		}
		c.selector = templates.NewSelector(r)
		return nil
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) CompilerOption {
	return func(c *Compiler) error {
		if r == nil {
			return fmt.Errorf("%w: nil renderer", forgeerrors.ErrMissingDependency)
		}
		c.renderer = r
		return nil
	}
}

// NewCompiler builds a compiler with the builtin stages, then applies options.
func NewCompiler(opts ...CompilerOption) (*Compiler, error) {
	c := &Compiler{
		classifier:  classify.NewClassifier(nil),
		synthesizer: synth.NewSynthesizer(nil),
		selector:    templates.NewSelector(nil),
		renderer:    render.NewRenderer(),
		validator:   &ComplianceValidator{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply compiler option: %w", err)
		}
	}
	return c, nil
}

var defaultCompiler = mustNewCompiler()

func mustNewCompiler() *Compiler {
	c, err := NewCompiler()
	if err != nil {
		panic(err)
	}
	return c
}

// Compile runs the default compiler.
func Compile(instruction string, snap *types.StructuralSnapshot) (*Result, error) {
	return defaultCompiler.Compile(instruction, snap)
}

// Validate runs the default compiler's pre-flight check.
func Validate(instruction string, snap *types.StructuralSnapshot) []ValidationIssue {
	return defaultCompiler.Validate(instruction, snap)
}

// Result is everything one compile produced. TestCase is the persistable
// artifact; the intermediate stage outputs are kept for callers that display
// or inspect them.
type Result struct {
	TestCase  types.TestCase
	Intent    types.Intent
	Set       types.RequirementSet
	Selection templates.Selection
	Issues    []ValidationIssue
	RequestID string
	Fallback  bool
	Duration  time.Duration
}

// Compile turns one instruction plus an optional structural snapshot into a
// generated test case. Pre-flight issues are reported on the result, never
// fatal; stage faults degrade to fallback output with the audit trail
// recording the cause.
func (c *Compiler) Compile(instruction string, snap *types.StructuralSnapshot) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryCompiler, "Compiler.Compile")
	defer timer.Stop()

	if c == nil {
		return nil, fmt.Errorf("%w: compiler not constructed", forgeerrors.ErrMissingDependency)
	}

	start := time.Now()
	requestID := uuid.NewString()
	audit := logging.AuditWithRequest(requestID)
	audit.CompileStart(len(instruction), snap != nil)

	// Step 1: pre-flight validation. Issues are surfaced, not enforced.
	issues := c.Validate(instruction, snap)
	for _, issue := range issues {
		audit.PreflightIssue(issue.Field, issue.Code, issue.Message)
	}

	// Step 2: intent classification. Never fails; unrecognized input scores
	// zero confidence.
	intent := c.classifier.Classify(instruction, snap)
	audit.ClassifyResult(string(intent.PrimaryDomain), intent.Confidence, intent.EnhancedAccessibility)

	// Step 3: requirement synthesis. Degraded paths mark the set instead of
	// failing.
	set := c.synthesizer.ParseInstructions(instruction, snap)
	if set.Fallback {
		audit.CompileFallback("synth", "requirement synthesis recovered to the minimal default set")
	}
	for _, issue := range c.validator.ValidateCriteria(&set) {
		audit.PreflightIssue(issue.Field, issue.Code, issue.Message)
		issues = append(issues, issue)
	}

	// Step 4: template selection, then rendering. A selection failure (only
	// reachable with a custom registry) degrades to the fallback script.
	fallback := set.Fallback
	sel, err := c.selector.Select(&set, instruction)
	var script string
	switch {
	case err != nil:
		audit.StageError("template", err)
		fallback = true
		sel = templates.Selection{TestName: "fallback-test", Scan: set.Scan}
		script = render.FallbackScript(sel.TestName)
	case sel.Template.Framework != "" && sel.Template.Framework != templates.FrameworkPlaywrightTS:
		audit.StageError("render", fmt.Errorf("%w: framework %q", forgeerrors.ErrUnsupportedFeature, sel.Template.Framework))
		fallback = true
		script = render.FallbackScript(sel.TestName)
	default:
		audit.TemplateSelected(sel.Template.Name, featureNames(sel))
		script = c.renderer.Render(render.Input{
			Name:      sel.TestName,
			URL:       snapshotURL(snap),
			Set:       &set,
			Selection: sel,
		})
	}

	now := time.Now().UTC()
	tc := types.TestCase{
		ID:          requestID,
		Name:        sel.TestName,
		Instruction: instruction,
		Domain:      set.SourceDomain,
		Template:    sel.Template.Name,
		Script:      script,
		Status:      types.StatusGenerated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	duration := time.Since(start)
	audit.CompileComplete(string(set.SourceDomain), sel.Template.Name, duration.Milliseconds(), fallback)
	logging.Compiler("compiled %q: template=%s domain=%s fallback=%v issues=%d",
		truncate(instruction, 60), sel.Template.Name, set.SourceDomain, fallback, len(issues))

	return &Result{
		TestCase:  tc,
		Intent:    intent,
		Set:       set,
		Selection: sel,
		Issues:    issues,
		RequestID: requestID,
		Fallback:  fallback,
		Duration:  duration,
	}, nil
}

func featureNames(sel templates.Selection) []string {
	names := make([]string, 0, len(sel.Customizations))
	for _, cu := range sel.Customizations {
		names = append(names, string(cu.Feature))
	}
	return names
}

func snapshotURL(snap *types.StructuralSnapshot) string {
	if snap == nil {
		return ""
	}
	return snap.URL
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
