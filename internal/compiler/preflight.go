package compiler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/types"
)

// =============================================================================
// PRE-FLIGHT VALIDATION
// =============================================================================
//
// Pre-flight reports structured issues without ever blocking compilation:
// the pipeline still runs and produces output, the caller decides what to do
// with the findings.

// minInstructionRunes is the shortest instruction pre-flight accepts without
// flagging. Anything shorter cannot carry a verb and a target.
const minInstructionRunes = 8

// Issue codes surfaced by pre-flight validation and criteria checking.
const (
	CodeEmpty            = "empty"
	CodeTooShort         = "too-short"
	CodeNoDomainKeywords = "no-domain-keywords"
	CodeBadURL           = "bad-url"
	CodeBadCriterion     = "bad-criterion"
	CodeBadRuleSet       = "bad-rule-set"
)

// ValidationIssue is one structured pre-flight finding.
type ValidationIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Err maps the issue onto the error taxonomy for callers that need an
// errors.Is-checkable value, such as CLI exit codes.
func (i ValidationIssue) Err() error {
	switch i.Code {
	case CodeBadCriterion:
		return fmt.Errorf("%w: %s", forgeerrors.ErrComplianceValidation, i.Message)
	case CodeBadRuleSet:
		return fmt.Errorf("%w: %s", forgeerrors.ErrScanningEngineConfig, i.Message)
	default:
		return fmt.Errorf("%w: %s", forgeerrors.ErrInvalidInstruction, i.Message)
	}
}

var (
	// urlishRe strips URLs before the criterion scan so dotted hosts and
	// paths are not mistaken for over-deep criterion references.
	urlishRe = regexp.MustCompile(`https?://[^\s"'<>]+`)

	// overDottedRe matches dotted references with too many groups to be a
	// success criterion ("1.4.3.2").
	overDottedRe = regexp.MustCompile(`\b\d+(?:\.\d+){3,}\b`)
)

// Validate checks an instruction and snapshot before compilation. Findings
// come back as structured issues; an empty slice means clean input.
func (c *Compiler) Validate(instruction string, snap *types.StructuralSnapshot) []ValidationIssue {
	var issues []ValidationIssue

	trimmed := strings.TrimSpace(instruction)
	switch {
	case trimmed == "":
		issues = append(issues, ValidationIssue{
			Field:   "instruction",
			Code:    CodeEmpty,
			Message: "instruction is empty",
		})
	case utf8.RuneCountInString(trimmed) < minInstructionRunes:
		issues = append(issues, ValidationIssue{
			Field:   "instruction",
			Code:    CodeTooShort,
			Message: fmt.Sprintf("instruction is %d characters, shorter than the %d minimum", utf8.RuneCountInString(trimmed), minInstructionRunes),
		})
	default:
		if intent := c.classifier.Classify(trimmed, nil); intent.Confidence == 0 {
			issues = append(issues, ValidationIssue{
				Field:   "instruction",
				Code:    CodeNoDomainKeywords,
				Message: "instruction matches no domain keywords; classification will not be meaningful",
			})
		}
	}

	stripped := urlishRe.ReplaceAllString(trimmed, " ")
	for _, ref := range overDottedRe.FindAllString(stripped, -1) {
		issues = append(issues, ValidationIssue{
			Field:   "instruction",
			Code:    CodeBadCriterion,
			Message: fmt.Sprintf("%q is not a success-criterion reference (expected major.minor.patch)", ref),
		})
	}

	if snap != nil && snap.URL != "" {
		if issue, ok := checkURL(snap.URL); !ok {
			issues = append(issues, issue)
		}
	}

	return issues
}

func checkURL(raw string) (ValidationIssue, bool) {
	issue := ValidationIssue{Field: "snapshot.url", Code: CodeBadURL}
	parsed, err := url.Parse(raw)
	switch {
	case err != nil:
		issue.Message = fmt.Sprintf("snapshot URL %q does not parse: %v", raw, err)
		return issue, false
	case parsed.Scheme != "http" && parsed.Scheme != "https":
		issue.Message = fmt.Sprintf("snapshot URL %q has unsupported scheme %q", raw, parsed.Scheme)
		return issue, false
	case parsed.Host == "":
		issue.Message = fmt.Sprintf("snapshot URL %q has no host", raw)
		return issue, false
	}
	return ValidationIssue{}, true
}
