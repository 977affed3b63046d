package types

import "time"

// =============================================================================
// TEST CASE RECORDS
// =============================================================================

// TestStatus tracks the lifecycle of a generated test case. The pipeline only
// ever produces StatusGenerated; the rest is bookkeeping updated from outside
// (CI results imported through the store).
type TestStatus string

const (
	StatusGenerated TestStatus = "generated"
	StatusPassed    TestStatus = "passed"
	StatusFailed    TestStatus = "failed"
	StatusSkipped   TestStatus = "skipped"
)

// TestCase is a persisted compilation result.
type TestCase struct {
	ID          string     `json:"id"` // uuid
	Name        string     `json:"name"`
	Instruction string     `json:"instruction"`
	Domain      Domain     `json:"domain"`
	Template    string     `json:"template"` // template name used for rendering
	Script      string     `json:"script"`
	Status      TestStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
