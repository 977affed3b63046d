// Audit trail for the compilation pipeline. Events are JSONL, one object per
// line, so a run can be replayed or diffed against a previous run when a
// table change shifts classification.

package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType defines the type of audit event.
type AuditEventType string

const (
	// Pipeline lifecycle
	AuditCompileStart    AuditEventType = "compile_start"
	AuditCompileComplete AuditEventType = "compile_complete"
	AuditCompileFallback AuditEventType = "compile_fallback"

	// Stage results
	AuditClassifyResult   AuditEventType = "classify_result"
	AuditTemplateSelected AuditEventType = "template_selected"
	AuditPreflightIssue   AuditEventType = "preflight_issue"

	// Collaborators
	AuditPackLoaded    AuditEventType = "pack_loaded"
	AuditSnapshotTaken AuditEventType = "snapshot_taken"
	AuditStoreRecord   AuditEventType = "store_record"
	AuditStoreStatus   AuditEventType = "store_status"
)

// AuditEvent is one structured audit record.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"` // Unix milliseconds
	EventType  AuditEventType         `json:"event"`
	RequestID  string                 `json:"req,omitempty"`
	Domain     string                 `json:"domain,omitempty"`
	Template   string                 `json:"template,omitempty"`
	Target     string                 `json:"target,omitempty"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Message    string                 `json:"msg,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// auditSink owns the audit file. Events arriving before InitAudit, or after
// CloseAudit, are dropped silently.
type auditSink struct {
	mu sync.Mutex
	f  *os.File
}

var trail auditSink

// InitAudit opens the audit file for this run. No-op in production mode.
func InitAudit() error {
	dir, active := logDir()
	if !active {
		return nil
	}

	trail.mu.Lock()
	defer trail.mu.Unlock()
	if trail.f != nil {
		return nil
	}

	name := time.Now().Format("2006-01-02") + "_audit.log"
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	fmt.Fprintf(f, "# audit trail opened %s\n", time.Now().Format(time.RFC3339))
	trail.f = f
	return nil
}

// CloseAudit closes the audit file.
func CloseAudit() {
	trail.mu.Lock()
	defer trail.mu.Unlock()
	if trail.f != nil {
		trail.f.Close()
		trail.f = nil
	}
}

func (s *auditSink) emit(e AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return
	}

	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	line, err := json.Marshal(e)
	if err != nil {
		return
	}
	s.f.Write(append(line, '\n'))
}

// AuditLogger stamps events with an optional request id on their way to the
// sink.
type AuditLogger struct {
	requestID string
}

// Audit returns an unscoped audit logger.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithRequest returns an audit logger scoped to one compile request.
func AuditWithRequest(requestID string) *AuditLogger {
	return &AuditLogger{requestID: requestID}
}

// Log writes one audit event.
func (a *AuditLogger) Log(e AuditEvent) {
	if e.RequestID == "" {
		e.RequestID = a.requestID
	}
	trail.emit(e)
}

// CompileStart records the beginning of a compile request.
func (a *AuditLogger) CompileStart(instructionLen int, hasSnapshot bool) {
	a.Log(AuditEvent{
		EventType: AuditCompileStart,
		Success:   true,
		Fields: map[string]interface{}{
			"instruction_len": instructionLen,
			"has_snapshot":    hasSnapshot,
		},
	})
}

// CompileComplete records a finished compile with its outcome.
func (a *AuditLogger) CompileComplete(domain, template string, durationMs int64, fallback bool) {
	a.Log(AuditEvent{
		EventType:  AuditCompileComplete,
		Domain:     domain,
		Template:   template,
		Success:    !fallback,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"fallback": fallback},
	})
}

// CompileFallback records a degraded-path activation with its cause.
func (a *AuditLogger) CompileFallback(stage string, cause string) {
	a.Log(AuditEvent{
		EventType: AuditCompileFallback,
		Target:    stage,
		Success:   false,
		Error:     cause,
	})
}

// ClassifyResult records the classification outcome.
func (a *AuditLogger) ClassifyResult(domain string, confidence float64, enhanced bool) {
	a.Log(AuditEvent{
		EventType: AuditClassifyResult,
		Domain:    domain,
		Success:   true,
		Fields: map[string]interface{}{
			"confidence": confidence,
			"enhanced":   enhanced,
		},
	})
}

// TemplateSelected records which template was chosen and why.
func (a *AuditLogger) TemplateSelected(name string, features []string) {
	a.Log(AuditEvent{
		EventType: AuditTemplateSelected,
		Template:  name,
		Success:   true,
		Fields:    map[string]interface{}{"features": features},
	})
}

// PreflightIssue records one validation issue surfaced before compilation.
func (a *AuditLogger) PreflightIssue(field, code, message string) {
	a.Log(AuditEvent{
		EventType: AuditPreflightIssue,
		Target:    field,
		Success:   false,
		Error:     code,
		Message:   message,
	})
}

// PackLoaded records a keyword table pack load.
func (a *AuditLogger) PackLoaded(path string, domains, enhanced int) {
	a.Log(AuditEvent{
		EventType: AuditPackLoaded,
		Target:    path,
		Success:   true,
		Fields: map[string]interface{}{
			"domains":  domains,
			"enhanced": enhanced,
		},
	})
}

// SnapshotTaken records a page capture.
func (a *AuditLogger) SnapshotTaken(url string, elements, forms int, durationMs int64) {
	a.Log(AuditEvent{
		EventType:  AuditSnapshotTaken,
		Target:     url,
		Success:    true,
		DurationMs: durationMs,
		Fields: map[string]interface{}{
			"elements": elements,
			"forms":    forms,
		},
	})
}

// StoreRecord records a test case being persisted.
func (a *AuditLogger) StoreRecord(id, name string) {
	a.Log(AuditEvent{
		EventType: AuditStoreRecord,
		Target:    id,
		Success:   true,
		Message:   name,
	})
}

// StoreStatus records a test case status transition.
func (a *AuditLogger) StoreStatus(id, from, to string) {
	a.Log(AuditEvent{
		EventType: AuditStoreStatus,
		Target:    id,
		Success:   true,
		Fields:    map[string]interface{}{"from": from, "to": to},
	})
}

// StageError records a pipeline stage failure.
func (a *AuditLogger) StageError(stage string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	a.Log(AuditEvent{
		EventType: AuditCompileFallback,
		Target:    stage,
		Success:   false,
		Error:     msg,
	})
}
