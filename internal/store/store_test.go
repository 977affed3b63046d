package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "forge.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCase(id string) types.TestCase {
	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	return types.TestCase{
		ID:          id,
		Name:        "test-keyboard-navigation",
		Instruction: "test keyboard navigation",
		Domain:      types.DomainAccessibility,
		Template:    "keyboard-navigation",
		Script:      "import { test, expect } from '@playwright/test';\n",
		Status:      types.StatusGenerated,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestRecordAndGet(t *testing.T) {
	s := openStore(t)
	want := sampleCase("case-1")

	id, err := s.Record(want)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if id != "case-1" {
		t.Errorf("Record() id = %q, want %q", id, "case-1")
	}

	got, err := s.Get("case-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordFillsDefaults(t *testing.T) {
	s := openStore(t)

	id, err := s.Record(types.TestCase{Name: "bare", Instruction: "test the website"})
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if id == "" {
		t.Fatal("Record() assigned no ID")
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != types.StatusGenerated {
		t.Errorf("Status = %s, want %s", got.Status, types.StatusGenerated)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Errorf("timestamps not filled: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestRecordUpsert(t *testing.T) {
	s := openStore(t)

	tc := sampleCase("case-1")
	if _, err := s.Record(tc); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	tc.Script = "// regenerated\n"
	tc.UpdatedAt = tc.UpdatedAt.Add(time.Minute)
	if _, err := s.Record(tc); err != nil {
		t.Fatalf("Record() again error: %v", err)
	}

	got, err := s.Get("case-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Script != "// regenerated\n" {
		t.Errorf("Script = %q, want the re-recorded script", got.Script)
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d cases, want 1 after upsert", len(all))
	}
}

func TestGetNotFound(t *testing.T) {
	s := openStore(t)
	if _, err := s.Get("missing"); !errors.Is(err, forgeerrors.ErrNotFound) {
		t.Errorf("Get(missing) = %v, want errors.Is ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := openStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Record(sampleCase(id)); err != nil {
			t.Fatalf("Record(%s) error: %v", id, err)
		}
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	gotIDs := caseIDs(all)
	if diff := cmp.Diff([]string{"c", "b", "a"}, gotIDs); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}

	two, err := s.List(2)
	if err != nil {
		t.Fatalf("List(2) error: %v", err)
	}
	if diff := cmp.Diff([]string{"c", "b"}, caseIDs(two)); diff != "" {
		t.Errorf("List(2) mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateStatusAndListByStatus(t *testing.T) {
	s := openStore(t)
	for _, id := range []string{"a", "b"} {
		if _, err := s.Record(sampleCase(id)); err != nil {
			t.Fatalf("Record(%s) error: %v", id, err)
		}
	}

	if err := s.UpdateStatus("a", types.StatusFailed); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != types.StatusFailed {
		t.Errorf("Status = %s, want %s", got.Status, types.StatusFailed)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}

	failed, err := s.ListByStatus(types.StatusFailed, 0)
	if err != nil {
		t.Fatalf("ListByStatus() error: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, caseIDs(failed)); diff != "" {
		t.Errorf("ListByStatus() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	s := openStore(t)
	if _, err := s.Record(sampleCase("a")); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	if err := s.UpdateStatus("missing", types.StatusPassed); !errors.Is(err, forgeerrors.ErrNotFound) {
		t.Errorf("UpdateStatus(missing) = %v, want errors.Is ErrNotFound", err)
	}
	if err := s.UpdateStatus("a", types.TestStatus("exploded")); !errors.Is(err, forgeerrors.ErrParsing) {
		t.Errorf("UpdateStatus(bad status) = %v, want errors.Is ErrParsing", err)
	}
}

func TestStats(t *testing.T) {
	s := openStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Record(sampleCase(id)); err != nil {
			t.Fatalf("Record(%s) error: %v", id, err)
		}
	}
	if err := s.UpdateStatus("c", types.StatusPassed); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	want := map[string]int64{"generated": 2, "passed": 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forge.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := s.Record(sampleCase("persisted")); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	s2, err := New(path)
	if err != nil {
		t.Fatalf("New() after close error: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get("persisted")
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if got.Name != "test-keyboard-navigation" {
		t.Errorf("Name = %q, want the persisted record", got.Name)
	}
}

func TestClosedStore(t *testing.T) {
	s := openStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}

	if _, err := s.Record(sampleCase("x")); !errors.Is(err, forgeerrors.ErrStoreClosed) {
		t.Errorf("Record() = %v, want errors.Is ErrStoreClosed", err)
	}
	if _, err := s.Get("x"); !errors.Is(err, forgeerrors.ErrStoreClosed) {
		t.Errorf("Get() = %v, want errors.Is ErrStoreClosed", err)
	}
	if _, err := s.List(0); !errors.Is(err, forgeerrors.ErrStoreClosed) {
		t.Errorf("List() = %v, want errors.Is ErrStoreClosed", err)
	}
	if err := s.UpdateStatus("x", types.StatusPassed); !errors.Is(err, forgeerrors.ErrStoreClosed) {
		t.Errorf("UpdateStatus() = %v, want errors.Is ErrStoreClosed", err)
	}
	if _, err := s.Stats(); !errors.Is(err, forgeerrors.ErrStoreClosed) {
		t.Errorf("Stats() = %v, want errors.Is ErrStoreClosed", err)
	}
}

func caseIDs(cases []types.TestCase) []string {
	ids := make([]string, 0, len(cases))
	for _, tc := range cases {
		ids = append(ids, tc.ID)
	}
	return ids
}
