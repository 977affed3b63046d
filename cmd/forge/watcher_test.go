package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInstructionWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instruction.txt")
	if err := os.WriteFile(path, []byte("test the login form"), 0o644); err != nil {
		t.Fatalf("write instruction: %v", err)
	}

	changed := make(chan string, 4)
	iw, err := NewInstructionWatcher([]string{path}, func(p string) {
		changed <- p
	})
	if err != nil {
		t.Fatalf("NewInstructionWatcher: %v", err)
	}
	iw.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := iw.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer iw.Stop()

	if err := os.WriteFile(path, []byte("test the signup form instead"), 0o644); err != nil {
		t.Fatalf("rewrite instruction: %v", err)
	}

	select {
	case p := <-changed:
		abs, _ := filepath.Abs(path)
		if p != abs {
			t.Fatalf("expected %s, got %s", abs, p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}
}

func TestInstructionWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.txt")
	other := filepath.Join(dir, "other.txt")
	for _, p := range []string{watched, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	changed := make(chan string, 4)
	iw, err := NewInstructionWatcher([]string{watched}, func(p string) {
		changed <- p
	})
	if err != nil {
		t.Fatalf("NewInstructionWatcher: %v", err)
	}
	iw.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := iw.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer iw.Stop()

	// A sibling file in the watched directory must not trigger the callback.
	if err := os.WriteFile(other, []byte("y"), 0o644); err != nil {
		t.Fatalf("rewrite other: %v", err)
	}

	select {
	case p := <-changed:
		t.Fatalf("unexpected callback for %s", p)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestInstructionWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instruction.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write instruction: %v", err)
	}

	iw, err := NewInstructionWatcher([]string{path}, func(string) {})
	if err != nil {
		t.Fatalf("NewInstructionWatcher: %v", err)
	}

	if err := iw.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	iw.Stop()
	iw.Stop() // Second stop must not panic or block.
}
