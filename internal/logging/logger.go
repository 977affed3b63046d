// Package logging writes per-category log files under the workspace. Nothing
// is written unless debug_mode is set in .forge/config.yaml, so pipeline code
// logs freely and production runs stay silent. The config file is read
// directly here, not through internal/config, which keeps this package
// importable from everywhere without a cycle.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Category names one log stream. Each active category gets its own file
// under .forge/logs/, date-prefixed so runs from the same day sort together.
type Category string

const (
	CategoryBoot      Category = "boot"
	CategoryClassify  Category = "classify"
	CategoryRecognize Category = "recognize"
	CategorySynth     Category = "synth"
	CategoryTemplate  Category = "template"
	CategoryRender    Category = "render"
	CategoryCompiler  Category = "compiler"
	CategoryTables    Category = "tables"
	CategorySnapshot  Category = "snapshot"
	CategoryStore     Category = "store"
	CategoryREPL      Category = "repl"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelTags = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func levelNamed(name string) level {
	switch name {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// settings is the logging section of the workspace config file.
type settings struct {
	Debug      bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// state is everything mutable in the package: the resolved settings and the
// lazily opened sinks. One mutex covers it all; file logging is nowhere near
// hot enough to want finer locking. The zero value is inert, which is what
// makes every logging call safe before Initialize.
type state struct {
	mu     sync.Mutex
	dir    string
	active bool
	floor  level
	filter map[string]bool
	sinks  map[Category]*log.Logger
	files  []*os.File
}

var st state

// Initialize points the package at a workspace and reads its logging config.
// Optional: until it runs, every call in the package is a no-op.
func Initialize(ws string) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	var s settings
	raw, err := os.ReadFile(filepath.Join(ws, ".forge", "config.yaml"))
	switch {
	case os.IsNotExist(err):
		// No config means production mode.
	case err != nil:
		return err
	default:
		var file struct {
			Logging settings `yaml:"logging"`
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		s = file.Logging
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.dir = filepath.Join(ws, ".forge", "logs")
	st.active = s.Debug
	st.floor = levelNamed(s.Level)
	st.filter = s.Categories
	st.sinks = make(map[Category]*log.Logger)

	if !st.active {
		return nil
	}
	if err := os.MkdirAll(st.dir, 0755); err != nil {
		st.active = false
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if st.floor <= levelInfo {
		boot := st.sink(CategoryBoot)
		boot.Printf("[INFO] logging up in %s", ws)
		boot.Printf("[INFO] level %s", levelTags[st.floor])
		if len(st.filter) > 0 {
			boot.Printf("[INFO] category filter: %d entries", len(st.filter))
		}
	}
	return nil
}

// logDir reports where log files go and whether logging is active.
func logDir() (string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.dir, st.active
}

// IsDebugMode reports whether the package is writing anything at all.
func IsDebugMode() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.active
}

// CloseAll closes every open log file and deactivates the package. Call on
// shutdown; Initialize brings it back.
func CloseAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, f := range st.files {
		f.Close()
	}
	st.files = nil
	st.sinks = nil
	st.active = false
}

// sink returns the category's logger, opening its file on first use. Callers
// hold st.mu. A category whose file cannot be opened logs to io.Discard from
// then on rather than retrying every call.
func (s *state) sink(cat Category) *log.Logger {
	if l, ok := s.sinks[cat]; ok {
		return l
	}

	name := time.Now().Format("2006-01-02") + "_" + string(cat) + ".log"
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] %s: %v\n", cat, err)
		l := log.New(io.Discard, "", 0)
		s.sinks[cat] = l
		return l
	}

	s.files = append(s.files, f)
	l := log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	s.sinks[cat] = l
	return l
}

// write is the single funnel every logging call goes through.
func write(cat Category, lv level, format string, args ...interface{}) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.active || lv < st.floor {
		return
	}
	if on, listed := st.filter[string(cat)]; listed && !on {
		return
	}
	st.sink(cat).Printf("["+levelTags[lv]+"] "+format, args...)
}

// Per-category helpers. Info and Debug exist for every pipeline stage; the
// extra severities exist where a caller has something to say at them.

func Boot(format string, args ...interface{}) { write(CategoryBoot, levelInfo, format, args...) }

func Classify(format string, args ...interface{}) { write(CategoryClassify, levelInfo, format, args...) }

func ClassifyDebug(format string, args ...interface{}) {
	write(CategoryClassify, levelDebug, format, args...)
}

func Recognize(format string, args ...interface{}) {
	write(CategoryRecognize, levelInfo, format, args...)
}

func RecognizeDebug(format string, args ...interface{}) {
	write(CategoryRecognize, levelDebug, format, args...)
}

func Synth(format string, args ...interface{}) { write(CategorySynth, levelInfo, format, args...) }

func SynthDebug(format string, args ...interface{}) { write(CategorySynth, levelDebug, format, args...) }

func Template(format string, args ...interface{}) { write(CategoryTemplate, levelInfo, format, args...) }

func TemplateDebug(format string, args ...interface{}) {
	write(CategoryTemplate, levelDebug, format, args...)
}

func Render(format string, args ...interface{}) { write(CategoryRender, levelInfo, format, args...) }

func RenderDebug(format string, args ...interface{}) { write(CategoryRender, levelDebug, format, args...) }

func Compiler(format string, args ...interface{}) { write(CategoryCompiler, levelInfo, format, args...) }

func CompilerDebug(format string, args ...interface{}) {
	write(CategoryCompiler, levelDebug, format, args...)
}

func CompilerError(format string, args ...interface{}) {
	write(CategoryCompiler, levelError, format, args...)
}

func Tables(format string, args ...interface{}) { write(CategoryTables, levelInfo, format, args...) }

func TablesDebug(format string, args ...interface{}) { write(CategoryTables, levelDebug, format, args...) }

func Snapshot(format string, args ...interface{}) { write(CategorySnapshot, levelInfo, format, args...) }

func SnapshotDebug(format string, args ...interface{}) {
	write(CategorySnapshot, levelDebug, format, args...)
}

func SnapshotWarn(format string, args ...interface{}) {
	write(CategorySnapshot, levelWarn, format, args...)
}

func Store(format string, args ...interface{}) { write(CategoryStore, levelInfo, format, args...) }

func StoreDebug(format string, args ...interface{}) { write(CategoryStore, levelDebug, format, args...) }

func REPL(format string, args ...interface{}) { write(CategoryREPL, levelInfo, format, args...) }

func REPLDebug(format string, args ...interface{}) { write(CategoryREPL, levelDebug, format, args...) }

// Timer measures one operation and reports it at debug level.
type Timer struct {
	cat   Category
	op    string
	began time.Time
}

// StartTimer begins timing an operation.
func StartTimer(cat Category, op string) *Timer {
	return &Timer{cat: cat, op: op, began: time.Now()}
}

// Stop logs the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.began)
	write(t.cat, levelDebug, "%s took %v", t.op, d)
	return d
}
