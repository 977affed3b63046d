// Package main implements a table pack linter for forge.
//
// It runs the same structural validation the compiler applies when a pack is
// loaded, so a broken pack fails in CI instead of at compile time, and adds
// drift warnings load-time validation deliberately allows:
// - a keyword listed under more than one domain (ambiguous scoring signal)
// - a keyword repeated inside one domain (dead weight)
// - a pack without a version line
// - a pack that overrides nothing
//
// Usage:
//
//	go run ./cmd/tools/tablelint -packs ./packs
//	go run ./cmd/tools/tablelint pack-a.yaml pack-b.yaml
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"specforge/internal/classify"
)

type issueSeverity string

const (
	severityError   issueSeverity = "error"
	severityWarning issueSeverity = "warning"
)

type issue struct {
	Severity issueSeverity
	File     string
	Message  string
}

func main() {
	packsRoot := flag.String("packs", "", "Directory to scan for .yaml/.yml table packs")
	failOnWarn := flag.Bool("fail-on-warn", false, "Exit non-zero if warnings are present")
	flag.Parse()

	files, err := collectPacks(*packsRoot, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "tablelint: %v\n", err)
		os.Exit(2)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "tablelint: no pack files given (use -packs <dir> or name files)")
		os.Exit(2)
	}

	var issues []issue
	for _, path := range files {
		issues = append(issues, lintPack(path)...)
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity < issues[j].Severity
		}
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].Message < issues[j].Message
	})

	var errCount, warnCount int
	for _, it := range issues {
		switch it.Severity {
		case severityError:
			errCount++
		case severityWarning:
			warnCount++
		}
	}

	fmt.Printf("Packs: %d scanned\n", len(files))
	if errCount == 0 && warnCount == 0 {
		fmt.Println("OK: no issues found")
		return
	}

	fmt.Printf("Issues: %d errors, %d warnings\n", errCount, warnCount)
	for _, it := range issues {
		fmt.Printf("- %s: %s: %s\n", it.Severity, it.File, it.Message)
	}

	if errCount > 0 || (*failOnWarn && warnCount > 0) {
		os.Exit(1)
	}
}

// collectPacks resolves the lint targets: explicit file arguments win,
// otherwise every .yaml/.yml under the pack root.
func collectPacks(root string, args []string) ([]string, error) {
	if len(args) > 0 {
		for _, path := range args {
			if _, err := os.Stat(path); err != nil {
				return nil, err
			}
		}
		return args, nil
	}
	if root == "" {
		return nil, nil
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	sort.Strings(files)
	return files, nil
}

// packShape mirrors just enough of the pack layout to tell which sections
// the pack actually sets.
type packShape struct {
	Version       string      `yaml:"version"`
	Domains       []yaml.Node `yaml:"domains"`
	Enhanced      []yaml.Node `yaml:"enhanced"`
	StrongSignals []string    `yaml:"strong_signals"`
}

// lintPack validates one pack file and reports drift warnings on the
// resulting tables.
func lintPack(path string) []issue {
	data, err := os.ReadFile(path)
	if err != nil {
		return []issue{{Severity: severityError, File: path, Message: fmt.Sprintf("read: %v", err)}}
	}

	tables, err := classify.ParsePack(data)
	if err != nil {
		return []issue{{Severity: severityError, File: path, Message: err.Error()}}
	}

	var issues []issue

	var shape packShape
	if err := yaml.Unmarshal(data, &shape); err == nil {
		if shape.Version == "" {
			issues = append(issues, issue{
				Severity: severityWarning,
				File:     path,
				Message:  "pack sets no version; loaded tables report the built-in version",
			})
		}
		if len(shape.Domains) == 0 && len(shape.Enhanced) == 0 && len(shape.StrongSignals) == 0 {
			issues = append(issues, issue{
				Severity: severityWarning,
				File:     path,
				Message:  "pack overrides nothing; compiles will use the built-in tables",
			})
		}
	}

	issues = append(issues, keywordDrift(path, tables)...)
	return issues
}

// keywordDrift flags keyword placements that load-time validation allows but
// that blur the scoring signal.
func keywordDrift(path string, tables *classify.Tables) []issue {
	var issues []issue

	owners := make(map[string][]string)
	for _, dt := range tables.Domains {
		seen := make(map[string]bool, len(dt.Keywords))
		for _, kw := range dt.Keywords {
			normalized := strings.ToLower(strings.TrimSpace(kw))
			if seen[normalized] {
				issues = append(issues, issue{
					Severity: severityWarning,
					File:     path,
					Message:  fmt.Sprintf("keyword %q repeated in domain %s", kw, dt.Domain),
				})
				continue
			}
			seen[normalized] = true
			owners[normalized] = append(owners[normalized], string(dt.Domain))
		}
	}

	shared := make([]string, 0)
	for kw, domains := range owners {
		if len(domains) > 1 {
			shared = append(shared, kw)
		}
	}
	sort.Strings(shared)
	for _, kw := range shared {
		domains := owners[kw]
		sort.Strings(domains)
		issues = append(issues, issue{
			Severity: severityWarning,
			File:     path,
			Message:  fmt.Sprintf("keyword %q scores for %s; every match raises both domains", kw, strings.Join(domains, " and ")),
		})
	}

	return issues
}
