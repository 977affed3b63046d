package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"specforge/internal/compiler"
)

var (
	validateSnapshot string
	validateHTML     string
	validateURL      string
)

// validateCmd pre-flights an instruction without generating anything
var validateCmd = &cobra.Command{
	Use:   "validate [instruction]",
	Short: "Pre-flight an instruction without generating a test",
	Long: `Runs only the pre-flight checks on an instruction: emptiness, length,
domain keyword coverage, URL shape, and compliance references. Nothing is
generated or stored.

Compilation itself never fails on these findings; validate exists for
pipelines that want to gate on them. The exit code is non-zero when any
issue is found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSnapshot, "snapshot", "", "Structural snapshot JSON file")
	validateCmd.Flags().StringVar(&validateHTML, "html", "", "Static HTML file standing in for the page (needs --url)")
	validateCmd.Flags().StringVar(&validateURL, "url", "", "Page URL: capture target, or page identity for --html")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}

	comp, _, err := buildCompiler(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := loadSnapshot(ctx, cfg, validateSnapshot, validateHTML, validateURL)
	if err != nil {
		return err
	}

	instruction := joinArgs(args)
	issues := comp.Validate(instruction, snap)
	if len(issues) == 0 {
		fmt.Printf("✓ %q is compilable without findings\n", instruction)
		return nil
	}

	for _, issue := range issues {
		fmt.Printf("✗ %s [%s]: %s\n", issue.Field, issue.Code, issue.Message)
	}
	return firstErr(issues)
}

// firstErr reduces pre-flight findings to the exit-code error, using the
// taxonomy mapping of the first issue.
func firstErr(issues []compiler.ValidationIssue) error {
	if len(issues) == 0 {
		return nil
	}
	return issues[0].Err()
}
