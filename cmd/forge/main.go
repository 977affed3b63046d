// Package main provides the forge CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"specforge/internal/classify"
	"specforge/internal/compiler"
	"specforge/internal/config"
	"specforge/internal/logging"
	"specforge/internal/render"
	"specforge/internal/snapshot"
	"specforge/internal/types"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "specforge - natural language to Playwright test compiler",
	Long: `specforge compiles natural language test instructions into executable
Playwright TypeScript tests.

A deterministic keyword pipeline classifies each instruction into a test
domain, synthesizes typed requirements, selects a template, and renders the
final script. The same instruction always produces the same test; unclear
input degrades to a labeled fallback instead of failing.

Run without arguments to start the interactive session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Interactive mode has its own UI; skip the operational logger there.
		if cmd.Name() == "forge" || cmd.Name() == "repl" {
			return nil
		}

		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAudit()
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive session
		return runREPL()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: nearest .forge or go.mod root)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.forge/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the directory every relative path is anchored at.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	root, err := config.FindWorkspaceRoot()
	if err != nil {
		cwd, _ := os.Getwd()
		return cwd
	}
	return root
}

// resolveConfigPath honors --config, defaulting to the workspace config file.
func resolveConfigPath(ws string) string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(ws, ".forge", "config.yaml")
}

// bootstrap resolves the workspace, loads configuration, and brings up the
// category logging system. Every subcommand calls it first.
func bootstrap() (*config.Config, string, error) {
	ws := resolveWorkspace()

	path := resolveConfigPath(ws)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}

	if err := logging.Initialize(ws); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if err := logging.InitAudit(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	logging.Boot("forge %s starting in %s", cfg.Version, ws)

	return cfg, ws, nil
}

// buildCompiler assembles the pipeline from workspace configuration: the
// configured keyword table pack, when one is set, and the configured
// renderer. The active tables come back alongside the compiler so callers
// can report on them.
func buildCompiler(cfg *config.Config) (*compiler.Compiler, *classify.Tables, error) {
	tables := classify.DefaultTables()
	if cfg.Tables.PackPath != "" {
		loaded, err := classify.LoadPack(cfg.Tables.PackPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load table pack: %w", err)
		}
		tables = loaded
	}

	r := render.NewRenderer()
	r.SetHeaderComments(cfg.Render.HeaderComments)

	comp, err := compiler.NewCompiler(compiler.WithTables(tables), compiler.WithRenderer(r))
	if err != nil {
		return nil, nil, err
	}
	return comp, tables, nil
}

// captureConfig maps workspace browser settings onto the capture provider.
func captureConfig(cfg *config.Config) snapshot.CaptureConfig {
	return snapshot.CaptureConfig{
		DebuggerURL:         cfg.Browser.DebuggerURL,
		Headless:            cfg.Browser.Headless,
		NavigationTimeoutMs: int(cfg.GetNavigationTimeout().Milliseconds()),
		MaxElements:         cfg.Browser.MaxElements,
	}
}

// loadSnapshot builds the optional structural snapshot for a compile from
// whichever source the user provided: a saved snapshot JSON file, a static
// HTML file standing in for the page, or a live page capture.
func loadSnapshot(ctx context.Context, cfg *config.Config, snapshotFile, htmlFile, pageURL string) (*types.StructuralSnapshot, error) {
	switch {
	case snapshotFile != "":
		data, err := os.ReadFile(snapshotFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot file: %w", err)
		}
		return snapshot.FromJSON(data)

	case htmlFile != "":
		if pageURL == "" {
			return nil, fmt.Errorf("--html requires --url naming the page the file represents")
		}
		f, err := os.Open(htmlFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open html file: %w", err)
		}
		defer f.Close()
		return snapshot.FromHTML(f, pageURL)

	case pageURL != "":
		capturer := snapshot.NewCapturer(captureConfig(cfg))
		return capturer.Capture(ctx, pageURL)
	}

	return nil, nil
}

// storePath anchors the configured store path at the workspace root.
func storePath(ws string, cfg *config.Config) string {
	if filepath.IsAbs(cfg.Store.Path) {
		return cfg.Store.Path
	}
	return filepath.Join(ws, cfg.Store.Path)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
