package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"specforge/internal/compiler"
	"specforge/internal/store"
	"specforge/internal/types"
)

var (
	compileFiles    []string
	compileSnapshot string
	compileHTML     string
	compileURL      string
	compileOut      string
	compileSave     bool
	compileWatch    bool
	compileParallel int
)

// compileCmd turns instructions into Playwright tests
var compileCmd = &cobra.Command{
	Use:   "compile [instruction]",
	Short: "Compile a natural language instruction into a Playwright test",
	Long: `Compiles a natural language test instruction through the full pipeline:
  1. Pre-flight: structural findings on the raw instruction
  2. Classify: keyword scoring into a test domain
  3. Synthesize: typed requirements with compliance criteria
  4. Select + render: template chosen by requirement features, serialized
     into Playwright TypeScript

The instruction comes from the arguments or from files given with --file.
With more than one file the batch compiles in parallel and --out is
required. With --watch the single given file is recompiled whenever it
changes.

Examples:
  forge compile "test keyboard navigation" --url https://example.com
  forge compile -f checkout.txt -o tests/
  forge compile -f checkout.txt -o tests/ --watch`,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringSliceVarP(&compileFiles, "file", "f", nil, "Instruction file (repeatable)")
	compileCmd.Flags().StringVar(&compileSnapshot, "snapshot", "", "Structural snapshot JSON file")
	compileCmd.Flags().StringVar(&compileHTML, "html", "", "Static HTML file standing in for the page (needs --url)")
	compileCmd.Flags().StringVar(&compileURL, "url", "", "Page URL: capture target, or page identity for --html")
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "Directory for generated .spec.ts files (default: stdout)")
	compileCmd.Flags().BoolVar(&compileSave, "save", true, "Record the test case in the store")
	compileCmd.Flags().BoolVar(&compileWatch, "watch", false, "Recompile when the instruction file changes")
	compileCmd.Flags().IntVar(&compileParallel, "parallel", 4, "Batch compile concurrency")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, ws, err := bootstrap()
	if err != nil {
		return err
	}

	comp, _, err := buildCompiler(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	snap, err := loadSnapshot(ctx, cfg, compileSnapshot, compileHTML, compileURL)
	if err != nil {
		return err
	}

	var st *store.Store
	if compileSave {
		st, err = store.New(storePath(ws, cfg))
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()
	}

	switch {
	case compileWatch:
		if len(compileFiles) != 1 {
			return fmt.Errorf("--watch needs exactly one --file")
		}
		return watchAndCompile(ctx, comp, st, snap, compileFiles[0])

	case len(compileFiles) > 1:
		if compileOut == "" {
			return fmt.Errorf("batch compile needs --out")
		}
		return compileBatch(ctx, comp, st, snap, compileFiles)

	case len(compileFiles) == 1:
		instruction, err := readInstruction(compileFiles[0])
		if err != nil {
			return err
		}
		return compileOne(comp, st, instruction, snap)

	default:
		instruction := joinArgs(args)
		if instruction == "" {
			return fmt.Errorf("provide an instruction or --file")
		}
		return compileOne(comp, st, instruction, snap)
	}
}

// readInstruction loads one instruction file. The whole file is a single
// instruction; line breaks are treated as spaces.
func readInstruction(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read instruction file: %w", err)
	}
	return strings.Join(strings.Fields(string(data)), " "), nil
}

// compileOne runs a single instruction through the pipeline and delivers
// the output: script to --out or stdout, summary beside it, record in the
// store when saving is on.
func compileOne(comp *compiler.Compiler, st *store.Store, instruction string, snap *types.StructuralSnapshot) error {
	result, err := comp.Compile(instruction, snap)
	if err != nil {
		return err
	}

	if compileOut == "" {
		// Script owns stdout so it can be piped; the summary goes to stderr.
		printSummary(os.Stderr, result)
		fmt.Println(result.TestCase.Script)
	} else {
		printSummary(os.Stdout, result)
		path, err := writeScript(compileOut, result.TestCase)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", path)
	}

	if st != nil {
		id, err := st.Record(result.TestCase)
		if err != nil {
			return fmt.Errorf("failed to record test case: %w", err)
		}
		fmt.Fprintf(summaryWriter(), "✓ Recorded %s\n", id)
	}
	return nil
}

// compileBatch compiles every instruction file in parallel, bounded by
// --parallel, and prints the summaries in input order afterwards.
func compileBatch(ctx context.Context, comp *compiler.Compiler, st *store.Store, snap *types.StructuralSnapshot, files []string) error {
	logger.Info("Batch compiling", zap.Int("files", len(files)), zap.Int("parallel", compileParallel))

	results := make([]*compiler.Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(compileParallel)
	for i, file := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			instruction, err := readInstruction(file)
			if err != nil {
				return err
			}
			result, err := comp.Compile(instruction, snap)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			if _, err := writeScript(compileOut, result.TestCase); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, result := range results {
		fmt.Printf("✓ %s → %s (%s, template %s)\n",
			files[i], result.TestCase.Name+".spec.ts", result.TestCase.Domain, result.TestCase.Template)
		if st != nil {
			if _, err := st.Record(result.TestCase); err != nil {
				return fmt.Errorf("failed to record test case: %w", err)
			}
		}
	}
	fmt.Printf("Compiled %d instruction(s) into %s\n", len(files), compileOut)
	return nil
}

// watchAndCompile keeps recompiling one instruction file until interrupted.
func watchAndCompile(ctx context.Context, comp *compiler.Compiler, st *store.Store, snap *types.StructuralSnapshot, file string) error {
	if err := compileOne(comp, st, readInstructionOr(file), snap); err != nil {
		return err
	}

	watcher, err := NewInstructionWatcher([]string{file}, func(path string) {
		fmt.Fprintf(os.Stderr, "%s changed, recompiling\n", path)
		if err := compileOne(comp, st, readInstructionOr(path), snap); err != nil {
			fmt.Fprintf(os.Stderr, "compile failed: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	logger.Info("Watching for changes", zap.String("file", file))
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", file)

	<-ctx.Done()
	return nil
}

// readInstructionOr reads the instruction file, falling back to an empty
// instruction on error so watch mode keeps running through editor hiccups.
func readInstructionOr(path string) string {
	instruction, err := readInstruction(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return ""
	}
	return instruction
}

// writeScript writes the generated test into dir as <name>.spec.ts.
func writeScript(dir string, tc types.TestCase) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, tc.Name+".spec.ts")
	if err := os.WriteFile(path, []byte(tc.Script), 0644); err != nil {
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	return path, nil
}

// summaryWriter returns where human-readable compile chatter goes: stderr
// when the script owns stdout, stdout otherwise.
func summaryWriter() io.Writer {
	if compileOut == "" {
		return os.Stderr
	}
	return os.Stdout
}

// printSummary reports what the pipeline decided for one instruction.
func printSummary(w io.Writer, r *compiler.Result) {
	fmt.Fprintf(w, "Test:     %s\n", r.TestCase.Name)
	fmt.Fprintf(w, "Domain:   %s (confidence %.2f)\n", r.TestCase.Domain, r.Intent.Confidence)
	fmt.Fprintf(w, "Template: %s\n", r.TestCase.Template)
	if r.Fallback {
		fmt.Fprintf(w, "⚠ Degraded to fallback output\n")
	}
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "⚠ %s: %s\n", issue.Field, issue.Message)
	}
}
