package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	snapshotHTML string
	snapshotOut  string
)

// snapshotCmd captures page structure for later compiles
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [url]",
	Short: "Capture a structural snapshot of a page",
	Long: `Captures the interactive structure of a page - elements, forms, ARIA
metadata - as JSON. A saved snapshot sharpens later compiles without
touching the network: pass it to compile with --snapshot.

By default the page is loaded in a headless browser. With --html the
structure is parsed from a static file instead; the URL argument then
names the page the file represents.

Examples:
  forge snapshot https://example.com/login -o login.snapshot.json
  forge snapshot https://example.com/login --html fixtures/login.html`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotHTML, "html", "", "Parse this HTML file instead of loading the page")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "Output file (default: stdout)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	pageURL := args[0]
	logger.Info("Capturing snapshot", zap.String("url", pageURL), zap.Bool("offline", snapshotHTML != ""))

	snap, err := loadSnapshot(ctx, cfg, "", snapshotHTML, pageURL)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	data = append(data, '\n')

	if snapshotOut == "" {
		os.Stdout.Write(data)
	} else {
		if err := os.WriteFile(snapshotOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", snapshotOut)
	}

	fmt.Fprintf(os.Stderr, "✓ Captured %d element(s), %d form(s) from %s\n",
		len(snap.InteractiveElements), len(snap.Forms), snap.URL)
	return nil
}
