package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"specforge/internal/classify"
)

var tablesPack string

// tablesCmd inspects the active keyword tables
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Show the active keyword tables",
	Long: `Shows the keyword tables driving classification and pattern recognition:
domain keywords, enhanced accessibility triggers, and strong signals.

Without --pack this shows whatever the workspace config selects (the
built-in tables when no pack is configured). Loading a pack also validates
it, so this doubles as a pack check.`,
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().StringVar(&tablesPack, "pack", "", "Table pack file (default: configured pack, else built-ins)")
}

func runTables(cmd *cobra.Command, args []string) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}

	pack := tablesPack
	if pack == "" {
		pack = cfg.Tables.PackPath
	}

	var tables *classify.Tables
	if pack == "" {
		tables = classify.DefaultTables()
		fmt.Println("Active tables: built-in")
	} else {
		tables, err = classify.LoadPack(pack)
		if err != nil {
			return err
		}
		fmt.Printf("Active tables: %s\n", pack)
	}

	fmt.Printf("Version: %s\n", tables.Version)
	fmt.Println()

	fmt.Println("Domain keywords:")
	for _, d := range tables.Domains {
		fmt.Printf("  %-14s %d keyword(s)\n", d.Domain, len(d.Keywords))
	}
	fmt.Println()

	fmt.Printf("Enhanced accessibility triggers: %d\n", len(tables.Enhanced))
	for _, e := range tables.Enhanced {
		fmt.Printf("  %-28s → %s (weight %.2f)\n", e.Phrase, e.Category, e.Weight)
	}
	fmt.Println()

	fmt.Printf("Strong signals: %d\n", len(tables.StrongSignals))
	return nil
}
