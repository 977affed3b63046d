package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"specforge/internal/classify"
	"specforge/internal/config"
	"specforge/internal/types"
)

var initForce bool

// initCmd scaffolds a forge workspace
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize forge in the current workspace",
	Long: `Creates the .forge/ directory with a default config.yaml and an example
keyword table pack.

The example pack is not active until tables.pack_path in config.yaml points
at it. Packs replace tables wholesale per section, so the example carries a
full keyword list for the domain it overrides.

Run this once per project; existing files are kept unless --force is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	ws := workspace
	if ws == "" {
		ws, _ = os.Getwd()
	}

	cfgPath := filepath.Join(ws, ".forge", "config.yaml")
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		fmt.Println("Workspace already initialized. Use 'forge init --force' to overwrite config.yaml.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(cfgPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("✓ Wrote %s\n", cfgPath)

	packPath := filepath.Join(ws, ".forge", "packs", "example.yaml")
	if _, err := os.Stat(packPath); os.IsNotExist(err) || initForce {
		if err := writeExamplePack(packPath); err != nil {
			return fmt.Errorf("failed to write example pack: %w", err)
		}
		fmt.Printf("✓ Wrote %s (set tables.pack_path to activate)\n", packPath)
	}

	fmt.Println("✓ Workspace initialized")
	return nil
}

// examplePack mirrors the on-disk pack layout for the generated example.
type examplePack struct {
	Version string `yaml:"version"`
	Domains []struct {
		Domain   string   `yaml:"domain"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"domains"`
}

// writeExamplePack generates a valid pack from the live defaults so the
// example never drifts from the built-in corpus.
func writeExamplePack(path string) error {
	tables := classify.DefaultTables()

	keywords := append([]string(nil), tables.DomainKeywords(types.DomainAPI)...)
	keywords = append(keywords, "jwt")

	pack := examplePack{Version: tables.Version + "-local"}
	pack.Domains = append(pack.Domains, struct {
		Domain   string   `yaml:"domain"`
		Keywords []string `yaml:"keywords"`
	}{
		Domain:   string(types.DomainAPI),
		Keywords: keywords,
	})

	body, err := yaml.Marshal(&pack)
	if err != nil {
		return err
	}

	header := `# Example keyword table pack.
#
# A pack replaces tables wholesale per section: listing a domain replaces
# that domain's entire keyword list, so this file carries the full built-in
# api list plus one addition. Activate it via tables.pack_path in
# config.yaml; lint it with cmd/tools/tablelint.
`

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(header), body...), 0644)
}
