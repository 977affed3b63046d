package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"specforge/internal/store"
	"specforge/internal/types"
)

var (
	historyStatus string
	historyLimit  int
)

// historyCmd lists generated test cases
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List generated test cases",
	Long: `Lists the test cases recorded by previous compiles, newest first.

Each case carries a lifecycle status: generated when compiled, then
passed, failed, or skipped as outcomes are reported back with
'history mark'.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a stored test case script",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyMarkCmd = &cobra.Command{
	Use:   "mark [id] [status]",
	Short: "Record a test outcome (passed, failed, skipped)",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryMark,
}

func init() {
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Filter by status (generated, passed, failed, skipped)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum cases to list")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyMarkCmd)
}

func openStore() (*store.Store, error) {
	cfg, ws, err := bootstrap()
	if err != nil {
		return nil, err
	}
	st, err := store.New(storePath(ws, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var cases []types.TestCase
	if historyStatus == "" {
		cases, err = st.List(historyLimit)
	} else {
		cases, err = st.ListByStatus(types.TestStatus(historyStatus), historyLimit)
	}
	if err != nil {
		return err
	}

	if len(cases) == 0 {
		fmt.Println("No test cases recorded yet. Run 'forge compile' first.")
		return nil
	}

	fmt.Printf("%-36s  %-9s  %-13s  %-19s  %s\n", "ID", "STATUS", "DOMAIN", "CREATED", "NAME")
	for _, tc := range cases {
		fmt.Printf("%-36s  %-9s  %-13s  %-19s  %s\n",
			tc.ID, tc.Status, tc.Domain, tc.CreatedAt.Format("2006-01-02 15:04:05"), tc.Name)
	}

	stats, err := st.Stats()
	if err != nil {
		return err
	}
	fmt.Println()
	for _, status := range []types.TestStatus{types.StatusGenerated, types.StatusPassed, types.StatusFailed, types.StatusSkipped} {
		if n := stats[string(status)]; n > 0 {
			fmt.Printf("%s: %d  ", status, n)
		}
	}
	fmt.Println()
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	tc, err := st.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "// %s (%s, template %s, status %s)\n", tc.Name, tc.Domain, tc.Template, tc.Status)
	fmt.Println(tc.Script)
	return nil
}

func runHistoryMark(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, status := args[0], args[1]
	if err := st.UpdateStatus(id, types.TestStatus(status)); err != nil {
		return err
	}
	fmt.Printf("✓ %s → %s\n", id, status)
	return nil
}
