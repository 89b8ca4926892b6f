package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/solvekit/uras/app"
	"github.com/solvekit/uras/core/dispatch"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available solvers and dispatching rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := app.New(nil, nil).Algorithms()
		sort.Strings(names)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "solvers:")
		for _, n := range names {
			fmt.Fprintf(out, "  %s\n", n)
		}
		fmt.Fprintln(out, "dispatching rules:")
		for _, n := range dispatch.Names() {
			fmt.Fprintf(out, "  %s\n", n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}
