package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/rootseek/internal/cli"
	"github.com/aretw0/rootseek/internal/presentation/tui"
)

var equationsCmd = &cobra.Command{
	Use:   "equations",
	Short: "List the explored equations",
	RunE: func(cmd *cobra.Command, args []string) error {
		markdown, _ := cmd.Flags().GetBool("markdown")

		engine, err := cli.NewEngine(cfg, logger, debug)
		if err != nil {
			return err
		}
		var rows [][]any
		for _, eq := range engine.Equations() {
			rows = append(rows, []any{eq.ID, eq.Label, eq.Expr})
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.Table([]string{"ID", "Equation", "Legend"}, rows, markdown))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(equationsCmd)
	equationsCmd.Flags().Bool("markdown", false, "Print a markdown table")
}
