package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/rootseek/internal/cli"
	"github.com/aretw0/rootseek/pkg/domain"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search roots of one equation without a session",
	Example: `  rootseek find --eq f1 --guess "1.0, -2.5"
  rootseek find --eq f2 --guess 0.7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eq, _ := cmd.Flags().GetString("eq")
		guesses, _ := cmd.Flags().GetStringArray("guess")

		engine, err := cli.NewEngine(cfg, logger, debug)
		if err != nil {
			return err
		}
		found, err := cli.FindRoots(cmd.OutOrStdout(), engine, domain.EquationID(eq), strings.Join(guesses, ","))
		if err != nil {
			return err
		}
		if found == 0 {
			return fmt.Errorf("no root found for %s", eq)
		}
		return nil
	},
}

var intersectCmd = &cobra.Command{
	Use:   "intersect",
	Short: "Locate where the two equations cross near an x guess",
	RunE: func(cmd *cobra.Command, args []string) error {
		guess, _ := cmd.Flags().GetFloat64("guess")

		engine, err := cli.NewEngine(cfg, logger, debug)
		if err != nil {
			return err
		}
		_, err = cli.Intersect(cmd.OutOrStdout(), engine, guess)
		return err
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(intersectCmd)

	findCmd.Flags().String("eq", "f1", "Equation ID (see 'rootseek equations')")
	findCmd.Flags().StringArray("guess", nil, "Guess or comma separated guesses (repeatable)")
	_ = findCmd.MarkFlagRequired("guess")

	intersectCmd.Flags().Float64("guess", 0, "x-coordinate to start from")
	_ = intersectCmd.MarkFlagRequired("guess")
}
