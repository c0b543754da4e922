package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/rootseek/internal/cli"
	"github.com/aretw0/rootseek/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the refinement loop as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the phases of the refinement loop.
With --session the phases that session went through are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		engine, err := cli.NewEngine(cfg, logger, debug)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if sessionID != "" {
			sessions, closeStore, err := cli.OpenSessions(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()
			state, err := sessions.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", sessionID, err)
			}
			overlay = graph.OverlayFromState(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(engine.Inspect(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of a saved session")
}
