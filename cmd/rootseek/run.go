package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/rootseek/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive exploration",
	Long: `Asks for the guesses of each equation, reports every root found, offers one
retry per failed guess and finishes with the intersection of the two curves.

Sessions are saved after every step, so an interrupted run resumes where it
stopped when started again with the same --session. A session that already
finished starts over; use 'session report' to read its results first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")

		return cli.RunSession(cmd.Context(), cli.RunOptions{
			Config:    cfg,
			Logger:    logger,
			Debug:     debug,
			JSON:      jsonMode,
			Headless:  headless,
			SessionID: sessionID,
			Fresh:     fresh,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", cli.DefaultSessionID, "Session ID to create or resume")
	runCmd.Flags().Bool("fresh", false, "Discard the saved session before starting")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no system messages)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")

	// 'run' is the default when no command is provided.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
