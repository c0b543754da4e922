package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/rootseek/internal/cli"
	"github.com/aretw0/rootseek/internal/presentation/report"
	"github.com/aretw0/rootseek/internal/presentation/tui"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, report and remove sessions kept by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(sessions *session.Manager) error {
			ids, err := sessions.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No saved sessions found.")
				return nil
			}
			rows := make([][]any, 0, len(ids))
			for _, id := range ids {
				state, err := sessions.Load(cmd.Context(), id)
				if err != nil {
					rows = append(rows, []any{id, "unreadable", "-", "-"})
					continue
				}
				rows = append(rows, []any{id, state.Step(), countRoots(state), intersection(state)})
			}
			fmt.Fprint(out, tui.Table([]string{"Session", "Step", "Roots", "Intersection"}, rows, false))
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the raw state of a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(sessions *session.Manager) error {
			state, err := sessions.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", args[0], err)
			}
			data, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		})
	},
}

var sessionReportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Summarise the guesses, roots and intersection of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		engine, err := cli.NewEngine(cfg, logger, debug)
		if err != nil {
			return err
		}
		return withSessions(cmd, func(sessions *session.Manager) error {
			state, err := sessions.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", args[0], err)
			}
			md := report.Markdown(state, func(id domain.EquationID) string {
				if eq, err := engine.Registry().Lookup(id); err == nil {
					return eq.Label
				}
				return ""
			})
			if !raw && tui.IsInteractive() {
				if rendered, err := tui.NewRenderer()(md); err == nil {
					md = rendered
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return withSessions(cmd, func(sessions *session.Manager) error {
			ids := args
			if all {
				var err error
				if ids, err = sessions.List(cmd.Context()); err != nil {
					return fmt.Errorf("error listing sessions: %w", err)
				}
			}

			var errs []error
			for _, id := range ids {
				if err := sessions.Delete(cmd.Context(), id); err != nil {
					errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
			}
			return errors.Join(errs...)
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionReportCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionReportCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
	sessionRmCmd.Flags().Bool("all", false, "Remove every saved session")
}

func countRoots(state *domain.State) int {
	n := 0
	for _, roots := range state.Roots {
		n += len(roots)
	}
	return n
}

func intersection(state *domain.State) string {
	if state.Intersection == nil {
		return "-"
	}
	return fmt.Sprintf("(%g, %g)", state.Intersection.X, state.Intersection.Y)
}

func withSessions(cmd *cobra.Command, fn func(*session.Manager) error) error {
	sessions, closeStore, err := cli.OpenSessions(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(sessions)
}
