package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/rootseek/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the explorer as a JSON API: one-shot root and intersection searches,
resumable sessions, the loop diagram and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Serve(ctx, cli.ServeOptions{
			Config: cfg,
			Logger: logger,
			Debug:  debug,
			Addr:   fmt.Sprintf(":%s", port),
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
