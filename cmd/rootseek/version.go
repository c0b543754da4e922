package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/rootseek"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rootseek",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rootseek version %s\n", strings.TrimSpace(rootseek.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
