package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and print the effective settings",
	Long: `Loads the defaults, the config file, ROOTSEEK_* environment variables and
flags, validates the result and prints it as YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// loadSettings already rejected an invalid configuration.
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, string(data))
		fmt.Fprintln(out, "Configuration is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
