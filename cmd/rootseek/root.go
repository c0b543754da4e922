package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/rootseek/internal/cli"
	"github.com/aretw0/rootseek/internal/config"
)

var (
	// cfg and logger are resolved once per invocation by loadSettings.
	cfg    config.Config
	logger *slog.Logger
	debug  bool
)

var rootCmd = &cobra.Command{
	Use:   "rootseek",
	Short: "rootseek explores the roots and the intersection of two equations",
	Long: `rootseek asks for guesses, refines each one into a root with a guarded
iterative solver, offers a single retry for every guess that fails, and finally
locates where the two curves cross. Curves and markers are saved as PNG plots.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (default: ./"+config.DefaultFile+" when present)")
	f.BoolVar(&debug, "debug", false, "Log every lifecycle event to stderr")
	f.String("log-format", "", "Log format: text or json")
	f.Float64("tolerance", 0, "Residual gate |f(root)| for accepting a root")
	f.String("plot-dir", "", "Directory receiving the PNG plots")
	f.Bool("no-plots", false, "Do not draw any plot")
	f.String("store", "", "Session store: memory, file, sqlite or redis")
	f.String("redis-url", "", "Redis URL for the redis store")
	f.Bool("reprompt-invalid-guesses", false, "Ask again instead of aborting on a malformed guess")
	f.Bool("validate-intersection", false, "Apply the tolerance gate to the intersection")
}

// loadSettings layers flags over the config file and environment.
func loadSettings(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	applyFlags(cmd, &loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	logger, err = cli.NewLogger(cfg, debug)
	return err
}

func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-format") {
		c.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("tolerance") {
		c.Tolerance, _ = flags.GetFloat64("tolerance")
	}
	if flags.Changed("plot-dir") {
		c.Plot.Dir, _ = flags.GetString("plot-dir")
	}
	if noPlots, _ := flags.GetBool("no-plots"); noPlots {
		c.Plot.Enabled = false
	}
	if flags.Changed("store") {
		c.Store.Kind, _ = flags.GetString("store")
	}
	if flags.Changed("redis-url") {
		c.Store.RedisURL, _ = flags.GetString("redis-url")
		if !flags.Changed("store") {
			c.Store.Kind = "redis"
		}
	}
	if flags.Changed("reprompt-invalid-guesses") {
		c.RepromptInvalidGuesses, _ = flags.GetBool("reprompt-invalid-guesses")
	}
	if flags.Changed("validate-intersection") {
		c.ValidateIntersection, _ = flags.GetBool("validate-intersection")
	}
}
