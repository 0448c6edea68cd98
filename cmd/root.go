package main

import (
	"fmt"
	"os"

	"deepwork/internal/config"

	"github.com/spf13/cobra"
)

const appName = "deepwork"

var (
	version    = "dev"
	configPath string
)

// rootCmd runs the desktop timer when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Deep work focus-session timer",
	Long: `deepwork cycles through alternating work and break phases for a
configured number of sessions, with pause/resume and reset. The default
command opens the desktop timer; "deepwork tui" runs it in the terminal.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDesktop,
}

func init() {
	defaultConfig, err := config.DefaultPath(appName)
	if err != nil {
		defaultConfig = ""
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", defaultConfig, "Path to configuration file")
	flags.Duration("work", 0, "Work phase length, e.g. 25m (overrides the last used value)")
	flags.Duration("break", 0, "Break phase length, e.g. 5m (overrides the last used value)")
	flags.Int("sessions", 0, "Number of work sessions (overrides the last used value)")
	flags.String("driver", "", "Countdown driver: rearm or loop")
	flags.Duration("resolution", 0, "Wake-up interval for the loop driver")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
