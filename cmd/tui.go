package main

import (
	"fmt"
	"io"

	"deepwork/internal/core/model"
	"deepwork/internal/ui/terminal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the timer in the terminal",
	Long: `Run the focus-session timer as a terminal UI. Logs go to deepwork.log
next to the configuration file while the terminal is in use.`,
	Example: `  deepwork tui
  deepwork tui --work 50m --break 10m --sessions 3`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	guard, err := acquireGuard()
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	var logOut io.Writer = io.Discard
	if logFile, err := openLogFile(appName); err == nil {
		defer logFile.Close()
		logOut = logFile
	}

	rt, err := newBootstrap(cmd, logOut)
	if err != nil {
		return err
	}
	engine := rt.scheduler
	defer engine.Close()

	ui := terminal.New(engine, engine.Subscribe(4), rt.defaults, func(config model.SessionConfig) {
		rt.saveSettings(config)
	})
	if rt.explicit {
		if err := engine.Start(); err != nil {
			return fmt.Errorf("start session: %w", err)
		}
	}

	if _, err := tea.NewProgram(ui, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	rt.logger.Info().Msg("Shutting down")
	return nil
}
