package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravitrone/nebula-notes/internal/cmd"
	"github.com/gravitrone/nebula-notes/internal/storage"
	"github.com/gravitrone/nebula-notes/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nebula-notes",
		Short: "Nebula Notes - notes with AI text tools",
		Long:  "Nebula Notes: write, search and tag notes, and summarize, fix, elaborate or title them with Gemini.",
		RunE: func(c *cobra.Command, _ []string) error {
			if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
				return fmt.Errorf("the notes UI needs a terminal; see 'nebula-notes --help' for scriptable commands")
			}
			return runTUI(cmd.Verbose(c))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "debug-level logging")

	root.AddCommand(cmd.ListCmd())
	root.AddCommand(cmd.NewCmd())
	root.AddCommand(cmd.ShowCmd())
	root.AddCommand(cmd.DeleteCmd())
	root.AddCommand(cmd.TagCmd())
	root.AddCommand(cmd.AICmd())
	root.AddCommand(cmd.ConfigCmd())
	return root
}

func runTUI(verbose bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := cmd.OpenEnv(ctx, verbose)
	if err != nil {
		return err
	}
	defer env.Close()

	changes, err := storage.Watch(ctx, env.Config.DBPath, 0, env.Log)
	if err != nil {
		env.Log.Warn("storage watcher disabled", zap.Error(err))
		changes = nil
	}

	app := ui.NewApp(ctx, ui.Options{
		Store:           env.Store,
		Text:            env.TextFactory(),
		Log:             env.Log,
		Changes:         changes,
		Debounce:        env.Config.Debounce,
		DiscardOnSwitch: env.Config.DiscardOnSwitch,
		RequestTimeout:  env.Config.RequestTimeout,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(ui.App); ok {
		m.Shutdown(ctx)
	} else {
		app.Shutdown(ctx)
	}
	if err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
