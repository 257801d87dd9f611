package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/nebula-notes/internal/config"
)

// RunConfigInit prompts for the Gemini key and model and writes the config.
// An existing config keeps its other settings.
func RunConfigInit(in io.Reader, out io.Writer) error {
	cfg, err := config.LoadFile()
	if errors.Is(err, config.ErrInsecurePermissions) {
		// Save rewrites the file with 0600.
		fmt.Fprintln(out, "config permissions too open, rewriting with defaults")
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return err
	}
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "gemini api key (blank to keep current): ")
	key, _ := reader.ReadString('\n')
	if key = strings.TrimSpace(key); key != "" {
		cfg.APIKey = key
	}

	fmt.Fprintf(out, "model [%s]: ", modelLabel(cfg.Model))
	model, _ := reader.ReadString('\n')
	if model = strings.TrimSpace(model); model != "" {
		cfg.Model = model
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	if !cfg.HasAPIKey() && os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		fmt.Fprintln(out, "no api key set: AI tools stay disabled until GEMINI_API_KEY is exported")
	}
	return nil
}

func modelLabel(model string) string {
	if model == "" {
		return "default"
	}
	return model
}

// ConfigCmd returns the `nebula-notes config` command group.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the config file, prompting for the Gemini key",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return RunConfigInit(c.InOrStdin(), c.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintln(c.OutOrStdout(), config.Path())
		},
	})
	return cmd
}
