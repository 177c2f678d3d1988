package commands

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"productshot/config"
	"productshot/internal/mediator"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configPath string
	baseURL    string
	timeoutMs  int
	maxRetries int
)

var rootCmd = &cobra.Command{
	Use:   "productshot",
	Short: "Generate product photos",
	Long: `productshot talks to a product image generation service.

It can generate images, upload logos for overlays, list the available
options and run the HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "Config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Generation API base URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&timeoutMs, "timeout", 0, "Request timeout in milliseconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "retries", -1, "Retries for transient failures (overrides config)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file when it exists and applies flag
// overrides. A missing file falls back to the built-in defaults.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else if !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, err
	}

	if baseURL != "" {
		cfg.Generation.BaseUrl = baseURL
	}
	if timeoutMs > 0 {
		cfg.Generation.TimeoutMs = timeoutMs
	}
	if maxRetries >= 0 {
		cfg.Generation.MaxRetries = maxRetries
	}

	mediator.ConfigureLogging(cfg.Log)
	if !verboseLogging(cfg) {
		log.SetLevel(log.WarnLevel)
	}
	return cfg, nil
}

// verboseLogging keeps info logs for the CLI only when asked for explicitly.
func verboseLogging(cfg config.Config) bool {
	lvl, err := log.ParseLevel(cfg.Log.Level)
	return err == nil && lvl < log.InfoLevel
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func outputOf(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
