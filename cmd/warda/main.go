// Package main provides the CLI entry point for WARDA.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/config"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/logging"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/server"
)

var (
	// Version information (set at build time)
	version = "dev"

	configPath string
	verbose    bool

	cfg       *config.Config
	logCloser io.Closer

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func main() {
	server.Version = version
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())

	rootCmd := &cobra.Command{
		Use:   "warda",
		Short: "WARDA - emotion-aware wellness support assistant",
		Long: titleStyle.Render("WARDA") + `

Wellness and Resilience Diagnostic AI. Classifies the emotional state of a
message, retrieves supporting passages from a counseling corpus and asks a
language model for a reply in a matching tone.

` + dimStyle.Render("Use 'warda [command] --help' for more information."),
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.warda/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(),
		newAskCmd(),
		newEmotionCmd(),
		newStatusCmd(),
		newCorpusCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// setup loads .env, the config file and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	// A missing .env is normal in production.
	envErr := godotenv.Load()

	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logCloser, err = logging.Setup(logging.Config{
		Level: level,
		File:  cfg.Logging.File,
		JSON:  cfg.Logging.JSON,
	})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	if envErr == nil {
		log.Debug().Msg("environment loaded from .env")
	}
	return nil
}
