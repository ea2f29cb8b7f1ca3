package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/config"
	"mercator-hq/underwriter/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "underwriter",
	Short: "Underwriter - deterministic multi-profile loan decisioning",
	Long: `Underwriter evaluates loan applications against one or more decision
profiles and reports an approve, decline or refer decision per application.

Each profile scores the rules that fire for an application against its
approval threshold. Hard-decline rules veto approval. Profiles are then
aggregated into a final system decision and compared with the recorded
manual decision, if any.

Profiles and applications are read from JSON, JSON Lines or YAML files.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code derived from the
// command error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")
}

// loadConfig reads the configuration file with environment overrides,
// publishes it and returns a copy with the global flags applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	config.SetConfig(cfg)
	return currentConfig()
}

// reloadConfig reads the configuration file again and publishes it. An
// invalid file leaves the published configuration in place.
func reloadConfig() error {
	if err := config.ReloadConfig(cfgFile); err != nil {
		return cli.NewConfigError("config", err.Error())
	}
	return nil
}

// currentConfig returns a copy of the published configuration with the
// global flags applied. Flags never leak into the published value, so a
// reload starts from the file again.
func currentConfig() (*config.Config, error) {
	published := config.GetConfig()
	if published == nil {
		return nil, cli.NewConfigError("config", "configuration not loaded")
	}
	cfg := *published
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}
	return &cfg, nil
}

// newLogger builds the process logger. Logs always go to stderr so that
// stdout carries only command output.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	opts := cfg.LoggingOptions()
	opts.Writer = w
	logger, err := logging.New(opts)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return logger, nil
}

// stdout returns the command's output writer. A nil command writes to
// os.Stdout.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

// stderr returns the command's error writer. A nil command writes to
// os.Stderr.
func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}
