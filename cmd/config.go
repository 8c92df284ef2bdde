package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/livesass/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect livesass configuration",
	Long: `Inspect livesass configuration files and settings.

Examples:
  livesass config show                  # Show the effective configuration
  livesass config show --format json    # Show it as JSON
  livesass config validate              # Validate .livesass.yml
  livesass config validate --file ci.yml --strict`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a livesass configuration file.

This command checks for:
- Required fields (source, destination, at least one filter)
- An allowed Sass command and safe extra arguments
- Known output style, log level and log format

Examples:
  livesass config validate              # Validate .livesass.yml in current directory
  livesass config validate --file config.yml  # Validate specific file
  livesass config validate --strict    # Treat warnings as errors`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the configuration after loading the configuration file, applying
environment variable overrides and filling in defaults.

Examples:
  livesass config show                  # Show all configuration
  livesass config show --format json    # Show in JSON format`,
	RunE: runConfigShow,
}

var (
	configFile   string
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: .livesass.yml)")
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")

	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	targetFile := configFile
	if targetFile == "" {
		if _, err := os.Stat(".livesass.yml"); err == nil {
			targetFile = ".livesass.yml"
		} else {
			return errors.New("no configuration file found. Use --file to specify a config file")
		}
	}

	if _, err := os.Stat(targetFile); os.IsNotExist(err) {
		return fmt.Errorf("configuration file %s does not exist", targetFile)
	}

	fmt.Fprintf(out, "🔍 Validating configuration file: %s\n", targetFile)

	v := viper.New()
	v.SetConfigFile(targetFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	config.SetDefaults(v)
	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	result := config.ValidateConfigWithDetails(&cfg)
	if !result.HasErrors() {
		if _, err := cfg.WatchConfig(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	if !result.HasErrors() && !result.HasWarnings() {
		fmt.Fprintln(out, "✅ Configuration is valid!")
		return nil
	}

	if result.HasErrors() {
		fmt.Fprint(out, result.String())
		return fmt.Errorf("configuration validation failed with %d errors", len(result.Errors))
	}

	fmt.Fprint(out, result.String())
	if configStrict {
		return fmt.Errorf(
			"configuration validation failed in strict mode with %d warnings",
			len(result.Warnings),
		)
	}
	fmt.Fprintf(out, "✅ Configuration is valid with %d warnings. Use --strict to treat warnings as errors.\n",
		len(result.Warnings))

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	return writeConfig(cmd.OutOrStdout(), cfg, configFormat)
}

func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml", "yml":
		fmt.Fprintln(w, "# Resolved from all sources (file, env vars, defaults)")
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", format)
	}
}
