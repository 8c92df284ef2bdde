// Package cmd provides the command-line interface for livesass with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--source, --dest, etc.) - highest priority
//	2. Individual environment variables (LIVESASS_WATCH_SOURCE, etc.)
//	3. Configuration file (--config, LIVESASS_CONFIG_FILE or .livesass.yml)
//	4. Built-in defaults - lowest priority
//
// Environment Variables:
//
//	LIVESASS_CONFIG_FILE: Path to custom configuration file
//	LIVESASS_WATCH_SOURCE: Override the source root
//	LIVESASS_WATCH_DESTINATION: Override the destination root
//	LIVESASS_COMPILER_STYLE: expanded or compressed
//	And more following the LIVESASS_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "livesass",
	Short: "Keep compiled CSS in step with a Sass source tree",
	Long: `livesass watches a directory of Sass sources and keeps a mirrored tree of
compiled CSS up to date. Changed files are recompiled, removed files have their
output deleted, and a removed partial triggers a rebuild of the whole tree.

Quick Start:
  livesass watch                  Watch ./styles, write ./public/css
  livesass build                  Compile everything once
  livesass config show            Show the effective configuration

Command Aliases (for faster typing):
  watch (w), build (b)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .livesass.yml, can also use LIVESASS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("log-dir", "", "also write logs to a dated file in this directory")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log.dir", rootCmd.PersistentFlags().Lookup("log-dir"))
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. LIVESASS_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .livesass.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("LIVESASS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".livesass")
	}

	// LIVESASS_WATCH_SOURCE maps to watch.source, and so on.
	viper.SetEnvPrefix("LIVESASS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file falls back to defaults.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
