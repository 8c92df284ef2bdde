// Package cmd provides the command-line interface for livesass.
//
// This package implements the CLI commands using the Cobra framework. The
// commands share one configuration, resolved by Viper from flags, LIVESASS_
// environment variables and an optional .livesass.yml file.
//
// # Available Commands
//
//   - watch: Compile the source tree, then recompile whatever changes
//   - build: Compile the source tree once and exit
//   - config show: Print the effective configuration
//   - config validate: Check a configuration file
//   - version: Show build information
//
// # Command Examples
//
//	// Watch ./styles and write to ./public/css
//	livesass watch
//
//	// Watch a different tree without the initial build
//	livesass watch --source assets/scss --dest dist/css --compile-on-start=false
//
//	// One-shot compressed build
//	livesass build --style compressed
//
//	// Validate a configuration file, treating warnings as errors
//	livesass config validate --file .livesass.yml --strict
package cmd
