// Package internal contains the core implementation packages for livesass.
//
// # Package Organization
//
//   - watcher: Watch sessions, staleness tracking, artifact cleanup and the
//     fsnotify notification source
//   - compiler: The Sass command compiler, partial exclusion and compile metrics
//   - config: CLI configuration via Viper and the immutable WatchConfig
//   - errors: Structured error taxonomy and the compile failure collector
//   - logging: Structured slog-based logging
//   - validation: Command, argument and path checks before running Sass
//   - version: Build information
//   - testutils: Temporary Sass project fixtures for tests
//
// # Inter-Package Communication
//
// The watcher package defines the Compiler port it drives; the compiler
// package implements it. The CLI in cmd wires the two together and is the only
// place that reads global configuration.
package internal
