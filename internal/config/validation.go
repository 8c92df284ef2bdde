package config

import (
	"fmt"
	"strings"

	"github.com/conneroisu/livesass/internal/logging"
	"github.com/conneroisu/livesass/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// ValidateConfigWithDetails performs validation of the CLI configuration.
// Watch roots and filters are reported here for a friendlier message but are
// enforced again by NewWatchConfig.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{}

	validateWatchSection(&config.Watch, result)
	validateCompilerConfig(&config.Compiler, result)
	validateLogConfig(&config.Log, result)

	return result
}

func validateWatchSection(w *WatchSection, result *ValidationResult) {
	if strings.TrimSpace(w.Source) == "" {
		result.addError("watch.source", w.Source, "source directory is required",
			"pass --source or set LIVESASS_WATCH_SOURCE")
	}
	if strings.TrimSpace(w.Destination) == "" {
		result.addError("watch.destination", w.Destination, "destination directory is required",
			"pass --dest or set LIVESASS_WATCH_DESTINATION")
	}
	if len(w.Filters) == 0 {
		result.addError("watch.filters", w.Filters, "at least one name filter is required",
			"for example --filter '*.scss'")
	}
	if w.Source != "" && w.Source == w.Destination {
		result.addWarning("watch.destination", w.Destination,
			"destination equals source; generated files will land next to sources")
	}
}

func validateCompilerConfig(c *CompilerConfig, result *ValidationResult) {
	if err := validation.ValidateCommand(c.Command, validation.AllowedCompilerCommands); err != nil {
		result.addError("compiler.command", c.Command, err.Error(),
			"install dart-sass and use the 'sass' command")
	}
	for _, arg := range c.Args {
		if err := validation.ValidateArgument(arg); err != nil {
			result.addError("compiler.args", arg, err.Error())
		}
	}
	switch c.Style {
	case "", "expanded", "compressed":
	default:
		result.addError("compiler.style", c.Style, "unsupported output style",
			"use 'expanded' or 'compressed'")
	}
}

func validateLogConfig(l *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		result.addError("log.level", l.Level, err.Error())
	}
	switch l.Format {
	case "", "text", "json":
	default:
		result.addError("log.format", l.Format, "unsupported log format", "use 'text' or 'json'")
	}
}
