// Package config provides configuration management for livesass using Viper
// for loading from command-line flags, LIVESASS_ environment variables and an
// optional .livesass.yml file.
//
// The CLI-facing Config is translated into the immutable WatchConfig that a
// watcher is constructed with; every invariant of the watcher is enforced
// there, not here.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full CLI configuration.
type Config struct {
	Watch    WatchSection   `yaml:"watch" json:"watch" mapstructure:"watch"`
	Compiler CompilerConfig `yaml:"compiler" json:"compiler" mapstructure:"compiler"`
	Log      LogConfig      `yaml:"log" json:"log" mapstructure:"log"`
}

// WatchSection mirrors WatchOptions in its serialisable form.
type WatchSection struct {
	Source         string   `yaml:"source" json:"source" mapstructure:"source"`
	Destination    string   `yaml:"destination" json:"destination" mapstructure:"destination"`
	Filters        []string `yaml:"filters" json:"filters" mapstructure:"filters"`
	CompileOnStart bool     `yaml:"compile_on_start" json:"compile_on_start" mapstructure:"compile_on_start"`
}

// CompilerConfig configures the external Sass command.
type CompilerConfig struct {
	Command   string   `yaml:"command" json:"command" mapstructure:"command"`
	Args      []string `yaml:"args" json:"args" mapstructure:"args"`
	Exclude   []string `yaml:"exclude" json:"exclude" mapstructure:"exclude"`
	Style     string   `yaml:"style" json:"style" mapstructure:"style"`
	SourceMap bool     `yaml:"source_map" json:"source_map" mapstructure:"source_map"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" json:"dir" mapstructure:"dir"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("watch.source", "./styles")
	v.SetDefault("watch.destination", "./public/css")
	v.SetDefault("watch.filters", []string{"*.scss", "*.sass"})
	v.SetDefault("watch.compile_on_start", true)
	v.SetDefault("compiler.command", "sass")
	v.SetDefault("compiler.style", "expanded")
	v.SetDefault("compiler.source_map", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set via viper (workaround for viper slice handling of
	// comma separated env values)
	if v.IsSet("watch.filters") {
		config.Watch.Filters = v.GetStringSlice("watch.filters")
	}
	if v.IsSet("compiler.exclude") {
		config.Compiler.Exclude = v.GetStringSlice("compiler.exclude")
	}
	if v.IsSet("compiler.args") {
		config.Compiler.Args = v.GetStringSlice("compiler.args")
	}

	if result := ValidateConfigWithDetails(&config); result.HasErrors() {
		return nil, fmt.Errorf("invalid configuration: %s", result.Errors[0].Error())
	}

	return &config, nil
}

// WatchConfig builds the immutable watcher configuration.
func (c *Config) WatchConfig() (*WatchConfig, error) {
	return NewWatchConfig(WatchOptions{
		SourceRoot:      c.Watch.Source,
		DestinationRoot: c.Watch.Destination,
		NameFilters:     c.Watch.Filters,
		CompileOnStart:  c.Watch.CompileOnStart,
	})
}
