package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBinding ties a command-line flag to the configuration key it overrides.
type flagBinding struct {
	flag string
	key  string
}

var treeFlagBindings = []flagBinding{
	{flag: "source", key: "watch.source"},
	{flag: "dest", key: "watch.destination"},
	{flag: "filter", key: "watch.filters"},
	{flag: "sass-command", key: "compiler.command"},
	{flag: "sass-arg", key: "compiler.args"},
	{flag: "exclude", key: "compiler.exclude"},
	{flag: "style", key: "compiler.style"},
	{flag: "source-map", key: "compiler.source_map"},
}

// addTreeFlags adds the flags shared by every command that compiles the
// source tree. Defaults live in config.SetDefaults; a flag only wins when it
// is set explicitly.
func addTreeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("source", "s", "", "Directory of Sass sources (default ./styles)")
	flags.StringP("dest", "d", "", "Directory receiving compiled CSS (default ./public/css)")
	flags.StringSlice("filter", nil, "File name globs to watch (default *.scss,*.sass)")
	flags.String("sass-command", "", "Sass executable (default sass)")
	flags.StringSlice("sass-arg", nil, "Extra argument passed to the Sass executable")
	flags.StringSlice("exclude", nil, "Additional partial name globs besides _*")
	flags.String("style", "", "Output style (expanded, compressed)")
	flags.Bool("source-map", false, "Emit source maps")
}

// bindTreeFlags binds the tree flags of cmd to viper. It runs in PreRunE so
// that commands sharing a key do not overwrite each other's binding.
func bindTreeFlags(cmd *cobra.Command) error {
	return bindFlags(cmd.Flags(), treeFlagBindings)
}

func bindFlags(flags *pflag.FlagSet, bindings []flagBinding) error {
	for _, b := range bindings {
		f := flags.Lookup(b.flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := viper.BindPFlag(b.key, f); err != nil {
			return err
		}
	}
	return nil
}
