package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"debugctx/internal/config"
)

// configCmd groups the options file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change debug context options",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective options, environment overrides included",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <option> <true|false>",
	Short: "Change one option in the config file",
	Long: `Changes one option in the config file, creating the file if needed.

Options:
  enabled, only_explicit_context, auto_capture_receiver,
  auto_capture_args, trim_vendor_frames, add_to_assertion_message,
  release_on_scope_exit`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), resolveConfigPath())
		return nil
	},
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", path)
	opts := cfg.DebugContext.Map()
	for _, name := range config.OptionNames() {
		fmt.Fprintf(out, "%s: %t\n", name, opts[name])
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !config.IsOption(name) {
		return fmt.Errorf("unknown option %q", name)
	}
	value, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", args[1], name, err)
	}

	path := resolveConfigPath()
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	old, err := cfg.DebugContext.Set(name, value)
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	logger.Info("Option changed", zap.String("option", name), zap.Bool("old", old), zap.Bool("new", value), zap.String("path", path))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %t -> %t\n", name, old, value)
	return nil
}
