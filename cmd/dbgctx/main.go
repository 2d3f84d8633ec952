package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"debugctx/internal/config"
	"debugctx/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dbgctx",
	Short: "Inspect the debug contexts attached to test failure messages",
	Long: `dbgctx reads the contexts stack that debugctx appends to assertion
failure messages and manages the .debugctx.yaml options file.

Examples:
  go test ./... 2>&1 | dbgctx show
  dbgctx extract failure.log
  dbgctx config set only_explicit_context true`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			zcfg := zap.NewProductionConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			l, err := zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logging.Use(l)
		} else if cfg, err := config.Load(resolveConfigPath()); err == nil {
			if err := logging.Initialize(cfg.Logging.Settings()); err != nil {
				return err
			}
		}
		logger = logging.Get(logging.CategoryCLI)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// resolveConfigPath returns --config, or the config file of the enclosing
// module.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.DefaultFileName
	}
	return config.FindConfigFile(wd)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .debugctx.yaml of the enclosing module)")

	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Re-encode the layers as one compact JSON document")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
