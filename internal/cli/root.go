package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Shiki0138/leadfive-sub000/internal/config"
	"github.com/Shiki0138/leadfive-sub000/internal/logging"
)

var (
	verbose    bool
	configPath string
	rootCmd    *cobra.Command

	logger       = zap.NewNop()
	appConfig    *config.Config
	appConfigErr error

	// now is replaced in tests
	now = time.Now
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "leadfive",
		Short: "LeadFive blog tooling",
		Long: `leadfive writes blog posts for the LeadFive Jekyll site.

Each post gets a featured image: a fresh Unsplash photo that was not used in
the last week, or a generated placeholder when no photo is available.`,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (replaces global and project config)")

	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger. A config error is kept
// for the commands that need it, so config and doctor still run.
func setup(cmd *cobra.Command, args []string) error {
	appConfig, appConfigErr = config.Load(configPath)

	logCfg := config.DefaultConfig().Log
	if appConfigErr == nil {
		logCfg = appConfig.Log
	}

	l, err := logging.New(logCfg, verbose)
	if err != nil {
		return err
	}
	logger = l

	if appConfigErr != nil {
		logger.Debug("configuration not loaded", zap.Error(appConfigErr))
	}
	return nil
}

func loadedConfig() (*config.Config, error) {
	if appConfigErr != nil {
		return nil, fmt.Errorf("failed to load config: %w", appConfigErr)
	}
	return appConfig, nil
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
