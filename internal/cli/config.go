package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Shiki0138/leadfive-sub000/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file paths",
	Run:   runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE:  runConfigInit,
}

var (
	configInitGlobal bool
	configInitForce  bool
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "Write the global config instead of the project config")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	out := cmd.OutOrStdout()
	if configPath != "" {
		fmt.Fprintf(out, "# Configuration from %s\n", configPath)
	} else {
		fmt.Fprintln(out, "# Merged configuration (global + project)")
	}
	fmt.Fprint(out, string(data))

	secret := func(v string) string {
		if v == "" {
			return "not set"
		}
		return "set"
	}
	fmt.Fprintf(out, "# UNSPLASH_ACCESS_KEY: %s\n", secret(cfg.Secrets.UnsplashAccessKey))
	fmt.Fprintf(out, "# S3_ACCESS_KEY: %s\n", secret(cfg.Secrets.S3AccessKey))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Global:  %s\n", config.GlobalConfigPath())
	fmt.Fprintf(out, "Project: %s\n", config.ProjectConfigPath())
	if configPath != "" {
		fmt.Fprintf(out, "Active:  %s (--config)\n", configPath)
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ProjectConfigPath()
	if configInitGlobal {
		path = config.GlobalConfigPath()
	}
	if path == "" {
		return fmt.Errorf("cannot determine config location")
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}
