package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shiki0138/leadfive-sub000/internal/config"
	"github.com/Shiki0138/leadfive-sub000/internal/fallback"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the tooling setup",
	Long:  `Runs diagnostic checks on configuration, credentials, the ledger and the site directories.`,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	passed := 0
	failed := 0

	check := func(name string, ok bool, detail string) {
		if ok {
			fmt.Fprintf(out, "  ✓ %s\n", name)
			passed++
		} else {
			fmt.Fprintf(out, "  ✗ %s: %s\n", name, detail)
			failed++
		}
	}
	warn := func(name, detail string) {
		fmt.Fprintf(out, "  ⚠ %s: %s\n", name, detail)
	}

	fmt.Fprintln(out, "Configuration:")
	for _, path := range []string{config.GlobalConfigPath(), config.ProjectConfigPath()} {
		if exists(path) {
			fmt.Fprintf(out, "  → %s\n", path)
		}
	}
	cfg, cfgErr := loadedConfig()
	if cfgErr != nil {
		check("config valid", false, cfgErr.Error())
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Results: %d passed, %d failed\n", passed, failed)
		return nil
	}
	check("config valid", true, "")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Credentials:")
	if cfg.Secrets.UnsplashAccessKey == "" {
		warn("UNSPLASH_ACCESS_KEY", "not set, posts will use generated images")
	} else {
		check("UNSPLASH_ACCESS_KEY", true, "")
	}
	if cfg.Storage.Backend == config.StorageS3 {
		check("S3 credentials", cfg.Secrets.S3AccessKey != "" && cfg.Secrets.S3SecretKey != "",
			"set S3_ACCESS_KEY and S3_SECRET_KEY")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Ledger (%s):\n", cfg.Ledger.Backend)
	store, err := openLedger(cfg)
	if err != nil {
		check("ledger opens", false, err.Error())
	} else {
		records := store.Load(cmd.Context())
		check("ledger readable", true, "")
		fmt.Fprintf(out, "  → %d records at %s\n", len(records), cfg.Ledger.Path)
		closeStore(store)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Site:")
	check(cfg.Site.PostsDir, writable(cfg.Site.PostsDir), "directory is missing or not writable")
	if cfg.Storage.Backend == config.StorageS3 {
		_, err := newSink(cmd.Context(), cfg)
		check("bucket "+cfg.Storage.S3.Bucket, err == nil, fmt.Sprint(err))
	} else {
		check(cfg.Site.ImageDir, writable(cfg.Site.ImageDir), "directory is missing or not writable")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Placeholder font:")
	if path := cfg.Fallback.FontPath; path != "" {
		_, err := fallback.LoadFont(path)
		check(path, err == nil, fmt.Sprint(err))
	} else if path := fallback.FindFont(fallback.SystemFontPaths); path != "" {
		fmt.Fprintf(out, "  → %s\n", path)
	} else {
		warn("Japanese font", "none found, set fallback.font_path to draw Japanese titles")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Results: %d passed, %d failed\n", passed, failed)

	return nil
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// writable reports whether a file can be created in dir
func writable(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.CreateTemp(dir, ".leadfive-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
