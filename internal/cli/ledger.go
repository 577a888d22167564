package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Shiki0138/leadfive-sub000/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and maintain the image usage ledger",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every recorded image use",
	RunE:  runLedgerList,
}

var ledgerRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List photo IDs that are excluded from selection",
	RunE:  runLedgerRecent,
}

var ledgerPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop records older than the retention window",
	RunE:  runLedgerPrune,
}

var ledgerStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the ledger",
	RunE:  runLedgerStats,
}

func init() {
	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerRecentCmd)
	ledgerCmd.AddCommand(ledgerPruneCmd)
	ledgerCmd.AddCommand(ledgerStatsCmd)
}

// withLedger opens the configured ledger for the duration of fn
func withLedger(cmd *cobra.Command, fn func(store ledger.Store, window time.Duration) error) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)
	return fn(store, cfg.Ledger.Window)
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	return withLedger(cmd, func(store ledger.Store, window time.Duration) error {
		out := cmd.OutOrStdout()
		records := store.Load(cmd.Context())
		if len(records) == 0 {
			fmt.Fprintln(out, "No images recorded")
			return nil
		}

		t := now()
		for _, r := range records {
			fmt.Fprintf(out, "%-8s %-40s %-16s %s\n", status(r, t, window), r.PhotoID, when(r.UsedAt, t), r.Post)
		}
		return nil
	})
}

func runLedgerRecent(cmd *cobra.Command, args []string) error {
	return withLedger(cmd, func(store ledger.Store, window time.Duration) error {
		out := cmd.OutOrStdout()
		recent := ledger.RecentIDsWithin(store.Load(cmd.Context()), now(), window)
		if len(recent) == 0 {
			fmt.Fprintf(out, "No photos used in the last %s\n", humanizeWindow(window))
			return nil
		}

		ids := make([]string, 0, len(recent))
		for id := range recent {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	})
}

func runLedgerPrune(cmd *cobra.Command, args []string) error {
	return withLedger(cmd, func(store ledger.Store, window time.Duration) error {
		records := store.Load(cmd.Context())
		kept := ledger.PruneWithin(records, now(), window)
		if err := store.Save(cmd.Context(), kept); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d records, %d kept\n", len(records)-len(kept), len(kept))
		return nil
	})
}

func runLedgerStats(cmd *cobra.Command, args []string) error {
	return withLedger(cmd, func(store ledger.Store, window time.Duration) error {
		t := now()
		s := ledger.Summarize(store.Load(cmd.Context()), t, window)
		printStats(cmd.OutOrStdout(), s, t, window)
		return nil
	})
}

func printStats(out io.Writer, s ledger.Stats, t time.Time, window time.Duration) {
	fmt.Fprintf(out, "Records:   %d\n", s.Total)
	fmt.Fprintf(out, "Recent:    %d (last %s)\n", s.Recent, humanizeWindow(window))
	fmt.Fprintf(out, "Expired:   %d\n", s.Expired)
	if s.Invalid > 0 {
		fmt.Fprintf(out, "Invalid:   %d\n", s.Invalid)
	}
	fmt.Fprintf(out, "Provider:  %d\n", s.Provider)
	fmt.Fprintf(out, "Generated: %d\n", s.Generated)
	if s.Oldest != nil {
		fmt.Fprintf(out, "Oldest:    %s\n", humanize.RelTime(*s.Oldest, t, "ago", "from now"))
	}
	if s.Newest != nil {
		fmt.Fprintf(out, "Newest:    %s\n", humanize.RelTime(*s.Newest, t, "ago", "from now"))
	}
}

func status(r ledger.UsageRecord, t time.Time, window time.Duration) string {
	switch {
	case !r.UsedAt.Valid:
		return "invalid"
	case r.UsedAt.Within(t, window):
		return "recent"
	case r.UsedAt.Time.After(t):
		return "future"
	default:
		return "expired"
	}
}

func when(ts ledger.Timestamp, t time.Time) string {
	if !ts.Valid {
		return fmt.Sprintf("%q", ts.Raw)
	}
	return humanize.RelTime(ts.Time, t, "ago", "from now")
}

func humanizeWindow(window time.Duration) string {
	if window%(24*time.Hour) == 0 {
		days := int(window / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return window.String()
}
