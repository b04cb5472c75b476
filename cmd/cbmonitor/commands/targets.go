package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taichungmao-blip/CB-Monitor/internal/phase"
	"github.com/taichungmao-blip/CB-Monitor/internal/watchlist"
)

var targetsAt string

// targetsCmd prints the watchlist with phase countdowns. No network access.
var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "列出監控目標與生效日倒數",
	RunE:  runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.Flags().StringVar(&targetsAt, "at", "", "pretend the current Taipei time is \"YYYY-MM-DD HH:MM\"")
}

func runTargets(cmd *cobra.Command, args []string) error {
	now, err := parseAt(targetsAt)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	wl, err := watchlist.Load(cfg.WatchlistPath)
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}

	reference := phase.ResolveReferenceDate(now)
	PrintDoubleSeparator()
	fmt.Printf("  Watchlist %s  (%d targets)\n", wl.Version, len(wl.Targets))
	fmt.Printf("  Reference : %s\n", reference.Format("2006-01-02"))
	fmt.Printf("  Hash      : %s\n", wl.Hash[:12])
	PrintSeparator()

	for _, t := range wl.Targets {
		p := phase.Classify(t.EffectiveDate, reference)
		fmt.Printf("  %-6s %-8s %-3s %-6s %5d  %s  %-7s %3d\n",
			t.Symbol, t.Name, t.Market, t.Strategy, t.EffectiveThreshold(),
			t.EffectiveDate.Format("2006-01-02"), p.Code, p.Days)
	}
	PrintDoubleSeparator()
	return nil
}
