package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taichungmao-blip/CB-Monitor/internal/report"
	"github.com/taichungmao-blip/CB-Monitor/internal/scanner"
)

var (
	scanDryRun bool
	scanAt     string
)

// scanCmd runs one watchlist pass
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "執行一次掃描並推送戰報",
	Long: `抓取法人買賣超與收盤行情，對每個目標分類訊號並推送。

15:00 前使用前一交易日資料與 MIS 即時報價，
15:00 後改用當日官方盤後結算表。
查無法人資料 (休市) 時直接結束，exit code 0。`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "print alerts instead of posting them")
	scanCmd.Flags().StringVar(&scanAt, "at", "", "pretend the current Taipei time is \"YYYY-MM-DD HH:MM\"")
}

func runScan(cmd *cobra.Command, args []string) error {
	now, err := parseAt(scanAt)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, scanDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	summary, err := a.scanner.Run(ctx, now)
	if errors.Is(err, scanner.ErrMarketClosed) {
		PrintWarning(fmt.Sprintf("%s 查無籌碼資料 (休市)，本次不推送", summary.Reference.Format("2006-01-02")))
		return nil
	}
	if err != nil {
		return err
	}

	PrintScanSummary(summary)
	for _, r := range summary.Results {
		fmt.Printf("  %-6s %-8s %-28s %s\n",
			r.Target.Symbol, r.Target.Name, report.LabelText(r.Signal.Label), deliveredMark(r.Delivered))
	}
	PrintCompletion(summary.RunID, time.Since(start).Seconds())
	return nil
}

func deliveredMark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}
