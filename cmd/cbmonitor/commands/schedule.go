package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taichungmao-blip/CB-Monitor/internal/phase"
	"github.com/taichungmao-blip/CB-Monitor/internal/scheduler"
	"github.com/taichungmao-blip/CB-Monitor/internal/scheduler/jobs"
)

var scheduleDryRun bool

// scheduleCmd keeps the process alive and scans on SCAN_SCHEDULE
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "常駐排程模式",
	Long: `依 SCAN_SCHEDULE (含秒欄位的 cron，台北時間) 定時執行掃描。
預設 "0 30 15 * * 1-5"：平日 15:30 盤後結算公布後。

以 Ctrl+C 結束。`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().BoolVar(&scheduleDryRun, "dry-run", false, "print alerts instead of posting them")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, scheduleDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(ctx, a.logger, phase.Taipei)
	job := jobs.NewScanJob(a.scanner, a.cfg.Scan.Schedule, a.logger)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()
	PrintSuccess("Scheduler started")
	if next, ok := sched.NextRun(job.Name()); ok {
		fmt.Printf("  %s next run: %s\n", job.Name(), next.In(phase.Taipei).Format("2006-01-02 15:04:05"))
	}
	fmt.Println("  Press Ctrl+C to stop")

	<-ctx.Done()
	sched.Stop()
	return nil
}
