package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taichungmao-blip/CB-Monitor/internal/phase"
	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
)

var (
	// Global flags
	env           string
	watchlistPath string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cbmonitor",
	Short: "CB 戰情室 - 可轉債籌碼監控",
	Long: `CB Monitor

追蹤上市櫃可轉債相關個股的法人籌碼與生效日倒數，
分類訊號後推送到 Discord。

Usage:
  go run ./cmd/cbmonitor [command]

Examples:
  go run ./cmd/cbmonitor scan
  go run ./cmd/cbmonitor scan --dry-run --at "2026-01-09 16:00"
  go run ./cmd/cbmonitor targets
  go run ./cmd/cbmonitor schedule`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().StringVar(&watchlistPath, "watchlist", "", "watchlist YAML (default: WATCHLIST_PATH or embedded list)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads the environment config and applies global flag overrides
func loadConfig() (*config.Config, error) {
	if env != "" {
		if err := os.Setenv("ENV", env); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if watchlistPath != "" {
		cfg.WatchlistPath = watchlistPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// parseAt parses a --at override in exchange local time. Empty means now.
func parseAt(at string) (time.Time, error) {
	if at == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", at, phase.Taipei)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must look like \"2006-01-02 15:04\": %w", err)
	}
	return t, nil
}
