package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X .../commands.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "顯示版本",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cbmonitor %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
