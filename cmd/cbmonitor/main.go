package main

import (
	"os"

	"github.com/taichungmao-blip/CB-Monitor/cmd/cbmonitor/commands"
)

// main is the entry point for the CB monitor CLI
// ⭐ 統一 CLI 入口：go run ./cmd/cbmonitor [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
