package commands

import (
	"fmt"

	"github.com/taichungmao-blip/CB-Monitor/internal/scanner"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 所有指令使用相同的輸出格式
// ═══════════════════════════════════════════════════════════

// PrintScanSummary prints the header of a finished scan
func PrintScanSummary(s *scanner.Summary) {
	source := "MIS 即時"
	if s.Authoritative {
		source = "官方結算"
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  CB Watchlist Scan")
	PrintSeparator()
	fmt.Printf("  Run ID    : %s\n", s.RunID)
	fmt.Printf("  Reference : %s\n", s.Reference.Format("2006-01-02"))
	fmt.Printf("  Quotes    : %s\n", source)
	fmt.Printf("  Delivered : %d / %d\n", s.Delivered, len(s.Results))
	PrintSeparator()
}

// PrintCompletion prints the run completion line
func PrintCompletion(runID string, duration float64) {
	fmt.Println()
	fmt.Printf("✅ Run %s completed in %.2fs\n", runID, duration)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println()
	fmt.Printf("✅ %s\n", message)
}
