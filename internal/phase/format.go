package phase

import (
	"fmt"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
)

func formatROC(year, month, day int) string {
	return fmt.Sprintf("%d/%02d/%02d", year, month, day)
}

// Countdown returns the human countdown text for a phase
func Countdown(p contracts.Phase) string {
	switch p.Code {
	case contracts.PhaseBefore:
		return fmt.Sprintf("⏳ **倒數 %d 天**", p.Days)
	case contracts.PhaseOnDate:
		return "🔥 **D-Day：今日生效！**"
	default:
		return fmt.Sprintf("🚀 **後續追蹤：第 %d 天**", p.Days)
	}
}
