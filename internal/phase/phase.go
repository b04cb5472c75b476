// Package phase resolves the trading-session reference date and the battle
// phase of each watchlist target relative to its effective date.
package phase

import (
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
)

// SettlementCutoffHour is the local hour after which the exchanges have
// published that day's settlement tables.
const SettlementCutoffHour = 15

// Taipei is the fixed UTC+8 civil calendar used by both exchanges.
// A fixed zone avoids depending on the host tzdata.
var Taipei = time.FixedZone("CST", 8*60*60)

// Local converts now to the exchange calendar
func Local(now time.Time) time.Time {
	return now.In(Taipei)
}

// AfterCutoff reports whether now is at or after the post-market cutoff (15:00 local)
func AfterCutoff(now time.Time) bool {
	return Local(now).Hour() >= SettlementCutoffHour
}

// ResolveReferenceDate returns yesterday before 15:00 local and today otherwise.
// The result is midnight in Taipei.
func ResolveReferenceDate(now time.Time) time.Time {
	local := Local(now)
	day := truncateDay(local)
	if local.Hour() < SettlementCutoffHour {
		return day.AddDate(0, 0, -1)
	}
	return day
}

// Classify computes the phase of effective relative to reference, in whole
// calendar days. Time-of-day is ignored on both sides.
func Classify(effective, reference time.Time) contracts.Phase {
	diff := DaysBetween(reference, effective)
	switch {
	case diff > 0:
		return contracts.Phase{Code: contracts.PhaseBefore, Days: diff}
	case diff == 0:
		return contracts.Phase{Code: contracts.PhaseOnDate, Days: 0}
	default:
		return contracts.Phase{Code: contracts.PhaseAfter, Days: -diff}
	}
}

// DaysBetween returns the signed calendar-day difference to - from
func DaysBetween(from, to time.Time) int {
	a := civilDay(from)
	b := civilDay(to)
	return int(b.Sub(a).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD calendar date in the exchange zone
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, Taipei)
}

// ROCDate formats t as the Minguo date used by TPEx endpoints (e.g. 115/01/09)
func ROCDate(t time.Time) string {
	local := Local(t)
	return formatROC(local.Year()-1911, int(local.Month()), local.Day())
}

// ROCYear returns the Minguo year of t
func ROCYear(t time.Time) int {
	return Local(t).Year() - 1911
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Taipei)
}

// civilDay maps the Y/M/D of t (in its own zone) to UTC midnight so that
// dates parsed in different zones compare by calendar day only.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
