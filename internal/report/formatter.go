// Package report turns signals into alert messages and hands them to a
// delivery channel.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/phase"
)

const divider = "----------------"

// severityColors maps severity to embed color
var severityColors = map[contracts.Severity]int{
	contracts.SeverityNeutral:  0x808080,
	contracts.SeverityElevated: 0xffa500,
	contracts.SeverityWarning:  0xff4500,
	contracts.SeverityPositive: 0x00ff00,
	contracts.SeveritySpecial:  0xff00ff,
}

// labelText is the display text of each label
var labelText = map[contracts.Label]string{
	contracts.LabelNoSignal:            "無訊號",
	contracts.LabelConflict:            "⚔️ 土洋對作",
	contracts.LabelForeignDistribution: "🛡️ 外資調節",
	contracts.LabelTrustAccumulation:   "🔥 投信佈局",
	contracts.LabelForeignAccumulation: "💹 外資補貨",
	contracts.LabelWatch:               "👀 盤整觀望",
	contracts.LabelCoordinatedPush:     "🚀 定價攻勢",
	contracts.LabelTrustSupport:        "🛡️ 投信護盤",
	contracts.LabelForeignPush:         "💹 外資拉抬",
	contracts.LabelHedgeSelling:        "🛡️ 外資鎖單",
	contracts.LabelStrongConviction:    "🔥 強力看好",
	contracts.LabelBalanced:            "⚖️ 多空平衡",
	contracts.LabelHedgeUnwind:         "🚀 認錯回補",
	contracts.LabelChipVolatility:      "🎭 籌碼波動",
	contracts.LabelPremiumSupport:      "💹 溢價護盤",
	contracts.LabelProfitTaking:        "⚠️ 獲利調節",
	contracts.LabelWatchBelowThreshold: "👀 盤整觀望",
	contracts.LabelDisclosure:          "📰 重訊發布",
}

var sourceText = map[contracts.QuoteSource]string{
	contracts.SourceMIS:            "MIS 即時",
	contracts.SourceTWSESettlement: "上市結算",
	contracts.SourceTPExSettlement: "上櫃結算",
}

// Entry is everything known about one target for one run
type Entry struct {
	Target    contracts.Target
	Reference time.Time
	Phase     contracts.Phase
	Quote     *contracts.QuoteRecord // nil when no source covered the symbol
	Flow      contracts.FlowRecord
	Signal    contracts.Signal
}

// Formatter renders entries as alerts
type Formatter struct {
	now func() time.Time
}

// NewFormatter creates a formatter stamping alerts with now
func NewFormatter(now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{now: now}
}

// Format renders one entry
func (f *Formatter) Format(e Entry) contracts.Alert {
	return contracts.Alert{
		Symbol:    e.Target.Symbol,
		Title:     Title(e.Target),
		Body:      Body(e),
		Color:     Color(e.Signal.Severity),
		Severity:  e.Signal.Severity,
		Timestamp: f.now(),
	}
}

// Title is "📊 <name> (<id>) 戰報"
func Title(t contracts.Target) string {
	return fmt.Sprintf("📊 %s (%s) 戰報", t.Name, t.Symbol)
}

// Color returns the embed color of a severity
func Color(s contracts.Severity) int {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return severityColors[contracts.SeverityNeutral]
}

// LabelText returns the display text of a label
func LabelText(l contracts.Label) string {
	if s, ok := labelText[l]; ok {
		return s
	}
	return string(l)
}

// Body renders the message body
func Body(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 **%s**\n", e.Reference.Format("2006-01-02"))
	fmt.Fprintf(&b, "💰 收盤：%s\n", QuoteLine(e.Quote))
	b.WriteString(phase.Countdown(e.Phase))
	b.WriteString("\n" + divider + "\n")
	fmt.Fprintf(&b, "模式：%s (門檻:%d)\n", e.Target.Strategy, e.Target.EffectiveThreshold())
	fmt.Fprintf(&b, "👽 外資：`%d` 張\n", e.Flow.ForeignNet)
	fmt.Fprintf(&b, "🏦 投信：`%d` 張\n", e.Flow.TrustNet)
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "💡 %s\n", LabelText(e.Signal.Label))
	fmt.Fprintf(&b, "📜 %s", e.Signal.Rationale)
	if e.Signal.Disclosure != "" {
		fmt.Fprintf(&b, "\n\n🚨 **發現重訊：**\n%s", e.Signal.Disclosure)
	}
	return b.String()
}

// QuoteLine renders the price line with a direction glyph
func QuoteLine(q *contracts.QuoteRecord) string {
	if q == nil {
		return "無報價"
	}

	var glyph, change, pct string
	switch q.Change.Sign() {
	case 1:
		glyph = "📈"
		change = "+" + q.Change.StringFixed(2)
		pct = fmt.Sprintf("+%.2f%%", q.ChangePct)
	case -1:
		glyph = "📉"
		change = q.Change.StringFixed(2)
		pct = fmt.Sprintf("%.2f%%", q.ChangePct)
	default:
		glyph = "➖"
		change = "0"
		pct = "0%"
	}

	line := fmt.Sprintf("%s %s (%s / %s) | 📦 量：%d 張", glyph, q.Close.String(), change, pct, q.Volume)
	if src, ok := sourceText[q.Source]; ok {
		line += " [" + src + "]"
	}
	return line
}
