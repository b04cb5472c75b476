package contracts

// Severity is the presentation emphasis of a signal
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityElevated
	SeverityWarning
	SeverityPositive
	SeveritySpecial
)

func (s Severity) String() string {
	switch s {
	case SeverityNeutral:
		return "neutral"
	case SeverityElevated:
		return "elevated"
	case SeverityWarning:
		return "warning"
	case SeverityPositive:
		return "positive"
	case SeveritySpecial:
		return "special"
	default:
		return "unknown"
	}
}

// Label is the closed set of classification tags
type Label string

const (
	LabelNoSignal            Label = "no_signal"
	LabelConflict            Label = "institutional_conflict"
	LabelForeignDistribution Label = "foreign_distribution"
	LabelTrustAccumulation   Label = "trust_accumulation"
	LabelForeignAccumulation Label = "foreign_accumulation"
	LabelWatch               Label = "watch"
	LabelCoordinatedPush     Label = "coordinated_push"
	LabelTrustSupport        Label = "trust_only_support"
	LabelForeignPush         Label = "foreign_push"
	LabelHedgeSelling        Label = "hedge_selling"
	LabelStrongConviction    Label = "strong_conviction_no_hedge"
	LabelBalanced            Label = "balanced"
	LabelHedgeUnwind         Label = "hedge_unwind"
	LabelChipVolatility      Label = "chip_volatility"
	LabelPremiumSupport      Label = "premium_support"
	LabelProfitTaking        Label = "profit_taking"
	LabelWatchBelowThreshold Label = "watch_below_threshold"
	LabelDisclosure          Label = "disclosure_published"
)

// Signal is the final per-target classification
type Signal struct {
	Label      Label    `json:"label"`
	Rationale  string   `json:"rationale"`
	Severity   Severity `json:"severity"`
	Disclosure string   `json:"disclosure,omitempty"` // 重訊摘要
}
