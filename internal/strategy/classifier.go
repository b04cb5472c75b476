// Package strategy maps institutional flow and battle phase to a trading signal.
// Everything here is pure: no I/O, no clock, no globals.
package strategy

import (
	"fmt"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
)

// Input is everything the classifier looks at for one target
type Input struct {
	Strategy   contracts.Strategy
	ForeignNet int64 // 張
	TrustNet   int64 // 張
	Phase      contracts.PhaseCode
	Threshold  int64 // <= 0 means DefaultThreshold
}

// ENT 題材股的籌碼波動門檻 (張)，與 threshold 無關
const (
	entForeignSwing = 20
	entTrustSwing   = 5
	// STD 生效前投信只要小量買超就視為佈局
	stdTrustAccumulation = 10
)

// Classify returns the signal for one target. First matching rule wins.
// All comparisons are strict.
func Classify(in Input) contracts.Signal {
	limit := contracts.ResolveThreshold(in.Threshold)
	f, tr := in.ForeignNet, in.TrustNet

	// ⭐ SSOT: 土洋對作優先於所有策略分支
	if (f > limit && tr < -limit) || (f < -limit && tr > limit) {
		return contracts.Signal{
			Label:     contracts.LabelConflict,
			Rationale: fmt.Sprintf("外資與投信方向相反且金額巨大(>%d)，籌碼混亂。", limit),
			Severity:  contracts.SeverityWarning,
		}
	}

	var (
		sig     contracts.Signal
		matched bool
	)
	switch in.Strategy {
	case contracts.StrategySTD:
		sig, matched = classifySTD(in.Phase, f, tr, limit)
	case contracts.StrategyECB:
		sig, matched = classifyECB(in.Phase, f, limit)
	case contracts.StrategyENT:
		sig, matched = classifyENT(f, tr)
	case contracts.StrategyPRICED:
		sig, matched = classifyPriced(f, tr, limit)
	}
	if matched {
		return sig
	}
	return NoSignal()
}

// NoSignal is the default classification
func NoSignal() contracts.Signal {
	return contracts.Signal{
		Label:     contracts.LabelNoSignal,
		Rationale: "持續觀察",
		Severity:  contracts.SeverityNeutral,
	}
}

func classifySTD(phase contracts.PhaseCode, f, tr, limit int64) (contracts.Signal, bool) {
	if phase == contracts.PhaseBefore {
		switch {
		case f < -limit:
			return signal(contracts.LabelForeignDistribution, fmt.Sprintf("外資賣超逾 %d 張，短線有壓，需留意回檔。", limit), contracts.SeverityNeutral), true
		case tr > stdTrustAccumulation:
			return signal(contracts.LabelTrustAccumulation, "生效前夕投信買超，看好定價行情。", contracts.SeverityElevated), true
		case f > limit:
			return signal(contracts.LabelForeignAccumulation, "外資主力進場，籌碼轉強。", contracts.SeverityElevated), true
		default:
			return signal(contracts.LabelWatch, "法人動作未達攻擊量，持續觀察。", contracts.SeverityNeutral), true
		}
	}

	switch {
	case tr > 0 && f > 0:
		return signal(contracts.LabelCoordinatedPush, "法人合力買超，全力衝刺競拍價格。", contracts.SeverityPositive), true
	case tr > 0 && f < 0:
		return signal(contracts.LabelTrustSupport, "投信單獨買超支撐股價，但外資有賣壓。", contracts.SeverityElevated), true
	case f > limit:
		return signal(contracts.LabelForeignPush, "外資大單敲進，看好後市。", contracts.SeverityPositive), true
	default:
		return signal(contracts.LabelWatch, "法人動作未達攻擊量，持續觀察。", contracts.SeverityNeutral), true
	}
}

func classifyECB(phase contracts.PhaseCode, f, limit int64) (contracts.Signal, bool) {
	if phase == contracts.PhaseAfter {
		if f > limit {
			return signal(contracts.LabelHedgeUnwind, "訂價完成，避險空單回補。", contracts.SeverityPositive), true
		}
		return contracts.Signal{}, false
	}

	switch {
	case f < -limit:
		return signal(contracts.LabelHedgeSelling, "ECB 訂價前避險賣壓。", contracts.SeverityNeutral), true
	case f > limit:
		return signal(contracts.LabelStrongConviction, "不需避險直接大買，基本面極強。", contracts.SeverityElevated), true
	default:
		return signal(contracts.LabelBalanced, "外資無明顯避險或拉抬動作。", contracts.SeverityNeutral), true
	}
}

func classifyENT(f, tr int64) (contracts.Signal, bool) {
	if abs(f) > entForeignSwing || abs(tr) > entTrustSwing {
		return signal(contracts.LabelChipVolatility, "法人進出，留意消息面。", contracts.SeveritySpecial), true
	}
	return contracts.Signal{}, false
}

func classifyPriced(f, tr, limit int64) (contracts.Signal, bool) {
	switch {
	case f > limit || tr > limit:
		return signal(contracts.LabelPremiumSupport, "掛牌前夕法人買進。", contracts.SeverityPositive), true
	case f < -limit:
		return signal(contracts.LabelProfitTaking, "掛牌前外資轉賣，留意回檔。", contracts.SeverityElevated), true
	default:
		return signal(contracts.LabelWatchBelowThreshold, fmt.Sprintf("法人買賣未達攻擊量(門檻:%d)，持續觀察。", limit), contracts.SeverityNeutral), true
	}
}

func signal(label contracts.Label, rationale string, severity contracts.Severity) contracts.Signal {
	return contracts.Signal{Label: label, Rationale: rationale, Severity: severity}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
