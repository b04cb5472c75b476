// Package scanner runs one full watchlist pass: flows, quotes, classification,
// disclosure override, formatting and dispatch.
package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/flows"
	"github.com/taichungmao-blip/CB-Monitor/internal/phase"
	"github.com/taichungmao-blip/CB-Monitor/internal/quotes"
	"github.com/taichungmao-blip/CB-Monitor/internal/report"
	"github.com/taichungmao-blip/CB-Monitor/internal/strategy"
	"github.com/taichungmao-blip/CB-Monitor/internal/watchlist"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// ErrMarketClosed is returned when no market published institutional flows
// for the reference date. It is an expected condition, not a failure.
var ErrMarketClosed = errors.New("no institutional flow data: market closed")

// DisclosureSource returns announcement excerpts for a symbol and ROC year
type DisclosureSource interface {
	Excerpts(ctx context.Context, symbol string, rocYear int) ([]string, error)
}

// Deps are the collaborators of one scanner
type Deps struct {
	Watchlist   *watchlist.Watchlist
	Normalizer  *quotes.Normalizer
	Aggregator  *flows.Aggregator
	Disclosures DisclosureSource // nil disables the disclosure lookup
	Formatter   *report.Formatter
	Dispatcher  *report.Dispatcher
}

// Scanner runs watchlist passes
// ⭐ SSOT: 一次掃描的流程只在這裡定義
type Scanner struct {
	deps   Deps
	logger *logger.Logger
}

// Result is the outcome for one target
type Result struct {
	Target    contracts.Target       `json:"target"`
	Phase     contracts.Phase        `json:"phase"`
	Flow      contracts.FlowRecord   `json:"flow"`
	Quote     *contracts.QuoteRecord `json:"quote,omitempty"`
	Signal    contracts.Signal       `json:"signal"`
	Delivered bool                   `json:"delivered"`
}

// Summary describes one run
type Summary struct {
	RunID         string    `json:"run_id"`
	Reference     time.Time `json:"reference"`
	Authoritative bool      `json:"authoritative"`
	Results       []Result  `json:"results"`
	Delivered     int       `json:"delivered"`
	Failed        int       `json:"failed"`
}

// New creates a scanner
func New(deps Deps, log *logger.Logger) *Scanner {
	return &Scanner{
		deps:   deps,
		logger: log.WithField("module", "scanner"),
	}
}

// Run executes one pass for the instant now. The returned summary is never
// nil. ErrMarketClosed means the pass stopped before any target was sent.
func (s *Scanner) Run(ctx context.Context, now time.Time) (*Summary, error) {
	summary := &Summary{
		RunID:         uuid.NewString(),
		Reference:     phase.ResolveReferenceDate(now),
		Authoritative: phase.AfterCutoff(now),
	}
	log := s.logger.WithFields(map[string]interface{}{
		"run_id":    summary.RunID,
		"reference": summary.Reference.Format("2006-01-02"),
	})

	log.WithFields(map[string]interface{}{
		"now":            phase.Local(now).Format("15:04"),
		"authoritative":  summary.Authoritative,
		"targets":        len(s.deps.Watchlist.Targets),
		"watchlist_hash": s.deps.Watchlist.Hash,
	}).Info("Scan started")

	flowMap := s.deps.Aggregator.Aggregate(ctx, summary.Reference)
	if len(flowMap) == 0 {
		log.Info("No institutional flows published, market closed")
		return summary, ErrMarketClosed
	}

	targets := s.deps.Watchlist.Targets
	quoteMap := s.deps.Normalizer.Normalize(ctx, targets, summary.Reference, summary.Authoritative)

	for _, t := range targets {
		res := s.evaluate(ctx, log, t, summary.Reference, flowMap, quoteMap)

		alert := s.deps.Formatter.Format(report.Entry{
			Target:    t,
			Reference: summary.Reference,
			Phase:     res.Phase,
			Quote:     res.Quote,
			Flow:      res.Flow,
			Signal:    res.Signal,
		})
		res.Delivered = s.deps.Dispatcher.Dispatch(ctx, alert)
		if res.Delivered {
			summary.Delivered++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, res)
	}

	log.WithFields(map[string]interface{}{
		"delivered": summary.Delivered,
		"failed":    summary.Failed,
	}).Info("Scan completed")
	return summary, nil
}

// evaluate classifies one target. It never fails: missing data reads as zero
// flow or no quote.
func (s *Scanner) evaluate(
	ctx context.Context,
	log *logger.Logger,
	t contracts.Target,
	reference time.Time,
	flowMap map[string]contracts.FlowRecord,
	quoteMap map[string]contracts.QuoteRecord,
) Result {
	ph := phase.Classify(t.EffectiveDate, reference)
	flow := flows.Lookup(flowMap, t.Symbol)

	sig := strategy.Classify(strategy.Input{
		Strategy:   t.Strategy,
		ForeignNet: flow.ForeignNet,
		TrustNet:   flow.TrustNet,
		Phase:      ph.Code,
		Threshold:  t.Threshold,
	})

	if s.deps.Disclosures != nil {
		excerpts, err := s.deps.Disclosures.Excerpts(ctx, t.Symbol, phase.ROCYear(reference))
		if err != nil {
			log.WithError(err).WithField("symbol", t.Symbol).Warn("Disclosure lookup failed")
		} else if preview, ok := strategy.MatchDisclosure(excerpts); ok {
			sig = strategy.ApplyDisclosure(sig, preview)
		}
	}

	res := Result{Target: t, Phase: ph, Flow: flow, Signal: sig}
	if q, ok := quoteMap[t.Symbol]; ok {
		res.Quote = &q
	}

	log.WithFields(map[string]interface{}{
		"symbol":      t.Symbol,
		"phase":       ph.Code,
		"days":        ph.Days,
		"foreign_net": flow.ForeignNet,
		"trust_net":   flow.TrustNet,
		"label":       sig.Label,
		"severity":    sig.Severity.String(),
		"rationale":   sig.Rationale,
		"disclosure":  sig.Disclosure,
	}).Debug("Target classified")
	return res
}
