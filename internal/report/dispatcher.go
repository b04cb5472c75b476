package report

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// Deliverer sends one alert to a channel
type Deliverer interface {
	Deliver(ctx context.Context, alert contracts.Alert) error
}

// Dispatcher paces deliveries and swallows delivery failures
type Dispatcher struct {
	deliverer Deliverer
	limiter   *rate.Limiter
	logger    *logger.Logger
}

// NewDispatcher creates a dispatcher spacing deliveries at least delay apart.
// A zero delay disables pacing.
func NewDispatcher(d Deliverer, delay time.Duration, log *logger.Logger) *Dispatcher {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Dispatcher{
		deliverer: d,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    log.WithField("module", "dispatch"),
	}
}

// Dispatch delivers alert and reports whether it went through.
// Failures are logged, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, alert contracts.Alert) bool {
	if err := d.limiter.Wait(ctx); err != nil {
		d.logger.WithError(err).WithField("symbol", alert.Symbol).Warn("Dispatch pacing aborted")
		return false
	}

	if err := d.deliverer.Deliver(ctx, alert); err != nil {
		d.logger.WithError(err).WithFields(map[string]interface{}{
			"symbol": alert.Symbol,
			"title":  alert.Title,
		}).Warn("Alert delivery failed")
		return false
	}

	d.logger.WithFields(map[string]interface{}{
		"symbol":   alert.Symbol,
		"severity": alert.Severity.String(),
	}).Debug("Alert delivered")
	return true
}
