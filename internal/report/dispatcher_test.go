package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

type recordingDeliverer struct {
	failFor map[string]bool
	got     []string
	at      []time.Time
}

func (r *recordingDeliverer) Deliver(_ context.Context, alert contracts.Alert) error {
	r.got = append(r.got, alert.Symbol)
	r.at = append(r.at, time.Now())
	if r.failFor[alert.Symbol] {
		return errors.New("webhook returned 500")
	}
	return nil
}

func TestDispatchContinuesAfterFailure(t *testing.T) {
	d := &recordingDeliverer{failFor: map[string]bool{"2324": true}}
	dispatcher := NewDispatcher(d, 0, logger.Nop())

	ctx := context.Background()
	assert.False(t, dispatcher.Dispatch(ctx, contracts.Alert{Symbol: "2324"}))
	assert.True(t, dispatcher.Dispatch(ctx, contracts.Alert{Symbol: "6894"}))
	assert.Equal(t, []string{"2324", "6894"}, d.got)
}

func TestDispatchPacesDeliveries(t *testing.T) {
	d := &recordingDeliverer{}
	dispatcher := NewDispatcher(d, 50*time.Millisecond, logger.Nop())

	ctx := context.Background()
	for _, s := range []string{"a", "b", "c"} {
		dispatcher.Dispatch(ctx, contracts.Alert{Symbol: s})
	}

	assert.Len(t, d.at, 3)
	// first goes out at once, the next two wait for a token each
	assert.GreaterOrEqual(t, d.at[2].Sub(d.at[0]), 90*time.Millisecond)
}

func TestDispatchCancelledContext(t *testing.T) {
	d := &recordingDeliverer{}
	dispatcher := NewDispatcher(d, time.Hour, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, dispatcher.Dispatch(ctx, contracts.Alert{Symbol: "a"}))
	cancel()
	assert.False(t, dispatcher.Dispatch(ctx, contracts.Alert{Symbol: "b"}))
	assert.Equal(t, []string{"a"}, d.got)
}
