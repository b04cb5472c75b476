package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taichungmao-blip/CB-Monitor/internal/scanner"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

type stubRunner struct {
	err  error
	seen time.Time
}

func (s *stubRunner) Run(_ context.Context, now time.Time) (*scanner.Summary, error) {
	s.seen = now
	return &scanner.Summary{RunID: "r1", Delivered: 2}, s.err
}

func TestScanJob(t *testing.T) {
	fixed := time.Date(2026, 1, 9, 7, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"completed", nil, false},
		{"market closed is success", scanner.ErrMarketClosed, false},
		{"startup failure surfaces", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{err: tt.err}
			job := NewScanJob(runner, "0 30 15 * * 1-5", logger.Nop())
			job.now = func() time.Time { return fixed }

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, fixed, runner.seen)
			assert.Equal(t, "watchlist_scan", job.Name())
			assert.Equal(t, "0 30 15 * * 1-5", job.Schedule())
		})
	}
}
