package watchlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
)

func TestDefault(t *testing.T) {
	wl, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "V10.7", wl.Version)
	assert.Len(t, wl.Targets, 17)
	assert.Len(t, wl.Hash, 64)

	first := wl.Targets[0]
	assert.Equal(t, "6894", first.Symbol)
	assert.Equal(t, "衛司特", first.Name)
	assert.Equal(t, contracts.StrategySTD, first.Strategy)
	assert.Equal(t, int64(50), first.Threshold)
	assert.Equal(t, contracts.MarketOTC, first.Market)
	assert.Equal(t, "2026-01-13", first.EffectiveDate.Format("2006-01-02"))

	assert.Equal(t, "3706", wl.Symbols()[16])
}

func TestHashDeterministic(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Equal(t, a.Hash, b.Hash)
}

func TestParseDefaultsThreshold(t *testing.T) {
	wl, err := Parse([]byte(`
version: test
targets:
  - {id: "2324", name: 仁寶, date: "2026-01-12", strategy: ECB, mkt: tse}
`))
	require.NoError(t, err)
	assert.Equal(t, int64(contracts.DefaultThreshold), wl.Targets[0].Threshold)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantField string
	}{
		{
			name: "unknown field",
			yaml: `
version: test
targets:
  - {id: "2324", name: 仁寶, date: "2026-01-12", strategy: ECB, mkt: tse, colour: red}
`,
		},
		{
			name: "bad strategy",
			yaml: `
version: test
targets:
  - {id: "2324", name: 仁寶, date: "2026-01-12", strategy: HODL, mkt: tse}
`,
			wantField: "targets[0].strategy",
		},
		{
			name: "bad market",
			yaml: `
version: test
targets:
  - {id: "2324", name: 仁寶, date: "2026-01-12", strategy: ECB, mkt: nyse}
`,
			wantField: "targets[0].market",
		},
		{
			name: "bad date",
			yaml: `
version: test
targets:
  - {id: "2324", name: 仁寶, date: "2026/01/12", strategy: ECB, mkt: tse}
`,
			wantField: "targets[0].date",
		},
		{
			name: "duplicate symbol",
			yaml: `
version: test
targets:
  - {id: "2324", name: 仁寶, date: "2026-01-12", strategy: ECB, mkt: tse}
  - {id: "2324", name: 仁寶, date: "2026-01-13", strategy: STD, mkt: tse}
`,
			wantField: "targets[1].id",
		},
		{
			name:      "empty targets",
			yaml:      "version: test\ntargets: []\n",
			wantField: "targets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			if tt.wantField == "" {
				return
			}
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: custom
targets:
  - {id: "2745", name: 五福, date: "2026-01-10", strategy: PRICED, threshold: 100, mkt: otc}
`), 0o600))

	wl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", wl.Version)
	assert.Equal(t, contracts.StrategyPRICED, wl.Targets[0].Strategy)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	wl, err := Load("")
	require.NoError(t, err)
	assert.Len(t, wl.Targets, 17)
}
