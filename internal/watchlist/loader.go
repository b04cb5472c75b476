package watchlist

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/phase"
)

//go:embed default.yaml
var defaultYAML []byte

// Load reads the watchlist at path. An empty path loads the embedded default.
func Load(path string) (*Watchlist, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded watchlist
func Default() (*Watchlist, error) {
	return Parse(defaultYAML)
}

// Parse decodes and validates a YAML watchlist
// ⭐ SSOT: KnownFields(true)，欄位打錯立即失敗
func Parse(data []byte) (*Watchlist, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}

	hash, err := Hash(&f)
	if err != nil {
		return nil, err
	}

	targets := make([]contracts.Target, 0, len(f.Targets))
	for i, def := range f.Targets {
		eff, err := phase.ParseDate(def.Date)
		if err != nil {
			return nil, ValidationError{Field: fmt.Sprintf("targets[%d].date", i), Message: err.Error()}
		}
		targets = append(targets, contracts.Target{
			Symbol:        def.ID,
			Name:          def.Name,
			EffectiveDate: eff,
			Strategy:      contracts.Strategy(def.Strategy),
			Threshold:     contracts.ResolveThreshold(def.Threshold),
			Market:        contracts.Market(def.Market),
		})
	}

	return &Watchlist{Version: f.Version, Hash: hash, Targets: targets}, nil
}

// Hash generates a SHA256 hash of the canonical JSON form
// 注意：使用 struct 而非 map，確保欄位順序固定
func Hash(f *File) (string, error) {
	jsonBytes, err := json.Marshal(f)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
