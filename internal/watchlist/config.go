// Package watchlist loads the static list of convertible-bond targets.
package watchlist

import (
	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
)

// File is the on-disk watchlist document
type File struct {
	Version string      `yaml:"version" json:"version" validate:"required"`
	Targets []TargetDef `yaml:"targets" json:"targets" validate:"required,min=1,dive"`
}

// TargetDef is one YAML target entry
type TargetDef struct {
	ID        string `yaml:"id" json:"id" validate:"required,numeric,min=4,max=6"`
	Name      string `yaml:"name" json:"name" validate:"required"`
	Date      string `yaml:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Strategy  string `yaml:"strategy" json:"strategy" validate:"required,oneof=STD ECB ENT PRICED"`
	Threshold int64  `yaml:"threshold,omitempty" json:"threshold,omitempty" validate:"gte=0"`
	Market    string `yaml:"mkt" json:"mkt" validate:"required,oneof=tse otc"`
}

// Watchlist is the validated, immutable list handed to the scanner
type Watchlist struct {
	Version string
	Hash    string
	Targets []contracts.Target
}

// Symbols returns the target symbols in watchlist order
func (w *Watchlist) Symbols() []string {
	out := make([]string, 0, len(w.Targets))
	for _, t := range w.Targets {
		out = append(out, t.Symbol)
	}
	return out
}
