package discord

import (
	"context"
	"fmt"
	"io"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
)

// Console prints alerts instead of posting them. Used for dry runs and when
// no webhook is configured outside production.
type Console struct {
	w io.Writer
}

// NewConsole creates a console deliverer writing to w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Deliver writes the alert as plain text
func (c *Console) Deliver(_ context.Context, alert contracts.Alert) error {
	_, err := fmt.Fprintf(c.w, "==== %s [#%06x %s]\n%s\n\n", alert.Title, alert.Color, alert.Severity, alert.Body)
	return err
}
