// Package exchange holds the table-cell helpers shared by the TWSE and TPEx clients.
package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cache stores parsed settlement tables. *redis.Cache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Row is one positional row of an exchange JSON table
type Row []interface{}

// Cell returns column i as a trimmed string
func (r Row) Cell(i int) (string, error) {
	if i < 0 || i >= len(r) {
		return "", fmt.Errorf("column %d out of range (len %d)", i, len(r))
	}
	switch v := r[i].(type) {
	case string:
		return strings.TrimSpace(v), nil
	case nil:
		return "", fmt.Errorf("column %d is null", i)
	default:
		return strings.TrimSpace(fmt.Sprint(v)), nil
	}
}

// Symbol returns column 0 with all whitespace removed
func (r Row) Symbol() string {
	s, err := r.Cell(0)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(s), "")
}

// Int parses column i as a comma-grouped signed integer
func (r Row) Int(i int) (int64, error) {
	s, err := r.Cell(i)
	if err != nil {
		return 0, err
	}
	return ParseInt(s)
}

// Decimal parses column i as a comma-grouped signed decimal
func (r Row) Decimal(i int) (decimal.Decimal, error) {
	s, err := r.Cell(i)
	if err != nil {
		return decimal.Zero, err
	}
	return ParseDecimal(s)
}

// ParseInt parses "1,234", "+1,234" and "-1,234"
func ParseInt(s string) (int64, error) {
	clean := normalize(s)
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse int %q: %w", s, err)
	}
	return v, nil
}

// ParseDecimal parses "1,234.50", "+0.35" and "-0.35". Placeholders like "--" fail.
func ParseDecimal(s string) (decimal.Decimal, error) {
	clean := normalize(s)
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

func normalize(s string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strings.TrimPrefix(clean, "+")
}
