package contracts

import "time"

// Alert is one formatted per-target message handed to a delivery channel
type Alert struct {
	Symbol    string    `json:"symbol"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Color     int       `json:"color"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}
