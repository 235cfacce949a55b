package stats

import (
	"strconv"
	"strings"
)

// DefaultPeriodDays is used when the dashboard does not request a window.
const DefaultPeriodDays = 30

// AllTime is the period sentinel for an unbounded window.
const AllTime = 0

// Stats is the dashboard aggregate for one shop and window.
type Stats struct {
	TotalItems    int64        `json:"totalItems"`
	TopProducts   []TopProduct `json:"topProducts"`
	AddToCartRate string       `json:"addToCartRate"`
}

// TopProduct is one entry of the most-saved list. Percentage is the share of
// all windowed items, two decimals.
type TopProduct struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Image      string `json:"image"`
	Count      int64  `json:"count"`
	Percentage string `json:"percentage"`
}

// Empty is the zero-result shape returned for empty windows and on failure.
func Empty() Stats {
	return Stats{TotalItems: 0, TopProducts: []TopProduct{}, AddToCartRate: "0.00"}
}

// ParsePeriod reads a period query value in days. Blank, malformed and
// negative values fall back to DefaultPeriodDays.
func ParsePeriod(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPeriodDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return DefaultPeriodDays
	}
	return days
}
