package fridge

import (
	"errors"
	"time"
)

// ErrItemNotFound signals a lookup for an ingredient the user does not have.
var ErrItemNotFound = errors.New("fridge item not found")

// Item is one per-user inventory row.
type Item struct {
	Name string `json:"name"`
	// Quantity is a free-text magnitude+unit string, e.g. "500 g".
	Quantity      string    `json:"quantity"`
	DaysRemaining int       `json:"days_remaining"`
	// OriginalFreshnessDays is the ceiling for percentage calculations and
	// never decreases for a given item.
	OriginalFreshnessDays int       `json:"original_freshness_days"`
	AddedAt               time.Time `json:"added_at"`
}

// FreshnessPercent returns days_remaining / original * 100, clamped to [0, 100].
func (i Item) FreshnessPercent() float64 {
	if i.OriginalFreshnessDays <= 0 {
		return 0
	}
	pct := float64(i.DaysRemaining) / float64(i.OriginalFreshnessDays) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
