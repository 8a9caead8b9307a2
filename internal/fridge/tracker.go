package fridge

import (
	"sort"
	"time"

	"meal-scheduler/internal/recipe"

	"go.uber.org/zap"
)

// Tracker owns freshness state for every user's inventory. It operates over
// an explicit Store passed in at construction time.
type Tracker struct {
	store  *Store
	logger *zap.Logger
}

// NewTracker creates a Tracker over the given store.
func NewTracker(store *Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger}
}

// Store exposes the underlying inventory store for read-only queries.
func (t *Tracker) Store() *Store {
	return t.store
}

// Stock adds the shopping-list items to the user's inventory as of the given
// date. Restocking an existing ingredient resets its remaining days; the
// original freshness ceiling only ever grows.
func (t *Tracker) Stock(userID string, list []ShoppingItem, asOf time.Time) {
	items := t.store.snapshot(userID)

	for _, entry := range list {
		key := recipe.NormalizeName(entry.Name)
		original := entry.FreshnessDays
		if existing, ok := items[key]; ok && existing.OriginalFreshnessDays > original {
			original = existing.OriginalFreshnessDays
		}

		items[key] = Item{
			Name:                  key,
			Quantity:              entry.Quantity,
			DaysRemaining:         entry.FreshnessDays,
			OriginalFreshnessDays: original,
			AddedAt:               dateOnly(asOf),
		}
	}

	t.store.replace(userID, items)
	t.logger.Debug("stocked inventory",
		zap.String("user", userID),
		zap.Int("items", len(list)),
	)
}

// Decay recomputes every item's remaining days as of the given date and
// prunes items that have reached zero. Running it twice for the same as-of
// date is a no-op.
func (t *Tracker) Decay(userID string, asOf time.Time) {
	items := t.store.snapshot(userID)

	pruned := 0
	for key, item := range items {
		elapsed := daysBetween(item.AddedAt, asOf)
		remaining := item.OriginalFreshnessDays - elapsed
		if remaining <= 0 {
			delete(items, key)
			pruned++
			continue
		}
		item.DaysRemaining = remaining
		items[key] = item
	}

	t.store.replace(userID, items)
	if pruned > 0 {
		t.logger.Info("pruned spoiled items",
			zap.String("user", userID),
			zap.Int("count", pruned),
		)
	}
}

// ExpiringWithin returns items with 0 < days_remaining <= threshold, soonest
// first.
func (t *Tracker) ExpiringWithin(userID string, threshold int) []Item {
	var expiring []Item
	for _, item := range t.store.Items(userID) {
		if item.DaysRemaining > 0 && item.DaysRemaining <= threshold {
			expiring = append(expiring, item)
		}
	}

	sort.Slice(expiring, func(i, j int) bool {
		if expiring[i].DaysRemaining != expiring[j].DaysRemaining {
			return expiring[i].DaysRemaining < expiring[j].DaysRemaining
		}
		return expiring[i].Name < expiring[j].Name
	})
	return expiring
}

// Remove deletes one item from the user's inventory.
func (t *Tracker) Remove(userID, name string) error {
	items := t.store.snapshot(userID)
	key := recipe.NormalizeName(name)
	if _, ok := items[key]; !ok {
		return ErrItemNotFound
	}
	delete(items, key)
	t.store.replace(userID, items)
	return nil
}

// dateOnly truncates a timestamp to its calendar day.
func dateOnly(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// daysBetween counts whole calendar days from a to b, never negative.
func daysBetween(a, b time.Time) int {
	days := int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
