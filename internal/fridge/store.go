package fridge

import (
	"sort"
	"sync"

	"meal-scheduler/internal/recipe"
)

// Store holds per-user inventories. A user's inventory is created empty on
// first reference and replaced wholesale on each mutating operation. The
// mutex covers map access only; callers serialize concurrent mutation per
// user when running multiple workers.
type Store struct {
	mu    sync.Mutex
	users map[string]map[string]Item
}

// NewStore creates an empty inventory store.
func NewStore() *Store {
	return &Store{users: make(map[string]map[string]Item)}
}

// snapshot returns a copy of the user's inventory keyed by normalized name.
func (s *Store) snapshot(userID string) map[string]Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[string]Item, len(s.users[userID]))
	for name, item := range s.users[userID] {
		items[name] = item
	}
	return items
}

// replace swaps in a new inventory for the user.
func (s *Store) replace(userID string, items map[string]Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = items
}

// Replace loads a persisted snapshot as the user's whole inventory.
func (s *Store) Replace(userID string, items []Item) {
	inventory := make(map[string]Item, len(items))
	for _, item := range items {
		inventory[recipe.NormalizeName(item.Name)] = item
	}
	s.replace(userID, inventory)
}

// Items returns the user's inventory sorted by name.
func (s *Store) Items(userID string) []Item {
	snapshot := s.snapshot(userID)

	items := make([]Item, 0, len(snapshot))
	for _, item := range snapshot {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// Get looks up one item by normalized ingredient name.
func (s *Store) Get(userID, name string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.users[userID][recipe.NormalizeName(name)]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

// Has reports whether the user has the named ingredient.
func (s *Store) Has(userID, name string) bool {
	_, err := s.Get(userID, name)
	return err == nil
}
