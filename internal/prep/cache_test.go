package prep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCacheRoundTrip(t *testing.T) {
	cache := NewParseCache(time.Hour, nil)

	key := cache.Key("recipe-1", "Chop the onion")
	_, ok := cache.Get(key)
	require.False(t, ok)

	cache.Put(key, ParsedStep{Action: ActionChop, Ingredient: "onion"})

	step, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, ActionChop, step.Action)
	assert.Equal(t, "onion", step.Ingredient)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestParseCacheKeyIsPerRecipeAndText(t *testing.T) {
	cache := NewParseCache(time.Hour, nil)

	base := cache.Key("recipe-1", "Chop the onion")
	assert.NotEqual(t, base, cache.Key("recipe-2", "Chop the onion"))
	assert.NotEqual(t, base, cache.Key("recipe-1", "Chop the onions"))
	assert.Equal(t, base, cache.Key("recipe-1", "Chop the onion"))
}

func TestParseCacheExpiry(t *testing.T) {
	cache := NewParseCache(time.Minute, nil)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	key := cache.Key("recipe-1", "Peel the potatoes")
	cache.Put(key, ParsedStep{Action: ActionPeel})

	_, ok := cache.Get(key)
	require.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = cache.Get(key)
	require.False(t, ok)
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, int64(1), cache.Stats().Evictions)
}

func TestParseCachePurge(t *testing.T) {
	cache := NewParseCache(time.Minute, nil)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Put(cache.Key("r1", "step a"), ParsedStep{Action: ActionChop})
	cache.Put(cache.Key("r1", "step b"), ParsedStep{Action: ActionWash})

	current = current.Add(30 * time.Second)
	cache.Put(cache.Key("r1", "step c"), ParsedStep{Action: ActionMix})

	current = current.Add(45 * time.Second)
	assert.Equal(t, 2, cache.Purge())
	assert.Equal(t, 1, cache.Len())
}

func TestParseCacheZeroTTLNeverExpires(t *testing.T) {
	cache := NewParseCache(0, nil)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	key := cache.Key("r1", "Whisk the eggs")
	cache.Put(key, ParsedStep{Action: ActionMix})

	current = current.Add(1000 * time.Hour)
	_, ok := cache.Get(key)
	assert.True(t, ok)
	assert.Equal(t, 0, cache.Purge())
}
