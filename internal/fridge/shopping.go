package fridge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"meal-scheduler/internal/recipe"
)

// ShoppingItem is one aggregated shopping-list entry.
type ShoppingItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	// FreshnessDays is the minimum freshness window across merged entries,
	// the conservative expiry for the whole purchase.
	FreshnessDays int    `json:"freshness_days"`
	Category      string `json:"category,omitempty"`
}

// BuildShoppingList aggregates the ingredients of every scheduled recipe,
// merging same-named entries. Quantities with compatible units are summed;
// incompatible ones are concatenated as "A + B".
func BuildShoppingList(recipes []recipe.Recipe) []ShoppingItem {
	merged := make(map[string]ShoppingItem)
	for _, rec := range recipes {
		for _, ing := range rec.Ingredients {
			key := recipe.NormalizeName(ing.Name)

			existing, ok := merged[key]
			if !ok {
				merged[key] = ShoppingItem{
					Name:          key,
					Quantity:      ing.Quantity,
					FreshnessDays: ing.FreshnessDays,
					Category:      ing.Category,
				}
				continue
			}

			existing.Quantity = mergeQuantities(existing.Quantity, ing.Quantity)
			if ing.FreshnessDays < existing.FreshnessDays {
				existing.FreshnessDays = ing.FreshnessDays
			}
			if existing.Category == "" {
				existing.Category = ing.Category
			}
			merged[key] = existing
		}
	}

	items := make([]ShoppingItem, 0, len(merged))
	for _, item := range merged {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

type unitClass int

const (
	classCount unitClass = iota
	classWeight
	classVolume
)

// toCanonical maps a unit token to its class and canonical factor
// (grams for weight, milliliters for volume).
var toCanonical = map[string]struct {
	class  unitClass
	factor float64
}{
	"g":          {classWeight, 1},
	"gram":       {classWeight, 1},
	"kg":         {classWeight, 1000},
	"oz":         {classWeight, 28.35},
	"ounce":      {classWeight, 28.35},
	"lb":         {classWeight, 453.6},
	"pound":      {classWeight, 453.6},
	"ml":         {classVolume, 1},
	"milliliter": {classVolume, 1},
	"l":          {classVolume, 1000},
	"liter":      {classVolume, 1000},
	"cup":        {classVolume, 240},
	"tbsp":       {classVolume, 15},
	"tablespoon": {classVolume, 15},
	"tsp":        {classVolume, 5},
	"teaspoon":   {classVolume, 5},
}

type quantity struct {
	value float64
	class unitClass
}

// parseQuantity reads a "magnitude unit" string into canonical units.
// A bare number is a count; anything unparseable reports ok=false.
func parseQuantity(raw string) (quantity, bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(fields) == 0 {
		return quantity{}, false
	}

	value, ok := parseMagnitude(fields[0])
	if !ok {
		return quantity{}, false
	}

	if len(fields) == 1 {
		return quantity{value: value, class: classCount}, true
	}

	unit := strings.TrimSuffix(fields[1], "s")
	canonical, known := toCanonical[unit]
	if !known {
		return quantity{}, false
	}
	return quantity{value: value * canonical.factor, class: canonical.class}, true
}

// parseMagnitude handles plain numbers and simple fractions like "1/2".
func parseMagnitude(token string) (float64, bool) {
	if num, den, ok := strings.Cut(token, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// mergeQuantities sums two quantity strings when their units are compatible,
// otherwise concatenates them.
func mergeQuantities(a, b string) string {
	qa, okA := parseQuantity(a)
	qb, okB := parseQuantity(b)
	if !okA || !okB || qa.class != qb.class {
		return a + " + " + b
	}
	return formatQuantity(qa.value+qb.value, qa.class)
}

func formatQuantity(value float64, class unitClass) string {
	// Round to one decimal, dropping it when whole.
	text := strconv.FormatFloat(value, 'f', 1, 64)
	text = strings.TrimSuffix(text, ".0")

	switch class {
	case classWeight:
		return fmt.Sprintf("%s g", text)
	case classVolume:
		return fmt.Sprintf("%s ml", text)
	default:
		return text
	}
}
