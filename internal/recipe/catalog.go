package recipe

import "sort"

// Catalog is an in-memory, read-only recipe catalog. Recipes are held in a
// stable order (by ID) so filtered candidate lists are reproducible.
type Catalog struct {
	recipes []Recipe
	byID    map[string]Recipe
}

// NewCatalog builds a catalog from the given recipes.
func NewCatalog(recipes []Recipe) *Catalog {
	sorted := make([]Recipe, len(recipes))
	copy(sorted, recipes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[string]Recipe, len(sorted))
	for _, r := range sorted {
		byID[r.ID] = r
	}
	return &Catalog{recipes: sorted, byID: byID}
}

// Get returns the recipe with the given ID.
func (c *Catalog) Get(id string) (Recipe, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// All returns every recipe in stable order.
func (c *Catalog) All() []Recipe {
	out := make([]Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// Len returns the catalog size.
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// Candidates returns recipes of the given meal type that satisfy the diet
// profile and contain none of the excluded ingredients, in stable order.
func (c *Catalog) Candidates(mealType MealType, profile DietProfile, excluded map[string]struct{}) []Recipe {
	var out []Recipe
	for _, r := range c.recipes {
		if r.MealType != mealType {
			continue
		}
		if !r.MatchesDiet(profile) {
			continue
		}
		if r.ContainsExcluded(excluded) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// UsersOf returns recipes that contain the named ingredient, any meal type.
func (c *Catalog) UsersOf(name string) []Recipe {
	var out []Recipe
	for _, r := range c.recipes {
		if r.UsesIngredient(name) {
			out = append(out, r)
		}
	}
	return out
}
