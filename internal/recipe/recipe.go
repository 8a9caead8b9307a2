package recipe

import "strings"

// MealType classifies which slot of the day a recipe belongs to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// CoreMealTypes are the meal types a daily plan schedules.
var CoreMealTypes = []MealType{MealBreakfast, MealLunch, MealDinner}

// Ingredient is a single recipe ingredient. Immutable once attached to a recipe.
type Ingredient struct {
	Name          string `json:"name"`
	Quantity      string `json:"quantity"`
	FreshnessDays int    `json:"freshness_days"`
	Category      string `json:"category,omitempty"`
}

// Recipe is a catalog entry. The planning core treats recipes as read-only.
type Recipe struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	DietTags        []string     `json:"diet_tags"`
	MealType        MealType     `json:"meal_type"`
	Ingredients     []Ingredient `json:"ingredients"`
	Steps           []string     `json:"steps"`
	PrepTimeMinutes int          `json:"prep_time_minutes"`
	ReuseAffinity   float64      `json:"reuse_affinity"`
	Servings        int          `json:"servings"`
	UpdatedAt       string       `json:"source_updated_at,omitempty"`
}

// DietProfile is either a single tag a recipe may carry, or a compound
// profile requiring every tag (e.g. low-histamine AND low-oxalate).
type DietProfile struct {
	Tags       []string
	RequireAll bool
}

// Diet returns a simple single-tag profile.
func Diet(tag string) DietProfile {
	return DietProfile{Tags: []string{tag}}
}

// CompoundDiet returns a profile a recipe must satisfy in full.
func CompoundDiet(tags ...string) DietProfile {
	return DietProfile{Tags: tags, RequireAll: true}
}

// NormalizeName lower-cases an ingredient or tag name and collapses spaces to
// underscores so names compare as exact keys.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// MatchesDiet reports whether the recipe satisfies the profile: all tags for
// a compound profile, any tag for a simple one.
func (r Recipe) MatchesDiet(profile DietProfile) bool {
	if len(profile.Tags) == 0 {
		return true
	}

	tagSet := make(map[string]struct{}, len(r.DietTags))
	for _, tag := range r.DietTags {
		tagSet[NormalizeName(tag)] = struct{}{}
	}

	if profile.RequireAll {
		for _, tag := range profile.Tags {
			if _, ok := tagSet[NormalizeName(tag)]; !ok {
				return false
			}
		}
		return true
	}

	for _, tag := range profile.Tags {
		if _, ok := tagSet[NormalizeName(tag)]; ok {
			return true
		}
	}
	return false
}

// SharesDietTag reports whether two recipes share at least one diet tag.
func (r Recipe) SharesDietTag(other Recipe) bool {
	for _, tag := range r.DietTags {
		for _, otherTag := range other.DietTags {
			if NormalizeName(tag) == NormalizeName(otherTag) {
				return true
			}
		}
	}
	return false
}

// ContainsExcluded reports whether any ingredient name is an exact
// (normalized) member of the exclusion set. Matching is whole-name:
// excluding "almonds" does not exclude "almond_butter".
func (r Recipe) ContainsExcluded(excluded map[string]struct{}) bool {
	for _, ing := range r.Ingredients {
		if _, ok := excluded[NormalizeName(ing.Name)]; ok {
			return true
		}
	}
	return false
}

// IngredientNames returns the normalized ingredient name set.
func (r Recipe) IngredientNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names[NormalizeName(ing.Name)] = struct{}{}
	}
	return names
}

// UsesIngredient reports whether the recipe contains the named ingredient.
func (r Recipe) UsesIngredient(name string) bool {
	_, ok := r.IngredientNames()[NormalizeName(name)]
	return ok
}
