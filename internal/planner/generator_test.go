package planner

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-scheduler/internal/recipe"
)

func ingredients(names ...string) []recipe.Ingredient {
	out := make([]recipe.Ingredient, len(names))
	for i, name := range names {
		out[i] = recipe.Ingredient{Name: name, Quantity: "1", FreshnessDays: 7}
	}
	return out
}

func testCatalog() *recipe.Catalog {
	return recipe.NewCatalog([]recipe.Recipe{
		{ID: "b1", Name: "Oatmeal", MealType: recipe.MealBreakfast, DietTags: []string{"vegan"},
			Ingredients: ingredients("oats", "banana"), PrepTimeMinutes: 10},
		{ID: "b2", Name: "Tofu Scramble", MealType: recipe.MealBreakfast, DietTags: []string{"vegan"},
			Ingredients: ingredients("tofu", "spinach", "onion"), PrepTimeMinutes: 15},
		{ID: "b3", Name: "Omelette", MealType: recipe.MealBreakfast, DietTags: []string{"vegetarian"},
			Ingredients: ingredients("eggs", "cheese"), PrepTimeMinutes: 10},
		{ID: "l1", Name: "Lentil Soup", MealType: recipe.MealLunch, DietTags: []string{"vegan"},
			Ingredients: ingredients("lentils", "onion", "carrot"), PrepTimeMinutes: 30, ReuseAffinity: 0.8},
		{ID: "l2", Name: "Chickpea Salad", MealType: recipe.MealLunch, DietTags: []string{"vegan"},
			Ingredients: ingredients("chickpeas", "onion", "spinach"), PrepTimeMinutes: 15, ReuseAffinity: 0.6},
		{ID: "l3", Name: "Peanut Noodles", MealType: recipe.MealLunch, DietTags: []string{"vegan"},
			Ingredients: ingredients("noodles", "peanuts", "scallion"), PrepTimeMinutes: 20},
		{ID: "d1", Name: "Veggie Curry", MealType: recipe.MealDinner, DietTags: []string{"vegan"},
			Ingredients: ingredients("onion", "spinach", "coconut milk"), PrepTimeMinutes: 35, ReuseAffinity: 0.7},
		{ID: "d2", Name: "Almond Stir Fry", MealType: recipe.MealDinner, DietTags: []string{"vegan"},
			Ingredients: ingredients("almonds", "broccoli", "rice"), PrepTimeMinutes: 20},
		{ID: "d3", Name: "Pasta Bake", MealType: recipe.MealDinner, DietTags: []string{"vegetarian"},
			Ingredients: ingredients("pasta", "cheese", "tomatoes"), PrepTimeMinutes: 40},
	})
}

func TestGenerateFillsEverySlot(t *testing.T) {
	gen := NewGenerator(testCatalog(), rand.New(rand.NewSource(1)))

	plan, err := gen.Generate(GenerateRequest{
		UserID:    "alice",
		Diet:      recipe.Diet("vegan"),
		StartDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Days:      3,
	})
	require.NoError(t, err)

	assert.Len(t, plan.Slots, 9, "3 days x 3 core meal types")
	for day := 0; day < 3; day++ {
		date := plan.StartDate.AddDate(0, 0, day)
		for _, mealType := range recipe.CoreMealTypes {
			slot, err := plan.SlotAt(date, mealType)
			require.NoError(t, err)
			assert.Equal(t, mealType, slot.Recipe.MealType)
			assert.Equal(t, StatusPending, slot.Status)
			assert.True(t, slot.Recipe.MatchesDiet(plan.Diet), "%s violates the diet", slot.Recipe.Name)
		}
	}
}

func TestGenerateRespectsExclusions(t *testing.T) {
	gen := NewGenerator(testCatalog(), rand.New(rand.NewSource(1)))

	plan, err := gen.Generate(GenerateRequest{
		UserID:     "alice",
		Diet:       recipe.Diet("vegan"),
		Exclusions: []string{"tree_nuts", "peanuts"},
		StartDate:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Days:       4,
	})
	require.NoError(t, err)

	for _, slot := range plan.Slots {
		assert.NotEqual(t, "Almond Stir Fry", slot.Recipe.Name)
		assert.NotEqual(t, "Peanut Noodles", slot.Recipe.Name)
	}
}

func TestGenerateOmitsMealTypesWithoutCandidates(t *testing.T) {
	catalog := recipe.NewCatalog([]recipe.Recipe{
		{ID: "l1", Name: "Lentil Soup", MealType: recipe.MealLunch, DietTags: []string{"vegan"},
			Ingredients: ingredients("lentils")},
	})
	gen := NewGenerator(catalog, rand.New(rand.NewSource(1)))

	plan, err := gen.Generate(GenerateRequest{
		UserID:    "alice",
		Diet:      recipe.Diet("vegan"),
		StartDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Days:      2,
	})
	require.NoError(t, err)

	assert.Len(t, plan.Slots, 2)
	for _, slot := range plan.Slots {
		assert.Equal(t, recipe.MealLunch, slot.MealType)
	}
}

func TestGenerateNoCandidatesAtAll(t *testing.T) {
	gen := NewGenerator(testCatalog(), rand.New(rand.NewSource(1)))

	_, err := gen.Generate(GenerateRequest{
		UserID:    "alice",
		Diet:      recipe.Diet("carnivore"),
		StartDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Days:      2,
	})
	require.Error(t, err)

	var noCandidates *NoCandidatesError
	require.True(t, errors.As(err, &noCandidates))
	assert.Contains(t, noCandidates.Error(), "carnivore")
}

func TestGenerateRejectsNonPositiveDays(t *testing.T) {
	gen := NewGenerator(testCatalog(), rand.New(rand.NewSource(1)))

	_, err := gen.Generate(GenerateRequest{Diet: recipe.Diet("vegan"), Days: 0})
	assert.Error(t, err)
}

func TestGenerateReuseFavorsOverlap(t *testing.T) {
	// Seed recipe pinned via the rand source; with reuse on, the remaining
	// lunches must maximize ingredient overlap with it.
	catalog := recipe.NewCatalog([]recipe.Recipe{
		{ID: "l1", Name: "Lentil Soup", MealType: recipe.MealLunch, DietTags: []string{"vegan"},
			Ingredients: ingredients("lentils", "onion", "carrot")},
		{ID: "l2", Name: "Carrot Onion Stew", MealType: recipe.MealLunch, DietTags: []string{"vegan"},
			Ingredients: ingredients("onion", "carrot", "potato")},
		{ID: "l3", Name: "Fruit Plate", MealType: recipe.MealLunch, DietTags: []string{"vegan"},
			Ingredients: ingredients("apple", "grapes", "melon")},
	})
	gen := NewGenerator(catalog, rand.New(rand.NewSource(42)))

	plan, err := gen.Generate(GenerateRequest{
		UserID:          "alice",
		Diet:            recipe.Diet("vegan"),
		StartDate:       time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Days:            2,
		PrioritizeReuse: true,
	})
	require.NoError(t, err)
	require.Len(t, plan.Slots, 2)

	first := plan.Slots[0].Recipe
	second := plan.Slots[1].Recipe
	assert.NotEqual(t, first.ID, second.ID)
	// whatever seed the rand source drew, the greedy follow-up always has a
	// better-overlapping option than the fruit plate
	assert.NotEqual(t, "Fruit Plate", second.Name)
}

func TestGenerateSameSeedSamePlan(t *testing.T) {
	req := GenerateRequest{
		UserID:          "alice",
		Diet:            recipe.Diet("vegan"),
		StartDate:       time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Days:            5,
		PrioritizeReuse: true,
	}

	first, err := NewGenerator(testCatalog(), rand.New(rand.NewSource(7))).Generate(req)
	require.NoError(t, err)
	second, err := NewGenerator(testCatalog(), rand.New(rand.NewSource(7))).Generate(req)
	require.NoError(t, err)

	require.Len(t, second.Slots, len(first.Slots))
	for i := range first.Slots {
		assert.Equal(t, first.Slots[i].Recipe.ID, second.Slots[i].Recipe.ID)
	}
}

func TestJaccard(t *testing.T) {
	a := map[string]struct{}{"onion": {}, "carrot": {}, "lentils": {}}
	b := map[string]struct{}{"onion": {}, "carrot": {}, "potato": {}}

	assert.InDelta(t, 0.5, jaccard(a, b), 0.001)
	assert.InDelta(t, 1.0, jaccard(a, a), 0.001)
	assert.Zero(t, jaccard(a, map[string]struct{}{}))
	assert.Zero(t, jaccard(nil, nil))
}
