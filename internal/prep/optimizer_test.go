package prep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-scheduler/internal/planner"
	"meal-scheduler/internal/recipe"
)

func dayPlan(t *testing.T, date time.Time, recipes ...recipe.Recipe) *planner.Plan {
	t.Helper()
	plan := planner.NewPlan("user-1", recipe.DietProfile{Tags: []string{"omnivore"}}, nil, date, 1)
	for i, rec := range recipes {
		require.NoError(t, plan.AddSlot(planner.MealSlot{
			Date:     date,
			MealType: recipe.CoreMealTypes[i],
			Recipe:   rec,
			Status:   planner.StatusPending,
		}))
	}
	return plan
}

func TestOptimizeDayMergesSharedChopping(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := dayPlan(t, date,
		recipe.Recipe{
			ID:   "r1",
			Name: "Onion Soup",
			Steps: []string{
				"Dice the onion for 3 minutes",
				"Simmer the broth for 20 minutes",
			},
			PrepTimeMinutes: 25,
		},
		recipe.Recipe{
			ID:   "r2",
			Name: "Onion Tart",
			Steps: []string{
				"Mince the onion for 4 minutes",
				"Bake for 30 minutes",
			},
			PrepTimeMinutes: 40,
		},
	)

	optimizer := NewOptimizer(NewHeuristicParser(), nil)
	timeline, err := optimizer.OptimizeDay(context.Background(), plan, date)
	require.NoError(t, err)

	require.Len(t, timeline.Steps, 3)

	merged := timeline.Steps[0]
	assert.True(t, merged.Merged)
	assert.Equal(t, ActionChop, merged.Action)
	assert.Equal(t, 4, merged.DurationMinutes, "merged step takes as long as its slowest member")
	assert.Equal(t, 3, merged.SavedMinutes)
	assert.ElementsMatch(t, []string{"Onion Soup", "Onion Tart"}, merged.Recipes)
	assert.Contains(t, merged.Description, "onion")

	// remaining steps keep their original order
	assert.Equal(t, "Simmer the broth for 20 minutes", timeline.Steps[1].Description)
	assert.Equal(t, "Bake for 30 minutes", timeline.Steps[2].Description)

	assert.Equal(t, 3, timeline.SavedMinutes)
	assert.Equal(t, 4+20+30, timeline.TotalMinutes)
	assert.Equal(t, []string{"Onion Soup", "Onion Tart"}, timeline.RecipesServed)
}

func TestOptimizeDayDifferentIngredientsDoNotMerge(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := dayPlan(t, date,
		recipe.Recipe{ID: "r1", Name: "Salad", Steps: []string{"Chop the cucumber"}},
		recipe.Recipe{ID: "r2", Name: "Salsa", Steps: []string{"Chop the tomatoes"}},
	)

	optimizer := NewOptimizer(NewHeuristicParser(), nil)
	timeline, err := optimizer.OptimizeDay(context.Background(), plan, date)
	require.NoError(t, err)

	require.Len(t, timeline.Steps, 2)
	for _, step := range timeline.Steps {
		assert.False(t, step.Merged)
	}
	assert.Equal(t, 0, timeline.SavedMinutes)
}

func TestOptimizeDaySkipsNonActionableSteps(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := dayPlan(t, date,
		recipe.Recipe{ID: "r1", Name: "Stew", Steps: []string{
			"This stew freezes beautifully",
			"Chop the carrots",
		}},
	)

	optimizer := NewOptimizer(NewHeuristicParser(), nil)
	timeline, err := optimizer.OptimizeDay(context.Background(), plan, date)
	require.NoError(t, err)

	require.Len(t, timeline.Steps, 1)
	assert.Equal(t, "Chop the carrots", timeline.Steps[0].Description)
}

func TestOptimizeDayOrdersAreSequential(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := dayPlan(t, date,
		recipe.Recipe{ID: "r1", Name: "Curry", Steps: []string{
			"Dice the onion",
			"Fry the paste",
			"Simmer for 25 minutes",
		}},
		recipe.Recipe{ID: "r2", Name: "Raita", Steps: []string{
			"Dice the onion",
			"Whisk the yogurt",
		}},
	)

	optimizer := NewOptimizer(NewHeuristicParser(), nil)
	timeline, err := optimizer.OptimizeDay(context.Background(), plan, date)
	require.NoError(t, err)

	require.NotEmpty(t, timeline.Steps)
	for i, step := range timeline.Steps {
		assert.Equal(t, i+1, step.Order)
	}
	assert.True(t, timeline.Steps[0].Merged)
}

func TestOptimizeDayEmptyDate(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := planner.NewPlan("user-1", recipe.DietProfile{Tags: []string{"vegan"}}, nil, date, 3)

	optimizer := NewOptimizer(NewHeuristicParser(), nil)
	timeline, err := optimizer.OptimizeDay(context.Background(), plan, date)
	require.NoError(t, err)
	assert.Empty(t, timeline.Steps)
	assert.Zero(t, timeline.TotalMinutes)
}
