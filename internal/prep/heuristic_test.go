package prep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicParseClassifiesActions(t *testing.T) {
	parser := NewHeuristicParser()

	steps := []string{
		"Dice the onion finely",
		"Peel the carrots",
		"Boil the pasta for 10 minutes",
		"Bake in the oven for 25 minutes",
		"Serve with fresh basil",
	}
	parsed, err := parser.ParseSteps(context.Background(), RecipeContext{RecipeID: "r1"}, steps)
	require.NoError(t, err)
	require.Len(t, parsed, len(steps))

	assert.Equal(t, ActionChop, parsed[0].Action)
	assert.Equal(t, "onion", parsed[0].Ingredient)
	assert.True(t, parsed[0].Batchable)

	assert.Equal(t, ActionPeel, parsed[1].Action)
	assert.Equal(t, "carrots", parsed[1].Ingredient)

	assert.Equal(t, ActionBoil, parsed[2].Action)
	assert.Equal(t, 10, parsed[2].DurationMinutes)
	assert.Equal(t, ZoneStovetop, parsed[2].Zone)

	assert.Equal(t, ActionBake, parsed[3].Action)
	assert.Equal(t, ZoneOven, parsed[3].Zone)
	assert.True(t, parsed[3].Passive)
	assert.False(t, parsed[3].Batchable)

	assert.Equal(t, ActionServe, parsed[4].Action)
	assert.Equal(t, PhaseFinishing, parsed[4].Phase)
}

func TestHeuristicParseDescriptiveText(t *testing.T) {
	parser := NewHeuristicParser()

	parsed, err := parser.ParseSteps(context.Background(), RecipeContext{}, []string{
		"This dish tastes even better the next day",
		"Tip: chilling the dough makes it easier to roll",
		"Chop the garlic",
	})
	require.NoError(t, err)

	assert.False(t, parsed[0].Actionable)
	assert.Equal(t, ActionOther, parsed[0].Action)
	assert.False(t, parsed[0].Batchable)

	assert.False(t, parsed[1].Actionable)

	assert.True(t, parsed[2].Actionable)
	assert.Equal(t, ActionChop, parsed[2].Action)
}

func TestHeuristicParseDurations(t *testing.T) {
	parser := NewHeuristicParser()
	ctx := context.Background()

	parsed, err := parser.ParseSteps(ctx, RecipeContext{}, []string{
		"Marinate the chicken for 2 hours",
		"Simmer for 15-20 minutes",
		"Chop the celery",
	})
	require.NoError(t, err)

	assert.Equal(t, 120, parsed[0].DurationMinutes)
	assert.True(t, parsed[0].Passive)
	assert.Equal(t, ZoneHandsFree, parsed[0].Zone)

	assert.Equal(t, 15, parsed[1].DurationMinutes)

	// no time in text, per-action default
	assert.Equal(t, 5, parsed[2].DurationMinutes)
}

func TestHeuristicParseUnknownActionSplitsTotal(t *testing.T) {
	parser := NewHeuristicParser()

	parsed, err := parser.ParseSteps(context.Background(),
		RecipeContext{TotalMinutes: 40},
		[]string{
			"Arrange everything on the tray",
			"Flip halfway through",
		})
	require.NoError(t, err)

	for _, step := range parsed {
		assert.Equal(t, ActionOther, step.Action)
		assert.Equal(t, 20, step.DurationMinutes)
	}
}

func TestHeuristicParsePhaseByPosition(t *testing.T) {
	parser := NewHeuristicParser()

	steps := []string{
		"Get everything ready",
		"Put it all together",
		"Keep an eye on it",
		"Take a photo before eating",
	}
	parsed, err := parser.ParseSteps(context.Background(), RecipeContext{}, steps)
	require.NoError(t, err)

	assert.Equal(t, PhasePrep, parsed[0].Phase)
	assert.Equal(t, PhaseCooking, parsed[1].Phase)
	assert.Equal(t, PhaseCooking, parsed[2].Phase)
	assert.Equal(t, PhaseFinishing, parsed[3].Phase)
}

func TestHeuristicParseDeterministic(t *testing.T) {
	parser := NewHeuristicParser()
	steps := []string{"Mince the garlic", "Saute the garlic until golden"}

	first, err := parser.ParseSteps(context.Background(), RecipeContext{RecipeID: "r1"}, steps)
	require.NoError(t, err)
	second, err := parser.ParseSteps(context.Background(), RecipeContext{RecipeID: "r1"}, steps)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
