package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-scheduler/internal/recipe"
)

func TestPlanAddSlotRejectsDuplicates(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := NewPlan("alice", recipe.Diet("vegan"), nil, start, 2)

	slot := MealSlot{Date: start, MealType: recipe.MealLunch, Status: StatusPending}
	require.NoError(t, plan.AddSlot(slot))
	assert.Error(t, plan.AddSlot(slot))

	// same meal type on another day is fine
	slot.Date = start.AddDate(0, 0, 1)
	assert.NoError(t, plan.AddSlot(slot))
}

func TestSlotStateMachine(t *testing.T) {
	now := time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC)
	slot := &MealSlot{Status: StatusPending}

	require.NoError(t, slot.MarkDone(now))
	assert.Equal(t, StatusDone, slot.Status)
	require.NotNil(t, slot.CompletedAt)
	assert.Equal(t, now, *slot.CompletedAt)

	// DONE is terminal
	assert.ErrorIs(t, slot.MarkDone(now), ErrSlotFinalized)
	assert.ErrorIs(t, slot.MarkSkipped(), ErrSlotFinalized)

	skipped := &MealSlot{Status: StatusPending}
	require.NoError(t, skipped.MarkSkipped())
	assert.ErrorIs(t, skipped.MarkDone(now), ErrSlotFinalized)
	assert.Nil(t, skipped.CompletedAt)
}

func TestPlanSlotAtNotFound(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := NewPlan("alice", recipe.Diet("vegan"), nil, start, 1)

	_, err := plan.SlotAt(start, recipe.MealDinner)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestPlanSlotsOnMealTypeOrder(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := NewPlan("alice", recipe.Diet("vegan"), nil, start, 1)

	require.NoError(t, plan.AddSlot(MealSlot{Date: start, MealType: recipe.MealDinner}))
	require.NoError(t, plan.AddSlot(MealSlot{Date: start, MealType: recipe.MealBreakfast}))
	require.NoError(t, plan.AddSlot(MealSlot{Date: start, MealType: recipe.MealLunch}))

	slots := plan.SlotsOn(start)
	require.Len(t, slots, 3)
	assert.Equal(t, recipe.MealBreakfast, slots[0].MealType)
	assert.Equal(t, recipe.MealLunch, slots[1].MealType)
	assert.Equal(t, recipe.MealDinner, slots[2].MealType)
}

func TestPlanMissedDates(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := NewPlan("alice", recipe.Diet("vegan"), nil, start, 4)

	for day := 0; day < 4; day++ {
		require.NoError(t, plan.AddSlot(MealSlot{
			Date:     start.AddDate(0, 0, day),
			MealType: recipe.MealDinner,
			Status:   StatusPending,
		}))
	}

	// day 0 done, day 1 skipped, day 2 pending, day 3 in the future
	require.NoError(t, plan.Slots[0].MarkDone(start))
	require.NoError(t, plan.Slots[1].MarkSkipped())

	missed := plan.MissedDates(start.AddDate(0, 0, 3))
	require.Len(t, missed, 2)
	assert.Equal(t, start.AddDate(0, 0, 1), missed[0])
	assert.Equal(t, start.AddDate(0, 0, 2), missed[1])

	// nothing before the plan started
	assert.Empty(t, plan.MissedDates(start))
}

func TestPlanDuplicate(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	plan := NewPlan("alice", recipe.Diet("vegan"), []string{"dairy"}, start, 2)
	require.NoError(t, plan.AddSlot(MealSlot{Date: start, MealType: recipe.MealLunch, Status: StatusPending}))
	require.NoError(t, plan.Slots[0].MarkDone(start))

	dup := plan.Duplicate(7)

	assert.NotEqual(t, plan.ID, dup.ID)
	assert.Equal(t, plan.UserID, dup.UserID)
	assert.Equal(t, plan.Exclusions, dup.Exclusions)
	assert.Equal(t, start.AddDate(0, 0, 7), dup.StartDate)
	require.Len(t, dup.Slots, 1)
	assert.Equal(t, start.AddDate(0, 0, 7), dup.Slots[0].Date)
	assert.Equal(t, StatusPending, dup.Slots[0].Status)
	assert.Nil(t, dup.Slots[0].CompletedAt)
}

func TestNewPlanNormalizesDates(t *testing.T) {
	noisy := time.Date(2025, 6, 2, 14, 45, 12, 0, time.UTC)
	plan := NewPlan("alice", recipe.Diet("vegan"), nil, noisy, 3)

	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), plan.StartDate)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), plan.EndDate)
}
