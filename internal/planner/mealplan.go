package planner

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"meal-scheduler/internal/recipe"

	"github.com/google/uuid"
)

var (
	// ErrPlanNotFound signals a lookup for a plan that does not exist.
	ErrPlanNotFound = errors.New("meal plan not found")
	// ErrSlotNotFound signals a lookup for a (date, meal-type) pair the plan
	// does not schedule.
	ErrSlotNotFound = errors.New("meal slot not found")
	// ErrSlotFinalized signals a status transition on a DONE or SKIPPED slot.
	ErrSlotFinalized = errors.New("meal slot already finalized")
)

// NoCandidatesError reports a diet/exclusion combination for which no plan
// can be generated at all.
type NoCandidatesError struct {
	Diet recipe.DietProfile
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no eligible recipes for diet profile %v", e.Diet.Tags)
}

/// PrepStatus is the prep-state machine of a slot: PENDING is the only
// non-terminal state.
type PrepStatus string

const (
	StatusPending PrepStatus = "PENDING"
	StatusDone    PrepStatus = "DONE"
	StatusSkipped PrepStatus = "SKIPPED"
)

// MealSlot assigns one recipe to a (date, meal-type) pair. The recipe may be
// swapped without changing the slot's identity.
type MealSlot struct {
	Date        time.Time       `json:"date"`
	MealType    recipe.MealType `json:"meal_type"`
	Recipe      recipe.Recipe   `json:"recipe"`
	Status      PrepStatus      `json:"status"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// MarkDone transitions the slot to DONE with a completion timestamp.
func (s *MealSlot) MarkDone(at time.Time) error {
	if s.Status != StatusPending {
		return ErrSlotFinalized
	}
	s.Status = StatusDone
	s.CompletedAt = &at
	return nil
}

// MarkSkipped transitions the slot to SKIPPED.
func (s *MealSlot) MarkSkipped() error {
	if s.Status != StatusPending {
		return ErrSlotFinalized
	}
	s.Status = StatusSkipped
	return nil
}

// Plan is an ordered collection of meal slots for one user and diet profile.
// Invariant: at most one slot per (date, meal-type) pair.
type Plan struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	Diet       recipe.DietProfile `json:"diet"`
	Exclusions []string           `json:"exclusions,omitempty"`
	StartDate  time.Time          `json:"start_date"`
	EndDate    time.Time          `json:"end_date"`
	Slots      []MealSlot         `json:"slots"`
}

// NewPlan creates an empty plan covering [start, start+days-1].
func NewPlan(userID string, diet recipe.DietProfile, exclusions []string, start time.Time, days int) *Plan {
	start = dateOnly(start)
	return &Plan{
		ID:         uuid.NewString(),
		UserID:     userID,
		Diet:       diet,
		Exclusions: exclusions,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, days-1),
	}
}

// AddSlot appends a slot, enforcing the one-slot-per-(date, meal-type)
// invariant.
func (p *Plan) AddSlot(slot MealSlot) error {
	slot.Date = dateOnly(slot.Date)
	for _, existing := range p.Slots {
		if existing.Date.Equal(slot.Date) && existing.MealType == slot.MealType {
			return fmt.Errorf("duplicate slot for %s %s", slot.Date.Format("2006-01-02"), slot.MealType)
		}
	}
	p.Slots = append(p.Slots, slot)
	return nil
}

// SlotAt returns the slot for the given (date, meal-type) pair.
func (p *Plan) SlotAt(date time.Time, mealType recipe.MealType) (*MealSlot, error) {
	date = dateOnly(date)
	for i := range p.Slots {
		if p.Slots[i].Date.Equal(date) && p.Slots[i].MealType == mealType {
			return &p.Slots[i], nil
		}
	}
	return nil, ErrSlotNotFound
}

// SlotsOn returns the slots scheduled for a date in core meal-type order.
func (p *Plan) SlotsOn(date time.Time) []*MealSlot {
	date = dateOnly(date)
	var slots []*MealSlot
	for _, mealType := range recipe.CoreMealTypes {
		for i := range p.Slots {
			if p.Slots[i].Date.Equal(date) && p.Slots[i].MealType == mealType {
				slots = append(slots, &p.Slots[i])
			}
		}
	}
	return slots
}

// Recipes returns every scheduled recipe, one entry per slot.
func (p *Plan) Recipes() []recipe.Recipe {
	recipes := make([]recipe.Recipe, 0, len(p.Slots))
	for _, slot := range p.Slots {
		recipes = append(recipes, slot.Recipe)
	}
	return recipes
}

// MissedDates returns the distinct dates strictly before current that still
// have PENDING or SKIPPED slots, ascending.
func (p *Plan) MissedDates(current time.Time) []time.Time {
	current = dateOnly(current)
	seen := make(map[time.Time]struct{})
	for _, slot := range p.Slots {
		if !slot.Date.Before(current) {
			continue
		}
		if slot.Status == StatusPending || slot.Status == StatusSkipped {
			seen[slot.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Duplicate returns a date-shifted full copy with a fresh ID and every slot
// reset to PENDING.
func (p *Plan) Duplicate(shiftDays int) *Plan {
	dup := &Plan{
		ID:         uuid.NewString(),
		UserID:     p.UserID,
		Diet:       p.Diet,
		Exclusions: append([]string(nil), p.Exclusions...),
		StartDate:  p.StartDate.AddDate(0, 0, shiftDays),
		EndDate:    p.EndDate.AddDate(0, 0, shiftDays),
	}
	for _, slot := range p.Slots {
		dup.Slots = append(dup.Slots, MealSlot{
			Date:     slot.Date.AddDate(0, 0, shiftDays),
			MealType: slot.MealType,
			Recipe:   slot.Recipe,
			Status:   StatusPending,
		})
	}
	return dup
}

func dateOnly(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
