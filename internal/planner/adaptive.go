package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"meal-scheduler/internal/fridge"
	"meal-scheduler/internal/recipe"

	"go.uber.org/zap"
)

const (
	// Urgency tiers over days remaining.
	urgentWithinDays = 1
	soonWithinDays   = 2

	// A recipe over this prep time gets simplified after missed preps; the
	// replacement must come in under fastPrepLimit.
	simplifyThresholdMinutes = 25
	fastPrepLimitMinutes     = 20

	// The repaired plan always covers a fixed rolling window from the
	// current date. Hard-coded policy, not user-configurable here.
	adaptWindowDays = 3

	maxGroceryAdjustments = 3
)

// ChangeType tags an adaptation record.
type ChangeType string

const (
	ChangeReorder    ChangeType = "reorder"
	ChangeSubstitute ChangeType = "substitute"
	ChangeSimplify   ChangeType = "simplify"
	ChangeNone       ChangeType = "no-change"
)

// AdaptationRecord explains one change made while repairing a plan. Purely
// descriptive; never fed back into the plan.
type AdaptationRecord struct {
	Type   ChangeType `json:"type"`
	Date   time.Time  `json:"date"`
	Before string     `json:"before,omitempty"`
	After  string     `json:"after,omitempty"`
	Reason string     `json:"reason"`
}

// AdaptInput carries everything one repair run needs.
type AdaptInput struct {
	Plan        *Plan
	Inventory   []fridge.Item
	MissedDates []time.Time
	CurrentDate time.Time
	Exclusions  []string
}

// AdaptResult is the outcome of a repair run.
type AdaptResult struct {
	Plan                *Plan
	Log                 []AdaptationRecord
	GroceryAdjustments  []string
	PriorityIngredients []string
	RecoveryMinutes     int
}

// AdaptivePlanner repairs a plan around missed preps and expiring
// ingredients. Its decision policy runs in a fixed order so identical inputs
// always produce identical output.
type AdaptivePlanner struct {
	catalog *recipe.Catalog
	logger  *zap.Logger
}

// NewAdaptivePlanner creates an AdaptivePlanner over the catalog.
func NewAdaptivePlanner(catalog *recipe.Catalog, logger *zap.Logger) *AdaptivePlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdaptivePlanner{catalog: catalog, logger: logger}
}

// Adapt repairs the plan for the current date and returns the repaired plan
// over a fixed 3-day window, the adaptation log, grocery adjustments, the
// priority-ingredient list (urgent first, then soon) and the estimated
// recovery minutes.
func (a *AdaptivePlanner) Adapt(in AdaptInput) (AdaptResult, error) {
	if in.Plan == nil {
		return AdaptResult{}, ErrPlanNotFound
	}

	current := dateOnly(in.CurrentDate)
	missed := mergeMissedDates(in.MissedDates, in.Plan.MissedDates(current))
	urgent, soon := classifyUrgency(in.Inventory)
	priority := priorityNames(urgent, soon)

	// 1. Nothing missed and nothing urgent: the plan stands as-is.
	if len(missed) == 0 && len(urgent) == 0 {
		return AdaptResult{
			Plan:                in.Plan,
			Log:                 []AdaptationRecord{},
			PriorityIngredients: priority,
		}, nil
	}

	a.logger.Info("repairing plan",
		zap.String("plan", in.Plan.ID),
		zap.Int("missed_days", len(missed)),
		zap.Int("urgent_items", len(urgent)),
	)

	excluded := recipe.ExpandExclusions(in.Exclusions)
	var records []AdaptationRecord

	// 2. Substitute today's meal to consume the most urgent ingredients.
	remaining := urgent
	if len(urgent) > 0 {
		if record, rest, ok := a.substituteForUrgent(in.Plan, current, urgent, excluded); ok {
			records = append(records, record)
			remaining = rest
		}
	}

	// 3. Simplify slow meals in the next two days after missed preps.
	var recovery int
	if len(missed) > 0 {
		simplified, minutes := a.simplifyUpcoming(in.Plan, current, excluded)
		records = append(records, simplified...)
		recovery = minutes
	}

	// 4. Urgent ingredients no substitution consumed become shopping advice.
	adjustments := groceryAdjustments(remaining)

	// 5. A single reorder record summarizes the missed days, always first.
	if len(missed) > 0 {
		records = append([]AdaptationRecord{{
			Type: ChangeReorder,
			Date: current,
			Reason: fmt.Sprintf("%d missed prep day(s) folded into the next %d days",
				len(missed), adaptWindowDays),
		}}, records...)
	}

	// 6. The repaired plan covers a fixed rolling window from today.
	repaired := rebuildWindow(in.Plan, current)

	return AdaptResult{
		Plan:                repaired,
		Log:                 records,
		GroceryAdjustments:  adjustments,
		PriorityIngredients: priority,
		RecoveryMinutes:     recovery,
	}, nil
}

// substituteForUrgent looks for today's first slot whose meal type has a
// catalog recipe consuming urgent ingredients, swaps it in, and reports the
// urgent items still unconsumed. At most one substitution per run.
func (a *AdaptivePlanner) substituteForUrgent(
	plan *Plan,
	current time.Time,
	urgent []fridge.Item,
	excluded map[string]struct{},
) (AdaptationRecord, []fridge.Item, bool) {
	urgentNames := make([]string, len(urgent))
	for i, item := range urgent {
		urgentNames[i] = item.Name
	}

	for _, slot := range plan.SlotsOn(current) {
		best, matched := a.bestUrgentMatch(slot, urgentNames, plan.Diet, excluded)
		if best == nil {
			continue
		}

		record := AdaptationRecord{
			Type:   ChangeSubstitute,
			Date:   current,
			Before: slot.Recipe.Name,
			After:  best.Name,
			Reason: fmt.Sprintf("uses expiring: %s", strings.Join(matched, ", ")),
		}
		slot.Recipe = *best

		consumed := make(map[string]struct{}, len(matched))
		for _, name := range matched {
			consumed[name] = struct{}{}
		}
		var rest []fridge.Item
		for _, item := range urgent {
			if _, ok := consumed[item.Name]; !ok {
				rest = append(rest, item)
			}
		}
		return record, rest, true
	}
	return AdaptationRecord{}, urgent, false
}

// bestUrgentMatch finds the eligible recipe with the highest urgent-ingredient
// match count for the slot's meal type. Ties resolve by recipe name.
func (a *AdaptivePlanner) bestUrgentMatch(
	slot *MealSlot,
	urgentNames []string,
	diet recipe.DietProfile,
	excluded map[string]struct{},
) (*recipe.Recipe, []string) {
	var best *recipe.Recipe
	var bestMatched []string

	for _, cand := range a.catalog.Candidates(slot.MealType, diet, excluded) {
		if cand.ID == slot.Recipe.ID {
			continue
		}

		var matched []string
		for _, name := range urgentNames {
			if cand.UsesIngredient(name) {
				matched = append(matched, name)
			}
		}
		if len(matched) == 0 {
			continue
		}

		if best == nil ||
			len(matched) > len(bestMatched) ||
			(len(matched) == len(bestMatched) && cand.Name < best.Name) {
			c := cand
			best = &c
			bestMatched = matched
		}
	}
	return best, bestMatched
}

// simplifyUpcoming swaps slow pending meals within [current, current+1] for
// the fastest eligible alternative and accumulates the estimated recovery
// time. Fast meals accrue their own prep time without being swapped.
func (a *AdaptivePlanner) simplifyUpcoming(
	plan *Plan,
	current time.Time,
	excluded map[string]struct{},
) ([]AdaptationRecord, int) {
	var records []AdaptationRecord
	var recovery int

	for offset := 0; offset <= 1; offset++ {
		day := current.AddDate(0, 0, offset)
		for _, slot := range plan.SlotsOn(day) {
			if slot.Status != StatusPending {
				continue
			}

			if slot.Recipe.PrepTimeMinutes <= simplifyThresholdMinutes {
				recovery += slot.Recipe.PrepTimeMinutes
				continue
			}

			alt := a.fastestAlternative(slot, excluded)
			if alt == nil {
				recovery += slot.Recipe.PrepTimeMinutes
				continue
			}

			records = append(records, AdaptationRecord{
				Type:   ChangeSimplify,
				Date:   day,
				Before: slot.Recipe.Name,
				After:  alt.Name,
				Reason: fmt.Sprintf("%d min instead of %d min to catch up",
					alt.PrepTimeMinutes, slot.Recipe.PrepTimeMinutes),
			})
			slot.Recipe = *alt
			recovery += alt.PrepTimeMinutes
		}
	}
	return records, recovery
}

// fastestAlternative finds the quickest same-meal-type recipe sharing at
// least one diet tag with the slot's recipe, under the fast-prep limit.
func (a *AdaptivePlanner) fastestAlternative(slot *MealSlot, excluded map[string]struct{}) *recipe.Recipe {
	var candidates []recipe.Recipe
	for _, cand := range a.catalog.All() {
		if cand.MealType != slot.MealType || cand.ID == slot.Recipe.ID {
			continue
		}
		if cand.PrepTimeMinutes > fastPrepLimitMinutes {
			continue
		}
		if !cand.SharesDietTag(slot.Recipe) {
			continue
		}
		if cand.ContainsExcluded(excluded) {
			continue
		}
		candidates = append(candidates, cand)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PrepTimeMinutes != candidates[j].PrepTimeMinutes {
			return candidates[i].PrepTimeMinutes < candidates[j].PrepTimeMinutes
		}
		return candidates[i].Name < candidates[j].Name
	})
	return &candidates[0]
}

// classifyUrgency splits inventory into urgent (expiring within a day) and
// soon (one to two days), each sorted by days remaining then name.
func classifyUrgency(inventory []fridge.Item) (urgent, soon []fridge.Item) {
	for _, item := range inventory {
		switch {
		case item.DaysRemaining <= 0:
			// Already spoiled; decay prunes these.
		case item.DaysRemaining <= urgentWithinDays:
			urgent = append(urgent, item)
		case item.DaysRemaining <= soonWithinDays:
			soon = append(soon, item)
		}
	}

	byUrgency := func(items []fridge.Item) func(i, j int) bool {
		return func(i, j int) bool {
			if items[i].DaysRemaining != items[j].DaysRemaining {
				return items[i].DaysRemaining < items[j].DaysRemaining
			}
			return items[i].Name < items[j].Name
		}
	}
	sort.Slice(urgent, byUrgency(urgent))
	sort.Slice(soon, byUrgency(soon))
	return urgent, soon
}

func priorityNames(urgent, soon []fridge.Item) []string {
	names := make([]string, 0, len(urgent)+len(soon))
	for _, item := range urgent {
		names = append(names, item.Name)
	}
	for _, item := range soon {
		names = append(names, item.Name)
	}
	return names
}

func groceryAdjustments(unconsumed []fridge.Item) []string {
	var adjustments []string
	for _, item := range unconsumed {
		if len(adjustments) == maxGroceryAdjustments {
			break
		}
		adjustments = append(adjustments, fmt.Sprintf(
			"%s expires in %d day(s): use it or freeze it", item.Name, item.DaysRemaining))
	}
	return adjustments
}

// mergeMissedDates unions the caller-supplied missed dates with the ones
// derived from the plan, deduplicated and ascending.
func mergeMissedDates(provided, derived []time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, date := range provided {
		seen[dateOnly(date)] = struct{}{}
	}
	for _, date := range derived {
		seen[dateOnly(date)] = struct{}{}
	}

	dates := make([]time.Time, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// rebuildWindow reconstructs the plan over [current, current+adaptWindowDays-1],
// keeping slot statuses. Days beyond the window are dropped.
func rebuildWindow(plan *Plan, current time.Time) *Plan {
	end := current.AddDate(0, 0, adaptWindowDays-1)
	repaired := &Plan{
		ID:         plan.ID,
		UserID:     plan.UserID,
		Diet:       plan.Diet,
		Exclusions: append([]string(nil), plan.Exclusions...),
		StartDate:  current,
		EndDate:    end,
	}
	for _, slot := range plan.Slots {
		if slot.Date.Before(current) || slot.Date.After(end) {
			continue
		}
		repaired.Slots = append(repaired.Slots, slot)
	}
	return repaired
}
