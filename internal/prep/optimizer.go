package prep

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"meal-scheduler/internal/planner"
)

// TimelineStep is one entry of an optimized day schedule. A merged step
// covers the same work for several recipes at once.
type TimelineStep struct {
	Order           int        `json:"order"`
	Description     string     `json:"description"`
	Action          ActionType `json:"action"`
	Zone            Zone       `json:"zone"`
	Phase           Phase      `json:"phase"`
	Passive         bool       `json:"passive"`
	DurationMinutes int        `json:"duration_minutes"`
	Recipes         []string   `json:"recipes"`
	Merged          bool       `json:"merged"`
	SavedMinutes    int        `json:"saved_minutes,omitempty"`
}

// DayTimeline is the batched prep schedule for one day of a plan.
type DayTimeline struct {
	Date          time.Time      `json:"date"`
	Steps         []TimelineStep `json:"steps"`
	TotalMinutes  int            `json:"total_minutes"`
	SavedMinutes  int            `json:"saved_minutes"`
	RecipesServed []string       `json:"recipes_served"`
}

// Optimizer batches equivalent hands-on steps across the recipes cooked on
// the same day.
type Optimizer struct {
	parser StepParser
	logger *zap.Logger
}

// NewOptimizer creates an Optimizer on top of the given step parser.
func NewOptimizer(parser StepParser, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{parser: parser, logger: logger}
}

type sourcedStep struct {
	step       ParsedStep
	recipeName string
}

// OptimizeDay parses every recipe scheduled on date and merges batchable
// steps that share an action and ingredient. Merged steps come first, then
// the remaining steps in their original order. A merged step takes as long
// as its slowest member; the rest of the member time is reported as saved.
func (o *Optimizer) OptimizeDay(ctx context.Context, plan *planner.Plan, date time.Time) (DayTimeline, error) {
	timeline := DayTimeline{Date: date}

	slots := plan.SlotsOn(date)
	if len(slots) == 0 {
		return timeline, nil
	}

	var all []sourcedStep
	for _, slot := range slots {
		rec := slot.Recipe
		parsed, err := o.parser.ParseSteps(ctx, RecipeContext{
			RecipeID:     rec.ID,
			RecipeName:   rec.Name,
			TotalMinutes: rec.PrepTimeMinutes,
		}, rec.Steps)
		if err != nil {
			return DayTimeline{}, fmt.Errorf("failed to parse steps for %s: %w", rec.Name, err)
		}
		timeline.RecipesServed = append(timeline.RecipesServed, rec.Name)
		for _, step := range parsed {
			if !step.Actionable {
				continue
			}
			all = append(all, sourcedStep{step: step, recipeName: rec.Name})
		}
	}

	groups, order := groupBatchable(all)

	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		merged := mergeGroup(members)
		timeline.Steps = append(timeline.Steps, merged)
		timeline.SavedMinutes += merged.SavedMinutes
	}

	for _, src := range all {
		if len(groups[batchKey(src.step)]) > 1 {
			continue
		}
		timeline.Steps = append(timeline.Steps, TimelineStep{
			Description:     src.step.Text,
			Action:          src.step.Action,
			Zone:            src.step.Zone,
			Phase:           src.step.Phase,
			Passive:         src.step.Passive,
			DurationMinutes: src.step.DurationMinutes,
			Recipes:         []string{src.recipeName},
		})
	}

	for i := range timeline.Steps {
		timeline.Steps[i].Order = i + 1
		timeline.TotalMinutes += timeline.Steps[i].DurationMinutes
	}

	o.logger.Info("optimized day timeline",
		zap.String("plan_id", plan.ID),
		zap.Time("date", date),
		zap.Int("steps", len(timeline.Steps)),
		zap.Int("saved_minutes", timeline.SavedMinutes),
	)
	return timeline, nil
}

// batchKey groups steps that represent the same physical work. Non-batchable
// steps get a unique key so they never merge.
func batchKey(step ParsedStep) string {
	if !step.Batchable {
		return ""
	}
	if step.Ingredient == "" {
		return string(step.Action)
	}
	return string(step.Action) + "_" + step.Ingredient
}

func groupBatchable(all []sourcedStep) (map[string][]sourcedStep, []string) {
	groups := make(map[string][]sourcedStep)
	var order []string
	for _, src := range all {
		key := batchKey(src.step)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], src)
	}
	return groups, order
}

func mergeGroup(members []sourcedStep) TimelineStep {
	first := members[0].step

	longest := 0
	total := 0
	recipes := make([]string, 0, len(members))
	var ingredients []string
	seenIngredient := make(map[string]struct{})

	for _, m := range members {
		total += m.step.DurationMinutes
		if m.step.DurationMinutes > longest {
			longest = m.step.DurationMinutes
		}
		recipes = append(recipes, m.recipeName)
		if m.step.Ingredient != "" {
			if _, seen := seenIngredient[m.step.Ingredient]; !seen {
				seenIngredient[m.step.Ingredient] = struct{}{}
				ingredients = append(ingredients, m.step.Ingredient)
			}
		}
	}

	return TimelineStep{
		Description:     mergeDescription(first.Action, ingredients, len(members)),
		Action:          first.Action,
		Zone:            first.Zone,
		Phase:           first.Phase,
		Passive:         first.Passive,
		DurationMinutes: longest,
		Recipes:         recipes,
		Merged:          true,
		SavedMinutes:    total - longest,
	}
}

func mergeDescription(action ActionType, ingredients []string, recipes int) string {
	subject := fmt.Sprintf("%d recipes", recipes)
	if n := len(ingredients); n > 0 && n <= 3 {
		subject = strings.Join(ingredients, ", ")
	}
	verb := string(action)
	if verb != "" {
		verb = strings.ToUpper(verb[:1]) + verb[1:]
	}
	return fmt.Sprintf("%s %s once for all recipes", verb, subject)
}
