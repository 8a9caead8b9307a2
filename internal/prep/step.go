package prep

import "context"

// ActionType is a canonical cooking action. Many surface verbs map onto one
// action (dice/mince/slice/cube all become chop).
type ActionType string

const (
	ActionChop     ActionType = "chop"
	ActionPeel     ActionType = "peel"
	ActionWash     ActionType = "wash"
	ActionMeasure  ActionType = "measure"
	ActionMix      ActionType = "mix"
	ActionMarinate ActionType = "marinate"
	ActionSeason   ActionType = "season"
	ActionBoil     ActionType = "boil"
	ActionSimmer   ActionType = "simmer"
	ActionFry      ActionType = "fry"
	ActionBake     ActionType = "bake"
	ActionGrill    ActionType = "grill"
	ActionSteam    ActionType = "steam"
	ActionPreheat  ActionType = "preheat"
	ActionHeat     ActionType = "heat"
	ActionRest     ActionType = "rest"
	ActionDrain    ActionType = "drain"
	ActionServe    ActionType = "serve"
	ActionOther    ActionType = "other"
)

// Zone tags which part of the kitchen a step occupies.
type Zone string

const (
	ZoneOven      Zone = "oven"
	ZoneStovetop  Zone = "stovetop"
	ZoneHandsFree Zone = "hands-free"
	ZonePrepArea  Zone = "prep-area"
)

// Phase tags where in the cooking flow a step belongs.
type Phase string

const (
	PhasePrep      Phase = "prep"
	PhaseCooking   Phase = "cooking"
	PhaseFinishing Phase = "finishing"
)

// Parser provenance values.
const (
	SourceHeuristic = "heuristic"
	SourceSemantic  = "semantic"
)

// ParsedStep is the normalized form of one free-text instruction. Derived
// and ephemeral: recomputed per request, cacheable per (recipe, step text).
type ParsedStep struct {
	Action          ActionType `json:"action"`
	Ingredient      string     `json:"ingredient,omitempty"`
	Batchable       bool       `json:"batchable"`
	Zone            Zone       `json:"zone"`
	Passive         bool       `json:"passive"`
	Phase           Phase      `json:"phase"`
	DurationMinutes int        `json:"duration_minutes"`
	Text            string     `json:"text"`
	Source          string     `json:"source"`
	// Actionable is false for descriptive text that instructs nothing;
	// such steps carry zero duration and are dropped downstream.
	Actionable bool `json:"actionable"`
}

// RecipeContext gives a parser the surrounding recipe's identity and timing.
type RecipeContext struct {
	RecipeID     string
	RecipeName   string
	TotalMinutes int
}

// StepParser converts a recipe's raw instruction strings into parsed steps,
// one per input, order preserved. Implementations are interchangeable; the
// caller wires one in at construction time.
type StepParser interface {
	ParseSteps(ctx context.Context, rc RecipeContext, steps []string) ([]ParsedStep, error)
}
