package prep

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// HeuristicParser classifies instructions by ordered keyword matching. It is
// pure, deterministic and never fails; it also backs the semantic parser
// when the completion service degrades.
type HeuristicParser struct{}

// NewHeuristicParser creates a HeuristicParser.
func NewHeuristicParser() *HeuristicParser {
	return &HeuristicParser{}
}

// descriptivePatterns mark text that explains rather than instructs. A step
// starting with or containing one of these is non-actionable.
var descriptivePrefixes = []string{
	"this ", "these ", "that ", "the reason", "note:", "tip:", "why ",
	"don't worry", "you can also", "for best results", "optionally,",
}

var descriptivePhrases = []string{
	"the secret is", "it works because", "this helps", "is important because",
	"the key to", "makes all the difference",
}

// actionKeywords maps surface verbs to canonical actions, in match order:
// the first keyword found in the text decides the action.
var actionKeywords = []struct {
	keyword string
	action  ActionType
}{
	{"preheat", ActionPreheat},
	{"dice", ActionChop},
	{"mince", ActionChop},
	{"slice", ActionChop},
	{"cube", ActionChop},
	{"julienne", ActionChop},
	{"shred", ActionChop},
	{"grate", ActionChop},
	{"chop", ActionChop},
	{"peel", ActionPeel},
	{"rinse", ActionWash},
	{"wash", ActionWash},
	{"measure", ActionMeasure},
	{"weigh", ActionMeasure},
	{"marinate", ActionMarinate},
	{"soak", ActionMarinate},
	{"brine", ActionMarinate},
	{"whisk", ActionMix},
	{"stir", ActionMix},
	{"combine", ActionMix},
	{"fold", ActionMix},
	{"beat", ActionMix},
	{"toss", ActionMix},
	{"mix", ActionMix},
	{"season", ActionSeason},
	{"sprinkle", ActionSeason},
	{"parboil", ActionBoil},
	{"blanch", ActionBoil},
	{"boil", ActionBoil},
	{"simmer", ActionSimmer},
	{"stew", ActionSimmer},
	{"saute", ActionFry},
	{"sauté", ActionFry},
	{"sear", ActionFry},
	{"brown", ActionFry},
	{"fry", ActionFry},
	{"roast", ActionBake},
	{"broil", ActionBake},
	{"bake", ActionBake},
	{"grill", ActionGrill},
	{"steam", ActionSteam},
	{"melt", ActionHeat},
	{"warm", ActionHeat},
	{"heat", ActionHeat},
	{"refrigerate", ActionRest},
	{"chill", ActionRest},
	{"cool", ActionRest},
	{"rest", ActionRest},
	{"strain", ActionDrain},
	{"drain", ActionDrain},
	{"garnish", ActionServe},
	{"plate", ActionServe},
	{"serve", ActionServe},
}

// batchableActions is the fixed allow-list: a step batches across recipes
// only when its action is listed here and an ingredient was extracted.
var batchableActions = map[ActionType]struct{}{
	ActionChop:    {},
	ActionPeel:    {},
	ActionWash:    {},
	ActionMeasure: {},
	ActionMix:     {},
	ActionSeason:  {},
	ActionBoil:    {},
}

// Zone keyword families, checked in precedence order
// oven > stovetop > hands-free; everything else is the prep area.
var (
	ovenKeywords      = []string{"oven", "bake", "roast", "broil", "preheat"}
	stovetopKeywords  = []string{"stove", "pan", "skillet", "pot", "boil", "simmer", "fry", "saute", "sauté", "sear", "heat", "melt", "steam"}
	handsFreeKeywords = []string{"rest", "chill", "refrigerate", "marinate", "soak", "rise", "cool", "freeze"}
)

var passiveKeywords = []string{
	"marinate", "rest", "chill", "refrigerate", "soak", "rise", "cool",
	"bake", "roast", "freeze", "preheat",
}

var (
	prepPhaseKeywords      = []string{"chop", "dice", "mince", "slice", "wash", "rinse", "peel", "measure", "marinate", "preheat", "cut", "grate"}
	cookingPhaseKeywords   = []string{"boil", "simmer", "fry", "saute", "sauté", "bake", "roast", "grill", "steam", "sear", "cook", "heat"}
	finishingPhaseKeywords = []string{"serve", "garnish", "plate", "drizzle", "top with", "finish"}
)

// Position-ratio phase fallback: first 40% of steps are prep, the next 45%
// cooking, the remainder finishing.
const (
	prepPhaseRatio    = 0.40
	cookingPhaseRatio = 0.85
)

// defaultDurations estimates minutes per action when the text names none.
var defaultDurations = map[ActionType]int{
	ActionChop:     5,
	ActionPeel:     3,
	ActionWash:     2,
	ActionMeasure:  2,
	ActionMix:      3,
	ActionMarinate: 30,
	ActionSeason:   1,
	ActionBoil:     10,
	ActionSimmer:   15,
	ActionFry:      8,
	ActionBake:     30,
	ActionGrill:    10,
	ActionSteam:    10,
	ActionPreheat:  10,
	ActionHeat:     3,
	ActionRest:     10,
	ActionDrain:    2,
	ActionServe:    2,
}

const minimumStepMinutes = 2

// ingredientStopwords filters articles, units and adjectives when pulling
// the ingredient token that follows the matched keyword.
var ingredientStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "all": {}, "of": {}, "your": {}, "each": {},
	"some": {}, "into": {}, "until": {}, "and": {}, "then": {}, "to": {},
	"in": {}, "on": {}, "with": {}, "for": {}, "it": {}, "them": {}, "up": {},
	"over": {}, "well": {}, "together": {}, "gently": {}, "thoroughly": {},
	"cup": {}, "cups": {}, "tbsp": {}, "tsp": {}, "g": {}, "kg": {}, "ml": {},
	"l": {}, "grams": {}, "minutes": {}, "minute": {}, "mins": {}, "min": {},
	"fresh": {}, "large": {}, "small": {}, "medium": {}, "finely": {},
	"coarsely": {}, "thinly": {}, "roughly": {}, "diced": {}, "chopped": {},
	"sliced": {}, "remaining": {}, "cooked": {}, "cold": {}, "hot": {},
	"warm": {}, "dry": {}, "ripe": {},
}

var (
	minutesPattern = regexp.MustCompile(`(\d+)\s*(?:-\s*\d+\s*)?min(?:ute)?s?\b`)
	hoursPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-\s*\d+(?:\.\d+)?\s*)?h(?:ou)?rs?\b`)
	tokenPattern   = regexp.MustCompile(`[a-zà-ÿ_]+`)
)

// ParseSteps classifies every instruction, order preserved. The error is
// always nil; it exists to satisfy the shared parser contract.
func (p *HeuristicParser) ParseSteps(_ context.Context, rc RecipeContext, steps []string) ([]ParsedStep, error) {
	parsed := make([]ParsedStep, len(steps))
	for i, text := range steps {
		parsed[i] = p.parseStep(rc, text, i, len(steps))
	}
	return parsed, nil
}

func (p *HeuristicParser) parseStep(rc RecipeContext, text string, index, total int) ParsedStep {
	lower := strings.ToLower(strings.TrimSpace(text))

	if isDescriptive(lower) {
		return ParsedStep{
			Action:     ActionOther,
			Zone:       ZonePrepArea,
			Phase:      phaseByPosition(index, total),
			Text:       text,
			Source:     SourceHeuristic,
			Actionable: false,
		}
	}

	action, keyword := matchAction(lower)
	ingredient := extractIngredient(lower, keyword)

	_, allowed := batchableActions[action]
	return ParsedStep{
		Action:          action,
		Ingredient:      ingredient,
		Batchable:       allowed && ingredient != "",
		Zone:            classifyZone(lower),
		Passive:         containsAny(lower, passiveKeywords),
		Phase:           classifyPhase(lower, index, total),
		DurationMinutes: estimateDuration(lower, action, rc, total),
		Text:            text,
		Source:          SourceHeuristic,
		Actionable:      true,
	}
}

func isDescriptive(lower string) bool {
	for _, prefix := range descriptivePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, phrase := range descriptivePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// matchAction returns the first keyword hit and its canonical action.
func matchAction(lower string) (ActionType, string) {
	bestIdx := -1
	var bestAction ActionType
	var bestKeyword string
	for _, entry := range actionKeywords {
		idx := strings.Index(lower, entry.keyword)
		if idx < 0 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			bestAction = entry.action
			bestKeyword = entry.keyword
		}
	}
	if bestIdx == -1 {
		return ActionOther, ""
	}
	return bestAction, bestKeyword
}

// extractIngredient pulls the first meaningful token after the matched
// keyword.
func extractIngredient(lower, keyword string) string {
	if keyword == "" {
		return ""
	}
	idx := strings.Index(lower, keyword)
	if idx < 0 {
		return ""
	}

	rest := lower[idx+len(keyword):]
	for _, token := range tokenPattern.FindAllString(rest, 8) {
		if _, skip := ingredientStopwords[token]; skip {
			continue
		}
		return token
	}
	return ""
}

func classifyZone(lower string) Zone {
	switch {
	case containsAny(lower, ovenKeywords):
		return ZoneOven
	case containsAny(lower, stovetopKeywords):
		return ZoneStovetop
	case containsAny(lower, handsFreeKeywords):
		return ZoneHandsFree
	default:
		return ZonePrepArea
	}
}

func classifyPhase(lower string, index, total int) Phase {
	switch {
	case containsAny(lower, finishingPhaseKeywords):
		return PhaseFinishing
	case containsAny(lower, cookingPhaseKeywords):
		return PhaseCooking
	case containsAny(lower, prepPhaseKeywords):
		return PhasePrep
	default:
		return phaseByPosition(index, total)
	}
}

func phaseByPosition(index, total int) Phase {
	if total <= 0 {
		return PhasePrep
	}
	ratio := float64(index+1) / float64(total)
	switch {
	case ratio <= prepPhaseRatio:
		return PhasePrep
	case ratio <= cookingPhaseRatio:
		return PhaseCooking
	default:
		return PhaseFinishing
	}
}

// estimateDuration prefers an explicit time in the text, then the per-action
// default, then an even split of the recipe's total time.
func estimateDuration(lower string, action ActionType, rc RecipeContext, total int) int {
	minutes := 0
	if m := hoursPattern.FindStringSubmatch(lower); m != nil {
		if hours, err := strconv.ParseFloat(m[1], 64); err == nil {
			minutes += int(hours * 60)
		}
	}
	if m := minutesPattern.FindStringSubmatch(lower); m != nil {
		if mins, err := strconv.Atoi(m[1]); err == nil {
			minutes += mins
		}
	}
	if minutes > 0 {
		return minutes
	}

	if d, ok := defaultDurations[action]; ok {
		return d
	}

	if rc.TotalMinutes > 0 && total > 0 {
		if split := rc.TotalMinutes / total; split > minimumStepMinutes {
			return split
		}
	}
	return minimumStepMinutes
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
