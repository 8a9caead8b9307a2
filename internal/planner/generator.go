package planner

import (
	"fmt"
	"math/rand"
	"time"

	"meal-scheduler/internal/recipe"
)

// Weights of the greedy reuse score. Overlap with already-selected recipes
// dominates; the recipe's own reuse affinity breaks near-ties.
const (
	overlapWeight  = 0.7
	affinityWeight = 0.3
)

// GenerateRequest describes one plan generation run.
type GenerateRequest struct {
	UserID          string
	Diet            recipe.DietProfile
	Exclusions      []string
	StartDate       time.Time
	Days            int
	PrioritizeReuse bool
}

// Generator builds multi-day meal plans from a recipe catalog.
type Generator struct {
	catalog *recipe.Catalog
	rng     *rand.Rand
}

// NewGenerator creates a Generator. The rand source is injectable so tests
// can pin the seed; selection randomness is limited to the initial greedy
// candidate and to uniform sampling when reuse is disabled.
func NewGenerator(catalog *recipe.Catalog, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{catalog: catalog, rng: rng}
}

// Generate produces a plan with one recipe per (day, meal-type) slot. Meal
// types without any eligible recipe are omitted; a plan with no slots at all
// is a NoCandidatesError.
func (g *Generator) Generate(req GenerateRequest) (*Plan, error) {
	if req.Days <= 0 {
		return nil, fmt.Errorf("day count must be positive, got %d", req.Days)
	}

	excluded := recipe.ExpandExclusions(req.Exclusions)
	plan := NewPlan(req.UserID, req.Diet, req.Exclusions, req.StartDate, req.Days)

	for _, mealType := range recipe.CoreMealTypes {
		candidates := g.catalog.Candidates(mealType, req.Diet, excluded)
		if len(candidates) == 0 {
			continue
		}

		selected := g.selectRecipes(candidates, req.Days, req.PrioritizeReuse)
		for day := 0; day < req.Days; day++ {
			if err := plan.AddSlot(MealSlot{
				Date:     plan.StartDate.AddDate(0, 0, day),
				MealType: mealType,
				Recipe:   selected[day],
				Status:   StatusPending,
			}); err != nil {
				return nil, err
			}
		}
	}

	if len(plan.Slots) == 0 {
		return nil, &NoCandidatesError{Diet: req.Diet}
	}
	return plan, nil
}

// selectRecipes picks needed recipes from the candidate list. Chosen recipes
// leave the pool so a meal type repeats only when the pool runs short, in
// which case the pool refills and duplicates are permitted.
func (g *Generator) selectRecipes(candidates []recipe.Recipe, needed int, prioritizeReuse bool) []recipe.Recipe {
	pool := make([]recipe.Recipe, len(candidates))
	copy(pool, candidates)

	var picks []recipe.Recipe
	for len(picks) < needed {
		if len(pool) == 0 {
			pool = make([]recipe.Recipe, len(candidates))
			copy(pool, candidates)
		}

		var idx int
		if !prioritizeReuse || len(picks) == 0 {
			// Uniform sampling; with reuse enabled this picks the greedy seed.
			idx = g.rng.Intn(len(pool))
		} else {
			idx = g.bestOverlapIndex(pool, picks)
		}

		picks = append(picks, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return picks
}

// bestOverlapIndex returns the pool index maximizing the greedy reuse
// score. Ties keep the earliest candidate so runs with a pinned seed are
// reproducible.
func (g *Generator) bestOverlapIndex(pool, picks []recipe.Recipe) int {
	pickSets := make([]map[string]struct{}, len(picks))
	for i, pick := range picks {
		pickSets[i] = pick.IngredientNames()
	}

	bestIdx := 0
	bestScore := -1.0
	for i, cand := range pool {
		candSet := cand.IngredientNames()

		var total float64
		for _, pickSet := range pickSets {
			total += jaccard(candSet, pickSet)
		}
		mean := total / float64(len(pickSets))

		score := overlapWeight*mean + affinityWeight*cand.ReuseAffinity
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}

// jaccard computes |a∩b| / |a∪b| over ingredient name sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for name := range a {
		if _, ok := b[name]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
