package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-scheduler/internal/clipper"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/feed"
	"meal-scheduler/internal/fridge"
	"meal-scheduler/internal/llm"
	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/planner"
	"meal-scheduler/internal/prep"
	"meal-scheduler/internal/recipe"
	"meal-scheduler/internal/storage"
)

// Pause between feed imports to stay under free-tier LLM rate limits.
const importThrottle = 5 * time.Second

// App wires the planning pipeline together and exposes one method per
// user-facing operation.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	feedClient   feed.Client
	textGen      llm.TextGenerator
	recipeRepo   *recipe.Repository
	recipeStore  *storage.RecipeStore
	planRepo     *planner.PlanRepository
	fridgeRepo   *fridge.Repository
	tracker      *fridge.Tracker
	metricsStore *metrics.Store
	clipper      *clipper.Clipper
	parser       prep.StepParser
	optimizer    *prep.Optimizer
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	logger *zap.Logger,
	feedClient feed.Client,
	textGen llm.TextGenerator,
	recipeRepo *recipe.Repository,
	recipeStore *storage.RecipeStore,
	planRepo *planner.PlanRepository,
	fridgeRepo *fridge.Repository,
	tracker *fridge.Tracker,
	metricsStore *metrics.Store,
	recipeClipper *clipper.Clipper,
	parser prep.StepParser,
) *App {
	return &App{
		cfg:          cfg,
		logger:       logger,
		feedClient:   feedClient,
		textGen:      textGen,
		recipeRepo:   recipeRepo,
		recipeStore:  recipeStore,
		planRepo:     planRepo,
		fridgeRepo:   fridgeRepo,
		tracker:      tracker,
		metricsStore: metricsStore,
		clipper:      recipeClipper,
		parser:       parser,
		optimizer:    prep.NewOptimizer(parser, logger),
	}
}

// ImportRecipes fetches posts from the recipe feed, normalizes each into a
// structured recipe and persists it to the database and the versioned file
// store. Posts already imported at the same revision are skipped.
func (a *App) ImportRecipes(ctx context.Context) error {
	posts, err := a.feedClient.FetchRecipes()
	if err != nil {
		return fmt.Errorf("failed to fetch recipes from feed: %w", err)
	}
	a.logger.Info("fetched recipe posts", zap.Int("count", len(posts)))

	imported := 0
	for _, post := range posts {
		if a.recipeStore.Exists(post.ID, post.UpdatedAt) {
			a.logger.Debug("recipe up to date, skipping", zap.String("title", post.Title))
			continue
		}
		if err := a.recipeStore.RemoveStaleVersions(post.ID); err != nil {
			a.logger.Warn("failed to remove stale versions", zap.String("title", post.Title), zap.Error(err))
		}

		result, err := recipe.NormalizeHTML(ctx, a.textGen, recipe.PostData{
			ID:        post.ID,
			Title:     post.Title,
			UpdatedAt: post.UpdatedAt,
			HTML:      post.HTML,
		})
		if err != nil {
			a.logger.Error("failed to normalize recipe", zap.String("title", post.Title), zap.Error(err))
			continue
		}

		if err := a.recipeRepo.Save(ctx, result.Recipe); err != nil {
			a.logger.Error("failed to save recipe", zap.String("title", post.Title), zap.Error(err))
			continue
		}
		if err := a.recipeStore.Save(result.Recipe); err != nil {
			a.logger.Warn("failed to save recipe file", zap.String("title", post.Title), zap.Error(err))
		}
		if err := a.metricsStore.RecordMeta(ctx, result.Meta); err != nil {
			a.logger.Warn("failed to record metrics", zap.Error(err))
		}

		imported++
		a.logger.Info("imported recipe", zap.String("title", result.Recipe.Name))
		time.Sleep(importThrottle)
	}

	fmt.Printf("Import complete: %d new or updated recipes.\n", imported)
	return nil
}

// ClipRecipe extracts a recipe from an arbitrary web page and saves it.
func (a *App) ClipRecipe(ctx context.Context, url string) (*recipe.Recipe, error) {
	rec, meta, err := a.clipper.ClipURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := a.metricsStore.RecordMeta(ctx, meta); err != nil {
		a.logger.Warn("failed to record metrics", zap.Error(err))
	}
	return rec, nil
}

// GeneratePlan builds a meal plan for the request, persists it and stores
// its aggregated shopping list.
func (a *App) GeneratePlan(ctx context.Context, req planner.GenerateRequest) (*planner.Plan, []fridge.ShoppingItem, error) {
	catalog, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}

	plan, err := planner.NewGenerator(catalog, nil).Generate(req)
	if err != nil {
		return nil, nil, err
	}

	list := fridge.BuildShoppingList(plan.Recipes())

	if err := a.planRepo.Save(ctx, plan); err != nil {
		return nil, nil, fmt.Errorf("failed to save plan: %w", err)
	}
	if err := a.fridgeRepo.SaveShoppingList(ctx, plan.UserID, plan.ID, list); err != nil {
		a.logger.Warn("failed to save shopping list", zap.String("plan_id", plan.ID), zap.Error(err))
	}

	a.logger.Info("generated plan",
		zap.String("plan_id", plan.ID),
		zap.String("user_id", plan.UserID),
		zap.Int("slots", len(plan.Slots)),
		zap.Int("shopping_items", len(list)),
	)
	return plan, list, nil
}

// AdaptPlan repairs the user's latest plan around missed prep days and
// expiring fridge items, then persists the repaired plan.
func (a *App) AdaptPlan(ctx context.Context, userID string, currentDate time.Time, missedDates []time.Time) (planner.AdaptResult, error) {
	plan, err := a.planRepo.GetLatest(ctx, userID)
	if err != nil {
		return planner.AdaptResult{}, err
	}

	if err := a.restoreFridge(ctx, userID); err != nil {
		return planner.AdaptResult{}, err
	}
	a.tracker.Decay(userID, currentDate)

	catalog, err := a.loadCatalog(ctx)
	if err != nil {
		return planner.AdaptResult{}, err
	}

	result, err := planner.NewAdaptivePlanner(catalog, a.logger).Adapt(planner.AdaptInput{
		Plan:        plan,
		Inventory:   a.tracker.Store().Items(userID),
		MissedDates: missedDates,
		CurrentDate: currentDate,
		Exclusions:  plan.Exclusions,
	})
	if err != nil {
		return planner.AdaptResult{}, err
	}

	if err := a.planRepo.Save(ctx, result.Plan); err != nil {
		return planner.AdaptResult{}, fmt.Errorf("failed to save adapted plan: %w", err)
	}
	if err := a.persistFridge(ctx, userID); err != nil {
		a.logger.Warn("failed to persist fridge snapshot", zap.Error(err))
	}
	return result, nil
}

// OptimizeDay batches the prep steps of every recipe the user's latest plan
// schedules on date.
func (a *App) OptimizeDay(ctx context.Context, userID string, date time.Time) (prep.DayTimeline, error) {
	plan, err := a.planRepo.GetLatest(ctx, userID)
	if err != nil {
		return prep.DayTimeline{}, err
	}

	timeline, err := a.optimizer.OptimizeDay(ctx, plan, date)
	if err != nil {
		return prep.DayTimeline{}, err
	}

	if semantic, ok := a.parser.(*prep.SemanticParser); ok {
		if err := a.metricsStore.RecordMeta(ctx, semantic.LastMeta()); err != nil {
			a.logger.Warn("failed to record metrics", zap.Error(err))
		}
	}
	return timeline, nil
}

// ShoppingList returns the stored shopping list of a plan. An empty planID
// resolves to the user's latest plan.
func (a *App) ShoppingList(ctx context.Context, userID, planID string) ([]fridge.ShoppingItem, error) {
	if planID == "" {
		plan, err := a.planRepo.GetLatest(ctx, userID)
		if err != nil {
			return nil, err
		}
		planID = plan.ID
	}
	return a.fridgeRepo.GetShoppingList(ctx, planID)
}

// StockShoppingList marks the latest stored shopping list of a plan as
// purchased, stocking the fridge with every item.
func (a *App) StockShoppingList(ctx context.Context, userID, planID string, asOf time.Time) error {
	list, err := a.fridgeRepo.GetShoppingList(ctx, planID)
	if err != nil {
		return err
	}
	if err := a.restoreFridge(ctx, userID); err != nil {
		return err
	}

	a.tracker.Stock(userID, list, asOf)
	return a.persistFridge(ctx, userID)
}

// DecayFridge ages the user's fridge to asOf, dropping spoiled items, and
// reports what expires within the next two days.
func (a *App) DecayFridge(ctx context.Context, userID string, asOf time.Time) ([]fridge.Item, error) {
	if err := a.restoreFridge(ctx, userID); err != nil {
		return nil, err
	}

	a.tracker.Decay(userID, asOf)
	expiring := a.tracker.ExpiringWithin(userID, 2)

	if err := a.persistFridge(ctx, userID); err != nil {
		return nil, err
	}
	return expiring, nil
}

// CleanupMetrics removes execution metrics older than the retention window.
func (a *App) CleanupMetrics(ctx context.Context, olderThanDays int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, olderThanDays)
}

// Usage returns per-day token usage over the last days.
func (a *App) Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return a.metricsStore.GetDailyUsage(ctx, days)
}

func (a *App) loadCatalog(ctx context.Context) (*recipe.Catalog, error) {
	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("recipe catalog is empty, run import first")
	}
	return recipe.NewCatalog(recipes), nil
}

func (a *App) restoreFridge(ctx context.Context, userID string) error {
	items, err := a.fridgeRepo.LoadSnapshot(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load fridge snapshot: %w", err)
	}
	a.tracker.Store().Replace(userID, items)
	return nil
}

func (a *App) persistFridge(ctx context.Context, userID string) error {
	return a.fridgeRepo.SaveSnapshot(ctx, userID, a.tracker.Store().Items(userID))
}
