package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"meal-scheduler/internal/app"
	"meal-scheduler/internal/clipper"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/database"
	"meal-scheduler/internal/feed"
	"meal-scheduler/internal/fridge"
	"meal-scheduler/internal/llm"
	"meal-scheduler/internal/logging"
	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/planner"
	"meal-scheduler/internal/prep"
	"meal-scheduler/internal/recipe"
	"meal-scheduler/internal/storage"
)

const dateLayout = "2006-01-02"

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var textGen llm.TextGenerator
	if cfg.LLMProvider == "gemini" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		defer geminiClient.Close()
		textGen = geminiClient
	} else {
		textGen = llm.NewGroqClient(cfg)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	recipeStore, err := storage.NewRecipeStore(cfg.RecipeStoragePath)
	if err != nil {
		log.Fatalf("Failed to initialize recipe store: %v", err)
	}

	recipeRepo := recipe.NewRepository(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL)
	fridgeRepo := fridge.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	var parser prep.StepParser
	if cfg.StepParser == config.ParserSemantic {
		parser = prep.NewSemanticParser(textGen, prep.NewParseCache(cfg.ParseCacheTTL, logger), logger)
	} else {
		parser = prep.NewHeuristicParser()
	}

	application := app.NewApp(
		cfg,
		logger,
		feed.NewClient(cfg),
		textGen,
		recipeRepo,
		recipeStore,
		planRepo,
		fridgeRepo,
		fridge.NewTracker(fridge.NewStore(), logger),
		metricsStore,
		clipper.NewClipper(recipeRepo, textGen),
		parser,
	)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		if err := application.ImportRecipes(ctx); err != nil {
			log.Fatalf("Import failed: %v", err)
		}

	case "clip":
		clipCmd := flag.NewFlagSet("clip", flag.ExitOnError)
		url := clipCmd.String("url", "", "Web page to clip the recipe from")
		clipCmd.Parse(os.Args[2:])
		if *url == "" {
			log.Fatal("clip requires -url")
		}

		rec, err := application.ClipRecipe(ctx, *url)
		if err != nil {
			log.Fatalf("Clip failed: %v", err)
		}
		fmt.Printf("Clipped '%s' (%d ingredients, %d steps).\n", rec.Name, len(rec.Ingredients), len(rec.Steps))

	case "generate":
		genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		userID := genCmd.String("user", "default", "User the plan belongs to")
		diet := genCmd.String("diet", "omnivore", "Diet tags, comma separated (all must match when more than one)")
		exclusions := genCmd.String("exclude", "", "Excluded ingredients or categories, comma separated")
		start := genCmd.String("start", time.Now().Format(dateLayout), "Plan start date (YYYY-MM-DD)")
		days := genCmd.Int("days", 7, "Number of days to plan")
		reuse := genCmd.Bool("reuse", true, "Prefer recipes sharing ingredients")
		genCmd.Parse(os.Args[2:])

		startDate, err := time.Parse(dateLayout, *start)
		if err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}

		dietTags := splitList(*diet)
		plan, list, err := application.GeneratePlan(ctx, planner.GenerateRequest{
			UserID:          *userID,
			Diet:            recipe.DietProfile{Tags: dietTags, RequireAll: len(dietTags) > 1},
			Exclusions:      splitList(*exclusions),
			StartDate:       startDate,
			Days:            *days,
			PrioritizeReuse: *reuse,
		})
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
		printPlan(plan)
		printShoppingList(list)

	case "adapt":
		adaptCmd := flag.NewFlagSet("adapt", flag.ExitOnError)
		userID := adaptCmd.String("user", "default", "User whose plan to repair")
		current := adaptCmd.String("date", time.Now().Format(dateLayout), "Current date (YYYY-MM-DD)")
		missed := adaptCmd.String("missed", "", "Missed prep dates, comma separated (YYYY-MM-DD)")
		adaptCmd.Parse(os.Args[2:])

		currentDate, err := time.Parse(dateLayout, *current)
		if err != nil {
			log.Fatalf("Invalid current date: %v", err)
		}
		missedDates, err := parseDates(splitList(*missed))
		if err != nil {
			log.Fatalf("Invalid missed date: %v", err)
		}

		result, err := application.AdaptPlan(ctx, *userID, currentDate, missedDates)
		if err != nil {
			log.Fatalf("Adaptation failed: %v", err)
		}
		printAdaptResult(result)

	case "optimize":
		optCmd := flag.NewFlagSet("optimize", flag.ExitOnError)
		userID := optCmd.String("user", "default", "User whose plan to optimize")
		date := optCmd.String("date", time.Now().Format(dateLayout), "Day to optimize (YYYY-MM-DD)")
		optCmd.Parse(os.Args[2:])

		day, err := time.Parse(dateLayout, *date)
		if err != nil {
			log.Fatalf("Invalid date: %v", err)
		}

		timeline, err := application.OptimizeDay(ctx, *userID, day)
		if err != nil {
			log.Fatalf("Optimization failed: %v", err)
		}
		printTimeline(timeline)

	case "shopping-list":
		listCmd := flag.NewFlagSet("shopping-list", flag.ExitOnError)
		userID := listCmd.String("user", "default", "User whose shopping list to show")
		planID := listCmd.String("plan", "", "Plan ID (defaults to the latest plan)")
		listCmd.Parse(os.Args[2:])

		list, err := application.ShoppingList(ctx, *userID, *planID)
		if err != nil {
			log.Fatalf("Shopping list lookup failed: %v", err)
		}
		printShoppingList(list)

	case "stock":
		stockCmd := flag.NewFlagSet("stock", flag.ExitOnError)
		userID := stockCmd.String("user", "default", "User whose fridge to stock")
		planID := stockCmd.String("plan", "", "Plan whose shopping list was purchased")
		stockCmd.Parse(os.Args[2:])
		if *planID == "" {
			log.Fatal("stock requires -plan")
		}

		if err := application.StockShoppingList(ctx, *userID, *planID, time.Now()); err != nil {
			log.Fatalf("Stocking failed: %v", err)
		}
		fmt.Println("Fridge stocked.")

	case "fridge-decay":
		decayCmd := flag.NewFlagSet("fridge-decay", flag.ExitOnError)
		userID := decayCmd.String("user", "default", "User whose fridge to age")
		decayCmd.Parse(os.Args[2:])

		expiring, err := application.DecayFridge(ctx, *userID, time.Now())
		if err != nil {
			log.Fatalf("Decay failed: %v", err)
		}
		if len(expiring) == 0 {
			fmt.Println("Nothing expires in the next 2 days.")
		}
		for _, item := range expiring {
			fmt.Printf("- %s (%s): %d day(s) left\n", item.Name, item.Quantity, item.DaysRemaining)
		}

	case "usage":
		usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := usageCmd.Int("days", 7, "Days of usage to report")
		usageCmd.Parse(os.Args[2:])

		rows, err := application.Usage(ctx, *days)
		if err != nil {
			log.Fatalf("Usage query failed: %v", err)
		}
		for _, row := range rows {
			fmt.Printf("%s  prompt=%d completion=%d runs=%d\n", row.Date, row.TotalPrompt, row.TotalCompletion, row.TotalExecution)
		}

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Removed %d old metric records.\n", affected)

	case "status":
		fmt.Println(metrics.GetSysHealth(cfg.RecipeStoragePath))

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseDates(raw []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(dateLayout, r)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func printPlan(plan *planner.Plan) {
	fmt.Printf("\n=== MEAL PLAN %s (%s - %s) ===\n",
		plan.ID, plan.StartDate.Format(dateLayout), plan.EndDate.Format(dateLayout))
	for _, slot := range plan.Slots {
		fmt.Printf("%s  %-9s  %s (%d min)\n",
			slot.Date.Format(dateLayout), slot.MealType, slot.Recipe.Name, slot.Recipe.PrepTimeMinutes)
	}
}

func printShoppingList(list []fridge.ShoppingItem) {
	fmt.Println("\n=== SHOPPING LIST ===")
	for _, item := range list {
		fmt.Printf("- %s: %s (use within %d days)\n", item.Name, item.Quantity, item.FreshnessDays)
	}
}

func printAdaptResult(result planner.AdaptResult) {
	fmt.Println("\n=== ADAPTATIONS ===")
	for _, rec := range result.Log {
		fmt.Printf("%s [%s] %s\n", rec.Date.Format(dateLayout), rec.Type, rec.Reason)
	}
	if len(result.PriorityIngredients) > 0 {
		fmt.Printf("Use first: %s\n", strings.Join(result.PriorityIngredients, ", "))
	}
	for _, adj := range result.GroceryAdjustments {
		fmt.Printf("Grocery: %s\n", adj)
	}
	if result.RecoveryMinutes > 0 {
		fmt.Printf("Recovered ~%d minutes of prep time.\n", result.RecoveryMinutes)
	}
	printPlan(result.Plan)
}

func printTimeline(timeline prep.DayTimeline) {
	fmt.Printf("\n=== PREP TIMELINE %s ===\n", timeline.Date.Format(dateLayout))
	for _, step := range timeline.Steps {
		marker := " "
		if step.Merged {
			marker = "*"
		}
		fmt.Printf("%2d.%s %-9s %3d min  %s\n", step.Order, marker, step.Zone, step.DurationMinutes, step.Description)
	}
	fmt.Printf("Total: %d min", timeline.TotalMinutes)
	if timeline.SavedMinutes > 0 {
		fmt.Printf(" (saved %d min by batching)", timeline.SavedMinutes)
	}
	fmt.Println()
}

func printUsage() {
	fmt.Println("Usage: meal-scheduler <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import           Fetch and normalize recipes from the feed")
	fmt.Println("  clip             Extract a recipe from a web page (-url)")
	fmt.Println("  generate         Build a meal plan (-user -diet -exclude -start -days -reuse)")
	fmt.Println("  adapt            Repair the latest plan (-user -date -missed)")
	fmt.Println("  optimize         Batch prep steps for one day (-user -date)")
	fmt.Println("  shopping-list    Show a plan's shopping list (-user -plan)")
	fmt.Println("  stock            Stock the fridge from a plan's shopping list (-user -plan)")
	fmt.Println("  fridge-decay     Age the fridge and list expiring items (-user)")
	fmt.Println("  usage            Show LLM token usage (-days)")
	fmt.Println("  metrics-cleanup  Remove old metric records (-days)")
	fmt.Println("  status           Show process and storage health")
}
