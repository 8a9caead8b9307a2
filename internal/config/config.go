package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ParserStrategy selects which step parser implementation the application wires in.
type ParserStrategy string

const (
	ParserHeuristic ParserStrategy = "heuristic"
	ParserSemantic  ParserStrategy = "semantic"
)

// Config holds the configuration for the application.
type Config struct {
	// LLM providers
	GeminiAPIKey string
	GroqAPIKey   string
	LLMProvider  string // "groq" (default) or "gemini"

	// Step parser
	StepParser    ParserStrategy
	ParseCacheTTL time.Duration

	// Recipe feed (content source)
	FeedURL        string
	FeedContentKey string
	FeedAdminKey   string

	// Storage
	DatabasePath      string
	RecipeStoragePath string

	LogLevel string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		LLMProvider:       strings.ToLower(os.Getenv("LLM_PROVIDER")),
		FeedURL:           os.Getenv("FEED_API_URL"),
		FeedContentKey:    os.Getenv("FEED_CONTENT_API_KEY"),
		FeedAdminKey:      os.Getenv("FEED_ADMIN_API_KEY"),
		DatabasePath:      os.Getenv("DATABASE_PATH"),
		RecipeStoragePath: os.Getenv("RECIPE_STORAGE_PATH"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
	}

	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "groq"
	}
	if cfg.LLMProvider != "groq" && cfg.LLMProvider != "gemini" {
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q: expected groq or gemini", cfg.LLMProvider)
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "data/meal-scheduler.db"
	}
	if cfg.RecipeStoragePath == "" {
		cfg.RecipeStoragePath = "data/recipes"
	}
	if cfg.FeedAdminKey == "" {
		// Fallback to content key if only one is provided
		cfg.FeedAdminKey = cfg.FeedContentKey
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	switch strategy := ParserStrategy(strings.ToLower(os.Getenv("STEP_PARSER"))); strategy {
	case "":
		cfg.StepParser = ParserHeuristic
	case ParserHeuristic, ParserSemantic:
		cfg.StepParser = strategy
	default:
		return nil, fmt.Errorf("invalid STEP_PARSER %q: expected heuristic or semantic", strategy)
	}

	if cfg.StepParser == ParserSemantic {
		if cfg.LLMProvider == "groq" && cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
		if cfg.LLMProvider == "gemini" && cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	}

	cfg.ParseCacheTTL = 24 * time.Hour
	if ttl := os.Getenv("PARSE_CACHE_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid PARSE_CACHE_TTL %q: %w", ttl, err)
		}
		cfg.ParseCacheTTL = parsed
	}

	return cfg, nil
}
