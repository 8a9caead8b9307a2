package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"meal-scheduler/internal/recipe"
)

// RecipeStore provides a file-based, versioned store for catalog recipes.
// It stages imports before they reach the database and doubles as a fixture
// source for tests and the CLI.
type RecipeStore struct {
	basePath string
}

// NewRecipeStore creates a new RecipeStore and ensures the base directory exists.
func NewRecipeStore(basePath string) (*RecipeStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &RecipeStore{basePath: basePath}, nil
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	return strings.ReplaceAll(ts, ":", "-")
}

// getVersionedPath returns the full path for a given recipe ID and version.
func (s *RecipeStore) getVersionedPath(recipeID, updatedAt string) string {
	filename := fmt.Sprintf("%s_%s.json", recipeID, sanitizeTimestamp(updatedAt))
	return filepath.Join(s.basePath, filename)
}

// Save stores a recipe to a file with versioning.
func (s *RecipeStore) Save(rec recipe.Recipe) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	filePath := s.getVersionedPath(rec.ID, rec.UpdatedAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}
	return nil
}

// Load retrieves a recipe from a specific version file.
func (s *RecipeStore) Load(recipeID, updatedAt string) (*recipe.Recipe, error) {
	filePath := s.getVersionedPath(recipeID, updatedAt)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}

	var rec recipe.Recipe
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	return &rec, nil
}

// Exists checks if a specific version of a recipe file exists.
func (s *RecipeStore) Exists(recipeID, updatedAt string) bool {
	_, err := os.Stat(s.getVersionedPath(recipeID, updatedAt))
	return !os.IsNotExist(err)
}

// RemoveStaleVersions removes all files associated with a recipeID.
// This should be called before saving a new version so only the latest exists.
func (s *RecipeStore) RemoveStaleVersions(recipeID string) error {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_*.json", recipeID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob stale files: %w", err)
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
	}
	return nil
}

// ListAll loads every recipe file in the store.
func (s *RecipeStore) ListAll() ([]recipe.Recipe, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob recipe files: %w", err)
	}

	var recipes []recipe.Recipe
	for _, match := range matches {
		data, err := os.ReadFile(match)
		if err != nil {
			return nil, fmt.Errorf("failed to read recipe file %s: %w", match, err)
		}

		var rec recipe.Recipe
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe file %s: %w", match, err)
		}
		recipes = append(recipes, rec)
	}
	return recipes, nil
}
