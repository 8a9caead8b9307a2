package clipper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-scheduler/internal/llm"
	"meal-scheduler/internal/recipe"
	"meal-scheduler/internal/shared"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// RecipeSaver persists a clipped recipe into the catalog.
type RecipeSaver interface {
	Save(ctx context.Context, rec recipe.Recipe) error
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	saver   RecipeSaver
	textGen llm.TextGenerator
}

// NewClipper creates a new Clipper instance.
func NewClipper(saver RecipeSaver, textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		saver:   saver,
		textGen: textGen,
	}
}

// ClipURL fetches the URL, extracts the recipe using the LLM, and saves it to
// the catalog. Returns the saved recipe and execution metadata.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*recipe.Recipe, shared.AgentMeta, error) {
	// 1. Fetch and clean HTML
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, shared.AgentMeta{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	// 2. Extract structure via the LLM
	result, err := recipe.NormalizeHTML(ctx, c.textGen, recipe.PostData{
		ID:        uuid.NewString(),
		Title:     url,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		HTML:      content,
	})
	if err != nil {
		return nil, result.Meta, fmt.Errorf("ai extraction failed: %w", err)
	}

	// 3. Save to the catalog
	if err := c.saver.Save(ctx, result.Recipe); err != nil {
		return nil, result.Meta, fmt.Errorf("failed to save recipe: %w", err)
	}

	return &result.Recipe, result.Meta, nil
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
