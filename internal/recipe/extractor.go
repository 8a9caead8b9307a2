package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"meal-scheduler/internal/llm"
	"meal-scheduler/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

// PostData is the raw recipe material handed to the extractor.
type PostData struct {
	ID        string
	Title     string
	UpdatedAt string
	HTML      string
}

// ExtractorResult pairs the normalized recipe with execution metadata.
type ExtractorResult struct {
	Recipe Recipe
	Meta   shared.AgentMeta
}

// NormalizeHTML extracts a structured Recipe from raw HTML using an LLM.
func NormalizeHTML(ctx context.Context, textGen llm.TextGenerator, data PostData) (ExtractorResult, error) {
	start := time.Now()

	prompt, err := buildExtractorPrompt(data)
	if err != nil {
		return ExtractorResult{}, err
	}

	llmResp, err := textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ExtractorResult{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	rec := Recipe{}
	if err := json.Unmarshal([]byte(llmResp.Content), &rec); err != nil {
		return ExtractorResult{
				Meta: shared.AgentMeta{
					AgentName: "Extractor",
					Usage:     llmResp.Usage,
				},
			}, fmt.Errorf(
				"failed to unmarshal LLM response: %w. Response: %s",
				err,
				llmResp.Content,
			)
	}

	rec.ID = data.ID
	rec.UpdatedAt = data.UpdatedAt
	return ExtractorResult{
		Recipe: rec,
		Meta: shared.AgentMeta{
			AgentName: "Extractor",
			Usage:     llmResp.Usage,
			Latency:   time.Since(start),
		},
	}, nil
}

func buildExtractorPrompt(data PostData) (string, error) {
	tmpl, err := template.New("extractor").Parse(extractorPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
