package prep

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"meal-scheduler/internal/llm"
	"meal-scheduler/internal/shared"
)

//go:embed semantic_prompt.md
var semanticPrompt string

// SemanticParser classifies steps with one LLM call per recipe. Results are
// cached per step; any degradation (transport error, malformed payload,
// wrong step count) falls back to the heuristic parser for the affected
// steps, so a plan is never blocked on the completion service.
type SemanticParser struct {
	textGen  llm.TextGenerator
	cache    *ParseCache
	fallback *HeuristicParser
	logger   *zap.Logger

	lastMeta shared.AgentMeta
}

// NewSemanticParser creates a SemanticParser. cache may be nil to disable
// memoization.
func NewSemanticParser(textGen llm.TextGenerator, cache *ParseCache, logger *zap.Logger) *SemanticParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemanticParser{
		textGen:  textGen,
		cache:    cache,
		fallback: NewHeuristicParser(),
		logger:   logger,
	}
}

// LastMeta returns the execution metadata of the most recent LLM call.
func (p *SemanticParser) LastMeta() shared.AgentMeta {
	return p.lastMeta
}

// ParseSteps resolves cached steps first, sends the misses to the model in
// a single request, and heuristically parses whatever the model got wrong.
func (p *SemanticParser) ParseSteps(ctx context.Context, rc RecipeContext, steps []string) ([]ParsedStep, error) {
	parsed := make([]ParsedStep, len(steps))
	var missing []int

	for i, text := range steps {
		if p.cache == nil {
			missing = append(missing, i)
			continue
		}
		if step, ok := p.cache.Get(p.cache.Key(rc.RecipeID, text)); ok {
			parsed[i] = step
			continue
		}
		missing = append(missing, i)
	}

	if len(missing) == 0 {
		return parsed, nil
	}

	missingTexts := make([]string, len(missing))
	for j, i := range missing {
		missingTexts[j] = steps[i]
	}

	fromLLM, err := p.parseWithLLM(ctx, rc, missingTexts)
	if err != nil {
		p.logger.Warn("semantic parse degraded, using heuristics",
			zap.String("recipe_id", rc.RecipeID),
			zap.Int("steps", len(missingTexts)),
			zap.Error(err),
		)
		fromLLM, _ = p.fallback.ParseSteps(ctx, rc, missingTexts)
	}

	for j, i := range missing {
		step := fromLLM[j]
		parsed[i] = step
		if p.cache != nil && step.Source == SourceSemantic {
			p.cache.Put(p.cache.Key(rc.RecipeID, steps[i]), step)
		}
	}
	return parsed, nil
}

func (p *SemanticParser) parseWithLLM(ctx context.Context, rc RecipeContext, steps []string) ([]ParsedStep, error) {
	start := time.Now()

	prompt, err := buildSemanticPrompt(rc, steps)
	if err != nil {
		return nil, err
	}

	llmResp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM response: %w", err)
	}

	p.lastMeta = shared.AgentMeta{
		AgentName: "StepParser",
		Usage:     llmResp.Usage,
		Latency:   time.Since(start),
	}

	var raw []ParsedStep
	content := stripFences(llmResp.Content)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal LLM response: %w. Response: %s", err, llmResp.Content)
	}
	if len(raw) != len(steps) {
		return nil, fmt.Errorf("step count mismatch: sent %d, got %d", len(steps), len(raw))
	}

	for i := range raw {
		raw[i].Text = steps[i]
		raw[i].Source = SourceSemantic
		if raw[i].DurationMinutes <= 0 {
			raw[i].DurationMinutes = minimumStepMinutes
		}
		if !raw[i].Actionable {
			raw[i].Action = ActionOther
			raw[i].Batchable = false
		}
	}
	return raw, nil
}

func buildSemanticPrompt(rc RecipeContext, steps []string) (string, error) {
	stepsJSON, err := json.MarshalIndent(steps, "", "  ")
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("steps").Parse(semanticPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		RecipeName   string
		TotalMinutes int
		StepsJSON    string
	}{rc.RecipeName, rc.TotalMinutes, string(stepsJSON)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripFences tolerates models that wrap JSON in a markdown code block.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
