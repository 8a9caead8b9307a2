package llm

import (
	"context"
	"fmt"
	"time"

	"meal-scheduler/internal/config"
	"meal-scheduler/internal/shared"

	"github.com/go-resty/resty/v2"
)

const (
	groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	groqModel  = "llama-3.3-70b-versatile"

	groqTimeout    = 30 * time.Second
	groqRetryCount = 2
)

// groqClient is a client for the Groq API (OpenAI-compatible, JSON mode).
type groqClient struct {
	apiKey string
	client *resty.Client
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config) TextGenerator {
	client := resty.New().
		SetTimeout(groqTimeout).
		SetRetryCount(groqRetryCount).
		SetRetryWaitTime(500 * time.Millisecond)

	return &groqClient{
		apiKey: cfg.GroqAPIKey,
		client: client,
	}
}

// GenerateContent sends a prompt to the Groq model and returns the generated text.
func (c *groqClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	reqBody := map[string]interface{}{
		"model": groqModel,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature":     0.1,
		"response_format": map[string]string{"type": "json_object"},
	}

	var parsed groqResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(c.apiKey).
		SetBody(reqBody).
		SetResult(&parsed).
		Post(groqAPIURL)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return ContentResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode(), resp.String())
	}

	if len(parsed.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: parsed.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
			Model:            groqModel,
		},
	}, nil
}
