package gemini

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// Finish reasons after which the candidate text is not returned.
var blockingFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:     true,
	genai.FinishReasonRecitation: true,
	genai.FinishReasonLanguage:   true,
}

// Client wraps the Gemini SDK client for single-turn text generation.
// Without an API key it is still usable, but every call fails.
type Client struct {
	models *genai.Models
}

// NewClient creates a Client. An empty baseURL keeps the SDK's default
// endpoint; a zero timeout leaves requests unbounded.
func NewClient(ctx context.Context, baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return &Client{}, nil
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &Client{models: sdk.Models}, nil
}

// Generate sends prompt to model and returns the generated text.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.models == nil {
		return "", ErrMissingAPIKey
	}

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)}
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	if reason := resp.Candidates[0].FinishReason; blockingFinishReasons[reason] {
		return "", &BlockedError{Reason: string(reason)}
	}
	return resp.Text(), nil
}
