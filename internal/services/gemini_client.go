package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"traffic-chatbot/internal/models"
)

const (
	GeminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel = "gemini-2.0-flash"

	geminiTemperature     = 0.7
	geminiMaxOutputTokens = 8192
)

// LLMClient generates answers from a system instruction, prior
// conversation turns, and the current prompt.
type LLMClient interface {
	Generate(ctx context.Context, systemInstruction string, history []models.ConversationTurn, prompt string) (string, error)
}

// GeminiPart is one text fragment of a content block.
type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiContent is one turn in the Gemini conversation format.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiRequest represents the generateContent request body.
type GeminiRequest struct {
	SystemInstruction *GeminiContent   `json:"system_instruction,omitempty"`
	Contents          []GeminiContent  `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

// GenerationConfig holds the sampling parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// GeminiResponse represents the generateContent response body.
type GeminiResponse struct {
	Candidates []struct {
		Content      GeminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiClient calls the Gemini generateContent API. Requests are rate
// limited client side to stay under the free-tier quota.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		baseURL: GeminiBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // LLMs can be slow
		},
		limiter: rate.NewLimiter(rate.Limit(2), 5),
	}
}

// Generate sends one prompt with conversation history and returns the
// model's text response. Upstream failures surface as GEMINI_API_ERROR.
func (c *GeminiClient) Generate(ctx context.Context, systemInstruction string, history []models.ConversationTurn, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	contents := make([]GeminiContent, 0, len(history)*2+1)
	for _, turn := range history {
		contents = append(contents,
			GeminiContent{Role: "user", Parts: []GeminiPart{{Text: turn.Question}}},
			GeminiContent{Role: "model", Parts: []GeminiPart{{Text: turn.Answer}}},
		)
	}
	contents = append(contents, GeminiContent{Role: "user", Parts: []GeminiPart{{Text: prompt}}})

	geminiRequest := GeminiRequest{
		Contents: contents,
		GenerationConfig: GenerationConfig{
			Temperature:     geminiTemperature,
			MaxOutputTokens: geminiMaxOutputTokens,
		},
	}
	if systemInstruction != "" {
		geminiRequest.SystemInstruction = &GeminiContent{
			Parts: []GeminiPart{{Text: systemInstruction}},
		}
	}

	jsonBody, err := json.Marshal(geminiRequest)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ErrUpstream(fmt.Errorf("failed to send request to Gemini: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ErrUpstream(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", ErrUpstream(fmt.Errorf("Gemini returned status %d: %s", resp.StatusCode, string(body)))
	}

	var geminiResponse GeminiResponse
	if err := json.Unmarshal(body, &geminiResponse); err != nil {
		return "", ErrUpstream(fmt.Errorf("failed to parse response: %w", err))
	}

	if geminiResponse.Error != nil {
		return "", ErrUpstream(fmt.Errorf("Gemini error %d: %s", geminiResponse.Error.Code, geminiResponse.Error.Message))
	}
	if len(geminiResponse.Candidates) == 0 || len(geminiResponse.Candidates[0].Content.Parts) == 0 {
		return "", ErrUpstream(fmt.Errorf("no response from Gemini"))
	}

	return geminiResponse.Candidates[0].Content.Parts[0].Text, nil
}
