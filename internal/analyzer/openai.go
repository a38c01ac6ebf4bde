package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonesrussell/proofcrawl/internal/config"
	"github.com/jonesrussell/proofcrawl/internal/domain"
	"github.com/jonesrussell/proofcrawl/internal/logger"
)

const systemPrompt = "You are a professional editor. Return only valid JSON."

const editorPrompt = `You are a professional editor and proofreader. Analyze the following text for:
1. Spelling mistakes
2. Grammar errors
3. Punctuation issues
4. Style improvements
5. Clarity and readability issues

Text to analyze:
"%s"

For each issue found, provide a JSON response with the following format:
{
    "suggestions": [
        {
            "original_text": "exact text that needs to be changed",
            "suggested_text": "corrected or improved text",
            "error_type": "spelling|grammar|punctuation|style|clarity",
            "explanation": "brief explanation of why this change is suggested",
            "confidence_score": 0.8,
            "start_position": 0,
            "end_position": 10
        }
    ]
}

Important:
- Only include actual errors or improvements, not minor stylistic preferences
- Provide accurate start_position and end_position relative to the text chunk
- Use confidence scores: 0.9+ for clear errors, 0.7-0.8 for likely improvements, 0.5-0.6 for style suggestions
- Return valid JSON only`

// OpenAIBackend proposes edits through an OpenAI-compatible chat-completions
// endpoint. Transport failures and non-200 replies report
// domain.ErrBackendUnavailable so the engine can fall back to rules.
type OpenAIBackend struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	logger      logger.Interface
}

// NewOpenAIBackend creates the remote backend from configuration.
func NewOpenAIBackend(cfg config.OpenAIConfig, log logger.Interface) *OpenAIBackend {
	return &OpenAIBackend{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      log,
	}
}

// Name identifies the backend in audit entries.
func (b *OpenAIBackend) Name() string {
	return "OpenAI"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type suggestionPayload struct {
	Suggestions []RawSuggestion `json:"suggestions"`
}

// Propose sends one chunk to the completions endpoint and parses the
// proposals out of the reply. A reply whose content is not the requested
// JSON yields an empty list, never an error; analysis simply finds nothing.
func (b *OpenAIBackend) Propose(ctx context.Context, text string) ([]RawSuggestion, error) {
	payload, err := json.Marshal(chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(editorPrompt, text)},
		},
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: completions returned status %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}

	var reply chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrMalformedBackendResponse, err)
	}
	if len(reply.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", domain.ErrMalformedBackendResponse)
	}

	return b.parseSuggestions(strings.TrimSpace(reply.Choices[0].Message.Content)), nil
}

// parseSuggestions unmarshals the model's content payload. Models sometimes
// wrap the JSON in prose; the salvage pass retries on the outermost brace
// window before giving up.
func (b *OpenAIBackend) parseSuggestions(content string) []RawSuggestion {
	var parsed suggestionPayload
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed.Suggestions
	}

	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first >= 0 && last > first {
		if err := json.Unmarshal([]byte(content[first:last+1]), &parsed); err == nil {
			return parsed.Suggestions
		}
	}

	b.logger.Warn("failed to parse backend reply, no suggestions salvaged",
		logger.Int("content_length", len(content)))
	return nil
}
