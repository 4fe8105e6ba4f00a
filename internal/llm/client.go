package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Config carries the OpenAI connection settings.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	AnalysisModel  string
	EmbeddingModel string
}

// Client is a minimal OpenAI API client covering chat completions, vision
// input and embeddings.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	baseURL        string
	chatModel      string
	analysisModel  string
	embeddingModel string
}

// New creates a client. The API key is required; models fall back to
// sensible defaults.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	analysisModel := cfg.AnalysisModel
	if analysisModel == "" {
		analysisModel = "gpt-4o"
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}

	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        baseURL,
		chatModel:      chatModel,
		analysisModel:  analysisModel,
		embeddingModel: embeddingModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Message is a chat message. Content is either a plain string or a slice of
// content parts for vision requests.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// TextPart and ImagePart build multimodal message content.
func TextPart(text string) map[string]any {
	return map[string]any{"type": "text", "text": text}
}

func ImagePart(dataURL string) map[string]any {
	return map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL}}
}

type chatOptions struct {
	model       string
	temperature float64
	jsonMode    bool
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// chat sends a chat completion request and returns the first choice's
// content with the total token count.
func (c *Client) chat(ctx context.Context, opts chatOptions, messages []Message) (string, int, error) {
	model := opts.model
	if model == "" {
		model = c.chatModel
	}

	payload := map[string]any{
		"model":       model,
		"temperature": opts.temperature,
		"messages":    messages,
	}
	if opts.jsonMode {
		payload["response_format"] = map[string]string{"type": "json_object"}
	}

	var response chatResponse
	if err := c.post(ctx, "/chat/completions", payload, &response); err != nil {
		return "", 0, err
	}
	if len(response.Choices) == 0 {
		return "", 0, fmt.Errorf("no completion choices returned")
	}
	return response.Choices[0].Message.Content, response.Usage.TotalTokens, nil
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed converts text into an embedding vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	payload := map[string]any{
		"model": c.embeddingModel,
		"input": text,
	}

	var response embeddingResponse
	if err := c.post(ctx, "/embeddings", payload, &response); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return response.Data[0].Embedding, nil
}

// cleanMarkdownWrapper strips ```json fences the model sometimes adds around
// JSON output.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
