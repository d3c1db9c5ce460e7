package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CompatProvider talks to any OpenAI-compatible chat completions API.
// Groq serves the same wire format at https://api.groq.com/openai/v1.
type CompatProvider struct {
	baseProvider
}

// NewGroqProvider creates a Groq provider.
func NewGroqProvider(cfg *ProviderConfig) *CompatProvider {
	return &CompatProvider{baseProvider: newBaseProvider(cfg, "groq")}
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(cfg *ProviderConfig) *CompatProvider {
	return &CompatProvider{baseProvider: newBaseProvider(cfg, "openai")}
}

// Chat sends one completion request. It does not retry.
func (p *CompatProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if p.config.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", p.config.Name, ErrNoAPIKey)
	}

	start := time.Now()

	chatReq := compatChatRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if chatReq.Model == "" {
		chatReq.Model = p.config.Model
	}
	if chatReq.MaxTokens == 0 {
		chatReq.MaxTokens = p.config.MaxTokens
	}
	if chatReq.Temperature == 0 {
		chatReq.Temperature = p.config.Temperature
	}

	if req.SystemPrompt != "" {
		chatReq.Messages = append(chatReq.Messages, compatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, msg := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, compatMessage{Role: msg.Role, Content: msg.Content})
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := readLimitedBody(resp.Body, MaxErrorBodySize)
		return nil, &StatusError{Provider: p.config.Name, Code: resp.StatusCode, Body: string(bodyBytes)}
	}

	var chatResp compatChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := chatResp.Choices[0]
	return &ChatResponse{
		Content:          choice.Message.Content,
		Model:            chatResp.Model,
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
		TokensUsed:       chatResp.Usage.TotalTokens,
		Duration:         time.Since(start),
		FinishReason:     choice.FinishReason,
	}, nil
}

// OpenAI-compatible wire types
type compatChatRequest struct {
	Model       string          `json:"model"`
	Messages    []compatMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type compatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type compatChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      compatMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
