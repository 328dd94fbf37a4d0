// Package llm generates tailored content schemas through an
// OpenAI-compatible chat-completions backend.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel implements eino's model.BaseChatModel over an OpenAI-compatible
// chat-completions HTTP API.
type ChatModel struct {
	apiKey     string
	apiURL     string
	modelName  string
	httpClient *http.Client
}

// NewChatModel creates a chat model client. The API key must be set.
func NewChatModel(apiKey, apiURL, modelName string, timeout time.Duration) (*ChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("API key must not be empty")
	}
	if strings.TrimSpace(apiURL) == "" {
		return nil, errors.New("API URL must not be empty")
	}
	if strings.TrimSpace(modelName) == "" {
		return nil, errors.New("model name must not be empty")
	}
	return &ChatModel{
		apiKey:     apiKey,
		apiURL:     apiURL,
		modelName:  modelName,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []*schema.Message `json:"messages"`
	Temperature *float32          `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Generate implements model.BaseChatModel.
func (c *ChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	common := model.GetCommonOptions(&model.Options{}, opts...)

	reqBody := chatCompletionRequest{
		Model:       c.modelName,
		Messages:    messages,
		Temperature: common.Temperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat backend returned status %d: %s", resp.StatusCode, string(body))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("chat backend returned no choices")
	}

	choice := completion.Choices[0].Message
	return &schema.Message{
		Role:    schema.RoleType(choice.Role),
		Content: choice.Content,
	}, nil
}

// Stream implements model.BaseChatModel. Streaming is not needed by this
// application and the backend wrapper does not support it.
func (c *ChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming is not supported")
}
