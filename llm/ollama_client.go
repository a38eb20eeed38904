package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaClient runs chat completions against a local Ollama server.
type OllamaClient struct {
	cli   *api.Client
	model string
}

func NewOllamaClient(cli *api.Client, model string) LLMClient {
	return &OllamaClient{cli: cli, model: model}
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := newSettings(c.model, opts)

	chatMessages := make([]api.Message, 0, len(messages)+1)
	if system := settings.systemPrompt(); system != "" {
		chatMessages = append(chatMessages, api.Message{Role: "system", Content: system})
	}
	for _, m := range messages {
		chatMessages = append(chatMessages, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := settings.stream
	req := &api.ChatRequest{
		Model:     settings.model,
		Messages:  chatMessages,
		Stream:    &stream,
		KeepAlive: &api.Duration{Duration: 30 * time.Minute},
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}
	if settings.jsonMode {
		req.Format = json.RawMessage(`"json"`)
	}

	err := c.cli.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" || callback == nil {
			return nil
		}
		return callback(resp.Message.Content)
	})
	if err != nil {
		return fmt.Errorf("ollama chat: %w", err)
	}
	return nil
}
