package llm

import (
	"context"
)

// LLMClient is the completion capability consumed by the assistant agents.
type LLMClient interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	GetModel() string
}

type LLMSettings struct {
	model       string  // model name
	temperature float64 // randomness (0.0 to 1.0)
	maxTokens   int     // maximum tokens to generate
	system      string  // system prompt
	stream      bool    // whether to stream response
	jsonMode    bool    // constrain output to a single JSON object
}

type LLMOption func(*LLMSettings)

// Common options for all LLM providers
func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

func WithStreaming(stream bool) LLMOption {
	return func(s *LLMSettings) { s.stream = stream }
}

// WithJSONResponse asks the provider for a single JSON object. Providers without
// a native JSON mode get an instruction appended to the system prompt.
func WithJSONResponse() LLMOption {
	return func(s *LLMSettings) { s.jsonMode = true }
}

func newSettings(model string, opts []LLMOption) LLMSettings {
	settings := LLMSettings{
		model:       model,
		temperature: 0.7,
		maxTokens:   4096,
	}

	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

const jsonOnlyInstruction = "Respond with a single valid JSON object and nothing else."

func (s LLMSettings) systemPrompt() string {
	if !s.jsonMode {
		return s.system
	}
	if s.system == "" {
		return jsonOnlyInstruction
	}
	return s.system + "\n\n" + jsonOnlyInstruction
}

type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // the message content
}
