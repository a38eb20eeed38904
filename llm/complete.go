package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNoJSON = errors.New("no valid JSON found in response")

// Complete runs a single inference and returns the accumulated text.
func Complete(ctx context.Context, client LLMClient, messages []Message, opts ...LLMOption) (string, error) {
	var sb strings.Builder
	err := client.GenerateInference(ctx, messages, func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	}, opts...)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(sb.String()), nil
}

// WithTimeout bounds a single external call. A zero timeout leaves ctx as is.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// ExtractJSON returns the outermost {...} span of a model response. Models tend
// to wrap JSON in prose or code fences even when told not to.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)

	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || startIdx >= endIdx {
		return "", ErrNoJSON
	}

	return response[startIdx : endIdx+1], nil
}
