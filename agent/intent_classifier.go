package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"github.com/SaiNageswarS/shop-assistant/prompts"
	"go.uber.org/zap"
)

type Classification struct {
	Intent         Intent
	ClarifiedQuery string
	DirectResponse *string
	// Fallback is set when the model output was unusable and the default path was taken.
	Fallback bool
}

type IntentClassifier struct {
	client  llm.LLMClient
	timeout time.Duration
}

func NewIntentClassifier(client llm.LLMClient, timeout time.Duration) *IntentClassifier {
	return &IntentClassifier{client: client, timeout: timeout}
}

type classificationPayload struct {
	Intent         *string `json:"intent"`
	ClarifiedQuery *string `json:"clarified_query"`
	DirectResponse *string `json:"direct_response"`
}

// Classify labels the latest message. It never fails: any error or malformed
// output yields product_query with the raw message as the query.
func (c *IntentClassifier) Classify(ctx context.Context, history []db.TurnModel, message string) Classification {
	systemPrompt, userPrompt, err := prompts.RenderIntentPrompt(historyMessages(history), message)
	if err != nil {
		logger.Error("Failed to render intent prompt", zap.Error(err))
		return failOpen(message)
	}

	callCtx, cancel := llm.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := llm.Complete(callCtx, c.client,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithJSONResponse(),
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(512),
	)
	if err != nil {
		logger.Error("Intent classification failed", zap.Error(err))
		return failOpen(message)
	}

	classification, err := parseClassification(response, message)
	if err != nil {
		logger.Error("Unusable intent classification", zap.String("response", response), zap.Error(err))
		return failOpen(message)
	}
	return classification
}

func parseClassification(response, message string) (Classification, error) {
	jsonStr, err := llm.ExtractJSON(response)
	if err != nil {
		return Classification{}, err
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return Classification{}, err
	}

	if payload.Intent == nil {
		return Classification{}, errMissingField("intent")
	}
	intent := Intent(strings.TrimSpace(*payload.Intent))
	if !intent.Valid() {
		return Classification{}, errInvalidValue("intent", *payload.Intent)
	}

	out := Classification{Intent: intent}
	if intent == IntentProductQuery {
		out.ClarifiedQuery = message
		if payload.ClarifiedQuery != nil && strings.TrimSpace(*payload.ClarifiedQuery) != "" {
			out.ClarifiedQuery = strings.TrimSpace(*payload.ClarifiedQuery)
		}
	}
	if payload.DirectResponse != nil && strings.TrimSpace(*payload.DirectResponse) != "" {
		direct := strings.TrimSpace(*payload.DirectResponse)
		out.DirectResponse = &direct
	}
	return out, nil
}

func failOpen(message string) Classification {
	return Classification{
		Intent:         IntentProductQuery,
		ClarifiedQuery: message,
		Fallback:       true,
	}
}
