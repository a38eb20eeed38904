package agent

import (
	"context"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/shop-assistant/catalog"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"github.com/SaiNageswarS/shop-assistant/prompts"
	"go.uber.org/zap"
)

const FallbackReply = "Xin lỗi, hệ thống đang bận nên mình chưa trả lời được. Bạn vui lòng thử lại sau ít phút nhé."

type ResponseGenerator struct {
	client        llm.LLMClient
	timeout       time.Duration
	shopName      string
	assistantName string
}

func NewResponseGenerator(client llm.LLMClient, timeout time.Duration, shopName, assistantName string) *ResponseGenerator {
	return &ResponseGenerator{
		client:        client,
		timeout:       timeout,
		shopName:      shopName,
		assistantName: assistantName,
	}
}

// Generate returns the model's reply verbatim, or FallbackReply when the call fails.
// fallback reports which of the two happened.
func (g *ResponseGenerator) Generate(ctx context.Context, history []db.TurnModel, message string, products []catalog.Product) (reply string, fallback bool) {
	systemPrompt, err := prompts.RenderAnswerPrompt(prompts.AnswerPromptData{
		ShopName:      g.shopName,
		AssistantName: g.assistantName,
		Products:      products,
		History:       historyMessages(history),
	})
	if err != nil {
		logger.Error("Failed to render answer prompt", zap.Error(err))
		return FallbackReply, true
	}

	callCtx, cancel := llm.WithTimeout(ctx, g.timeout)
	defer cancel()

	reply, err = llm.Complete(callCtx, g.client,
		[]llm.Message{{Role: "user", Content: message}},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(1024),
	)
	if err != nil {
		logger.Error("Response generation failed", zap.Error(err))
		return FallbackReply, true
	}
	return reply, false
}

func (g *ResponseGenerator) Model() string {
	return g.client.GetModel()
}
