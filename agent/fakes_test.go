package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/SaiNageswarS/shop-assistant/catalog"
	"github.com/SaiNageswarS/shop-assistant/llm"
)

// scriptedLLM replies with the queued responses in order; an empty queue is an error.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     [][]llm.Message
}

func newScriptedLLM(responses ...string) *scriptedLLM {
	return &scriptedLLM{responses: responses}
}

func (s *scriptedLLM) GenerateInference(_ context.Context, messages []llm.Message, callback func(chunk string) error, _ ...llm.LLMOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, messages)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return err
		}
	}
	if len(s.responses) == 0 {
		return errors.New("no scripted response")
	}

	resp := s.responses[0]
	s.responses = s.responses[1:]
	return callback(resp)
}

func (s *scriptedLLM) GetModel() string { return "scripted-model" }

// blockingLLM waits for the context to end.
type blockingLLM struct{}

func (blockingLLM) GenerateInference(ctx context.Context, _ []llm.Message, _ func(chunk string) error, _ ...llm.LLMOption) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingLLM) GetModel() string { return "blocking" }

type stubEmbedder struct {
	vec []float32
	err error
}

func (e *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return e.vec, e.err
}

type stubCatalog struct {
	semantic, keyword, recent          []catalog.ScoredProduct
	semanticErr, keywordErr, recentErr error
	calls                              []string
}

func (c *stubCatalog) SemanticSearch(_ context.Context, _ []float32, _ int) ([]catalog.ScoredProduct, error) {
	c.calls = append(c.calls, catalog.TierSemantic)
	return c.semantic, c.semanticErr
}

func (c *stubCatalog) KeywordSearch(_ context.Context, _ string, _ int) ([]catalog.ScoredProduct, error) {
	c.calls = append(c.calls, catalog.TierKeyword)
	return c.keyword, c.keywordErr
}

func (c *stubCatalog) RecentInStock(_ context.Context, limit int) ([]catalog.ScoredProduct, error) {
	c.calls = append(c.calls, catalog.TierRecency)
	if len(c.recent) > limit {
		return c.recent[:limit], c.recentErr
	}
	return c.recent, c.recentErr
}

func scored(tier string, ids ...string) []catalog.ScoredProduct {
	out := make([]catalog.ScoredProduct, len(ids))
	for i, id := range ids {
		out[i] = catalog.ScoredProduct{
			Product: catalog.Product{ID: id, Name: "Product " + id, IsActive: true, Stock: 1},
			Score:   1,
			Tier:    tier,
		}
	}
	return out
}
