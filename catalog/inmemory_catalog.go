package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// InMemoryCatalog serves a fixed product list. Used for local runs and tests.
type InMemoryCatalog struct {
	mu            sync.RWMutex
	products      []db.ProductModel
	minSimilarity float64
}

func NewInMemoryCatalog(products ...db.ProductModel) *InMemoryCatalog {
	return &InMemoryCatalog{products: products, minSimilarity: DefaultMinSimilarity}
}

// LoadSeedFile reads a JSON array of products. Embeddings are not part of the file.
func LoadSeedFile(path string) ([]db.ProductModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read product seed: %w", err)
	}

	var products []db.ProductModel
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse product seed: %w", err)
	}
	return products, nil
}

// EmbedMissing computes embeddings for products that have none. Failures leave the
// product without a vector, so it is only reachable through the keyword and recency tiers.
func (c *InMemoryCatalog) EmbedMissing(ctx context.Context, embedder llm.Embedder) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	embedded := 0
	for i := range c.products {
		p := &c.products[i]
		if p.EmbeddingValues() != nil {
			continue
		}

		emb, err := embedder.Embed(ctx, p.Name+" "+p.Brand+"\n"+p.Description)
		if err != nil {
			logger.Error("Failed to embed product", zap.String("productId", p.ProductID), zap.Error(err))
			continue
		}
		p.Embedding = bson.NewVector(emb)
		embedded++
	}
	return embedded
}

func (c *InMemoryCatalog) SemanticSearch(_ context.Context, embedding []float32, limit int) ([]ScoredProduct, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	scored := []ScoredProduct{}
	for _, m := range c.products {
		if !m.IsActive {
			continue
		}
		score := cosineSimilarity(embedding, m.EmbeddingValues())
		if score < c.minSimilarity {
			continue
		}
		scored = append(scored, ScoredProduct{Product: Project(m), Score: score, Tier: TierSemantic})
	}
	return topK(scored, limit), nil
}

func (c *InMemoryCatalog) KeywordSearch(_ context.Context, query string, limit int) ([]ScoredProduct, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	queryTokens := tokenize(query)
	scored := []ScoredProduct{}
	for _, m := range c.products {
		if !m.IsActive {
			continue
		}
		p := Project(m)
		if score := keywordScore(queryTokens, p); score > 0 {
			scored = append(scored, ScoredProduct{Product: p, Score: score, Tier: TierKeyword})
		}
	}
	return topK(scored, limit), nil
}

func (c *InMemoryCatalog) RecentInStock(_ context.Context, limit int) ([]ScoredProduct, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return recentInStock(c.products, limit), nil
}
