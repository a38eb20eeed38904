package agent

import (
	"context"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/shop-assistant/catalog"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultRetrievalLimit = 5

// Retrieval is the cascade outcome. Tier is empty when every tier came back empty.
type Retrieval struct {
	Products []catalog.ScoredProduct
	Tier     string
	// FailedTiers lists tiers whose call errored, as opposed to returning nothing.
	FailedTiers []string
}

// Plain drops the scores, keeping rank order.
func (r Retrieval) Plain() []catalog.Product {
	out := make([]catalog.Product, len(r.Products))
	for i, p := range r.Products {
		out[i] = p.Product
	}
	return out
}

// ProductRetriever runs semantic, then keyword, then recency search, moving to the
// next tier only when the previous one produced nothing. A failing tier counts as empty.
type ProductRetriever struct {
	catalog      catalog.Catalog
	embedder     llm.Embedder
	embedTimeout time.Duration
}

func NewProductRetriever(c catalog.Catalog, embedder llm.Embedder, embedTimeout time.Duration) *ProductRetriever {
	return &ProductRetriever{catalog: c, embedder: embedder, embedTimeout: embedTimeout}
}

func (r *ProductRetriever) Retrieve(ctx context.Context, query string, limit int) Retrieval {
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}

	var out Retrieval

	tiers := []struct {
		name string
		run  func() ([]catalog.ScoredProduct, error)
	}{
		{catalog.TierSemantic, func() ([]catalog.ScoredProduct, error) { return r.semantic(ctx, query, limit) }},
		{catalog.TierKeyword, func() ([]catalog.ScoredProduct, error) { return r.catalog.KeywordSearch(ctx, query, limit) }},
		{catalog.TierRecency, func() ([]catalog.ScoredProduct, error) { return r.catalog.RecentInStock(ctx, limit) }},
	}

	for _, tier := range tiers {
		products, err := tier.run()
		if err != nil {
			err = status.Errorf(codes.Internal, "%s search: %v", tier.name, err)
			logger.Error("Retrieval tier failed", zap.String("tier", tier.name), zap.String("query", query), zap.Error(err))
			out.FailedTiers = append(out.FailedTiers, tier.name)
			continue
		}
		if len(products) == 0 {
			logger.Info("Retrieval tier empty", zap.String("tier", tier.name), zap.String("query", query))
			continue
		}

		if len(products) > limit {
			products = products[:limit]
		}
		out.Products = products
		out.Tier = tier.name
		return out
	}

	out.Products = []catalog.ScoredProduct{}
	return out
}

func (r *ProductRetriever) semantic(ctx context.Context, query string, limit int) ([]catalog.ScoredProduct, error) {
	if r.embedder == nil {
		return nil, status.Error(codes.Unavailable, "no embedder configured")
	}

	embedCtx, cancel := llm.WithTimeout(ctx, r.embedTimeout)
	emb, err := r.embedder.Embed(embedCtx, query)
	cancel()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "embed: %v", err)
	}
	if len(emb) == 0 {
		return nil, status.Error(codes.Internal, "query embedding is empty")
	}

	return r.catalog.SemanticSearch(ctx, emb, limit)
}
