package catalog

import (
	"context"
	"math"

	"github.com/SaiNageswarS/shop-assistant/db"
)

// Retrieval tiers, in cascade order.
const (
	TierSemantic = "semantic"
	TierKeyword  = "keyword"
	TierRecency  = "recency"
)

// DefaultMinSimilarity drops semantic hits that are unrelated to the query.
const DefaultMinSimilarity = 0.3

// Product is the read-only projection handed to the agents. It never carries the embedding.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand"`
	Category    string            `json:"category,omitempty"`
	Price       float64           `json:"price"`
	Description string            `json:"description"`
	Specs       map[string]string `json:"specs,omitempty"`
	Stock       int               `json:"stock"`
	IsActive    bool              `json:"isActive"`
	CreatedOn   int64             `json:"createdOn"`
}

type ScoredProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
	Tier    string  `json:"tier"`
}

// Catalog is the product lookup capability. Every method returns active products only.
type Catalog interface {
	SemanticSearch(ctx context.Context, embedding []float32, limit int) ([]ScoredProduct, error)
	KeywordSearch(ctx context.Context, query string, limit int) ([]ScoredProduct, error)
	// RecentInStock returns the newest active products with positive stock.
	RecentInStock(ctx context.Context, limit int) ([]ScoredProduct, error)
}

func Project(m db.ProductModel) Product {
	return Product{
		ID:          m.ProductID,
		Name:        m.Name,
		Brand:       m.Brand,
		Category:    m.Category,
		Price:       m.Price,
		Description: m.Description,
		Specs:       m.Specs,
		Stock:       m.Stock,
		IsActive:    m.IsActive,
		CreatedOn:   m.CreatedOn,
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
