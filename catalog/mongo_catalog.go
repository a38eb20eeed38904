package catalog

import (
	"context"
	"sort"

	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/shop-assistant/db"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// search parameters. Keyword search filters inactive products inside the query.
// The vector index carries only the embedding path, so semantic hits are
// over-fetched by vecOverFetch and filtered in process.
const (
	vectorIndexName = "productEmbeddingIndex"
	textIndexName   = "productTextIndex"
	vecOverFetch    = 10
	vecMinK         = 50
	vecCandidates   = 10
	recencyScan     = 50
)

var activeOnly = bson.M{"isActive": true}

var textSearchPaths = []string{"name", "description", "brand"}

type MongoCatalog struct {
	products      odm.OdmCollectionInterface[db.ProductModel]
	minSimilarity float64
}

func NewMongoCatalog(products odm.OdmCollectionInterface[db.ProductModel]) *MongoCatalog {
	return &MongoCatalog{products: products, minSimilarity: DefaultMinSimilarity}
}

func ProvideMongoCatalog(mongo odm.MongoClient, tenant string) *MongoCatalog {
	return NewMongoCatalog(odm.CollectionOf[db.ProductModel](mongo, tenant))
}

func (c *MongoCatalog) SemanticSearch(ctx context.Context, embedding []float32, limit int) ([]ScoredProduct, error) {
	k := max(limit*vecOverFetch, vecMinK)
	hits, err := async.Await(c.products.VectorSearch(ctx, embedding, odm.VectorSearchParams{
		IndexName:     vectorIndexName,
		Path:          "embedding",
		K:             k,
		NumCandidates: k * vecCandidates,
	}))
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredProduct, 0, len(hits))
	for _, h := range hits {
		if !h.Doc.IsActive {
			continue
		}
		score := cosineSimilarity(embedding, h.Doc.EmbeddingValues())
		if score < c.minSimilarity {
			continue
		}
		scored = append(scored, ScoredProduct{Product: Project(h.Doc), Score: score, Tier: TierSemantic})
	}
	return topK(scored, limit), nil
}

func (c *MongoCatalog) KeywordSearch(ctx context.Context, query string, limit int) ([]ScoredProduct, error) {
	hits, err := async.Await(c.products.TermSearch(ctx, query, odm.TermSearchParams{
		IndexName: textIndexName,
		Path:      textSearchPaths,
		Filter:    activeOnly,
		Limit:     max(limit, 1),
	}))
	if err != nil {
		return nil, err
	}

	// Search order is the relevance order; score by reciprocal rank.
	scored := make([]ScoredProduct, 0, len(hits))
	for _, h := range hits {
		if !h.Doc.IsActive {
			continue
		}
		scored = append(scored, ScoredProduct{Product: Project(h.Doc), Score: 1 / float64(len(scored)+1), Tier: TierKeyword})
		if len(scored) == limit {
			break
		}
	}
	return scored, nil
}

func (c *MongoCatalog) RecentInStock(ctx context.Context, limit int) ([]ScoredProduct, error) {
	filter := bson.M{"isActive": true, "stock": bson.M{"$gt": 0}}
	sortBy := bson.D{{Key: "createdOn", Value: -1}}

	found, err := async.Await(c.products.Find(ctx, filter, sortBy, recencyScan, 0))
	if err != nil {
		return nil, err
	}
	return recentInStock(found, limit), nil
}

func recentInStock(models []db.ProductModel, limit int) []ScoredProduct {
	eligible := make([]db.ProductModel, 0, len(models))
	for _, m := range models {
		if m.IsActive && m.Stock > 0 {
			eligible = append(eligible, m)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].CreatedOn > eligible[j].CreatedOn })

	if limit < 0 {
		limit = 0
	}
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}

	out := make([]ScoredProduct, len(eligible))
	for i, m := range eligible {
		out[i] = ScoredProduct{Product: Project(m), Tier: TierRecency}
	}
	return out
}
