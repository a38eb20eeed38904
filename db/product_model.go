package db

import (
	"github.com/SaiNageswarS/go-api-boot/odm"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const EmbeddingDimensions = 768 // nomic-embed-text

// ProductModel is owned by the catalog service. The assistant only reads it.
type ProductModel struct {
	ProductID   string            `json:"productId" bson:"_id"`
	Name        string            `json:"name" bson:"name"`
	Brand       string            `json:"brand" bson:"brand"`
	Category    string            `json:"category" bson:"category"`
	Price       float64           `json:"price" bson:"price"`
	Description string            `json:"description" bson:"description"`
	Specs       map[string]string `json:"specs" bson:"specs"`
	Stock       int               `json:"stock" bson:"stock"`
	IsActive    bool              `json:"isActive" bson:"isActive"`
	CreatedOn   int64             `json:"createdOn" bson:"createdOn"`
	Embedding   bson.Vector       `json:"-" bson:"embedding"`
}

func (m ProductModel) Id() string { return m.ProductID }

func (m ProductModel) CollectionName() string { return "products" }

// Indexes
func (m ProductModel) TermSearchIndexSpecs() []odm.TermSearchIndexSpec {
	return []odm.TermSearchIndexSpec{
		{
			Name:  "productTextIndex",
			Paths: []string{"name", "description", "brand"},
		},
	}
}

func (m ProductModel) VectorIndexSpecs() []odm.VectorIndexSpec {
	return []odm.VectorIndexSpec{
		{
			Name:          "productEmbeddingIndex",
			Path:          "embedding",
			Type:          "vector",
			NumDimensions: EmbeddingDimensions,
			Similarity:    "cosine",
			Quantization:  "scalar",
		},
	}
}

// EmbeddingValues returns the stored vector as float32s, or nil if none is stored.
func (m ProductModel) EmbeddingValues() []float32 {
	values, ok := m.Embedding.Float32OK()
	if !ok {
		return nil
	}
	return values
}
