// Package odmtest provides an in-memory odm collection for tests of the Mongo-backed stores.
package odmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var ErrUnsupported = errors.New("odmtest: operation not supported")

// FindCall records the arguments of a single Find.
type FindCall struct {
	Filter bson.M
	Sort   bson.D
	Limit  int64
	Skip   int64
}

// Collection keeps documents by id and records every query it receives.
// Find and the search methods return whatever the matching hook returns.
type Collection[T odm.DbModel] struct {
	FindFunc         func(call FindCall) ([]T, error)
	TermSearchFunc   func(query string, params odm.TermSearchParams) ([]odm.SearchHit[T], error)
	VectorSearchFunc func(embedding []float32, params odm.VectorSearchParams) ([]odm.SearchHit[T], error)
	SaveErr          error

	mu             sync.Mutex
	docs           map[string]T
	saves          []T
	finds          []FindCall
	termSearches   []odm.TermSearchParams
	vectorSearches []odm.VectorSearchParams
}

func NewCollection[T odm.DbModel](seed ...T) *Collection[T] {
	c := &Collection[T]{docs: map[string]T{}}
	for _, doc := range seed {
		c.docs[doc.Id()] = doc
	}
	return c
}

// Doc returns the stored document with the given id.
func (c *Collection[T]) Doc(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	return doc, ok
}

func (c *Collection[T]) Saves() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.saves...)
}

func (c *Collection[T]) Finds() []FindCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]FindCall(nil), c.finds...)
}

func (c *Collection[T]) TermSearches() []odm.TermSearchParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]odm.TermSearchParams(nil), c.termSearches...)
}

func (c *Collection[T]) VectorSearches() []odm.VectorSearchParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]odm.VectorSearchParams(nil), c.vectorSearches...)
}

func (c *Collection[T]) Save(_ context.Context, model T) <-chan async.Result[struct{}] {
	return async.Go(func() (struct{}, error) {
		if c.SaveErr != nil {
			return struct{}{}, c.SaveErr
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.docs[model.Id()] = model
		c.saves = append(c.saves, model)
		return struct{}{}, nil
	})
}

func (c *Collection[T]) FindOneByID(_ context.Context, id string) <-chan async.Result[*T] {
	return async.Go(func() (*T, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		doc, ok := c.docs[id]
		if !ok {
			return nil, mongo.ErrNoDocuments
		}
		return &doc, nil
	})
}

func (c *Collection[T]) FindOne(_ context.Context, _ bson.M) <-chan async.Result[*T] {
	return async.Go(func() (*T, error) { return nil, ErrUnsupported })
}

func (c *Collection[T]) Find(_ context.Context, filters bson.M, sort bson.D, limit, skip int64) <-chan async.Result[[]T] {
	call := FindCall{Filter: filters, Sort: sort, Limit: limit, Skip: skip}
	c.mu.Lock()
	c.finds = append(c.finds, call)
	c.mu.Unlock()

	return async.Go(func() ([]T, error) {
		if c.FindFunc == nil {
			return nil, ErrUnsupported
		}
		return c.FindFunc(call)
	})
}

func (c *Collection[T]) DeleteByID(_ context.Context, id string) <-chan async.Result[struct{}] {
	return async.Go(func() (struct{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.docs, id)
		return struct{}{}, nil
	})
}

func (c *Collection[T]) DeleteOne(_ context.Context, _ bson.M) <-chan async.Result[struct{}] {
	return async.Go(func() (struct{}, error) { return struct{}{}, ErrUnsupported })
}

func (c *Collection[T]) Count(_ context.Context, _ bson.M) <-chan async.Result[int64] {
	return async.Go(func() (int64, error) { return 0, ErrUnsupported })
}

func (c *Collection[T]) DistinctInto(_ context.Context, _ string, _ bson.D, _ any) error {
	return ErrUnsupported
}

func (c *Collection[T]) Aggregate(_ context.Context, _ mongo.Pipeline) <-chan async.Result[[]T] {
	return async.Go(func() ([]T, error) { return nil, ErrUnsupported })
}

func (c *Collection[T]) Exists(_ context.Context, id string) <-chan async.Result[bool] {
	return async.Go(func() (bool, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		_, ok := c.docs[id]
		return ok, nil
	})
}

func (c *Collection[T]) VectorSearch(_ context.Context, embedding []float32, params odm.VectorSearchParams) <-chan async.Result[[]odm.SearchHit[T]] {
	c.mu.Lock()
	c.vectorSearches = append(c.vectorSearches, params)
	c.mu.Unlock()

	return async.Go(func() ([]odm.SearchHit[T], error) {
		if c.VectorSearchFunc == nil {
			return nil, ErrUnsupported
		}
		return c.VectorSearchFunc(embedding, params)
	})
}

func (c *Collection[T]) TermSearch(_ context.Context, query string, params odm.TermSearchParams) <-chan async.Result[[]odm.SearchHit[T]] {
	c.mu.Lock()
	c.termSearches = append(c.termSearches, params)
	c.mu.Unlock()

	return async.Go(func() ([]odm.SearchHit[T], error) {
		if c.TermSearchFunc == nil {
			return nil, ErrUnsupported
		}
		return c.TermSearchFunc(query, params)
	})
}
