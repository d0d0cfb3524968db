// Package store holds the university catalog backends. Each backend
// answers a search.Request either natively or by in-process evaluation.
package store

import (
	"context"
	"errors"

	"university-matcher/internal/models"
	"university-matcher/internal/search"
)

const defaultPageSize = 500

// ErrNotFound is returned by Get when no document has the id.
var ErrNotFound = errors.New("university not found")

// Hit is one search result in store order.
type Hit struct {
	University models.University
	Score      float64
}

// SearchResult holds the returned hits and the number of documents that
// matched before the size bound applied.
type SearchResult struct {
	Hits  []Hit
	Total int64
}

type Store interface {
	Search(ctx context.Context, req search.Request) (*SearchResult, error)
	Get(ctx context.Context, id string) (*models.University, error)
	Ping(ctx context.Context) error
}
