// Package store provides generic document persistence over MongoDB
// collections addressed by logical model name, with offset pagination and
// an optional bounded-staleness read cache.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

// FindOptions shapes a read. Sort and Projection are fixed bson documents
// chosen per query method by the repositories.
type FindOptions struct {
	Sort         bson.D
	Projection   bson.D
	Limit        int64
	Skip         int64
	DisableCache bool
}

// UpdateOptions carries mongo array filters for positional updates.
type UpdateOptions struct {
	ArrayFilters []interface{}
}

// PageQuery is the caller-supplied slice of an offset-paginated read.
// Page and Limit are clamped by the adapter.
type PageQuery struct {
	Page       int
	Limit      int
	Sort       bson.D
	Projection bson.D
}

// Store is the document store contract. Mutating calls stamp updated_at
// and strip caller-supplied created_at/updated_at from $set payloads.
// Underlying store errors are logged with operation context and returned
// verbatim; translation to domain errors is the service layer's job.
type Store interface {
	Find(ctx context.Context, model string, criteria bson.M, opts FindOptions, out interface{}) error
	FindOne(ctx context.Context, model string, criteria bson.M, opts FindOptions, out interface{}) error
	FindByID(ctx context.Context, model, id string, out interface{}) error
	Insert(ctx context.Context, model string, doc interface{}) error
	Update(ctx context.Context, model string, criteria, update bson.M, opts *UpdateOptions) (int64, error)
	UpdateMany(ctx context.Context, model string, criteria, update bson.M) (int64, error)
	FindOneAndUpdate(ctx context.Context, model string, criteria, update bson.M, out interface{}) error
	Delete(ctx context.Context, model string, criteria bson.M) error
	Count(ctx context.Context, model string, criteria bson.M) (int64, error)
	Exists(ctx context.Context, model string, criteria bson.M) (bool, error)
	Paginate(ctx context.Context, model string, criteria bson.M, q PageQuery, out interface{}) (*Pagination, error)
	EnsureIndexes(ctx context.Context, model string, indexes []mongo.IndexModel) error
}
