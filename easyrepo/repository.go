package easyrepo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/raywall/dynamo-read-toolkit/dyndb"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidInput = errors.New("invalid input")
)

// EasyRepository manages direct communication with the DynamoDB driver (dyndb)
// Its methods are internal to the package, encouraging use through EasyService
type EasyRepository[T any] struct {
	Config dyndb.TableConfig[T]
	Store  dyndb.Store[T]
}

// NewRepository initializes read storage for generic type T
func NewRepository[T any](client *dynamodb.Client, tableConfig dyndb.TableConfig[T], opts ...dyndb.FetchOption) *EasyRepository[T] {
	return &EasyRepository[T]{
		Config: tableConfig,
		Store:  dyndb.New(client, tableConfig, opts...),
	}
}

// get retrieves a single item through the table primary key
func (r *EasyRepository[T]) get(ctx context.Context, pk, sk any) (*T, error) {
	item, err := r.Store.Get(ctx, pk, sk)
	if errors.Is(err, dyndb.ErrNotFound) {
		return nil, ErrItemNotFound
	}
	return item, err
}

// batchGet retrieves up to 100 items per round trip
func (r *EasyRepository[T]) batchGet(ctx context.Context, keys [][2]any) ([]T, error) {
	return r.Store.BatchGet(ctx, keys)
}

// list performs a single-page Scan on the DynamoDB table, returning the
// resume token for the next page ("" when the table is exhausted). Reader
// options from the service (validator, decode mode) apply here too
func (r *EasyRepository[T]) list(ctx context.Context, token string, opts ...dyndb.ReaderOption[T]) ([]T, string, error) {
	reader, err := r.Store.Scan().LastKey(token).Reader(opts...)
	if err != nil {
		return nil, "", err
	}
	page, err := reader.NextPage(ctx)
	if err != nil {
		return nil, "", err
	}
	return page.Items, page.Token, nil
}

// listReader builds a full-scan reader; callers drive the pagination
func (r *EasyRepository[T]) listReader(opts ...dyndb.ReaderOption[T]) (*dyndb.Reader[T], error) {
	return r.Store.Scan().Reader(opts...)
}

// queryReader builds a reader over an arbitrary query
func (r *EasyRepository[T]) queryReader(filters []dyndb.QueryFilter[T], opts ...dyndb.ReaderOption[T]) (*dyndb.Reader[T], error) {
	return r.Store.Query().Apply(filters...).Reader(opts...)
}

// count counts matching items without materializing them
func (r *EasyRepository[T]) count(ctx context.Context, filters []dyndb.QueryFilter[T]) (int, error) {
	qb := r.Store.Scan()
	if len(filters) > 0 {
		qb = r.Store.Query().Apply(filters...)
	}
	return qb.Count(ctx)
}
