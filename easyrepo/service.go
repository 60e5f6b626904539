package easyrepo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-playground/validator/v10"

	"github.com/raywall/dynamo-read-toolkit/dyndb"
)

// EasyService centralizes read access and data validation for a table.
// It encapsulates the repository and uses the validator to ensure that items
// coming out of DynamoDB respect the schema declared in the struct tags.
type EasyService[T any] struct {
	valid *validator.Validate
	repo  *EasyRepository[T]
	mode  dyndb.DecodeMode
}

// ServiceOption customizes an EasyService
type ServiceOption[T any] func(*EasyService[T])

// WithStrictDecoding makes schema violations abort the read instead of being
// collected next to the successful items
func WithStrictDecoding[T any]() ServiceOption[T] {
	return func(s *EasyService[T]) { s.mode = dyndb.Strict }
}

// NewService creates a new EasyService instance with a default validator and configured repository
func NewService[T any](client *dynamodb.Client, tableConfig dyndb.TableConfig[T], opts ...ServiceOption[T]) (*EasyService[T], error) {
	s := &EasyService[T]{
		valid: validator.New(),
		repo:  NewRepository(client, tableConfig),
		mode:  dyndb.Lenient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterValidation allows adding custom validation rules to validator
func (s *EasyService[T]) RegisterValidation(name string, fn validator.Func) error {
	if s.valid == nil {
		s.valid = validator.New()
	}
	if err := s.valid.RegisterValidation(name, fn); err != nil {
		return err
	}
	return nil
}

// Get retrieves an item through its HashKey (pk) and SortKey (sk)
// Returns ErrInvalidInput if required keys are null
func (s *EasyService[T]) Get(ctx context.Context, pk, sk any) (*T, error) {
	if s.repo.Config.HashKey != "" && pk == nil {
		return nil, ErrInvalidInput
	}
	if s.repo.Config.SortKey != "" && sk == nil {
		return nil, ErrInvalidInput
	}
	return s.repo.get(ctx, pk, sk)
}

// BatchGet retrieves several items by key in as few round trips as possible
func (s *EasyService[T]) BatchGet(ctx context.Context, keys [][2]any) ([]T, error) {
	if len(keys) == 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.batchGet(ctx, keys)
}

// List returns one page of table items (Scan) plus the cursor for the next
// page. Pass token="" for the first page; an empty returned token means the
// table was exhausted
func (s *EasyService[T]) List(ctx context.Context, token string) ([]T, string, error) {
	return s.repo.list(ctx, token, s.readerOpts()...)
}

// ListAll walks every page of the table, applying fn to each item as pages
// arrive. Memory stays proportional to one page
func (s *EasyService[T]) ListAll(ctx context.Context, fn func(item T) error) error {
	reader, err := s.repo.listReader(s.readerOpts()...)
	if err != nil {
		return err
	}
	return reader.Recursive().Each(ctx, fn)
}

// Find builds a controlled reader over a query; the caller decides between
// page-by-page (NextPage) and full traversal (Recursive)
func (s *EasyService[T]) Find(filters ...dyndb.QueryFilter[T]) (*dyndb.Reader[T], error) {
	return s.repo.queryReader(filters, s.readerOpts()...)
}

// Count counts matching items without decoding them
func (s *EasyService[T]) Count(ctx context.Context, filters ...dyndb.QueryFilter[T]) (int, error) {
	return s.repo.count(ctx, filters)
}

func (s *EasyService[T]) readerOpts() []dyndb.ReaderOption[T] {
	return []dyndb.ReaderOption[T]{
		dyndb.WithDecoder(dyndb.NewValidatingDecoder[T](s.valid)),
		dyndb.WithDecodeMode[T](s.mode),
	}
}
