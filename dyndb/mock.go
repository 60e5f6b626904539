// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package dyndb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// StaticPages devolve um PageFetcher que serve as páginas informadas, em
// ordem, sem tocar a rede. A última página sai com cursor zerado. Útil para
// testar consumidores de Reader sem um MockDynamoClient.
func StaticPages(pages ...*Page) PageFetcher {
	idx := 0
	return func(ctx context.Context, cursor Cursor) (*Page, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if idx >= len(pages) {
			return &Page{}, nil
		}
		page := pages[idx]
		idx++
		if idx >= len(pages) {
			cleared := *page
			cleared.Cursor = Cursor{}
			return &cleared, nil
		}
		return page, nil
	}
}

// MockStore é um mock fácil de usar para testes da interface Store[T].
//
// Ele expõe campos de função (`GetFn`, `BatchGetFn`, `PagesFn`) que podem ser
// definidos para simular o comportamento desejado do DynamoDB durante os
// testes. Query e Scan funcionam de verdade em cima do Client informado (ou
// das páginas de PagesFn).
type MockStore[T any] struct {
	Config TableConfig[T]
	Client DynamoDBClient

	GetFn      func(ctx context.Context, hashKey, sortKey any) (*T, error)
	BatchGetFn func(ctx context.Context, keys [][2]any) ([]T, error)
	PagesFn    func() []*Page
}

func (m *MockStore[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, hashKey, sortKey)
	}
	return nil, ErrNotFound
}

func (m *MockStore[T]) BatchGet(ctx context.Context, keys [][2]any) ([]T, error) {
	if m.BatchGetFn != nil {
		return m.BatchGetFn(ctx, keys)
	}
	return nil, nil
}

func (m *MockStore[T]) Query() *QueryBuilder[T] {
	return m.backing().Query()
}

func (m *MockStore[T]) Scan() *QueryBuilder[T] {
	return m.backing().Scan()
}

func (m *MockStore[T]) NewReader(plan *Plan, opts ...ReaderOption[T]) *Reader[T] {
	if m.PagesFn != nil {
		return NewReader(StaticPages(m.PagesFn()...), opts...)
	}
	return m.backing().NewReader(plan, opts...)
}

func (m *MockStore[T]) backing() *dynamoStore[T] {
	return &dynamoStore[T]{client: m.Client, cfg: m.Config}
}

// MockDynamoClient é um mock de campos de função para a interface
// DynamoDBClient de baixo nível.
//
// Permite testar a lógica interna do `dynamoStore` sem tocar no AWS SDK.
type MockDynamoClient struct {
	GetItemFn      func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchGetItemFn func(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	QueryFn        func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	ScanFn         func(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

func (m *MockDynamoClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.GetItemFn != nil {
		return m.GetItemFn(ctx, params, optFns...)
	}
	return nil, ErrNotFound
}

func (m *MockDynamoClient) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	if m.BatchGetItemFn != nil {
		return m.BatchGetItemFn(ctx, params, optFns...)
	}
	return nil, ErrNotFound
}

func (m *MockDynamoClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.QueryFn != nil {
		return m.QueryFn(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *MockDynamoClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.ScanFn != nil {
		return m.ScanFn(ctx, params, optFns...)
	}
	return &dynamodb.ScanOutput{}, nil
}
