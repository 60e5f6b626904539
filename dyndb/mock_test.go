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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
)

// ClientMock é um mock testify para a interface DynamoDBClient
type ClientMock struct {
	mock.Mock
}

func (m *ClientMock) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *ClientMock) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.BatchGetItemOutput), args.Error(1)
}

func (m *ClientMock) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func (m *ClientMock) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

// TestItem é uma estrutura de teste simples
type TestItem struct {
	ID    string `dynamodbav:"id"`
	Name  string `dynamodbav:"name"`
	Email string `dynamodbav:"email" validate:"omitempty,email"`
}

// TestItemWithSortKey é uma estrutura com chave composta
type TestItemWithSortKey struct {
	PK   string `dynamodbav:"pk"`
	SK   string `dynamodbav:"sk"`
	Data string `dynamodbav:"data"`
}

func createTestStore(client DynamoDBClient) Store[TestItem] {
	return New(client, TableConfig[TestItem]{
		TableName: "test-table",
		HashKey:   "id",
	})
}

func createCompositeStore(client DynamoDBClient) Store[TestItemWithSortKey] {
	return New(client, TableConfig[TestItemWithSortKey]{
		TableName: "composite-table",
		HashKey:   "pk",
		SortKey:   "sk",
	})
}

func stringAttr(v string) awsAttributeValue { return &types.AttributeValueMemberS{Value: v} }
func numberAttr(v string) awsAttributeValue { return &types.AttributeValueMemberN{Value: v} }

// rawTestItem monta o item bruto com os campos de TestItem
func rawTestItem(id, name string) RawItem {
	return RawItem{
		"id":   &types.AttributeValueMemberS{Value: id},
		"name": &types.AttributeValueMemberS{Value: name},
	}
}

// pageOf monta uma página com cursor apontando para o último item
func pageOf(items ...RawItem) *Page {
	p := &Page{Items: items, Count: int32(len(items)), ScannedCount: int32(len(items))}
	if len(items) > 0 {
		last := items[len(items)-1]
		p.Cursor = cursorFrom(map[string]types.AttributeValue{"id": last["id"]})
	}
	return p
}
