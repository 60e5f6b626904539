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
)

// awsAttributeValue evita repetir o caminho completo do tipo do SDK.
type awsAttributeValue = types.AttributeValue

// DynamoDBClient é a fatia de leitura do cliente DynamoDB do SDK da AWS.
//
// O recurso subjacente (conexão, credenciais) pode ser compartilhado em modo
// somente-leitura por muitos Readers ao mesmo tempo.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store — interface principal (genérica) de leitura de uma tabela.
type Store[T any] interface {
	Get(ctx context.Context, hashKey, sortKey any) (*T, error)
	BatchGet(ctx context.Context, keys [][2]any) ([]T, error)

	// Query e Scan retornam o builder fluente de planos de leitura.
	Query() *QueryBuilder[T]
	Scan() *QueryBuilder[T]

	// NewReader monta um Reader para um Plan já construído.
	NewReader(plan *Plan, opts ...ReaderOption[T]) *Reader[T]
}

// GlobalSecondaryIndex para GSIs
type GlobalSecondaryIndex struct {
	Name           string               `env:"DYNAMODB_GSI_NAME"`
	HashKey        string               `env:"DYNAMODB_GSI_HASH_KEY"`
	SortKey        string               `env:"DYNAMODB_GSI_SORT_KEY"`
	ProjectionType types.ProjectionType `env:"DYNAMODB_GSI_PROJECTION_TYPE"`
}

// TableConfig — configuração da tabela
type TableConfig[T any] struct {
	TableName string `env:"DYNAMODB_TABLE_NAME"`
	HashKey   string `env:"DYNAMODB_HASH_KEY"`
	SortKey   string `env:"DYNAMODB_SORT_KEY"` // opcional
}

// QueryFilter — opção funcional aplicada sobre o QueryBuilder
type QueryFilter[T any] func(*QueryBuilder[T])

// capacityUnits extrai as unidades de leitura consumidas, quando reportadas.
func capacityUnits(cap *types.ConsumedCapacity) float64 {
	if cap == nil || cap.CapacityUnits == nil {
		return 0
	}
	return *cap.CapacityUnits
}
