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
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("item encontrado", func(t *testing.T) {
		t.Parallel()
		client := new(ClientMock)
		client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return *in.TableName == "test-table" &&
				in.Key["id"].(*types.AttributeValueMemberS).Value == "user-1" &&
				*in.ConsistentRead
		})).Return(&dynamodb.GetItemOutput{
			Item: rawTestItem("user-1", "Alice"),
		}, nil)

		store := createTestStore(client)
		item, err := store.Get(context.Background(), "user-1", nil)
		require.NoError(t, err)
		assert.Equal(t, "Alice", item.Name)
		client.AssertExpectations(t)
	})

	t.Run("item inexistente", func(t *testing.T) {
		t.Parallel()
		client := new(ClientMock)
		client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		store := createTestStore(client)
		_, err := store.Get(context.Background(), "missing", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("chave composta inclui a sort key", func(t *testing.T) {
		t.Parallel()
		client := new(ClientMock)
		client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			_, hasSort := in.Key["sk"]
			return hasSort
		})).Return(&dynamodb.GetItemOutput{
			Item: map[string]types.AttributeValue{
				"pk":   stringAttr("p1"),
				"sk":   stringAttr("s1"),
				"data": stringAttr("payload"),
			},
		}, nil)

		store := createCompositeStore(client)
		item, err := store.Get(context.Background(), "p1", "s1")
		require.NoError(t, err)
		assert.Equal(t, "payload", item.Data)
	})

	t.Run("falha do client propaga", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection reset")
		client := new(ClientMock)
		client.On("GetItem", mock.Anything, mock.Anything).Return(nil, boom)

		store := createTestStore(client)
		_, err := store.Get(context.Background(), "user-1", nil)
		assert.ErrorIs(t, err, boom)
	})
}

func TestStore_BatchGet(t *testing.T) {
	t.Parallel()

	t.Run("lote simples", func(t *testing.T) {
		t.Parallel()
		client := new(ClientMock)
		client.On("BatchGetItem", mock.Anything, mock.Anything).Return(&dynamodb.BatchGetItemOutput{
			Responses: map[string][]map[string]types.AttributeValue{
				"test-table": {
					rawTestItem("1", "Alice"),
					rawTestItem("2", "Bob"),
				},
			},
		}, nil)

		store := createTestStore(client)
		items, err := store.BatchGet(context.Background(), [][2]any{{"1", nil}, {"2", nil}})
		require.NoError(t, err)
		assert.Len(t, items, 2)
		client.AssertNumberOfCalls(t, "BatchGetItem", 1)
	})

	t.Run("chaves não processadas são reenviadas", func(t *testing.T) {
		t.Parallel()
		retryKey := map[string]types.AttributeValue{"id": stringAttr("2")}

		client := new(ClientMock)
		client.On("BatchGetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchGetItemInput) bool {
			return len(in.RequestItems["test-table"].Keys) == 2
		})).Return(&dynamodb.BatchGetItemOutput{
			Responses: map[string][]map[string]types.AttributeValue{
				"test-table": {rawTestItem("1", "Alice")},
			},
			UnprocessedKeys: map[string]types.KeysAndAttributes{
				"test-table": {Keys: []map[string]types.AttributeValue{retryKey}},
			},
		}, nil).Once()
		client.On("BatchGetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.BatchGetItemInput) bool {
			return len(in.RequestItems["test-table"].Keys) == 1
		})).Return(&dynamodb.BatchGetItemOutput{
			Responses: map[string][]map[string]types.AttributeValue{
				"test-table": {rawTestItem("2", "Bob")},
			},
		}, nil).Once()

		store := createTestStore(client)
		items, err := store.BatchGet(context.Background(), [][2]any{{"1", nil}, {"2", nil}})
		require.NoError(t, err)
		assert.Len(t, items, 2)
		client.AssertExpectations(t)
	})

	t.Run("falha do client propaga", func(t *testing.T) {
		t.Parallel()
		client := new(ClientMock)
		client.On("BatchGetItem", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		store := createTestStore(client)
		_, err := store.BatchGet(context.Background(), [][2]any{{"1", nil}})
		assert.Error(t, err)
	})

	t.Run("unprocessed persistente esgota a política de retry", func(t *testing.T) {
		t.Parallel()
		// A tabela devolve a mesma chave como não processada em toda
		// chamada, sinal de throttling persistente.
		client := new(ClientMock)
		client.On("BatchGetItem", mock.Anything, mock.Anything).Return(&dynamodb.BatchGetItemOutput{
			UnprocessedKeys: map[string]types.KeysAndAttributes{
				"test-table": {Keys: []map[string]types.AttributeValue{
					{"id": stringAttr("1")},
				}},
			},
		}, nil)

		sleeper, delays := recordingSleeper()
		store := New(client, TableConfig[TestItem]{TableName: "test-table", HashKey: "id"},
			WithRetryPolicy(RetryPolicy{
				MaxAttempts:     3,
				InitialInterval: 10 * time.Millisecond,
				MaxInterval:     50 * time.Millisecond,
				Multiplier:      2.0,
			}),
			sleeper,
		)

		_, err := store.BatchGet(context.Background(), [][2]any{{"1", nil}})
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Equal(t, 3, capErr.Attempts)
		client.AssertNumberOfCalls(t, "BatchGetItem", 3)

		require.Len(t, *delays, 2, "uma espera de backoff entre cada reenvio")
		for _, d := range *delays {
			assert.Greater(t, d, time.Duration(0))
		}
	})
}

func TestStore_NewReaderInheritsFetchOptions(t *testing.T) {
	t.Parallel()

	// As opções de fetch do store valem para todos os Readers derivados.
	calls := 0
	client := &MockDynamoClient{
		ScanFn: func(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
			calls++
			if calls == 1 {
				return nil, &types.ProvisionedThroughputExceededException{}
			}
			return &dynamodb.ScanOutput{}, nil
		},
	}

	store := New(client, TableConfig[TestItem]{TableName: "test-table", HashKey: "id"},
		withSleeper(func(ctx context.Context, d time.Duration) error { return nil }),
	)

	plan, err := store.Scan().Plan()
	require.NoError(t, err)

	_, err = store.NewReader(plan).NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "o retry herdado do store absorveu o throttle")
}
