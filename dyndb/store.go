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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/dynamo-read-toolkit/envloader"
)

type dynamoStore[T any] struct {
	client    DynamoDBClient
	cfg       TableConfig[T]
	fetchOpts []FetchOption
	fc        fetcherConfig
}

// New cria um store de leitura reutilizável. As opções de fetch (retry,
// logger, métricas) valem para todos os Readers criados a partir dele e para
// o reenvio de UnprocessedKeys de BatchGet.
func New[T any](client DynamoDBClient, cfg TableConfig[T], opts ...FetchOption) Store[T] {
	if cfg.TableName == "" {
		_ = envloader.Load(&cfg)
	}

	fc := defaultFetcherConfig()
	for _, opt := range opts {
		opt(&fc)
	}

	return &dynamoStore[T]{
		client:    client,
		cfg:       cfg,
		fetchOpts: opts,
		fc:        fc,
	}
}

// Get item por chave primária
func (s *dynamoStore[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	key := map[string]types.AttributeValue{
		s.cfg.HashKey: attr(hashKey),
	}
	if s.cfg.SortKey != "" && sortKey != nil {
		key[s.cfg.SortKey] = attr(sortKey)
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.TableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamostore: get failed: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item T
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("dynamostore: unmarshal failed: %w", err)
	}
	return &item, nil
}

// BatchGet — até 100 chaves por chamada
func (s *dynamoStore[T]) BatchGet(ctx context.Context, keys [][2]any) ([]T, error) {
	var keysToGet []map[string]types.AttributeValue
	for _, k := range keys {
		hashKey, sortKey := k[0], k[1]
		keyMap := map[string]types.AttributeValue{
			s.cfg.HashKey: attr(hashKey),
		}
		if s.cfg.SortKey != "" && sortKey != nil {
			keyMap[s.cfg.SortKey] = attr(sortKey)
		}
		keysToGet = append(keysToGet, keyMap)
	}

	var results []T

	for i := 0; i < len(keysToGet); i += 100 {
		end := i + 100
		if end > len(keysToGet) {
			end = len(keysToGet)
		}

		request := map[string]types.KeysAndAttributes{
			s.cfg.TableName: {
				Keys:           keysToGet[i:end],
				ConsistentRead: aws.Bool(true),
			},
		}

		// UnprocessedKeys sinalizam throttling: o reenvio segue a mesma
		// RetryPolicy dos fetches de página, com backoff e teto de
		// tentativas.
		bo := s.fc.retry.newBackOff()
		attempts := 0
		for len(request) > 0 {
			attempts++
			resp, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				return nil, fmt.Errorf("batchget failed: %w", err)
			}

			for _, item := range resp.Responses[s.cfg.TableName] {
				var t T
				if err := attributevalue.UnmarshalMap(item, &t); err != nil {
					return nil, err
				}
				results = append(results, t)
			}

			request = resp.UnprocessedKeys
			if len(request) == 0 {
				break
			}
			if attempts >= s.fc.retry.MaxAttempts {
				return nil, &CapacityError{
					Attempts: attempts,
					Err:      fmt.Errorf("batchget: %d keys still unprocessed", unprocessedCount(request)),
				}
			}

			wait := bo.NextBackOff()
			s.fc.log.Warn().
				Str("table", s.cfg.TableName).
				Int("attempt", attempts).
				Int("unprocessed", unprocessedCount(request)).
				Dur("backoff", wait).
				Msg("dyndb: retrying unprocessed batch keys")
			_ = s.fc.metrics.Count("dyndb.batchget.retries", 1, []string{"table:" + s.cfg.TableName})

			if err := s.fc.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}

// NewReader monta um Reader para um Plan já construído, herdando as opções de
// fetch do store.
func (s *dynamoStore[T]) NewReader(plan *Plan, opts ...ReaderOption[T]) *Reader[T] {
	fetch := NewPageFetcher(s.client, plan, s.fetchOpts...)
	return NewReader(fetch, opts...)
}

func unprocessedCount(req map[string]types.KeysAndAttributes) int {
	n := 0
	for _, ka := range req {
		n += len(ka.Keys)
	}
	return n
}

// attr converte qualquer valor para types.AttributeValue
func attr(v any) types.AttributeValue {
	if v == nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	return av
}
