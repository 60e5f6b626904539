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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/raywall/dynamo-read-toolkit/pkg/metrics"
)

// RawItem é um item como devolvido pelo DynamoDB, antes da decodificação.
type RawItem = map[string]awsAttributeValue

// Page é o resultado bruto de um único round trip Query/Scan: os itens da
// página, o cursor da próxima (zerado quando a sequência acabou) e os
// metadados de consumo reportados pela tabela.
type Page struct {
	Items            []RawItem
	Cursor           Cursor
	Count            int32
	ScannedCount     int32
	ConsumedCapacity float64
}

// PageFetcher emite exatamente uma requisição limitada à tabela a partir de um
// cursor de retomada (zerado na primeira página). Retry de throttling e de
// falhas transitórias acontece aqui dentro, limitado pela RetryPolicy; o
// cursor só avança em cima de uma resposta bem-sucedida.
type PageFetcher func(ctx context.Context, cursor Cursor) (*Page, error)

// RetryPolicy controla o backoff exponencial com jitter aplicado pelo
// PageFetcher em cima de throttling e falhas transitórias.
type RetryPolicy struct {
	// MaxAttempts é o total de chamadas, incluindo a primeira.
	MaxAttempts int
	// InitialInterval é a espera base antes da segunda tentativa.
	InitialInterval time.Duration
	// MaxInterval é o teto de espera entre tentativas.
	MaxInterval time.Duration
	// Multiplier é o fator de crescimento entre tentativas.
	Multiplier float64
}

// DefaultRetryPolicy é a política aplicada quando nenhuma é configurada.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     5,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     2 * time.Second,
	Multiplier:      2.0,
}

func (p RetryPolicy) normalized() RetryPolicy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if out.InitialInterval <= 0 {
		out.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if out.MaxInterval <= 0 {
		out.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	if out.Multiplier <= 1 {
		out.Multiplier = DefaultRetryPolicy.Multiplier
	}
	return out
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.Multiplier = p.Multiplier
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// fetcherConfig reúne as dependências ambientais de um PageFetcher.
type fetcherConfig struct {
	retry   RetryPolicy
	log     zerolog.Logger
	metrics metrics.Provider
	sleep   func(ctx context.Context, d time.Duration) error
}

func defaultFetcherConfig() fetcherConfig {
	return fetcherConfig{
		retry:   DefaultRetryPolicy,
		log:     zerolog.Nop(),
		metrics: metrics.Noop(),
		sleep:   sleepContext,
	}
}

// FetchOption configura o PageFetcher produzido por NewPageFetcher.
type FetchOption func(*fetcherConfig)

// WithRetryPolicy substitui a política de retry padrão.
func WithRetryPolicy(p RetryPolicy) FetchOption {
	return func(cfg *fetcherConfig) { cfg.retry = p.normalized() }
}

// WithLogger define o logger estruturado usado nos avisos de retry.
func WithLogger(log zerolog.Logger) FetchOption {
	return func(cfg *fetcherConfig) { cfg.log = log }
}

// WithMetrics define o provider de métricas que recebe páginas buscadas,
// retries e capacidade consumida.
func WithMetrics(p metrics.Provider) FetchOption {
	return func(cfg *fetcherConfig) { cfg.metrics = p }
}

// withSleeper troca a função de espera; usado nos testes para capturar os
// delays de backoff sem dormir de verdade.
func withSleeper(sleep func(ctx context.Context, d time.Duration) error) FetchOption {
	return func(cfg *fetcherConfig) { cfg.sleep = sleep }
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewPageFetcher produz o closure de busca de página para um Plan. O client
// pode ser compartilhado entre muitos fetchers; o Plan é entrada fixa.
func NewPageFetcher(client DynamoDBClient, plan *Plan, opts ...FetchOption) PageFetcher {
	cfg := defaultFetcherConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	op := "query"
	if plan.isScan {
		op = "scan"
	}
	tags := []string{"table:" + plan.table, "op:" + op}

	return func(ctx context.Context, cursor Cursor) (*Page, error) {
		bo := cfg.retry.newBackOff()
		attempts := 0
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			attempts++

			page, err := fetchOnce(ctx, client, plan, cursor)
			if err == nil {
				_ = cfg.metrics.Count("dyndb.page.fetched", 1, tags)
				_ = cfg.metrics.Histogram("dyndb.consumed_capacity", page.ConsumedCapacity, tags)
				return page, nil
			}

			switch classify(err) {
			case classCapacity:
				if attempts >= cfg.retry.MaxAttempts {
					return nil, &CapacityError{Attempts: attempts, Err: err}
				}
			case classTransient:
				if attempts >= cfg.retry.MaxAttempts {
					return nil, &TransientError{Attempts: attempts, Err: err}
				}
			case classInvalidCursor:
				return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
			default:
				return nil, fmt.Errorf("%w: %v", ErrPlanRejected, err)
			}

			wait := bo.NextBackOff()
			cfg.log.Warn().
				Err(err).
				Str("table", plan.table).
				Str("op", op).
				Int("attempt", attempts).
				Dur("backoff", wait).
				Msg("dyndb: retrying page fetch")
			_ = cfg.metrics.Count("dyndb.fetch.retries", 1, tags)

			// A espera respeita o contexto: cancelar aqui devolve ctx.Err()
			// sem consumir o cursor, então a iteração pode ser retomada.
			if err := cfg.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}
}

func fetchOnce(ctx context.Context, client DynamoDBClient, plan *Plan, cursor Cursor) (*Page, error) {
	if plan.isScan {
		out, err := client.Scan(ctx, plan.scanInput(cursor))
		if err != nil {
			return nil, err
		}
		return &Page{
			Items:            out.Items,
			Cursor:           cursorFrom(out.LastEvaluatedKey),
			Count:            out.Count,
			ScannedCount:     out.ScannedCount,
			ConsumedCapacity: capacityUnits(out.ConsumedCapacity),
		}, nil
	}

	out, err := client.Query(ctx, plan.queryInput(cursor))
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:            out.Items,
		Cursor:           cursorFrom(out.LastEvaluatedKey),
		Count:            out.Count,
		ScannedCount:     out.ScannedCount,
		ConsumedCapacity: capacityUnits(out.ConsumedCapacity),
	}, nil
}
