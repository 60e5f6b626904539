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
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// errSegmentCap sinaliza via errgroup que o teto agregado foi atingido; não é
// uma falha.
var errSegmentCap = errors.New("dyndb: aggregate record cap reached")

// segmentSink agrega resultados de segmentos concorrentes. O append é
// protegido por mutex; a ordem relativa dentro de cada segmento é preservada,
// a intercalação entre segmentos não é especificada.
type segmentSink[T any] struct {
	mu       sync.Mutex
	limit    int
	items    []T
	failures []DecodeFailure
}

// append acumula a página e informa se o teto agregado foi atingido.
func (s *segmentSink[T]) append(items []T, failures []DecodeFailure) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
	s.failures = append(s.failures, failures...)
	return s.limit > 0 && len(s.items) >= s.limit
}

// ScanAllSegments executa o Scan do plano em paralelo, dividido em n
// segmentos independentes. Cada segmento tem o próprio Reader e a própria
// cadeia de cursores — nunca há fetches concorrentes sobre o mesmo cursor.
//
// Devolve todos os itens decodificados e as falhas Lenient acumuladas. A
// primeira falha terminal de qualquer segmento cancela os demais.
//
// Um WithRecordLimit nas opts limita o total agregado entre todos os
// segmentos, não cada segmento individualmente; atingido o teto, os segmentos
// restantes são cancelados.
func ScanAllSegments[T any](ctx context.Context, store Store[T], plan *Plan, segments int, opts ...ReaderOption[T]) ([]T, []DecodeFailure, error) {
	if segments < 1 {
		return nil, nil, fmt.Errorf("%w: segments must be >= 1, got %d", ErrPlanRejected, segments)
	}
	if segments == 1 {
		reader := store.NewReader(plan, opts...)
		items, err := reader.Recursive().All(ctx)
		return items, reader.Failures(), err
	}

	// O teto é retirado dos Readers por segmento e aplicado no agregado.
	var probe Reader[T]
	for _, opt := range opts {
		opt(&probe)
	}
	limit := probe.limit

	sink := &segmentSink[T]{limit: limit}
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < segments; i++ {
		segPlan := plan.WithSegment(int32(i), int32(segments))
		reader := store.NewReader(segPlan, opts...).Limit(0)
		g.Go(func() error {
			for !reader.State().terminal() {
				page, err := reader.NextPage(gctx)
				if err != nil {
					return err
				}
				if len(page.Items) > 0 || len(page.Failures) > 0 {
					if sink.append(page.Items, page.Failures) {
						return errSegmentCap
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errSegmentCap) {
		return nil, nil, err
	}
	if limit > 0 && len(sink.items) > limit {
		sink.items = sink.items[:limit]
	}
	return sink.items, sink.failures, nil
}
