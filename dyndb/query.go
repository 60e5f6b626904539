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
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// QueryBuilder — o builder fluente de planos de leitura.
//
// O builder é mutável; o Plan que ele produz é imutável. A partir do Plan o
// chamador escolhe o modo de execução: Exec (uma página), Reader (iteração
// controlada) ou Count (contagem sem materializar).
type QueryBuilder[T any] struct {
	store       *dynamoStore[T]
	keyCond     *expression.KeyConditionBuilder
	filterCond  *expression.ConditionBuilder
	projection  *expression.ProjectionBuilder
	indexName   *string
	limit       *int32
	lastKey     Cursor
	lastKeyErr  error
	scanForward *bool
	consistent  *bool
	isScan      bool
	segment     *int32
	totalSeg    *int32
}

// Query inicia uma Query
func (s *dynamoStore[T]) Query() *QueryBuilder[T] {
	return &QueryBuilder[T]{
		store:       s,
		scanForward: aws.Bool(true),
	}
}

// Scan inicia um Scan
func (s *dynamoStore[T]) Scan() *QueryBuilder[T] {
	return &QueryBuilder[T]{
		store:  s,
		isScan: true,
	}
}

// === MÉTODOS FLUENTES (inferência automática garantida!) ===

func (qb *QueryBuilder[T]) Index(name string) *QueryBuilder[T] {
	qb.indexName = aws.String(name)
	return qb
}

func (qb *QueryBuilder[T]) KeyEqual(key string, value any) *QueryBuilder[T] {
	cond := expression.KeyEqual(expression.Key(key), expression.Value(value))
	if qb.keyCond == nil {
		qb.keyCond = &cond
	} else {
		tmp := qb.keyCond.And(cond)
		qb.keyCond = &tmp
	}
	return qb
}

func (qb *QueryBuilder[T]) KeyBeginsWith(key, prefix string) *QueryBuilder[T] {
	cond := expression.Key(key).BeginsWith(prefix)
	if qb.keyCond == nil {
		qb.keyCond = &cond
	} else {
		tmp := qb.keyCond.And(cond)
		qb.keyCond = &tmp
	}
	return qb
}

func (qb *QueryBuilder[T]) KeyBetween(key string, lo, hi any) *QueryBuilder[T] {
	cond := expression.Key(key).Between(expression.Value(lo), expression.Value(hi))
	if qb.keyCond == nil {
		qb.keyCond = &cond
	} else {
		tmp := qb.keyCond.And(cond)
		qb.keyCond = &tmp
	}
	return qb
}

func (qb *QueryBuilder[T]) FilterEqual(field string, value any) *QueryBuilder[T] {
	cond := expression.Equal(expression.Name(field), expression.Value(value))
	if qb.filterCond == nil {
		qb.filterCond = &cond
	} else {
		tmp := qb.filterCond.And(cond)
		qb.filterCond = &tmp
	}
	return qb
}

func (qb *QueryBuilder[T]) FilterContains(field string, value any) *QueryBuilder[T] {
	cond := expression.Contains(expression.Name(field), value)
	if qb.filterCond == nil {
		qb.filterCond = &cond
	} else {
		tmp := qb.filterCond.And(cond)
		qb.filterCond = &tmp
	}
	return qb
}

func (qb *QueryBuilder[T]) FilterBetween(field string, lo, hi any) *QueryBuilder[T] {
	cond := expression.Between(expression.Name(field), expression.Value(lo), expression.Value(hi))
	if qb.filterCond == nil {
		qb.filterCond = &cond
	} else {
		tmp := qb.filterCond.And(cond)
		qb.filterCond = &tmp
	}
	return qb
}

// Project restringe os atributos devolvidos. Combinado com o modo Lenient,
// permite ler índices com projeção parcial sem derrubar a decodificação.
func (qb *QueryBuilder[T]) Project(fields ...string) *QueryBuilder[T] {
	if len(fields) == 0 {
		return qb
	}
	names := make([]expression.NameBuilder, 0, len(fields))
	for _, f := range fields {
		names = append(names, expression.Name(f))
	}
	proj := expression.NamesList(names[0], names[1:]...)
	qb.projection = &proj
	return qb
}

// Limit define o tamanho máximo de cada página pedida à tabela. Não limita o
// total da execução — para isso use Reader.Limit.
func (qb *QueryBuilder[T]) Limit(n int32) *QueryBuilder[T] {
	qb.limit = &n
	return qb
}

// LastKey retoma a leitura a partir de um token emitido por uma execução
// anterior (ver PageResult.Token / Exec).
func (qb *QueryBuilder[T]) LastKey(token string) *QueryBuilder[T] {
	if token == "" {
		return qb
	}
	cursor, err := ParseCursor(token)
	if err != nil {
		qb.lastKeyErr = err
		return qb
	}
	qb.lastKey = cursor
	return qb
}

// Segment restringe um Scan ao segmento i de total, para paralelismo manual.
// Cada segmento deve ter o próprio builder/Reader; ver também ScanAllSegments.
func (qb *QueryBuilder[T]) Segment(i, total int32) *QueryBuilder[T] {
	qb.isScan = true
	qb.segment = aws.Int32(i)
	qb.totalSeg = aws.Int32(total)
	return qb
}

func (qb *QueryBuilder[T]) ScanForward(forward bool) *QueryBuilder[T] {
	qb.scanForward = aws.Bool(forward)
	return qb
}

func (qb *QueryBuilder[T]) Consistent(on bool) *QueryBuilder[T] {
	qb.consistent = aws.Bool(on)
	return qb
}

// Filtros aplica filtros utilizando inferência de tipo automática
func WithKeyCondition[T any](cond expression.KeyConditionBuilder) QueryFilter[T] {
	return func(qb *QueryBuilder[T]) {
		if qb.keyCond == nil {
			qb.keyCond = &cond
		} else {
			tmp := qb.keyCond.And(cond)
			qb.keyCond = &tmp
		}
	}
}

func WithFilter[T any](cond expression.ConditionBuilder) QueryFilter[T] {
	return func(qb *QueryBuilder[T]) {
		if qb.filterCond == nil {
			qb.filterCond = &cond
		} else {
			tmp := qb.filterCond.And(cond)
			qb.filterCond = &tmp
		}
	}
}

func WithIndex[T any](name string) QueryFilter[T] {
	return func(qb *QueryBuilder[T]) {
		qb.indexName = aws.String(name)
	}
}

func WithLimit[T any](n int32) QueryFilter[T] {
	return func(qb *QueryBuilder[T]) {
		qb.limit = &n
	}
}

func WithLastEvaluatedKey[T any](token string) QueryFilter[T] {
	return func(qb *QueryBuilder[T]) {
		qb.LastKey(token)
	}
}

func WithScanForward[T any](forward bool) QueryFilter[T] {
	return func(qb *QueryBuilder[T]) {
		qb.scanForward = &forward
	}
}

// Apply aplica opções funcionais em lote.
func (qb *QueryBuilder[T]) Apply(filters ...QueryFilter[T]) *QueryBuilder[T] {
	for _, f := range filters {
		f(qb)
	}
	return qb
}

// Plan congela o builder em um Plan imutável. Erros de construção da
// expressão saem como ErrPlanRejected.
func (qb *QueryBuilder[T]) Plan() (*Plan, error) {
	if qb.lastKeyErr != nil {
		return nil, qb.lastKeyErr
	}

	builder := expression.NewBuilder()
	hasExpr := false

	if qb.keyCond != nil {
		builder = builder.WithKeyCondition(*qb.keyCond)
		hasExpr = true
	}
	if qb.filterCond != nil {
		builder = builder.WithFilter(*qb.filterCond)
		hasExpr = true
	}
	if qb.projection != nil {
		builder = builder.WithProjection(*qb.projection)
		hasExpr = true
	}

	var expr expression.Expression
	if hasExpr {
		var err error
		expr, err = builder.Build()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPlanRejected, err)
		}
	}

	isScan := qb.isScan || qb.keyCond == nil
	plan := &Plan{
		table:         qb.store.cfg.TableName,
		indexName:     qb.indexName,
		expr:          expr,
		pageSize:      qb.limit,
		consistent:    qb.consistent,
		isScan:        isScan,
		segment:       qb.segment,
		totalSegments: qb.totalSeg,
	}
	if !isScan {
		plan.scanForward = qb.scanForward
	}
	return plan, nil
}

// Reader constrói o Reader deste plano: o modo controlado de iteração, página
// a página ou recursivo.
func (qb *QueryBuilder[T]) Reader(opts ...ReaderOption[T]) (*Reader[T], error) {
	plan, err := qb.Plan()
	if err != nil {
		return nil, err
	}
	readerOpts := opts
	if !qb.lastKey.IsZero() {
		readerOpts = append([]ReaderOption[T]{WithStartCursor[T](qb.lastKey)}, opts...)
	}
	return qb.store.NewReader(plan, readerOpts...), nil
}

// Exec executa a consulta e devolve exatamente uma página de resultados mais
// o token de retomada ("" quando não há mais páginas).
//
// Quebra de compatibilidade: nas versões antigas Exec percorria todas as
// páginas. Agora uma chamada faz um único fetch; a travessia completa é
// opt-in via Reader().Recursive().
func (qb *QueryBuilder[T]) Exec(ctx context.Context) ([]T, string, error) {
	reader, err := qb.Reader()
	if err != nil {
		return nil, "", err
	}
	page, err := reader.NextPage(ctx)
	if err != nil {
		return nil, "", err
	}
	return page.Items, page.Token, nil
}

// Count conta os itens que casam com o plano sem decodificá-los, usando
// Select COUNT para não trafegar os atributos.
func (qb *QueryBuilder[T]) Count(ctx context.Context) (int, error) {
	plan, err := qb.Plan()
	if err != nil {
		return 0, err
	}
	var opts []ReaderOption[T]
	if !qb.lastKey.IsZero() {
		opts = append(opts, WithStartCursor[T](qb.lastKey))
	}
	return qb.store.NewReader(plan.forCount(), opts...).Count(ctx)
}
