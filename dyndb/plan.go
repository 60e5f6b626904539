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
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Plan é a descrição imutável de uma Query ou Scan: condições já compiladas
// em expression.Expression, índice, tamanho de página e modo de consistência.
//
// Um Plan é produzido pelo QueryBuilder e consumido pelo PageFetcher como
// entrada fixa. Reexecutar o mesmo Plan sempre inicia uma sequência nova,
// sem cursor — não há memoização da execução anterior.
type Plan struct {
	table         string
	indexName     *string
	expr          expression.Expression
	pageSize      *int32
	scanForward   *bool
	consistent    *bool
	isScan        bool
	segment       *int32
	totalSegments *int32
	countOnly     bool
}

// Table devolve o nome da tabela alvo.
func (p *Plan) Table() string { return p.table }

// IsScan informa se o plano executa Scan (true) ou Query (false).
func (p *Plan) IsScan() bool { return p.isScan }

// PageSize devolve o limite de itens por página pedido ao DynamoDB, ou nil
// quando a tabela decide sozinha (teto de ~1MB por página).
func (p *Plan) PageSize() *int32 { return p.pageSize }

// WithSegment deriva um novo Plan para o segmento i de total, usado no scan
// paralelo. O Plan original permanece intacto.
func (p *Plan) WithSegment(segment, total int32) *Plan {
	clone := *p
	clone.isScan = true
	clone.segment = aws.Int32(segment)
	clone.totalSegments = aws.Int32(total)
	return &clone
}

// forCount deriva um Plan equivalente que pede apenas a contagem por página
// (Select COUNT), sem trafegar os itens.
func (p *Plan) forCount() *Plan {
	clone := *p
	clone.countOnly = true
	return &clone
}

func (p *Plan) queryInput(cursor Cursor) *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(p.table),
		IndexName:                 p.indexName,
		KeyConditionExpression:    p.expr.KeyCondition(),
		FilterExpression:          p.expr.Filter(),
		ExpressionAttributeNames:  p.expr.Names(),
		ExpressionAttributeValues: p.expr.Values(),
		Limit:                     p.pageSize,
		ScanIndexForward:          p.scanForward,
		ConsistentRead:            p.consistent,
		ExclusiveStartKey:         cursor.StartKey(),
		ReturnConsumedCapacity:    types.ReturnConsumedCapacityTotal,
	}
	if p.countOnly {
		input.Select = types.SelectCount
	} else {
		input.ProjectionExpression = p.expr.Projection()
	}
	return input
}

func (p *Plan) scanInput(cursor Cursor) *dynamodb.ScanInput {
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(p.table),
		IndexName:                 p.indexName,
		FilterExpression:          p.expr.Filter(),
		ExpressionAttributeNames:  p.expr.Names(),
		ExpressionAttributeValues: p.expr.Values(),
		Limit:                     p.pageSize,
		ConsistentRead:            p.consistent,
		Segment:                   p.segment,
		TotalSegments:             p.totalSegments,
		ExclusiveStartKey:         cursor.StartKey(),
		ReturnConsumedCapacity:    types.ReturnConsumedCapacityTotal,
	}
	if p.countOnly {
		input.Select = types.SelectCount
	} else {
		input.ProjectionExpression = p.expr.Projection()
	}
	return input
}
