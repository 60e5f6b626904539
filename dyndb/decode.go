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
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/go-playground/validator/v10"
)

// Decoder converte um item bruto do DynamoDB no tipo T. Implementações devem
// ser puras e determinísticas: nada de I/O, o mesmo item sempre produz o
// mesmo resultado.
type Decoder[T any] interface {
	Decode(raw RawItem) (T, error)
}

// DecoderFunc adapta uma função simples para a interface Decoder.
type DecoderFunc[T any] func(raw RawItem) (T, error)

func (f DecoderFunc[T]) Decode(raw RawItem) (T, error) { return f(raw) }

// DecodeMode controla o que acontece quando um item falha na decodificação.
type DecodeMode int

const (
	// Lenient registra a falha como DecodeFailure junto da página e segue
	// entregando os itens vizinhos. É o modo padrão.
	Lenient DecodeMode = iota
	// Strict aborta a página e coloca o Reader em estado Failed na primeira
	// falha de decodificação.
	Strict
)

// NewAttributeDecoder devolve o decoder padrão, baseado em
// attributevalue.UnmarshalMap e nas tags `dynamodbav` da struct.
func NewAttributeDecoder[T any]() Decoder[T] {
	return DecoderFunc[T](func(raw RawItem) (T, error) {
		var item T
		err := attributevalue.UnmarshalMap(raw, &item)
		return item, err
	})
}

// NewValidatingDecoder combina o unmarshal padrão com a validação estrutural
// do go-playground/validator (tags `validate`). Itens que desserializam mas
// violam o schema contam como falha de decodificação.
//
// Passe nil para usar um validador novo com as regras padrão.
func NewValidatingDecoder[T any](v *validator.Validate) Decoder[T] {
	if v == nil {
		v = validator.New()
	}
	return DecoderFunc[T](func(raw RawItem) (T, error) {
		var item T
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return item, err
		}
		if err := v.Struct(item); err != nil {
			return item, err
		}
		return item, nil
	})
}
