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
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Cursor é o token opaco de retomada de uma leitura paginada. Ele embrulha a
// LastEvaluatedKey devolvida pela tabela e nunca é construído pelo chamador:
// ou vem zerado (início da sequência) ou de uma página anterior.
//
// Um fetch que devolve Cursor zerado encerra a sequência de forma definitiva.
type Cursor struct {
	key map[string]types.AttributeValue
}

// IsZero informa se o cursor marca o início da sequência (nenhuma página
// anterior) ou o fim dela (nenhuma página restante).
func (c Cursor) IsZero() bool { return len(c.key) == 0 }

// StartKey devolve a ExclusiveStartKey correspondente, ou nil para o cursor
// zerado.
func (c Cursor) StartKey() map[string]types.AttributeValue {
	if c.IsZero() {
		return nil
	}
	return c.key
}

// cursorAttr é a forma serializável de um AttributeValue de chave. Chaves de
// tabela/índice só podem ser S, N ou B, então três campos bastam.
type cursorAttr struct {
	S *string `json:"s,omitempty"`
	N *string `json:"n,omitempty"`
	B []byte  `json:"b,omitempty"`
}

// Token serializa o cursor como base64(JSON), no mesmo formato portátil que as
// versões anteriores da lib devolviam no Exec. Cursor zerado vira "".
func (c Cursor) Token() string {
	if c.IsZero() {
		return ""
	}
	plain := make(map[string]cursorAttr, len(c.key))
	for name, av := range c.key {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			plain[name] = cursorAttr{S: &v.Value}
		case *types.AttributeValueMemberN:
			plain[name] = cursorAttr{N: &v.Value}
		case *types.AttributeValueMemberB:
			plain[name] = cursorAttr{B: v.Value}
		}
	}
	b, err := json.Marshal(plain)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// ParseCursor reconstrói um Cursor a partir de um token emitido por Token.
// Token vazio devolve o cursor zerado.
func ParseCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var plain map[string]cursorAttr
	if err := json.Unmarshal(data, &plain); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	key := make(map[string]types.AttributeValue, len(plain))
	for name, attr := range plain {
		switch {
		case attr.S != nil:
			key[name] = &types.AttributeValueMemberS{Value: *attr.S}
		case attr.N != nil:
			key[name] = &types.AttributeValueMemberN{Value: *attr.N}
		case attr.B != nil:
			key[name] = &types.AttributeValueMemberB{Value: attr.B}
		default:
			return Cursor{}, fmt.Errorf("%w: attribute %q has no value", ErrInvalidCursor, name)
		}
	}
	return Cursor{key: key}, nil
}

// cursorFrom embrulha a LastEvaluatedKey de uma resposta Query/Scan.
func cursorFrom(lastKey map[string]types.AttributeValue) Cursor {
	if len(lastKey) == 0 {
		return Cursor{}
	}
	return Cursor{key: lastKey}
}
