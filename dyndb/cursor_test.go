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
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_TokenRoundTrip(t *testing.T) {
	t.Parallel()

	original := cursorFrom(map[string]types.AttributeValue{
		"pk":    &types.AttributeValueMemberS{Value: "user#42"},
		"sk":    &types.AttributeValueMemberN{Value: "1693584000"},
		"shard": &types.AttributeValueMemberB{Value: []byte{0x01, 0x02}},
	})

	token := original.Token()
	require.NotEmpty(t, token)

	parsed, err := ParseCursor(token)
	require.NoError(t, err)

	key := parsed.StartKey()
	require.Len(t, key, 3)
	assert.Equal(t, "user#42", key["pk"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "1693584000", key["sk"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, []byte{0x01, 0x02}, key["shard"].(*types.AttributeValueMemberB).Value)

	// O round trip é estável: serializar de novo produz o mesmo token.
	assert.Equal(t, token, parsed.Token())
}

func TestCursor_Zero(t *testing.T) {
	t.Parallel()

	var zero Cursor
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.Token())
	assert.Nil(t, zero.StartKey())

	assert.True(t, cursorFrom(nil).IsZero())
	assert.True(t, cursorFrom(map[string]types.AttributeValue{}).IsZero())
}

func TestParseCursor_EmptyToken(t *testing.T) {
	t.Parallel()

	cursor, err := ParseCursor("")
	require.NoError(t, err)
	assert.True(t, cursor.IsZero())
}

func TestParseCursor_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{"base64 inválido", "not-base64!!!"},
		{"json inválido", base64.StdEncoding.EncodeToString([]byte("{broken"))},
		{"atributo sem valor", base64.StdEncoding.EncodeToString([]byte(`{"pk":{}}`))},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseCursor(tt.token)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}
