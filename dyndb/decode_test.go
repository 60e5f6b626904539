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

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeDecoder(t *testing.T) {
	t.Parallel()

	dec := NewAttributeDecoder[TestItem]()

	item, err := dec.Decode(RawItem{
		"id":    stringAttr("1"),
		"name":  stringAttr("Alice"),
		"email": stringAttr("alice@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, TestItem{ID: "1", Name: "Alice", Email: "alice@example.com"}, item)

	// Tipo incompatível com o schema da struct
	_, err = dec.Decode(RawItem{"id": numberAttr("42")})
	assert.Error(t, err)
}

func TestValidatingDecoder(t *testing.T) {
	t.Parallel()

	dec := NewValidatingDecoder[TestItem](nil)

	t.Run("item válido passa", func(t *testing.T) {
		t.Parallel()
		item, err := dec.Decode(RawItem{
			"id":    stringAttr("1"),
			"email": stringAttr("ok@example.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, "1", item.ID)
	})

	t.Run("violação de schema conta como falha", func(t *testing.T) {
		t.Parallel()
		_, err := dec.Decode(RawItem{
			"id":    stringAttr("1"),
			"email": stringAttr("not-an-email"),
		})
		require.Error(t, err)

		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("validador customizado", func(t *testing.T) {
		t.Parallel()
		v := validator.New()
		custom := NewValidatingDecoder[TestItem](v)
		_, err := custom.Decode(RawItem{"id": stringAttr("1")})
		assert.NoError(t, err)
	})
}

func TestDecoderFunc_PluggedIntoReader(t *testing.T) {
	t.Parallel()

	boom := errors.New("custom decoder rejection")
	dec := DecoderFunc[TestItem](func(raw RawItem) (TestItem, error) {
		return TestItem{}, boom
	})

	fetch := StaticPages(pageOf(rawTestItem("1", "a")))
	reader := NewReader[TestItem](fetch, WithDecoder[TestItem](dec))

	page, err := reader.NextPage(context.Background())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	require.Len(t, page.Failures, 1)
	assert.ErrorIs(t, page.Failures[0], boom)
}
