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
	"iter"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReaderState identifica o estado da máquina de paginação de um Reader.
type ReaderState int

const (
	// StateFresh – nenhuma página buscada ainda.
	StateFresh ReaderState = iota
	// StateActive – ao menos uma página buscada e há cursor para continuar.
	StateActive
	// StateExhausted – a tabela reportou fim da sequência (cursor zerado).
	// Terminal: nenhuma chamada futura gera fetch.
	StateExhausted
	// StateCapped – o limite de registros do chamador foi atingido antes da
	// tabela reportar o fim. Terminal, distinto de StateExhausted para
	// diagnóstico.
	StateCapped
	// StateFailed – um fetch falhou de forma definitiva. Terminal: toda
	// chamada seguinte devolve o mesmo erro.
	StateFailed
)

func (s ReaderState) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateActive:
		return "active"
	case StateExhausted:
		return "exhausted"
	case StateCapped:
		return "capped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// terminal informa se o estado não admite mais fetches.
func (s ReaderState) terminal() bool {
	return s == StateExhausted || s == StateCapped || s == StateFailed
}

// PageResult é o resultado decodificado de uma página: sucessos na ordem em
// que a tabela devolveu, falhas de decodificação do modo Lenient e o token
// de retomada (vazio quando a sequência acabou).
type PageResult[T any] struct {
	Items            []T
	Failures         []DecodeFailure
	Token            string
	ScannedCount     int32
	ConsumedCapacity float64
}

// Reader é o iterador paginado sobre um Plan: uma sequência preguiçosa e
// retomável de registros decodificados, com o cursor como estado explícito e
// inspecionável.
//
// O comportamento padrão é página a página: cada NextPage faz exatamente um
// fetch e para. A travessia completa é opt-in, via Recursive. Os dois modos
// são operações de primeira classe, não um flag escondido.
//
// Um Reader pertence a um único consumidor lógico. Chamadas concorrentes na
// mesma instância são erro do chamador e não são protegidas internamente;
// para paralelismo use Plans independentes (ver ScanAllSegments).
//
// Depois de exausto (ou falho) o Reader não é reutilizável: uma nova execução
// do mesmo Plan deve criar um Reader novo.
type Reader[T any] struct {
	fetch PageFetcher
	dec   Decoder[T]
	mode  DecodeMode
	limit int
	id    string
	log   zerolog.Logger

	state    ReaderState
	cursor   Cursor
	yielded  int
	pages    int
	failures []DecodeFailure
	err      error
}

// ReaderOption configura um Reader na construção.
type ReaderOption[T any] func(*Reader[T])

// WithDecoder substitui o decoder padrão (attributevalue) pelo informado.
func WithDecoder[T any](dec Decoder[T]) ReaderOption[T] {
	return func(r *Reader[T]) { r.dec = dec }
}

// WithDecodeMode seleciona entre Lenient (padrão) e Strict.
func WithDecodeMode[T any](mode DecodeMode) ReaderOption[T] {
	return func(r *Reader[T]) { r.mode = mode }
}

// WithRecordLimit limita o total de registros decodificados da execução
// inteira. Equivalente a chamar Limit depois da construção.
func WithRecordLimit[T any](n int) ReaderOption[T] {
	return func(r *Reader[T]) { r.limit = n }
}

// WithStartCursor inicia a leitura a partir de um cursor emitido por uma
// execução anterior, em vez do começo da sequência.
func WithStartCursor[T any](c Cursor) ReaderOption[T] {
	return func(r *Reader[T]) { r.cursor = c }
}

// WithReaderLogger define o logger usado nos eventos do Reader.
func WithReaderLogger[T any](log zerolog.Logger) ReaderOption[T] {
	return func(r *Reader[T]) { r.log = log }
}

// NewReader cria um Reader em cima de um PageFetcher. O decoder padrão usa as
// tags `dynamodbav` de T; o modo padrão é Lenient.
func NewReader[T any](fetch PageFetcher, opts ...ReaderOption[T]) *Reader[T] {
	r := &Reader[T]{
		fetch: fetch,
		dec:   NewAttributeDecoder[T](),
		mode:  Lenient,
		id:    uuid.NewString(),
		log:   zerolog.Nop(),
		state: StateFresh,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Limit limita em n o total de registros decodificados devolvidos pela
// execução inteira, página única ou recursiva. Atingido o teto, nenhum fetch
// adicional acontece mesmo que restem páginas, e o Reader vai para
// StateCapped. Devolve o próprio Reader para encadeamento.
func (r *Reader[T]) Limit(n int) *Reader[T] {
	r.limit = n
	return r
}

// State devolve o estado atual da máquina de paginação.
func (r *Reader[T]) State() ReaderState { return r.state }

// Exhausted informa se a tabela reportou o fim da sequência.
func (r *Reader[T]) Exhausted() bool { return r.state == StateExhausted }

// Capped informa se a iteração parou pelo limite do chamador, sem ter
// observado o fim da sequência na tabela.
func (r *Reader[T]) Capped() bool { return r.state == StateCapped }

// Cursor devolve o último cursor confirmado. Após um cancelamento, é o ponto
// seguro de retomada.
func (r *Reader[T]) Cursor() Cursor { return r.cursor }

// LastToken devolve o cursor atual serializado, ou "" no início/fim.
func (r *Reader[T]) LastToken() string { return r.cursor.Token() }

// Pages devolve quantos fetches bem-sucedidos já foram feitos.
func (r *Reader[T]) Pages() int { return r.pages }

// Failures devolve as falhas de decodificação acumuladas em toda a execução
// (modo Lenient). O slice devolvido não deve ser modificado.
func (r *Reader[T]) Failures() []DecodeFailure { return r.failures }

// Err devolve o erro terminal de um Reader em StateFailed, ou nil.
func (r *Reader[T]) Err() error { return r.err }

// NextPage busca e decodifica exatamente uma página. Esse é o comportamento
// padrão da lib: uma chamada, um fetch, fim — independente de quantos itens
// ainda existam na tabela. Use Recursive para a travessia completa.
//
// Em StateExhausted ou StateCapped devolve uma página vazia sem nenhuma
// chamada de rede, idempotente. Em StateFailed devolve sempre o mesmo erro
// terminal. Cancelamento de contexto não é falha terminal: o cursor
// permanece no último ponto confirmado e NextPage pode ser chamada de novo.
func (r *Reader[T]) NextPage(ctx context.Context) (*PageResult[T], error) {
	switch {
	case r.state == StateFailed:
		return nil, r.err
	case r.state.terminal():
		return &PageResult[T]{}, nil
	case r.capReached():
		// Um Limit reconfigurado no meio da iteração pode já ter sido
		// atingido; nesse caso nenhum fetch acontece.
		r.state = StateCapped
		return &PageResult[T]{Token: r.cursor.Token()}, nil
	}

	page, err := r.fetch(ctx, r.cursor)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Retomável: o cursor não andou.
			return nil, err
		}
		r.fail(err)
		return nil, r.err
	}
	r.pages++

	result := &PageResult[T]{
		ScannedCount:     page.ScannedCount,
		ConsumedCapacity: page.ConsumedCapacity,
	}
	for _, raw := range page.Items {
		if r.capReached() {
			break
		}
		item, derr := r.dec.Decode(raw)
		if derr != nil {
			failure := DecodeFailure{Raw: raw, Err: derr}
			if r.mode == Strict {
				r.fail(failure)
				return nil, r.err
			}
			r.failures = append(r.failures, failure)
			result.Failures = append(result.Failures, failure)
			continue
		}
		result.Items = append(result.Items, item)
		r.yielded++
	}

	r.cursor = page.Cursor
	switch {
	case page.Cursor.IsZero():
		r.state = StateExhausted
	case r.capReached():
		r.state = StateCapped
	default:
		r.state = StateActive
	}
	result.Token = r.cursor.Token()

	r.log.Debug().
		Str("reader_id", r.id).
		Int("items", len(result.Items)).
		Int("decode_failures", len(result.Failures)).
		Str("state", r.state.String()).
		Msg("dyndb: page read")

	return result, nil
}

// capReached informa se o teto de registros do chamador já foi atingido.
func (r *Reader[T]) capReached() bool {
	return r.limit > 0 && r.yielded >= r.limit
}

// fail coloca o Reader no estado terminal Failed. Toda chamada seguinte
// reporta o mesmo erro; o Reader nunca se rearma sozinho.
func (r *Reader[T]) fail(err error) {
	r.state = StateFailed
	r.err = fmt.Errorf("%w: %w", ErrReaderFailed, err)
}

// Recursive devolve o handle de travessia completa sobre este mesmo Reader:
// NextPage repetido até o fim da sequência, exposto como um fluxo único. É o
// opt-in explícito para o comportamento "busca tudo" das versões antigas.
func (r *Reader[T]) Recursive() *Recursion[T] {
	return &Recursion[T]{reader: r}
}

// Count esgota a cadeia de cursores contando os itens sem decodificá-los,
// usando a contagem por página reportada pela tabela quando disponível.
//
// A contagem é eventualmente consistente: escritas concorrentes durante a
// travessia podem fazer Count divergir de uma travessia Recursive feita no
// mesmo instante. Respeita Limit, quando definido.
func (r *Reader[T]) Count(ctx context.Context) (int, error) {
	total := 0
	for !r.state.terminal() {
		if r.capReached() {
			r.state = StateCapped
			break
		}
		page, err := r.fetch(ctx, r.cursor)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return total, err
			}
			r.fail(err)
			return total, r.err
		}
		r.pages++

		n := int(page.Count)
		if n == 0 && len(page.Items) > 0 {
			// Fallback quando a contagem da página não veio preenchida.
			n = len(page.Items)
		}
		total += n
		r.yielded += n

		r.cursor = page.Cursor
		switch {
		case page.Cursor.IsZero():
			r.state = StateExhausted
		case r.capReached():
			r.state = StateCapped
		default:
			r.state = StateActive
		}
	}
	if r.limit > 0 && total > r.limit {
		total = r.limit
	}
	if r.state == StateFailed {
		return total, r.err
	}
	return total, nil
}

// Recursion é o handle de execução recursiva de um Reader: consome página a
// página até StateExhausted (ou StateCapped), mantendo em memória no máximo
// uma página por vez.
type Recursion[T any] struct {
	reader *Reader[T]
}

// Items devolve a sequência preguiçosa de todos os registros restantes, na
// ordem dos cursores e, dentro de cada página, na ordem da tabela. Cada
// página só é buscada quando a anterior foi consumida.
func (rec *Recursion[T]) Items(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for !rec.reader.state.terminal() {
			page, err := rec.reader.NextPage(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// Each aplica fn a cada registro restante. Retornar erro de fn interrompe a
// travessia e propaga o erro, deixando o cursor no último ponto confirmado.
func (rec *Recursion[T]) Each(ctx context.Context, fn func(item T) error) error {
	for item, err := range rec.Items(ctx) {
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

// All materializa todos os registros restantes em um único slice. Conveniente
// para resultados pequenos; em conjuntos grandes prefira Items ou Each, que
// mantêm o consumo de memória proporcional a uma página.
func (rec *Recursion[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	err := rec.Each(ctx, func(item T) error {
		out = append(out, item)
		return nil
	})
	return out, err
}
