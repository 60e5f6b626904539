// Package dyndb fornece uma camada genérica e fortemente tipada de leitura
// paginada sobre o AWS DynamoDB Go SDK (v2).
//
// Visão Geral:
// O pacote transforma uma Query ou Scan lógica em uma sequência de fetches
// limitados pela tabela, exposta como um iterador preguiçoso, controlável e
// retomável (`Reader[T]`). O chamador não precisa conhecer o teto de ~1MB por
// página nem a mecânica da LastEvaluatedKey, mas mantém controle fino sobre
// paginação, retry e consumo de capacidade quando quiser.
//
// As peças principais:
//   - `QueryBuilder[T]`: builder fluente que congela condições de chave,
//     filtros, índice e tamanho de página em um `Plan` imutável.
//   - `PageFetcher`: um round trip por chamada, com retry exponencial com
//     jitter para throttling e falhas transitórias (cenkalti/backoff).
//   - `Decoder[T]`: conversão de item bruto em registro tipado, com modo
//     Lenient (falhas viram DecodeFailure ao lado dos sucessos) ou Strict.
//   - `Reader[T]`: a máquina de estados de paginação
//     (fresh → active → exhausted | capped | failed), com o cursor como
//     estado explícito e inspecionável.
//
// Quebra de compatibilidade:
// Nas versões antigas, `Exec` percorria todas as páginas automaticamente.
// Agora o padrão é parar na primeira página — uma chamada, um fetch. A
// travessia completa virou uma operação de primeira classe:
//
//	reader, _ := store.Query().KeyEqual("pk", "user#1").Reader()
//	for item, err := range reader.Recursive().Items(ctx) {
//		// uma página por vez na memória, erros encerram o fluxo
//	}
//
// Exemplo de leitura página a página:
//
//	type User struct {
//		ID    string `dynamodbav:"id" validate:"required"`
//		Email string `dynamodbav:"email"`
//	}
//
//	cfg := dyndb.TableConfig[User]{TableName: "Users", HashKey: "id"}
//	store := dyndb.New(client, cfg)
//
//	reader, err := store.Scan().FilterEqual("status", "ACTIVE").Limit(50).Reader()
//	page, err := reader.NextPage(ctx) // exatamente um fetch
//	token := page.Token               // retome depois com LastKey(token)
//
// Scan paralelo por segmentos independentes:
//
//	plan, _ := store.Scan().Plan()
//	items, failures, err := dyndb.ScanAllSegments(ctx, store, plan, 4)
//
// Configuração:
// O Store é configurado via `TableConfig[T]` ou por variáveis de ambiente
// (tags `env`). Retry, logging (zerolog) e métricas (Datadog) entram como
// opções do store: `dyndb.New(client, cfg, dyndb.WithRetryPolicy(...))`.
package dyndb
