// Package dynamo_read_toolkit fornece uma camada de leitura paginada, tipada e
// retomável sobre o Amazon DynamoDB.
//
// Visão Geral:
// Este módulo trata a leitura de tabelas como o que ela realmente é no
// DynamoDB: uma sequência de páginas encadeadas por cursores, não uma lista em
// memória. As abstrações centrais são:
// 1. Plano (dyndb.Plan): descrição imutável de uma Query ou Scan, produzida
// pelo QueryBuilder fluente.
// 2. Cursor (dyndb.Cursor): token opaco de retomada, serializável como string
// portátil entre processos.
// 3. Reader (dyndb.Reader): iterador com máquina de estados explícita — uma
// chamada busca exatamente uma página; a travessia completa é opt-in via
// Recursive.
//
// Quebra de compatibilidade: nas versões antigas Exec percorria todas as
// páginas automaticamente. Agora Exec devolve uma única página mais o token
// da próxima; quem precisa de tudo pede Reader().Recursive().
//
// Sub-Pacotes Principais:
//
// 1. dyndb:
//   - Store[T] de leitura (Get, BatchGet, Query, Scan, NewReader).
//   - Retry com backoff exponencial e jitter para throttling, embutido no
//     PageFetcher; o cursor só avança sobre resposta confirmada.
//   - Decodificação Lenient (falhas isoladas item a item) ou Strict.
//   - ScanAllSegments para scan paralelo em segmentos independentes.
//
// 2. easyrepo:
//   - Serviço de leitura de alto nível com validação estrutural dos itens.
//
// 3. envloader:
//   - Carregamento de configurações via tags "env" e "envDefault".
//
// 4. pkg/config, pkg/logger, pkg/metrics:
//   - Configuração YAML validada, logging estruturado (zerolog) e métricas
//     (Datadog/statsd) usados pela CLI dynscan.
//
// Exemplo de Início Rápido:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/aws/aws-sdk-go-v2/service/dynamodb" // Cliente AWS
//		"github.com/raywall/dynamo-read-toolkit/dyndb"
//	)
//
//	type User struct {
//		ID   string `dynamodbav:"id"`
//		Name string `dynamodbav:"name"`
//	}
//
//	func main() {
//		// client := dynamodb.NewFromConfig(awsConfig) // Assumindo awsConfig configurado
//		client := &dyndb.MockDynamoClient{} // Usando mock para o exemplo simples
//		users := dyndb.New(client, dyndb.TableConfig[User]{
//			TableName: "users",
//			HashKey:   "id",
//		})
//
//		// Uma página por chamada; o token retoma de onde parou.
//		page, token, err := users.Scan().Limit(100).Exec(context.Background())
//		if err != nil {
//			log.Fatalf("Erro ao ler página: %v", err)
//		}
//		log.Printf("Página: %d itens, próximo token: %q", len(page), token)
//
//		// Travessia completa, explícita.
//		reader, _ := users.Scan().Reader()
//		all, err := reader.Recursive().All(context.Background())
//		if err != nil {
//			log.Fatalf("Erro na travessia: %v", err)
//		}
//		log.Printf("Total: %d", len(all))
//	}
package dynamo_read_toolkit
