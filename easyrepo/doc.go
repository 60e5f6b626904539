/*
Package easyrepo fornece uma abstração genérica para o padrão Service-Repository
de leitura sobre o Amazon DynamoDB.

O objetivo deste pacote é reduzir o boilerplate em microserviços Go, entregando:
  - Validação automática dos itens lidos via struct tags (validator/v10).
  - Operações de leitura padronizadas com suporte a Generics.
  - Integração simplificada com o iterador paginado do toolkit dyndb.

Exemplo de uso:

	type User struct {
		ID    string `dynamodbav:"id" validate:"required"`
		Email string `dynamodbav:"email" validate:"required,email"`
	}

	service, _ := easyrepo.NewService[User](dynamoClient, tableConfig)

	// uma página por vez
	users, token, err := service.List(ctx, "")

	// ou a tabela inteira, sem estourar a memória
	err = service.ListAll(ctx, func(u User) error { return process(u) })
*/
package easyrepo
