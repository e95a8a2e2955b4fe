/*
Package easyrepo fornece uma abstração genérica para o padrão Service-Repository,
independente do armazenamento.

O objetivo deste pacote é reduzir o boilerplate em microserviços Go, entregando:
  - Validação automática das entidades pelo engine do pacote validation.
  - Operações CRUD padronizadas com suporte a Generics (Repo[T]).
  - Busca com filtro por propriedades (Search[T]).
  - Recursos HTTP prontos para o verb.Router (Collection e Item).

Implementações de Repo[T]: dyndb.Repo (DynamoDB), sqlrepo.Repository (Postgres),
cache.Repo (Redis, decorator) e MemoryRepository.

Exemplo de uso:

	type Dev struct {
		ID    string `json:"id" constraint:"required"`
		Name  string `json:"name" constraint:"required"`
		Level int    `json:"level" constraint:"gt=1"`
	}

	service := easyrepo.NewService[Dev](easyrepo.NewMemoryRepository[Dev]("id"))
	dev, err := service.Create(ctx, &Dev{ID: "1", Name: "Sander", Level: 3})

	router := verb.NewRouter()
	router.Mount("/devs", easyrepo.Collection[Dev](service))
	router.Mount("/devs", easyrepo.Item[Dev](service))
*/
package easyrepo
