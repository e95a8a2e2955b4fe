// Package dyndb fornece uma abstração genérica e fortemente tipada sobre o
// AWS DynamoDB Go SDK (v2).
//
// Visão Geral:
// O pacote `dyndb` oferece a interface `Store[T]`, que simplifica as operações
// CRUD e Batch, eliminando a necessidade de lidar diretamente com os tipos
// de baixo nível do SDK do DynamoDB (AttributeValue, etc.), e o adaptador
// `Repo[T]`, que implementa easyrepo.Repo[T] sobre uma tabela.
//
// Funcionalidades Principais:
//   - CRUD Tipado: `Get`, `Put`, `Update` (SET parcial via UpdateItem) e `Delete`.
//   - Batch: `BatchWrite` (25 por chamada) e `BatchGet` (100 por chamada), com
//     nova tentativa dos itens não processados.
//   - Builder Fluente: `Query().KeyEqual(...).FilterEqual(...).Exec(ctx)`.
//   - Paginação: `LastEvaluatedKey` vira um token Base64; `All(ctx)` percorre as páginas.
//   - Item inexistente: `ErrNotFound`, equivalente a exception.DoesNotExist.
//
// Exemplos de Uso:
//
//	type Dev struct {
//		ID   string `json:"id" constraint:"required"`
//		Name string `json:"name" constraint:"required"`
//	}
//
//	awsCfg, _ := config.LoadDefaultConfig(ctx)
//	repo, err := dyndb.NewRepo[Dev](dynamodb.NewFromConfig(awsCfg), dyndb.TableConfig{
//		TableName: "devs",
//		HashKey:   "id",
//	})
//	service := easyrepo.NewService[Dev](repo)
//
// Consulta fluente direto no Store:
//
//	store, _ := dyndb.New[Dev](client, dyndb.TableConfig{TableName: "devs", HashKey: "id"})
//	devs, token, err := store.Query().
//		Index("by-language").
//		KeyEqual("language", "Go").
//		Limit(50).
//		Exec(ctx)
//
// Configuração:
// Sem TableName, `TableConfig` é carregada das variáveis DYNAMODB_* via envloader.
package dyndb
