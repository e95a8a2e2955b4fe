// Package fastentitytoolkit reúne utilitários para serviços de entidades em Go:
// validação declarativa por tags, persistência tipada e publicação HTTP.
//
// Visão Geral:
// O módulo é uma caixa de ferramentas. Cada pacote resolve uma parte do ciclo
// de vida de uma entidade e pode ser usado sozinho:
//
//   - meta: registro de descritores por propriedade (tags "constraint", "verb", ...).
//   - validation: engine de constraints, Results, Reject e regras em YAML.
//   - exception: erros nomeados (DoesNotExist, IsMissing, IsNotValid).
//   - query: builders de SQL (Clause, Update, Select, Insert, Delete).
//   - easyrepo: Repo[T], Search[T] e EasyService[T] com hooks e validação.
//   - verb: ações HTTP descritas por tags e montadas num roteador gorilla/mux.
//   - dyndb, sqlrepo: repositórios sobre DynamoDB e Postgres.
//   - pkg/cache: cache Redis read-through para qualquer Repo[T].
//   - envloader, pkg/logger, pkg/metrics, pkg/observability, pkg/transport: infraestrutura.
//
// Exemplo de Início Rápido:
//
//	type Dev struct {
//		ID    string `json:"id"`
//		Name  string `json:"name" constraint:"required"`
//		Level int    `json:"level" constraint:"gt=1"`
//	}
//
//	func main() {
//		var cfg dyndb.TableConfig
//		envloader.MustLoad(&cfg)
//
//		awsCfg, err := config.LoadDefaultConfig(context.Background())
//		if err != nil {
//			log.Fatal(err)
//		}
//		repo, err := dyndb.NewRepo[Dev](dynamodb.NewFromConfig(awsCfg), cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		service := easyrepo.NewService[Dev](repo)
//		router := verb.NewRouter()
//		router.Mount("/devs", easyrepo.Collection[Dev](service))
//		router.Mount("/devs", easyrepo.Item[Dev](service))
//		http.ListenAndServe(":8080", router)
//	}
//
// O exemplo completo, com cache, métricas e escolha de backend, está em examples/devs.
package fastentitytoolkit
