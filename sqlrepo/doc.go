/*
Package sqlrepo implementa easyrepo.Repo[T] sobre uma tabela SQL (Postgres via lib/pq).

Visão Geral:
Os comandos são montados com os builders do pacote query (SelectFrom, InsertInto,
NewUpdate, DeleteFrom) e sempre executados de forma parametrizada. As colunas
têm os nomes das propriedades da entidade; cada linha vira um mapa e o mapa é
convertido na entidade via JSON.

  - Save usa INSERT ... RETURNING * e traduz unique_violation em easyrepo.ErrItemAlreadyExists.
  - Update altera apenas as colunas informadas (UPDATE ... RETURNING *).
  - Linha inexistente vira exception.DoesNotExist.
  - Objetos e listas são gravados como JSON (colunas jsonb).

Exemplos de Uso:

	var cfg sqlrepo.Config
	envloader.MustLoad(&cfg) // SQL_DSN, SQL_TABLE, SQL_ID_COLUMN, SQL_TIMEOUT

	db, err := sqlrepo.Open(ctx, cfg)
	repo, err := sqlrepo.New[Dev](db, cfg)
	service := easyrepo.NewService[Dev](repo)
*/
package sqlrepo
