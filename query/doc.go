// Package query monta textos de comandos SQL a partir de tabelas, campos e filtros.
//
// String renderiza os valores como literais (Clause/Literal) e existe para
// logs e depuração. Bind gera o comando parametrizado para o dialeto
// (SQL Server ou Postgres) e é o que os repositórios executam.
package query
