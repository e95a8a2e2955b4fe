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
//
// Package envloader fornece um utilitário simples para carregar variáveis de
// ambiente diretamente para campos de uma struct Go, incluindo suporte
// para tags de ambiente (`env`) e valores padrão (`envDefault`).
//
// Visão Geral:
// O `envloader` simplifica a gestão de configurações em aplicações Go.
// Ele utiliza reflection para inspecionar a struct de configuração e mapear
// automaticamente variáveis de ambiente para os campos tipados. Suporta tipos
// básicos como string, int, uint, bool, float, time.Duration e []string, além de structs aninhadas
// (incluindo ponteiros para structs).
//
// Funcionalidades Principais:
// - Mapeamento por Tag: Usa a tag `env:"VAR_NAME"` para encontrar a variável.
// - Valores Padrão: Usa a tag `envDefault:"value"` se a variável não estiver definida.
// - Obrigatórios: `envRequired:"true"` falha com MissingEnvError quando não há valor.
// - Durações e Listas: time.Duration ("5s") e []string separado por vírgulas.
// - Suporte a Aninhamento: Processa structs aninhadas e ponteiros para structs.
// - Tratamento de Erros Tipados: Retorna erros específicos para configurações inválidas ou conversões de tipo.
//
// Exemplos de Uso:
//
// As configurações do toolkit (sqlrepo.Config, dyndb.TableConfig, cache.Config,
// transport.ServerConfig) são carregadas assim:
//
//	var table dyndb.TableConfig // DYNAMODB_TABLE_NAME, DYNAMODB_HASH_KEY, ...
//	if err := envloader.Load(&table); err != nil {
//		log.Fatal(err)
//	}
//
// Structs aninhadas são percorridas, então a configuração de um serviço pode
// compor as dos pacotes:
//
//	type Config struct {
//		Storage string `env:"DEVS_STORAGE" envDefault:"memory"`
//		Server  transport.ServerConfig
//		Cache   cache.Config
//	}
//
//	var cfg Config
//	envloader.MustLoad(&cfg) // panic com o erro tipado
package envloader
