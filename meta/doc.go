// Package meta armazena metadados por propriedade de tipos Go.
//
// Visão Geral:
// Um Registry associa tags nomeadas ("constraint", "verb", ...) a descritores
// arbitrários em cada propriedade de uma struct. Os descritores vêm de duas
// fontes: struct tags, interpretadas por um Parser instalado com Handle, e
// chamadas explícitas a Register, usadas para propriedades baseadas em
// métodos ou para regras vindas de configuração.
//
// Ordem:
// Keys percorre os campos na ordem de declaração, expandindo structs
// embutidas no lugar. Em cada propriedade, os descritores de tag vêm antes
// dos registrados via Register. Propriedades sem campo vêm por último, na
// ordem de registro.
//
// Exemplos de Uso:
//
//	type Dev struct {
//	    Name  string `json:"name" constraint:"required"`
//	    Level int    `json:"level" constraint:"gt=1"`
//	}
//
//	entries, err := meta.Keys(Dev{}, "constraint")
//	for _, e := range entries {
//	    fmt.Println(e.Property, e.Value(dev))
//	}
package meta
