package validation

import (
	"errors"
	"fmt"
	"os"

	"github.com/raywall/fast-entity-toolkit/meta"
	"gopkg.in/yaml.v3"
)

// PropertyRules são as especificações de uma propriedade em um arquivo de regras.
type PropertyRules struct {
	Property string
	Specs    []string
}

// TypeRules agrupa as regras de um tipo, na ordem do documento.
type TypeRules struct {
	Name       string
	Properties []PropertyRules
}

// RuleSet é o conteúdo de um arquivo de regras:
//
//	types:
//	  Dev:
//	    name: [required]
//	    level: ["gt=1"]
type RuleSet struct {
	Types []TypeRules
}

type ruleDocument struct {
	Types yaml.Node `yaml:"types"`
}

// LoadRules lê e compila um arquivo de regras.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler arquivo de regras: %w", err)
	}
	return ParseRules(data)
}

// ParseRules interpreta o YAML e compila todas as especificações. Todos os
// problemas encontrados são retornados juntos.
func ParseRules(data []byte) (*RuleSet, error) {
	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml inválido: %w", err)
	}
	if doc.Types.Kind == 0 {
		return &RuleSet{}, nil
	}
	if doc.Types.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("linha %d: 'types' deve ser um mapa", doc.Types.Line)
	}

	rs := &RuleSet{}
	var errs []error
	for i := 0; i+1 < len(doc.Types.Content); i += 2 {
		typeName, props := doc.Types.Content[i], doc.Types.Content[i+1]
		tr := TypeRules{Name: typeName.Value}
		if props.Kind != yaml.MappingNode {
			errs = append(errs, fmt.Errorf("linha %d: tipo %s deve ser um mapa de propriedades", props.Line, tr.Name))
			continue
		}
		for j := 0; j+1 < len(props.Content); j += 2 {
			prop, specsNode := props.Content[j], props.Content[j+1]
			var specs []string
			if err := specsNode.Decode(&specs); err != nil {
				errs = append(errs, fmt.Errorf("linha %d: %s.%s: %w", specsNode.Line, tr.Name, prop.Value, err))
				continue
			}
			for _, spec := range specs {
				if _, err := std.Compile(spec); err != nil {
					errs = append(errs, fmt.Errorf("linha %d: %s.%s: %w", specsNode.Line, tr.Name, prop.Value, err))
				}
			}
			tr.Properties = append(tr.Properties, PropertyRules{Property: prop.Value, Specs: specs})
		}
		rs.Types = append(rs.Types, tr)
	}
	if len(errs) > 0 {
		return rs, errors.Join(errs...)
	}
	return rs, nil
}

// Count retorna o número total de especificações.
func (rs *RuleSet) Count() int {
	n := 0
	for _, t := range rs.Types {
		for _, p := range t.Properties {
			n += len(p.Specs)
		}
	}
	return n
}

// Bind registra as regras nos tipos cujos nomes correspondem aos samples.
// Tipos do arquivo sem sample correspondente são ignorados.
func (rs *RuleSet) Bind(e *Engine, samples ...any) error {
	byName := make(map[string]any, len(samples))
	for _, s := range samples {
		byName[meta.TypeName(s)] = s
	}
	for _, t := range rs.Types {
		sample, ok := byName[t.Name]
		if !ok {
			continue
		}
		for _, p := range t.Properties {
			cs := make([]Constraint, 0, len(p.Specs))
			for _, spec := range p.Specs {
				c, err := e.Compile(spec)
				if err != nil {
					return fmt.Errorf("%s.%s: %w", t.Name, p.Property, err)
				}
				cs = append(cs, c)
			}
			if err := e.Register(sample, p.Property, cs...); err != nil {
				return err
			}
		}
	}
	return nil
}
