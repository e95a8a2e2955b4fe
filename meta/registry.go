package meta

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Tag identifica uma família de descritores (ex: "constraint", "verb").
type Tag string

// Parser converte o valor bruto de uma struct tag em descritores.
// O owner é o tipo que declara o campo (pode ser um tipo embutido).
type Parser func(owner reflect.Type, field reflect.StructField, raw string) ([]any, error)

var (
	// ErrNotStruct é retornado quando o sample de um registro não é uma struct.
	ErrNotStruct = errors.New("meta: sample must be a struct or pointer to struct")
	// ErrUnknownProperty é retornado quando a propriedade não existe no tipo.
	ErrUnknownProperty = errors.New("meta: unknown property")
)

// TagError indica uma struct tag malformada. É um erro de programação.
type TagError struct {
	Type  reflect.Type
	Field string
	Tag   Tag
	Err   error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("meta: invalid %s tag on %s.%s: %v", e.Tag, e.Type, e.Field, e.Err)
}

func (e *TagError) Unwrap() error { return e.Err }

// Entry é um descritor associado a uma propriedade.
type Entry struct {
	Property   string
	Field      string
	Index      []int
	Descriptor any
}

// Value lê o valor corrente da propriedade no subject.
// Propriedades sem campo (métodos) e ponteiros embutidos nil retornam nil.
func (e Entry) Value(subject any) any {
	if e.Index == nil {
		return nil
	}
	v := indirect(reflect.ValueOf(subject))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil
	}
	f, err := v.FieldByIndexErr(e.Index)
	if err != nil || !f.CanInterface() {
		return nil
	}
	return f.Interface()
}

// PropertyMeta expõe os descritores de uma única propriedade.
type PropertyMeta struct {
	Name  string
	Field string
	tags  map[Tag][]any
}

// Get retorna o primeiro descritor da tag, ou nil.
func (p PropertyMeta) Get(tag Tag) any {
	if ds := p.tags[tag]; len(ds) > 0 {
		return ds[0]
	}
	return nil
}

// All retorna todos os descritores da tag na ordem de registro.
func (p PropertyMeta) All(tag Tag) []any {
	return append([]any(nil), p.tags[tag]...)
}

// Has indica se a propriedade carrega algum descritor da tag.
func (p PropertyMeta) Has(tag Tag) bool {
	return len(p.tags[tag]) > 0
}

type property struct {
	name  string
	field string
	index []int
	tags  map[Tag][]any
}

type typeMeta struct {
	props  []*property
	byName map[string]*property
}

// registration guarda os descritores adicionados via Register para um tipo.
type registration struct {
	order []string
	props map[string]map[Tag][]any
	tags  map[string][]Tag
}

// Registry armazena metadados por tipo. É seguro para uso concorrente.
type Registry struct {
	mu      sync.RWMutex
	parsers map[Tag]Parser
	added   map[reflect.Type]*registration
	cache   map[reflect.Type]*typeMeta
}

// NewRegistry cria um registro vazio.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[Tag]Parser),
		added:   make(map[reflect.Type]*registration),
		cache:   make(map[reflect.Type]*typeMeta),
	}
}

// Handle instala o parser da tag. Substitui um parser anterior.
func (r *Registry) Handle(tag Tag, parse Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[tag] = parse
	r.cache = make(map[reflect.Type]*typeMeta)
}

// Handles indica se a tag já possui parser.
func (r *Registry) Handles(tag Tag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.parsers[tag]
	return ok
}

// Register adiciona descritores à propriedade do tipo do sample.
// A propriedade pode ser um campo (nome json ou nome Go) ou um nome livre,
// usado para propriedades baseadas em métodos.
func (r *Registry) Register(sample any, prop string, tag Tag, descriptors ...any) error {
	t := typeOf(sample)
	if t == nil || t.Kind() != reflect.Struct {
		return ErrNotStruct
	}
	if prop == "" {
		return fmt.Errorf("meta: empty property name for %s", t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.added[t]
	if !ok {
		reg = &registration{props: make(map[string]map[Tag][]any), tags: make(map[string][]Tag)}
		r.added[t] = reg
	}
	tags, ok := reg.props[prop]
	if !ok {
		tags = make(map[Tag][]any)
		reg.props[prop] = tags
		reg.order = append(reg.order, prop)
	}
	if _, seen := tags[tag]; !seen {
		reg.tags[prop] = append(reg.tags[prop], tag)
	}
	tags[tag] = append(tags[tag], descriptors...)
	r.cache = make(map[reflect.Type]*typeMeta)
	return nil
}

// Keys retorna todos os descritores da tag para o tipo do subject.
// Subjects que não são structs não possuem metadados.
func (r *Registry) Keys(subject any, tag Tag) ([]Entry, error) {
	return r.KeysOf(subject, tag)
}

// KeysOf combina várias tags mantendo a ordem das propriedades. Dentro de
// uma propriedade, as tags seguem a ordem dos argumentos.
func (r *Registry) KeysOf(subject any, tags ...Tag) ([]Entry, error) {
	t := typeOf(subject)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, nil
	}
	tm, err := r.lookup(t)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, p := range tm.props {
		for _, tag := range tags {
			for _, d := range p.tags[tag] {
				entries = append(entries, Entry{Property: p.name, Field: p.field, Index: p.index, Descriptor: d})
			}
		}
	}
	return entries, nil
}

// Has indica se o tipo do subject possui ao menos um descritor de alguma das tags.
func (r *Registry) Has(subject any, tags ...Tag) (bool, error) {
	t := typeOf(subject)
	if t == nil || t.Kind() != reflect.Struct {
		return false, nil
	}
	tm, err := r.lookup(t)
	if err != nil {
		return false, err
	}
	for _, p := range tm.props {
		for _, tag := range tags {
			if len(p.tags[tag]) > 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

// Property retorna os metadados de uma propriedade pelo nome.
func (r *Registry) Property(subject any, name string) (PropertyMeta, error) {
	t := typeOf(subject)
	if t == nil || t.Kind() != reflect.Struct {
		return PropertyMeta{}, ErrNotStruct
	}
	tm, err := r.lookup(t)
	if err != nil {
		return PropertyMeta{}, err
	}
	p, ok := tm.byName[name]
	if !ok {
		return PropertyMeta{}, fmt.Errorf("%w: %s.%s", ErrUnknownProperty, t, name)
	}
	return PropertyMeta{Name: p.name, Field: p.field, tags: p.tags}, nil
}

// Properties retorna os nomes das propriedades que carregam a tag, em ordem.
func (r *Registry) Properties(subject any, tag Tag) ([]string, error) {
	entries, err := r.Keys(subject, tag)
	if err != nil {
		return nil, err
	}
	var names []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if !seen[e.Property] {
			seen[e.Property] = true
			names = append(names, e.Property)
		}
	}
	return names, nil
}

// Describe faz o parse de todas as tags do tipo, expondo tags malformadas.
func (r *Registry) Describe(sample any) error {
	t := typeOf(sample)
	if t == nil || t.Kind() != reflect.Struct {
		return ErrNotStruct
	}
	_, err := r.lookup(t)
	return err
}

func (r *Registry) lookup(t reflect.Type) (*typeMeta, error) {
	r.mu.RLock()
	tm, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return tm, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tm, ok := r.cache[t]; ok {
		return tm, nil
	}
	tm, err := r.build(t)
	if err != nil {
		return nil, err
	}
	r.cache[t] = tm
	return tm, nil
}

// build percorre os campos em ordem de declaração, expandindo structs
// embutidas no lugar, e depois acrescenta as propriedades sem campo.
func (r *Registry) build(t reflect.Type) (*typeMeta, error) {
	tm := &typeMeta{byName: make(map[string]*property)}
	claimed := make(map[reflect.Type]map[string]bool)
	if err := r.collect(tm, t, nil, claimed); err != nil {
		return nil, err
	}
	r.methods(tm, t, claimed, make(map[reflect.Type]bool))
	return tm, nil
}

func (r *Registry) collect(tm *typeMeta, t reflect.Type, prefix []int, claimed map[reflect.Type]map[string]bool) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && f.IsExported() {
				if err := r.collect(tm, ft, index, claimed); err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}

		p := &property{name: PropertyName(f), field: f.Name, index: index, tags: make(map[Tag][]any)}
		for tag, parse := range r.parsers {
			raw, ok := f.Tag.Lookup(string(tag))
			if !ok {
				continue
			}
			ds, err := parse(t, f, raw)
			if err != nil {
				return &TagError{Type: t, Field: f.Name, Tag: tag, Err: err}
			}
			p.tags[tag] = append(p.tags[tag], ds...)
		}

		if reg, ok := r.added[t]; ok {
			for _, key := range []string{p.name, p.field} {
				tags, ok := reg.props[key]
				if !ok {
					continue
				}
				if claimed[t] == nil {
					claimed[t] = make(map[string]bool)
				}
				claimed[t][key] = true
				for _, tag := range reg.tags[key] {
					p.tags[tag] = append(p.tags[tag], tags[tag]...)
				}
				if p.name == p.field {
					break
				}
			}
		}

		tm.props = append(tm.props, p)
		tm.byName[p.name] = p
		if _, ok := tm.byName[p.field]; !ok {
			tm.byName[p.field] = p
		}
	}
	return nil
}

// methods acrescenta as propriedades registradas que não correspondem a campos.
// Tipos embutidos (ancestrais) vêm antes do próprio tipo.
func (r *Registry) methods(tm *typeMeta, t reflect.Type, claimed map[reflect.Type]map[string]bool, visited map[reflect.Type]bool) {
	if visited[t] {
		return
	}
	visited[t] = true

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			r.methods(tm, ft, claimed, visited)
		}
	}

	reg, ok := r.added[t]
	if !ok {
		return
	}
	for _, name := range reg.order {
		if claimed[t][name] {
			continue
		}
		p, ok := tm.byName[name]
		if !ok {
			p = &property{name: name, tags: make(map[Tag][]any)}
			tm.props = append(tm.props, p)
			tm.byName[name] = p
		}
		for _, tag := range reg.tags[name] {
			p.tags[tag] = append(p.tags[tag], reg.props[name][tag]...)
		}
	}
}

// PropertyName retorna o nome da propriedade: o nome da tag json, ou o nome do campo.
func PropertyName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("json"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Lookup lê o valor de uma propriedade do subject pelo nome, sem registro.
func Lookup(subject any, name string) (any, bool) {
	v := indirect(reflect.ValueOf(subject))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil, false
	}
	return lookupField(v, name)
}

func lookupField(v reflect.Value, name string) (any, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(i)
		if f.Anonymous {
			inner := indirect(fv)
			if inner.IsValid() && inner.Kind() == reflect.Struct {
				if val, ok := lookupField(inner, name); ok {
					return val, true
				}
				continue
			}
		}
		if PropertyName(f) == name || f.Name == name {
			return fv.Interface(), true
		}
	}
	return nil, false
}

// Resolve devolve o nome de propriedade do campo, aceitando também o nome Go.
// A busca usa só o tipo, então ancestrais embutidos nil também são resolvidos.
func Resolve(subject any, name string) (string, bool) {
	t := typeOf(subject)
	if t == nil || t.Kind() != reflect.Struct {
		return "", false
	}
	return resolveField(t, name)
}

func resolveField(t reflect.Type, name string) (string, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous {
			inner := f.Type
			for inner.Kind() == reflect.Ptr {
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				if prop, ok := resolveField(inner, name); ok {
					return prop, true
				}
				continue
			}
		}
		if prop := PropertyName(f); prop == name || f.Name == name {
			return prop, true
		}
	}
	return "", false
}

// TypeName retorna o nome do tipo dinâmico do subject, sem ponteiros.
func TypeName(subject any) string {
	t := typeOf(subject)
	if t == nil {
		return ""
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func typeOf(subject any) reflect.Type {
	var t reflect.Type
	if rt, ok := subject.(reflect.Type); ok {
		t = rt
	} else {
		t = reflect.TypeOf(subject)
	}
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
