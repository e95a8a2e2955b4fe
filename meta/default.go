package meta

// Default é o registro compartilhado usado pelos pacotes validation e verb.
var Default = NewRegistry()

// Handle instala um parser no registro padrão.
func Handle(tag Tag, parse Parser) { Default.Handle(tag, parse) }

// Register adiciona descritores no registro padrão.
func Register(sample any, prop string, tag Tag, descriptors ...any) error {
	return Default.Register(sample, prop, tag, descriptors...)
}

// Keys consulta o registro padrão.
func Keys(subject any, tag Tag) ([]Entry, error) { return Default.Keys(subject, tag) }

// Property consulta uma propriedade no registro padrão.
func Property(subject any, name string) (PropertyMeta, error) {
	return Default.Property(subject, name)
}

// Describe valida as tags do tipo no registro padrão.
func Describe(sample any) error { return Default.Describe(sample) }
