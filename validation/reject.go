package validation

// std é o engine padrão, ligado a meta.Default.
var std = New()

// Default retorna o engine padrão.
func Default() *Engine { return std }

// Validate valida o subject com o engine padrão.
func Validate(subject any) Results { return std.Validate(subject) }

// Register adiciona constraints no engine padrão.
func Register(sample any, property string, constraints ...Constraint) error {
	return std.Register(sample, property, constraints...)
}

// Valid valida a propriedade como subject aninhado usando o engine padrão.
func Valid() Constraint { return std.Valid() }

// Each valida cada elemento usando o engine padrão.
func Each() Constraint { return std.Each() }

// Reject retorna nil quando o subject é válido, ou os Results como erro.
func (e *Engine) Reject(subject any) error {
	rs := e.Validate(subject)
	if rs.IsValid() {
		return nil
	}
	return rs
}

// Reject devolve o subject intacto quando válido. Caso contrário retorna o
// valor zero e os Results como erro, recuperáveis com ExtractResults.
func Reject[T any](subject T) (T, error) {
	return RejectWith(std, subject)
}

// RejectWith é o mesmo que Reject com um engine específico.
func RejectWith[T any](e *Engine, subject T) (T, error) {
	if err := e.Reject(subject); err != nil {
		var zero T
		return zero, err
	}
	return subject, nil
}
