package validation

import "github.com/raywall/fast-entity-toolkit/meta"

// Tags lidas pelo engine no registro de metadados.
const (
	TagConstraint meta.Tag = "constraint"
	TagValidate   meta.Tag = "validate"
)

type outcomeKind int

const (
	outcomePass outcomeKind = iota
	outcomeFail
	outcomeNested
)

// Outcome é o resultado de uma regra: Pass, Fail ou Nested.
type Outcome struct {
	kind    outcomeKind
	message string
	nested  Results
}

// Pass indica que a regra foi satisfeita.
func Pass() Outcome { return Outcome{kind: outcomePass} }

// Fail indica violação. Uma mensagem vazia usa o Text do Constraint.
func Fail(message string) Outcome { return Outcome{kind: outcomeFail, message: message} }

// Nested carrega os resultados de uma validação aninhada.
func Nested(rs Results) Outcome { return Outcome{kind: outcomeNested, nested: rs} }

// Check converte um booleano em Pass ou Fail.
func Check(ok bool) Outcome {
	if ok {
		return Pass()
	}
	return Fail("")
}

func (o Outcome) Passed() bool { return o.kind == outcomePass || (o.kind == outcomeNested && len(o.nested) == 0) }
func (o Outcome) Failed() bool { return o.kind == outcomeFail }
func (o Outcome) Message() string {
	return o.message
}
func (o Outcome) Results() Results { return o.nested }

// Rule avalia o valor corrente de uma propriedade.
type Rule func(value any) Outcome

// Constraint descreve uma regra aplicada a uma propriedade.
// Não deve ser alterado depois de registrado.
type Constraint struct {
	Name     string
	Property string
	Rule     Rule
	Text     string
	Params   map[string]any

	// inner é aplicado a cada elemento quando o constraint é "each=<spec>".
	inner *Constraint
	// subjectRule recebe também a entidade inteira (usado por cel).
	subjectRule func(value, subject any) Outcome
}

func (c Constraint) evaluate(value, subject any) Outcome {
	if c.subjectRule != nil {
		return c.subjectRule(value, subject)
	}
	return c.Rule(value)
}

// WithText retorna uma cópia com outro template de mensagem.
func (c Constraint) WithText(text string) Constraint {
	c.Text = text
	return c
}
