package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Language string

func (l Language) IsValid() bool {
	switch l {
	case "TypeScript", "Go", "Java":
		return true
	}
	return false
}

func (l Language) Code() string { return string(l) }

type MailAddress string

func (e MailAddress) IsValid() bool { return strings.Contains(string(e), "@") }

type Dev struct {
	Name     string    `json:"name" constraint:"required"`
	Language *Language `json:"language" constraint:"defined"`
	Level    int       `json:"level" constraint:"gt=1"`
}

type Team struct {
	Lead    *Dev     `json:"lead" constraint:"valid"`
	Members []Dev    `json:"members" constraint:"each"`
	Tags    []string `json:"tags" constraint:"each=min=2"`
}

type Plain struct {
	Name string
}

type Money struct {
	Amount   int `json:"amount" constraint:"gt=10"`
	approved bool
}

func (m Money) IsValid() bool { return m.approved }

type Person struct {
	Name  string `json:"name" constraint:"required"`
	Level int    `json:"level" constraint:"gt=1"`
}

type Staff struct {
	*Person
	Role string `json:"role" constraint:"required"`
}

func lang(l Language) *Language { return &l }

func TestEngine_Validate(t *testing.T) {
	t.Run("should report an undefined subject", func(t *testing.T) {
		for _, subject := range []any{nil, (*Dev)(nil)} {
			rs := Validate(subject)
			require.Len(t, rs, 1)
			assert.Equal(t, "Subject is not defined.", rs[0].Message)
			assert.Empty(t, rs[0].Property)
		}
	})

	t.Run("should validate enums and value objects by themselves", func(t *testing.T) {
		assert.Empty(t, Validate(Language("Go")))

		rs := Validate(Language("Cobol"))
		require.Len(t, rs, 1)
		assert.Equal(t, "This is not a valid Language.", rs[0].Message)

		rs = Validate(MailAddress("nope"))
		require.Len(t, rs, 1)
		assert.Equal(t, "This is not a valid MailAddress.", rs[0].Message)
		assert.Empty(t, Validate(MailAddress("dev@example.com")))
	})

	t.Run("should pass a valid subject", func(t *testing.T) {
		dev := Dev{Name: "Sander", Language: lang("TypeScript"), Level: 3}
		rs := Validate(&dev)
		assert.NotNil(t, rs)
		assert.Empty(t, rs)
	})

	t.Run("should report every failing constraint in order", func(t *testing.T) {
		rs := Validate(Dev{Level: 1})
		require.Len(t, rs, 3)
		assert.Equal(t, []string{"name", "language", "level"}, rs.Fields())
		assert.Equal(t, []string{
			"name is required.",
			"language must be defined.",
			"level must be greater than 1.",
		}, rs.Messages())
		assert.Equal(t, "Dev", rs[2].Subject)
		assert.Equal(t, "gt", rs[2].Rule)
		assert.Equal(t, 1, rs[2].Actual)
	})

	t.Run("should be deterministic", func(t *testing.T) {
		dev := Dev{Level: 0}
		assert.Equal(t, Validate(dev), Validate(dev))
	})

	t.Run("should return empty results for plain subjects", func(t *testing.T) {
		assert.Empty(t, Validate(Plain{Name: "x"}))
		assert.Empty(t, Validate(42))
		assert.Empty(t, Validate("text"))
	})

	t.Run("should splice nested results without relabelling", func(t *testing.T) {
		team := Team{
			Lead:    &Dev{Name: "Jeroen", Language: lang("Go"), Level: 1},
			Members: []Dev{{Language: lang("Go"), Level: 4}},
			Tags:    []string{"a", "go"},
		}

		rs := Validate(team)
		require.Len(t, rs, 3)
		assert.Equal(t, Result{Subject: "Dev", Property: "level", Rule: "gt", Message: "level must be greater than 1.", Actual: 1}, rs[0])
		assert.Equal(t, "name", rs[1].Property)
		assert.Equal(t, "tags[0]", rs[2].Property)
		assert.Equal(t, "tags[0] must be at least 2.", rs[2].Message)
	})

	t.Run("should trust IsValid over declared constraints", func(t *testing.T) {
		assert.Empty(t, Validate(Money{Amount: 1, approved: true}))

		rs := Validate(Money{Amount: 50})
		require.Len(t, rs, 1)
		assert.Equal(t, "This is not a valid Money.", rs[0].Message)
	})

	t.Run("should apply constraints declared on embedded ancestors", func(t *testing.T) {
		rs := Validate(Staff{Person: &Person{Level: 1}, Role: "lead"})
		assert.Equal(t, []string{"name", "level"}, rs.Fields())

		rs = Validate(Staff{Person: &Person{Name: "Ada", Level: 2}})
		assert.Equal(t, []string{"role"}, rs.Fields())
	})

	t.Run("should skip nil nested subjects", func(t *testing.T) {
		assert.Empty(t, Validate(Team{}))
	})

	t.Run("should panic on malformed tags", func(t *testing.T) {
		type Bad struct {
			X int `constraint:"nope"`
		}
		assert.Panics(t, func() { Validate(Bad{}) })
	})
}

func TestEngine_Classify(t *testing.T) {
	e := Default()
	assert.Equal(t, KindUndefined, e.Classify(nil))
	assert.Equal(t, KindEnum, e.Classify(Language("Go")))
	assert.Equal(t, KindValue, e.Classify(MailAddress("a@b")))
	assert.Equal(t, KindValidatable, e.Classify(Dev{}))
	assert.Equal(t, KindPlain, e.Classify(Plain{}))
	assert.Equal(t, "validatable", KindValidatable.String())
}

func TestEngine_Register(t *testing.T) {
	type Account struct {
		Mail string `json:"mail"`
	}
	require.NoError(t, Register(Account{}, "mail", Email()))
	require.NoError(t, Register(Account{}, "display", Custom("display", "{property} must be derived.", func(v any) bool { return v != nil })))

	rs := Validate(Account{Mail: "wrong"})
	require.Len(t, rs, 2)
	assert.Equal(t, "mail must be a valid email address.", rs[0].Message)
	assert.Equal(t, "display must be derived.", rs[1].Message)

	rs = Validate(Account{Mail: "dev@example.com"})
	assert.Equal(t, []string{"display"}, rs.Fields())
}

func TestEngine_CustomRegistry(t *testing.T) {
	type Sample struct {
		Code string `json:"code" constraint:"len=3"`
	}
	e := New()
	assert.Same(t, e.Registry(), Default().Registry())

	rs := e.Validate(Sample{Code: "ab"})
	require.Len(t, rs, 1)
	assert.Equal(t, "code must have length 3.", rs[0].Message)
}

func TestCELConstraint(t *testing.T) {
	type Range struct {
		From int `json:"from"`
		To   int `json:"to" constraint:"cel=double(self) > subject.from"`
	}

	assert.Empty(t, Validate(Range{From: 1, To: 2}))

	rs := Validate(Range{From: 5, To: 3})
	require.Len(t, rs, 1)
	assert.Equal(t, "to does not satisfy 'double(self) > subject.from'.", rs[0].Message)

	_, err := CEL("self >")
	assert.Error(t, err)
}

func TestPlaygroundBridge(t *testing.T) {
	type Contact struct {
		Mail string `json:"mail" validate:"required,email"`
		Skip string `validate:"-"`
	}

	assert.Empty(t, Validate(Contact{Mail: "dev@example.com"}))

	rs := Validate(Contact{Mail: "nope"})
	require.Len(t, rs, 1)
	assert.Equal(t, "validate", rs[0].Rule)
	assert.Equal(t, "mail failed on the 'email' rule.", rs[0].Message)

	rs = Validate(Contact{})
	require.Len(t, rs, 1)
	assert.Equal(t, "mail failed on the 'required' rule.", rs[0].Message)
}

func TestReject(t *testing.T) {
	t.Run("should return the untouched subject when valid", func(t *testing.T) {
		dev := &Dev{Name: "Sander", Language: lang("Go"), Level: 3}
		got, err := Reject(dev)
		require.NoError(t, err)
		assert.Same(t, dev, got)
	})

	t.Run("should reject with the same results", func(t *testing.T) {
		dev := Dev{Level: 1}
		got, err := Reject(dev)
		require.Error(t, err)
		assert.Equal(t, Dev{}, got)
		assert.True(t, errors.Is(err, ErrInvalid))

		rs, ok := ExtractResults(err)
		require.True(t, ok)
		assert.Equal(t, Validate(dev), rs)
	})

	t.Run("should reject undefined subjects", func(t *testing.T) {
		_, err := Reject[*Dev](nil)
		rs, ok := ExtractResults(err)
		require.True(t, ok)
		assert.Equal(t, MsgUndefined, rs[0].Message)
	})

	t.Run("should not extract from unrelated errors", func(t *testing.T) {
		_, ok := ExtractResults(errors.New("boom"))
		assert.False(t, ok)
	})
}
