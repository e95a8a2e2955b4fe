package meta

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tagLabel Tag = "label"

func splitParser(owner reflect.Type, field reflect.StructField, raw string) ([]any, error) {
	if raw == "" {
		return nil, errors.New("empty label")
	}
	var out []any
	for _, part := range strings.Split(raw, ",") {
		out = append(out, part)
	}
	return out, nil
}

type Entity struct {
	ID string `json:"id" label:"key"`
}

type Person struct {
	Entity
	Name    string `json:"name" label:"first,second"`
	Age     int    `label:"age"`
	private string
	Skipped string `json:"-"`
}

type broken struct {
	Name string `label:""`
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Handle(tagLabel, splitParser)
	return r
}

func TestRegistry_Keys(t *testing.T) {
	t.Run("should return descriptors in declaration order with ancestors expanded", func(t *testing.T) {
		r := newTestRegistry()

		entries, err := r.Keys(Person{}, tagLabel)
		require.NoError(t, err)

		var got []string
		for _, e := range entries {
			got = append(got, e.Property+"="+e.Descriptor.(string))
		}
		assert.Equal(t, []string{"id=key", "name=first", "name=second", "Age=age"}, got)
	})

	t.Run("should append registered descriptors after tag descriptors", func(t *testing.T) {
		r := newTestRegistry()
		require.NoError(t, r.Register(Person{}, "name", tagLabel, "third"))
		require.NoError(t, r.Register(&Person{}, "nickname", tagLabel, "method"))

		entries, err := r.Keys(&Person{}, tagLabel)
		require.NoError(t, err)

		var got []string
		for _, e := range entries {
			got = append(got, e.Property+"="+e.Descriptor.(string))
		}
		assert.Equal(t, []string{"id=key", "name=first", "name=second", "name=third", "Age=age", "nickname=method"}, got)
	})

	t.Run("should accept the Go field name when registering", func(t *testing.T) {
		r := newTestRegistry()
		require.NoError(t, r.Register(Person{}, "Name", tagLabel, "byField"))

		p, err := r.Property(Person{}, "name")
		require.NoError(t, err)
		assert.Equal(t, []any{"first", "second", "byField"}, p.All(tagLabel))
	})

	t.Run("should return nothing for non struct subjects", func(t *testing.T) {
		r := newTestRegistry()

		entries, err := r.Keys(42, tagLabel)
		assert.NoError(t, err)
		assert.Empty(t, entries)

		entries, err = r.Keys(nil, tagLabel)
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("should fail on malformed tags", func(t *testing.T) {
		r := newTestRegistry()

		_, err := r.Keys(broken{}, tagLabel)
		var tagErr *TagError
		require.ErrorAs(t, err, &tagErr)
		assert.Equal(t, "Name", tagErr.Field)
		assert.Equal(t, tagLabel, tagErr.Tag)
		assert.Error(t, r.Describe(broken{}))
	})
}

func TestRegistry_Property(t *testing.T) {
	r := newTestRegistry()

	t.Run("should return first and all descriptors", func(t *testing.T) {
		p, err := r.Property(Person{}, "name")
		require.NoError(t, err)
		assert.Equal(t, "first", p.Get(tagLabel))
		assert.Equal(t, []any{"first", "second"}, p.All(tagLabel))
		assert.True(t, p.Has(tagLabel))
		assert.Nil(t, p.Get("other"))
	})

	t.Run("should fail for unknown properties", func(t *testing.T) {
		_, err := r.Property(Person{}, "missing")
		assert.ErrorIs(t, err, ErrUnknownProperty)
	})

	t.Run("should reject register on non struct", func(t *testing.T) {
		assert.ErrorIs(t, r.Register("text", "x", tagLabel, 1), ErrNotStruct)
	})
}

func TestEntry_Value(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(Person{}, "nickname", tagLabel, "method"))

	p := &Person{Entity: Entity{ID: "42"}, Name: "Sander", Age: 3}
	entries, err := r.Keys(p, tagLabel)
	require.NoError(t, err)

	values := map[string]any{}
	for _, e := range entries {
		values[e.Property] = e.Value(p)
	}
	assert.Equal(t, "42", values["id"])
	assert.Equal(t, "Sander", values["name"])
	assert.Equal(t, 3, values["Age"])
	assert.Nil(t, values["nickname"])

	var nilPerson *Person
	assert.Nil(t, entries[0].Value(nilPerson))
}

func TestLookupAndTypeName(t *testing.T) {
	p := Person{Entity: Entity{ID: "1"}, Name: "Jeroen"}

	v, ok := Lookup(p, "name")
	assert.True(t, ok)
	assert.Equal(t, "Jeroen", v)

	v, ok = Lookup(&p, "id")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = Lookup(p, "private")
	assert.False(t, ok)

	assert.Equal(t, "Person", TypeName(&p))
	assert.Equal(t, "", TypeName(nil))
}

func TestResolve(t *testing.T) {
	for name, want := range map[string]string{"name": "name", "Name": "name", "ID": "id", "Age": "Age"} {
		got, ok := Resolve(Person{}, name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	type Wrapper struct {
		*Entity
	}
	got, ok := Resolve(&Wrapper{}, "ID")
	assert.True(t, ok)
	assert.Equal(t, "id", got)

	_, ok = Resolve(Person{}, "private")
	assert.False(t, ok)
	_, ok = Resolve(42, "id")
	assert.False(t, ok)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := r.Keys(Person{}, tagLabel)
			assert.NoError(t, err)
			assert.Len(t, entries, 4)
		}()
	}
	wg.Wait()
}
