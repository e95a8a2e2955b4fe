package verb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/raywall/fast-entity-toolkit/meta"
)

// TagVerb é a tag de metadados com a ligação HTTP de uma propriedade.
const TagVerb meta.Tag = "verb"

// HttpVerb é o método HTTP.
type HttpVerb string

const (
	MethodGet    HttpVerb = http.MethodGet
	MethodPost   HttpVerb = http.MethodPost
	MethodPut    HttpVerb = http.MethodPut
	MethodPatch  HttpVerb = http.MethodPatch
	MethodDelete HttpVerb = http.MethodDelete
)

// HttpStatus é o status de resposta.
type HttpStatus int

const (
	Ok                  HttpStatus = http.StatusOK
	Created             HttpStatus = http.StatusCreated
	NoContent           HttpStatus = http.StatusNoContent
	BadRequest          HttpStatus = http.StatusBadRequest
	NotFound            HttpStatus = http.StatusNotFound
	Conflict            HttpStatus = http.StatusConflict
	InternalServerError HttpStatus = http.StatusInternalServerError
	BadGateway          HttpStatus = http.StatusBadGateway
)

var statusNames = map[string]HttpStatus{
	"ok":                  Ok,
	"created":             Created,
	"nocontent":           NoContent,
	"badrequest":          BadRequest,
	"notfound":            NotFound,
	"conflict":            Conflict,
	"internalservererror": InternalServerError,
	"badgateway":          BadGateway,
}

// ContentType define como o resultado da ação é escrito.
type ContentType string

const (
	Json   ContentType = "application/json"
	Text   ContentType = "text/plain; charset=utf-8"
	Stream ContentType = "application/octet-stream"
)

var contentNames = map[string]ContentType{"json": Json, "text": Text, "stream": Stream}

// Options são os status e o tipo de conteúdo de um verbo.
type Options struct {
	OnOk       HttpStatus
	OnNotFound HttpStatus
	OnError    HttpStatus
	Type       ContentType
}

// DefaultOptions: Ok, NotFound, BadRequest e Json.
func DefaultOptions() Options {
	return Options{OnOk: Ok, OnNotFound: NotFound, OnError: BadRequest, Type: Json}
}

// Request é a entrada de uma ação.
type Request struct {
	Vars   map[string]string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Decode faz o unmarshal do corpo JSON.
func (r Request) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("verb: empty body")
	}
	return json.Unmarshal(r.Body, v)
}

// Action executa um verbo. O resultado é escrito conforme o ContentType.
type Action func(ctx context.Context, req Request) (any, error)

// Verb liga uma propriedade a um método HTTP.
type Verb struct {
	Verb    HttpVerb
	Path    string
	Options Options
	// Handler é usado em propriedades registradas sem campo Action.
	Handler Action
}

// Option altera um Verb.
type Option func(*Verb)

func OnOk(s HttpStatus) Option { return func(v *Verb) { v.Options.OnOk = s } }
func OnNotFound(s HttpStatus) Option { return func(v *Verb) { v.Options.OnNotFound = s } }
func OnError(s HttpStatus) Option { return func(v *Verb) { v.Options.OnError = s } }
func As(t ContentType) Option { return func(v *Verb) { v.Options.Type = t } }
func At(path string) Option { return func(v *Verb) { v.Path = path } }
func Handle(action Action) Option { return func(v *Verb) { v.Handler = action } }

func New(method HttpVerb, opts ...Option) Verb {
	v := Verb{Verb: method, Options: DefaultOptions()}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

func Get(opts ...Option) Verb { return New(MethodGet, opts...) }
func Post(opts ...Option) Verb { return New(MethodPost, opts...) }
func Put(opts ...Option) Verb { return New(MethodPut, opts...) }
func Patch(opts ...Option) Verb { return New(MethodPatch, opts...) }
func Delete(opts ...Option) Verb { return New(MethodDelete, opts...) }

// Register liga uma propriedade (geralmente um método) a um verbo no registro padrão.
func Register(sample any, property string, v Verb) error {
	return meta.Register(sample, property, TagVerb, v)
}

// Of retorna o verbo de uma propriedade, ou false se não houver.
func Of(r *meta.Registry, resource any, property string) (Verb, bool) {
	p, err := r.Property(resource, property)
	if err != nil {
		return Verb{}, false
	}
	v, ok := p.Get(TagVerb).(Verb)
	return v, ok
}

// ParseTag interpreta verb:"get,path=/{id},onOk=204,type=stream".
func ParseTag(_ reflect.Type, _ reflect.StructField, raw string) ([]any, error) {
	parts := strings.Split(raw, ",")
	method := HttpVerb(strings.ToUpper(strings.TrimSpace(parts[0])))
	switch method {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
	default:
		return nil, fmt.Errorf("unknown http verb %q", parts[0])
	}

	v := New(method)
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("invalid option %q", part)
		}
		switch strings.ToLower(key) {
		case "path":
			v.Path = value
		case "onok":
			s, err := parseStatus(value)
			if err != nil {
				return nil, err
			}
			v.Options.OnOk = s
		case "onnotfound":
			s, err := parseStatus(value)
			if err != nil {
				return nil, err
			}
			v.Options.OnNotFound = s
		case "onerror":
			s, err := parseStatus(value)
			if err != nil {
				return nil, err
			}
			v.Options.OnError = s
		case "type":
			t, ok := contentNames[strings.ToLower(value)]
			if !ok {
				return nil, fmt.Errorf("unknown content type %q", value)
			}
			v.Options.Type = t
		default:
			return nil, fmt.Errorf("unknown option %q", key)
		}
	}
	return []any{v}, nil
}

func parseStatus(value string) (HttpStatus, error) {
	if n, err := strconv.Atoi(value); err == nil {
		if n < 100 || n > 599 {
			return 0, fmt.Errorf("invalid status %d", n)
		}
		return HttpStatus(n), nil
	}
	if s, ok := statusNames[strings.ToLower(value)]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("unknown status %q", value)
}

func init() {
	meta.Handle(TagVerb, ParseTag)
}
