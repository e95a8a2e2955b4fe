package verb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/raywall/fast-entity-toolkit/exception"
	"github.com/raywall/fast-entity-toolkit/meta"
	"github.com/raywall/fast-entity-toolkit/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reflectField() reflect.StructField { return reflect.StructField{Name: "X"} }

type item struct {
	ID   string `json:"id"`
	Name string `json:"name" constraint:"required"`
}

type itemsResource struct {
	All    Action `json:"all" verb:"get,onOk=204,onNotFound=200"`
	ByID   Action `json:"byId" verb:"get,path=/{id}"`
	Create Action `json:"create" verb:"post,onOk=201"`
	Pdf    Action `json:"pdf" verb:"get,path=/{id}/pdf,type=stream"`
}

func newItemsResource() itemsResource {
	return itemsResource{
		All: func(context.Context, Request) (any, error) {
			return nil, exception.DoesNotExist
		},
		ByID: func(_ context.Context, req Request) (any, error) {
			switch req.Vars["id"] {
			case "42":
				return item{ID: "42", Name: "Sander"}, nil
			case "boom":
				return nil, errors.New("boom")
			}
			return nil, exception.DoesNotExist.Because(errors.New("missing"))
		},
		Create: func(_ context.Context, req Request) (any, error) {
			var in item
			if err := req.Decode(&in); err != nil {
				return nil, err
			}
			return validation.Reject(in)
		},
		Pdf: func(_ context.Context, req Request) (any, error) {
			return strings.NewReader("%PDF-" + req.Vars["id"]), nil
		},
	}
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Mount(t *testing.T) {
	rt := NewRouter()
	require.NoError(t, rt.Mount("/items", newItemsResource()))

	t.Run("should list the mounted routes", func(t *testing.T) {
		routes := rt.Routes()
		require.Len(t, routes, 4)
		assert.Equal(t, Route{Property: "byId", Method: MethodGet, Path: "/items/{id}", Options: DefaultOptions()}, routes[1])
	})

	t.Run("should write json with OnOk", func(t *testing.T) {
		rec := serve(t, rt, http.MethodGet, "/items/42", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, string(Json), rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"id":"42","name":"Sander"}`, rec.Body.String())
	})

	t.Run("should map DoesNotExist to OnNotFound", func(t *testing.T) {
		rec := serve(t, rt, http.MethodGet, "/items/7", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = serve(t, rt, http.MethodGet, "/items", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("should map other errors to OnError", func(t *testing.T) {
		rec := serve(t, rt, http.MethodGet, "/items/boom", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
	})

	t.Run("should write validation results", func(t *testing.T) {
		rec := serve(t, rt, http.MethodPost, "/items", `{"id":"1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Error   string             `json:"error"`
			Results validation.Results `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "validation failed", body.Error)
		require.Len(t, body.Results, 1)
		assert.Equal(t, "name", body.Results[0].Property)
	})

	t.Run("should create with custom OnOk", func(t *testing.T) {
		rec := serve(t, rt, http.MethodPost, "/items", `{"id":"1","name":"Jeroen"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("should stream", func(t *testing.T) {
		rec := serve(t, rt, http.MethodGet, "/items/9/pdf", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, string(Stream), rec.Header().Get("Content-Type"))
		assert.Equal(t, "%PDF-9", rec.Body.String())
	})

	t.Run("should reject unmapped methods", func(t *testing.T) {
		rec := serve(t, rt, http.MethodDelete, "/items/42", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRouter_NoContent(t *testing.T) {
	type pingResource struct {
		Ping Action `verb:"get,onOk=NoContent"`
	}
	rt := NewRouter()
	require.NoError(t, rt.Mount("/ping", pingResource{Ping: func(context.Context, Request) (any, error) { return "pong", nil }}))

	rec := serve(t, rt, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_MountErrors(t *testing.T) {
	t.Run("should fail without verbs", func(t *testing.T) {
		assert.Error(t, NewRouter().Mount("/x", item{}))
	})

	t.Run("should fail for missing actions", func(t *testing.T) {
		assert.Error(t, NewRouter().Mount("/items", itemsResource{}))
	})

	t.Run("should use a custom registry", func(t *testing.T) {
		r := meta.NewRegistry()
		rt := NewRouter(WithRegistry(r))
		assert.True(t, r.Handles(TagVerb))
		require.NoError(t, rt.Mount("/items", newItemsResource()))
	})

	t.Run("should fail on malformed tags", func(t *testing.T) {
		type broken struct {
			Go Action `verb:"fly"`
		}
		assert.Error(t, NewRouter().Mount("/b", broken{}))
	})
}
