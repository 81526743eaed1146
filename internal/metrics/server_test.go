package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shoplist/internal/product"
)

type fakeLists map[product.Scope][]product.Name

func (f fakeLists) List(scope product.Scope) []product.Name { return f[scope] }

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_Healthz(t *testing.T) {
	s := NewServer(":0", nil, fakeLists{}, nil)

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_List(t *testing.T) {
	src := fakeLists{
		product.SharedScope:   {"milk", "bread"},
		product.UserScope(42): {"eggs"},
	}
	s := NewServer(":0", nil, src, nil)

	t.Run("default scope", func(t *testing.T) {
		rec := get(t, s, "/list")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ListResponse{Scope: "shared", Items: []string{"milk", "bread"}}, resp)
	})

	t.Run("user scope", func(t *testing.T) {
		rec := get(t, s, "/list?scope=42")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"scope":"42","items":["eggs"]}`, rec.Body.String())
	})

	t.Run("unknown scope is empty", func(t *testing.T) {
		rec := get(t, s, "/list?scope=nobody")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"scope":"nobody","items":[]}`, rec.Body.String())
	})
}

func TestServer_Metrics(t *testing.T) {
	m := New()
	m.ObserveEvent("menu", "ok", time.Millisecond)
	s := NewServer(":0", m, fakeLists{}, nil)

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shoplist_events_total{kind="menu",result="ok"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	s := NewServer(":0", nil, fakeLists{}, nil)
	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
