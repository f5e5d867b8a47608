package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/jsonval"
	jsonhttp "github.com/aretw0/jsonval/pkg/adapters/http"
	"github.com/aretw0/jsonval/pkg/adapters/memory"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Aborted bool   `json:"aborted"`
	Error   string `json:"error"`
	Report  struct {
		Valid    bool             `json:"valid"`
		Level    string           `json:"level"`
		Messages []map[string]any `json:"messages"`
	} `json:"report"`
}

func newServer(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	v := jsonval.New(jsonval.WithResolver(store), jsonval.WithMetrics(reg))
	return jsonhttp.NewHandler(v, jsonhttp.WithStore(store), jsonhttp.WithGatherer(reg)), store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) validateResponse {
	t.Helper()
	var resp validateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestValidate_Inline(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, "POST", "/validate", `{"schema":{"type":"integer","minimum":10},"instance":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Valid)
	assert.Equal(t, "error", resp.Report.Level)
	require.Len(t, resp.Report.Messages, 1)
	assert.Equal(t, "minimum", resp.Report.Messages[0]["keyword"])
	assert.Equal(t, "urn:jsonval:inline#", resp.Report.Messages[0]["schema"])

	w = do(t, h, "POST", "/validate", `{"schema":{"type":"integer"},"instance":10.0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Valid)
}

func TestValidate_Options(t *testing.T) {
	h, _ := newServer(t)
	body := `{
		"schema": {"required":["x"],"properties":{"a":{"minimum":5}}},
		"instance": {"a": 1},
		"options": {"deep_check": true, "log_level": "warning"}
	}`
	resp := decode(t, do(t, h, "POST", "/validate", body))
	assert.Len(t, resp.Report.Messages, 2)

	w := do(t, h, "POST", "/validate", `{"schema":{},"instance":1,"options":{"log_level":"loud"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidate_Aborted(t *testing.T) {
	h, _ := newServer(t)
	body := `{"schema":{"oneOf":[{},{"$ref":"#"}]},"instance":null}`

	w := do(t, h, "POST", "/validate", body)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Aborted)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Error)
	require.Len(t, resp.Report.Messages, 1)
	assert.Equal(t, "fatal", resp.Report.Messages[0]["level"])
}

func TestValidate_BadRequests(t *testing.T) {
	h, _ := newServer(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"Malformed Body", `{`, http.StatusBadRequest},
		{"Missing Instance", `{"schema":{}}`, http.StatusBadRequest},
		{"Missing Schema", `{"instance":1}`, http.StatusBadRequest},
		{"Both Schemas", `{"schema":{},"schema_uri":"mem://a.json","instance":1}`, http.StatusBadRequest},
		{"Unknown Schema URI", `{"schema_uri":"mem://nope.json","instance":1}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/validate", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestSchemas_Lifecycle(t *testing.T) {
	h, store := newServer(t)
	uri := "mem://registry/person.json"

	w := do(t, h, "PUT", "/schemas?uri="+uri, `{"type":"object","required":["name"]}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	stored, err := store.Resolve(context.Background(), uri)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.MustParse(`{"type":"object","required":["name"]}`), stored))

	w = do(t, h, "GET", "/schemas", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"schemas":["`+uri+`"]}`, w.Body.String())

	w = do(t, h, "GET", "/schemas?uri="+uri, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"object","required":["name"]}`, w.Body.String())

	resp := decode(t, do(t, h, "POST", "/validate", `{"schema_uri":"`+uri+`","instance":{}}`))
	assert.False(t, resp.Valid)

	// Replacing the document takes effect on the next validation.
	w = do(t, h, "PUT", "/schemas?uri="+uri, `{"type":"object"}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	resp = decode(t, do(t, h, "POST", "/validate", `{"schema_uri":"`+uri+`","instance":{}}`))
	assert.True(t, resp.Valid)

	w = do(t, h, "DELETE", "/schemas?uri="+uri, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "GET", "/schemas?uri="+uri, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "PUT", "/schemas?uri="+uri+"%23/x", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchemas_DisabledWithoutStore(t *testing.T) {
	h := jsonhttp.NewHandler(jsonval.New())
	w := do(t, h, "GET", "/schemas", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInfoEndpoints(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, "GET", "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Contains(t, w.Body.String(), jsonval.Version)

	w = do(t, h, "GET", "/keywords", "")
	require.Equal(t, http.StatusOK, w.Code)
	var kw struct {
		Keywords []string `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kw))
	assert.Contains(t, kw.Keywords, "oneOf")

	do(t, h, "POST", "/validate", `{"schema":{},"instance":1}`)
	w = do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jsonval_validations_total")

	w = do(t, h, "OPTIONS", "/validate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
