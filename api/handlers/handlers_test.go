package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspt-johs/disir-go/api"
	"github.com/kspt-johs/disir-go/pkg/disirmetrics"
	"github.com/kspt-johs/disir-go/registry/sqlite"
)

const sampleMoldYAML = `
version: 1.0.0
keyvals:
  - name: port
    type: INTEGER
    defaults:
      - introduced: 1.0.0
        value: "8080"
`

const validConfigYAML = `
version: 1.0.0
keyvals:
  - name: port
    value: "9090"
`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := disirmetrics.NewRegistry()
	return api.NewRouter(store, api.DefaultConfig(logger, metrics))
}

func putMold(t *testing.T, router http.Handler, namespace, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/v1/namespaces/"+namespace+"/molds/"+name, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func putConfig(t *testing.T, router http.Handler, namespace, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/v1/namespaces/"+namespace+"/configs/"+name, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PutAndGetMold(t *testing.T) {
	router := newTestRouter(t)

	putRec := putMold(t, router, "ns1", "app", sampleMoldYAML)
	require.Equal(t, http.StatusOK, putRec.Code, putRec.Body.String())

	getReq := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns1/molds/app", nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &body))
	assert.Equal(t, "ns1", body["namespace"])
	assert.Equal(t, "app", body["name"])
	assert.Equal(t, "1.0.0", body["version"])
}

func TestRouter_GetMold_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns1/molds/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_PutConfig_ValidatesAndPersists(t *testing.T) {
	router := newTestRouter(t)

	require.Equal(t, http.StatusOK, putMold(t, router, "ns1", "app", sampleMoldYAML).Code)

	configRec := putConfig(t, router, "ns1", "app", validConfigYAML)
	require.Equal(t, http.StatusOK, configRec.Code, configRec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(configRec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])

	getReq := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns1/configs/app", nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)
	assert.Equal(t, "1", getRec.Header().Get("X-Document-Revision"))
	assert.Contains(t, getRec.Body.String(), "port")
}

func TestRouter_ValidateConfig_ReReadsStoredDocument(t *testing.T) {
	router := newTestRouter(t)

	require.Equal(t, http.StatusOK, putMold(t, router, "ns1", "app", sampleMoldYAML).Code)
	require.Equal(t, http.StatusOK, putConfig(t, router, "ns1", "app", validConfigYAML).Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns1/configs/app/validate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
}

func TestRouter_PutConfig_WithoutMold_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := putConfig(t, router, "ns1", "app", validConfigYAML)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_GetKeyvalDefault_ResolvesAtVersion(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusOK, putMold(t, router, "ns1", "app", sampleMoldYAML).Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns1/molds/app/defaults/port?version=1.0.0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "port", body["keyval"])
	assert.Equal(t, "8080", body["value"])
}

func TestRouter_GetKeyvalDefault_MissingVersion(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusOK, putMold(t, router, "ns1", "app", sampleMoldYAML).Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/namespaces/ns1/molds/app/defaults/port", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
