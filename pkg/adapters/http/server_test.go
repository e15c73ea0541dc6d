package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/actionchain/pkg/actions"
	adapter "github.com/aretw0/actionchain/pkg/adapters/http"
	"github.com/aretw0/actionchain/pkg/adapters/memory"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T, opts ...adapter.Option) (http.Handler, *memory.Store) {
	t.Helper()
	reg := registry.NewRegistry()
	actions.RegisterBuiltins(reg)

	store := memory.NewStore()
	store.Seed(domain.NewDataset("ORDER", domain.Row{"id": "1", "status": "open"}))

	opts = append([]adapter.Option{adapter.WithTransactionManager(memory.NewManager(store))}, opts...)
	handler, err := adapter.NewHandler(reg, opts...)
	require.NoError(t, err)
	return handler, store
}

func post(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "actionchain-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, "0.1.0", resp["api_version"])
}

func TestGetOpenAPI(t *testing.T) {
	handler, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/execute:")
}

func TestExecute(t *testing.T) {
	handler, store := newHandler(t)

	rr := post(t, handler, "/execute", `{
		"chain": {
			"name": "Close",
			"actions": [
				{"type": "update", "args": {"set": {"status": "closed"}}},
				{"type": "message", "args": {"text": "closed {rows}"}}
			]
		},
		"input": {"entity": "ORDER", "rows": [{"id": "1", "status": "open"}]}
	}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp adapter.ExecuteResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, domain.ResultMessage, resp.Result.Kind)
	assert.True(t, resp.Result.Modified)
	assert.Equal(t, "Updated 1 row of ORDER\nclosed 1", resp.Result.Message)
	assert.True(t, strings.HasPrefix(resp.Trace, "graph LR"))

	assert.Equal(t, "closed", store.Load("ORDER").Rows[0]["status"])
}

func TestExecute_ActionFailure(t *testing.T) {
	handler, store := newHandler(t)

	rr := post(t, handler, "/execute", `{
		"chain": {
			"actions": [
				{"type": "update", "args": {"set": {"status": "closed"}}},
				{"type": "fail", "args": {"reason": "nope"}}
			]
		},
		"input": {"entity": "ORDER", "rows": [{"id": "1"}]}
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var resp adapter.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "nope")
	assert.Contains(t, resp.Trace, "Error: ")

	assert.Equal(t, "open", store.Load("ORDER").Rows[0]["status"])
}

func TestExecute_InvalidConfiguration(t *testing.T) {
	handler, _ := newHandler(t)

	rr := post(t, handler, "/execute", `{"chain": {"use_result_of_action": 7, "actions": [{"type": "message"}]}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "use_result_of_action")
}

func TestExecute_RejectedBySchema(t *testing.T) {
	handler, _ := newHandler(t)

	rr := post(t, handler, "/execute", `{"chain": {"name": "no actions"}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExecute_NeedsChain(t *testing.T) {
	handler, _ := newHandler(t)

	rr := post(t, handler, "/execute", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "chain_id")
}

func TestValidate(t *testing.T) {
	handler, _ := newHandler(t)

	rr := post(t, handler, "/validate", `{"chain": {"actions": [{"type": "message"}]}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var ok adapter.ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)

	rr = post(t, handler, "/validate", `{"chain": {"use_input_data_of_action": 3, "actions": [{}]}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var bad adapter.ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bad))
	assert.False(t, bad.Valid)
	assert.Len(t, bad.Errors, 2)

	rr = post(t, handler, "/validate", `{"chain": {"actions": [{"type": "teleport"}]}}`)
	var unknown adapter.ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &unknown))
	assert.False(t, unknown.Valid)
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newHandler(t, adapter.WithMetrics(prometheus.NewRegistry()))

	rr := post(t, handler, "/execute", `{"chain": {"actions": [{"type": "message", "args": {"text": "hi"}}]}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metrics := httptest.NewRecorder()
	handler.ServeHTTP(metrics, req)

	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `actionchain_runs_total{outcome="succeeded"} 1`)
}
