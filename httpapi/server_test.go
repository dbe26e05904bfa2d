package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/model"
	"github.com/hupe1980/agentkit/session"
)

func newTestServer(t *testing.T, client *model.MockClient, setup bool) (*Server, *agent.Agent) {
	t.Helper()

	a, err := agent.New("Assistant", client, session.NewInMemoryStore(), func(o *agent.Options) {
		o.Description = "General helper"
	})
	require.NoError(t, err)

	if setup {
		require.NoError(t, a.Setup(context.Background()))
	}

	return NewServer([]*agent.Agent{a}), a
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, model.NewMockClient("m"), true)

	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRunAndContinueSession(t *testing.T) {
	client := model.NewMockClient("m").AddText("first").AddText("second")
	srv, _ := newTestServer(t, client, true)

	rec := do(t, srv, http.MethodPost, "/v1/agents/Assistant/runs", RunRequest{Input: "hello"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "first", resp.Output)
	assert.Equal(t, core.FinishCompleted, resp.FinishReason)
	assert.NotEmpty(t, resp.SessionID)

	rec = do(t, srv, http.MethodPost, "/v1/agents/Assistant/runs", RunRequest{Input: "again", SessionID: resp.SessionID})
	require.Equal(t, http.StatusOK, rec.Code)

	var second core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, resp.SessionID, second.SessionID)
	assert.Equal(t, "second", second.Output)
}

func TestRun_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, model.NewMockClient("m"), true)

	rec := do(t, srv, http.MethodPost, "/v1/agents/Assistant/runs", RunRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/agents/Assistant/runs", bytes.NewBufferString("{"))
	raw := httptest.NewRecorder()
	srv.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec = do(t, srv, http.MethodPost, "/v1/agents/Nobody/runs", RunRequest{Input: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRun_ErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t, model.NewMockClient("m"), false)

	rec := do(t, srv, http.MethodPost, "/v1/agents/Assistant/runs", RunRequest{Input: "hi"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/v1/agents/Assistant/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/v1/agents/Assistant/runs", RunRequest{Input: "hi", SessionID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "session not found")
}

func TestRun_RemoteFailure(t *testing.T) {
	srv, _ := newTestServer(t, model.NewMockClient("m").AddError(errors.New("upstream down")), true)

	rec := do(t, srv, http.MethodPost, "/v1/agents/Assistant/runs", RunRequest{Input: "hi"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	srv, a := newTestServer(t, model.NewMockClient("m"), true)

	resp, err := a.Run(context.Background(), "hi")
	require.NoError(t, err)

	path := fmt.Sprintf("/v1/agents/Assistant/sessions/%s", resp.SessionID)

	rec := do(t, srv, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAgents(t *testing.T) {
	srv, _ := newTestServer(t, model.NewMockClient("m"), true)

	rec := do(t, srv, http.MethodGet, "/v1/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []AgentInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "Assistant", infos[0].Name)
	assert.True(t, infos[0].Ready)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("x: %w", core.ErrSessionNotFound)))
	assert.Equal(t, http.StatusConflict, StatusFor(core.ErrSetupRequired))
	assert.Equal(t, http.StatusBadGateway, StatusFor(&core.RemoteError{Agent: "a", Step: 1, Err: errors.New("x")}))
	assert.Equal(t, http.StatusBadGateway, StatusFor(&core.SyncError{Agent: "a", Err: errors.New("x")}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("other")))
}
