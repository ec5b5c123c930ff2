package summaries

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summary-backend/internal/llm"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api"))
	return router
}

func postSummarize(t *testing.T, router *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	return resp, payload
}

func TestSummarizeHandlerInvalidJSON(t *testing.T) {
	router := newTestRouter(&Service{LLM: &fakeLLM{text: "x"}})

	resp, payload := postSummarize(t, router, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid JSON", payload["error"])
}

func TestSummarizeHandlerMissingContent(t *testing.T) {
	router := newTestRouter(&Service{LLM: &fakeLLM{text: "x"}})

	resp, payload := postSummarize(t, router, `{"fileName":"a.pdf"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Missing file content", payload["error"])
}

func TestSummarizeHandlerReturnsSummary(t *testing.T) {
	router := newTestRouter(&Service{LLM: &fakeLLM{text: "# Title\n- point"}})

	resp, payload := postSummarize(t, router, `{"fileContent":"doc text","language":"en"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]any{"summary": "# Title\n- point"}, payload)
}

func TestSummarizeHandlerQuotaIsOK(t *testing.T) {
	router := newTestRouter(&Service{LLM: &fakeLLM{err: &llm.APIError{StatusCode: 402}}})

	resp, payload := postSummarize(t, router, `{"fileContent":"doc text"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, QuotaExhaustedNotice, payload["summary"])
}
