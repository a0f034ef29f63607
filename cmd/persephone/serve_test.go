package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/internal/config"
	"github.com/xdsai/persephone/internal/logging"
	"github.com/xdsai/persephone/internal/testutils"
	httpAdapter "github.com/xdsai/persephone/pkg/adapters/http"
	mcpAdapter "github.com/xdsai/persephone/pkg/adapters/mcp"
	"github.com/xdsai/persephone/pkg/adapters/memory"
)

func TestWithMCPHandler_RoutesBothSurfaces(t *testing.T) {
	manager := newManager(testutils.NeonFixture(t), &config.Backend{Store: memory.NewStore()}, logging.NewNop())
	h := withMCPHandler(httpAdapter.NewHandler(manager), mcpAdapter.NewServer(manager))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`
	req := httptest.NewRequest(http.MethodPost, mcpPath, strings.NewReader(initialize))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "persephone-mcp")
}
