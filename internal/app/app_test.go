package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-mcp/internal/adapter/filestore"
	"toggl-mcp/internal/config"
)

// fakeToggl serves just enough of the v9 API for wiring tests.
func fakeToggl(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, body)
		}
	}
	mux.HandleFunc("/api/v9/me", reply(`{"id":1,"email":"me@example.com","default_workspace_id":1}`))
	mux.HandleFunc("/api/v9/me/workspaces", reply(`[{"id":1,"name":"Main"}]`))
	mux.HandleFunc("/api/v9/me/time_entries", reply(`[{"id":5,"workspace_id":1,"description":"Standup","start":"2025-06-10T04:00:00Z","stop":"2025-06-10T04:15:00Z","duration":900}]`))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	var cfg config.Config
	cfg.Toggl.APIToken = "tok"
	cfg.Toggl.BaseURL = fakeToggl(t).URL
	cfg.MCP.Name = "toggl"
	cfg.MCP.Version = "test"
	cfg.Location = time.UTC
	cfg.PresetDir = filepath.Join(t.TempDir(), "presets")

	a, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, cfg.PresetDir
}

func TestNew_InvalidTimezoneFailsBeforeOpeningStore(t *testing.T) {
	var cfg config.Config
	cfg.Toggl.APIToken = "tok"
	cfg.Timezone = "Not/AZone"
	cfg.MySQL.DSN = "user:pass@tcp(127.0.0.1:1)/presets"

	_, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not/AZone")
}

func initialize(ctx context.Context, t *testing.T, c *client.Client) {
	t.Helper()
	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: "2024-11-05",
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo:      mcp.Implementation{Name: "test-client", Version: "1.0.0"},
		},
	})
	require.NoError(t, err)
}

func callTool(ctx context.Context, t *testing.T, c *client.Client, name string, args map[string]any) string {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.CallTool(ctx, req)
	require.NoError(t, err)
	require.False(t, res.IsError, "tool %s returned an error", name)
	raw, err := json.Marshal(res.Content)
	require.NoError(t, err)
	return string(raw)
}

func TestApp_InProcessClient(t *testing.T) {
	a, presetDir := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr := transport.NewInProcessTransport(a.MCPServer())
	require.NoError(t, tr.Start(ctx))
	defer tr.Close()
	c := client.NewClient(tr)
	initialize(ctx, t, c)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 29)

	readReq := mcp.ReadResourceRequest{}
	readReq.Params.URI = "toggl://me/workspaces"
	contents, err := c.ReadResource(ctx, readReq)
	require.NoError(t, err)
	raw, err := json.Marshal(contents.Contents)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Main")

	out := callTool(ctx, t, c, "full_text_search_time_entries", map[string]any{"query": "stand"})
	assert.Contains(t, out, "Standup")

	callTool(ctx, t, c, "save_timer_preset", map[string]any{"name": "focus", "description": "Deep work"})
	_, err = os.Stat(filepath.Join(presetDir, filestore.PresetsFile))
	assert.NoError(t, err, "presets persist under PRESET_DIR")
	out = callTool(ctx, t, c, "list_timer_presets", nil)
	assert.Contains(t, out, "focus")
}

func TestApp_HTTPServer(t *testing.T) {
	a, _ := newTestApp(t)
	srv := httptest.NewServer(a.HTTPServer(":0").Handler)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	tr, err := transport.NewStreamableHTTP(srv.URL + "/mcp")
	require.NoError(t, err)
	require.NoError(t, tr.Start(ctx))
	defer tr.Close()
	c := client.NewClient(tr)
	initialize(ctx, t, c)

	out := callTool(ctx, t, c, "get_timezone_info", nil)
	assert.Contains(t, out, "UTC")

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `toggl_mcp_tools_calls_total{outcome="ok",tool="get_timezone_info"}`)
}
