package mcpservers_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	mcpgolang "github.com/metoro-io/mcp-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/amd/gaia/mcpservers"
	"github.com/amd/gaia/tools"
)

type fakeClient struct {
	tools      []mcpgolang.ToolRetType
	connectErr error
	callErr    error
	callResult string
	lastTool   string
	lastArgs   any
	connected  atomic.Bool
	closed     atomic.Int32
}

func (f *fakeClient) Connect(_ context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected.Store(true)
	return nil
}

func (f *fakeClient) IsConnected() bool {
	return f.connected.Load()
}

func (f *fakeClient) ListTools(_ context.Context) ([]mcpgolang.ToolRetType, error) {
	if !f.connected.Load() {
		return nil, mcpservers.ErrNotConnected
	}
	return f.tools, nil
}

func (f *fakeClient) CallTool(_ context.Context, name string, args any) (string, error) {
	f.lastTool = name
	f.lastArgs = args
	if f.callErr != nil {
		return "", f.callErr
	}
	return f.callResult, nil
}

func (f *fakeClient) Close() error {
	f.connected.Store(false)
	f.closed.Add(1)
	return nil
}

func strptr(s string) *string { return &s }

func sceneTools() []mcpgolang.ToolRetType {
	return []mcpgolang.ToolRetType{
		{
			Name:        "get_scene_info",
			Description: strptr("Returns scene info."),
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"detail": map[string]any{"type": "string"},
				},
			},
		},
		{
			Name: "render",
		},
	}
}

func Test_Manager_AddRemoveServer(t *testing.T) {
	ctx := context.Background()
	reg := tools.NewRegistry()
	fake := &fakeClient{tools: sceneTools(), callResult: `{"objects": 3}`}
	mgr := mcpservers.NewManager(reg, mcpservers.WithDialFunc(
		func(name string, cfg mcpservers.ServerConfig) mcpservers.ServerClient {
			return fake
		}))

	cfg := mcpservers.ServerConfig{Command: "blender-mcp"}
	ok, err := mgr.AddServer(ctx, "blender", cfg)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"blender"}, mgr.ListServers())
	assert.Equal(t, []string{"mcp_blender_get_scene_info", "mcp_blender_render"}, reg.Names())

	spec, found := reg.Get("mcp_blender_get_scene_info")
	require.True(t, found)
	assert.Equal(t, "blender", spec.Server)
	assert.Equal(t, "Returns scene info.", spec.Description)
	assert.Contains(t, spec.Parameters, "detail")

	// description falls back to the tool name
	spec, found = reg.Get("mcp_blender_render")
	require.True(t, found)
	assert.Equal(t, "render", spec.Description)

	// dispatch goes through the proxy and wraps the structured result
	out, err := spec.Handler.Call(ctx, `{"detail":"full"}`)
	require.NoError(t, err)
	assert.Equal(t, "render", fake.lastTool)
	assert.Equal(t, "success", gjson.Get(out, "status").String())
	assert.Equal(t, int64(3), gjson.Get(out, "data.objects").Int())

	// duplicate names are a configuration error
	_, err = mgr.AddServer(ctx, "blender", cfg)
	assert.ErrorIs(t, err, mcpservers.ErrServerExists)

	mgr.RemoveServer(ctx, "blender")
	assert.Empty(t, reg.Names())
	assert.Empty(t, mgr.ListServers())
	assert.Equal(t, int32(1), fake.closed.Load())

	// removing again is a warning, not an error
	mgr.RemoveServer(ctx, "blender")
	assert.Equal(t, int32(1), fake.closed.Load())
}

func Test_Manager_AddServer_Errors(t *testing.T) {
	ctx := context.Background()
	reg := tools.NewRegistry()
	mgr := mcpservers.NewManager(reg, mcpservers.WithDialFunc(
		func(name string, cfg mcpservers.ServerConfig) mcpservers.ServerClient {
			return &fakeClient{connectErr: errors.New("spawn failed")}
		}))

	// bad config is an error
	_, err := mgr.AddServer(ctx, "bad", mcpservers.ServerConfig{})
	assert.ErrorIs(t, err, mcpservers.ErrInvalidConfig)
	_, err = mgr.AddServer(ctx, "bad", mcpservers.ServerConfig{Command: "x", Transport: "tcp"})
	assert.ErrorIs(t, err, mcpservers.ErrUnsupportedTransport)
	_, err = mgr.AddServer(ctx, "", mcpservers.ServerConfig{Command: "x"})
	assert.ErrorIs(t, err, mcpservers.ErrInvalidConfig)

	// connect failure is not an error, just false
	ok, err := mgr.AddServer(ctx, "flaky", mcpservers.ServerConfig{Command: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, mgr.ListServers())
	assert.Empty(t, reg.Names())
}

func Test_Manager_TwoServers_Namespacing(t *testing.T) {
	ctx := context.Background()
	reg := tools.NewRegistry()
	clients := map[string]*fakeClient{
		"alpha": {tools: sceneTools(), callResult: "alpha"},
		"beta":  {tools: sceneTools(), callResult: "beta"},
	}
	mgr := mcpservers.NewManager(reg, mcpservers.WithDialFunc(
		func(name string, cfg mcpservers.ServerConfig) mcpservers.ServerClient {
			return clients[name]
		}))

	cfg := mcpservers.ServerConfig{Command: "srv"}
	for _, name := range []string{"alpha", "beta"} {
		ok, err := mgr.AddServer(ctx, name, cfg)
		require.NoError(t, err)
		require.True(t, ok)
	}

	// same remote tool names, no collision
	assert.Equal(t, []string{
		"mcp_alpha_get_scene_info", "mcp_alpha_render",
		"mcp_beta_get_scene_info", "mcp_beta_render",
	}, reg.Names())

	// removal is exact: beta's tools survive alpha's removal
	mgr.RemoveServer(ctx, "alpha")
	assert.Equal(t, []string{"mcp_beta_get_scene_info", "mcp_beta_render"}, reg.Names())

	client, found := mgr.GetClient("beta")
	require.True(t, found)
	assert.True(t, client.IsConnected())

	mgr.DisconnectAll(ctx)
	assert.Empty(t, reg.Names())
	assert.Empty(t, mgr.ListServers())
	assert.Equal(t, int32(1), clients["beta"].closed.Load())

	// idempotent
	mgr.DisconnectAll(ctx)
	assert.Equal(t, int32(1), clients["beta"].closed.Load())
}

func Test_Manager_ProxyErrorEnvelope(t *testing.T) {
	ctx := context.Background()
	reg := tools.NewRegistry()
	fake := &fakeClient{tools: sceneTools(), callErr: errors.New("scene locked")}
	mgr := mcpservers.NewManager(reg, mcpservers.WithDialFunc(
		func(name string, cfg mcpservers.ServerConfig) mcpservers.ServerClient {
			return fake
		}))

	ok, err := mgr.AddServer(ctx, "blender", mcpservers.ServerConfig{Command: "x"})
	require.NoError(t, err)
	require.True(t, ok)

	spec, found := reg.Get("mcp_blender_get_scene_info")
	require.True(t, found)

	// a remote failure surfaces as the error envelope, not a Go error,
	// so the completion backend can explain it
	out, err := spec.Handler.Call(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "error", gjson.Get(out, "status").String())
	assert.Contains(t, gjson.Get(out, "error").String(), "scene locked")

	// malformed arguments never reach the server
	_, err = spec.Handler.Call(ctx, "{not json")
	assert.Error(t, err)
}

func Test_Manager_IncrementalPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "servers.yaml")
	mgr := mcpservers.NewManager(tools.NewRegistry(),
		mcpservers.WithConfigPath(path),
		mcpservers.WithDialFunc(func(name string, cfg mcpservers.ServerConfig) mcpservers.ServerClient {
			return &fakeClient{tools: sceneTools()}
		}))

	ok, err := mgr.AddServer(ctx, "blender", mcpservers.ServerConfig{Command: "blender-mcp"})
	require.NoError(t, err)
	require.True(t, ok)

	servers, err := mcpservers.LoadServers(path)
	require.NoError(t, err)
	assert.Contains(t, servers, "blender")

	mgr.RemoveServer(ctx, "blender")
	servers, err = mcpservers.LoadServers(path)
	require.NoError(t, err)
	assert.Empty(t, servers)
}

func Test_Manager_SaveLoadConfig(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "servers.yaml")
	reg := tools.NewRegistry()

	dial := func(name string, cfg mcpservers.ServerConfig) mcpservers.ServerClient {
		if name == "down" {
			return &fakeClient{connectErr: errors.New("no such binary")}
		}
		return &fakeClient{tools: sceneTools()}
	}

	mgr := mcpservers.NewManager(reg, mcpservers.WithDialFunc(dial))
	ok, err := mgr.AddServer(ctx, "blender", mcpservers.ServerConfig{Command: "blender-mcp"})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mgr.SaveConfig(path))

	servers, err := mcpservers.LoadServers(path)
	require.NoError(t, err)
	require.Contains(t, servers, "blender")
	servers["down"] = mcpservers.ServerConfig{Command: "gone"}
	require.NoError(t, mcpservers.SaveServers(path, servers))

	// a fresh manager loads what it can; the unreachable entry is skipped
	mgr2 := mcpservers.NewManager(tools.NewRegistry(), mcpservers.WithDialFunc(dial))
	require.NoError(t, mgr2.LoadConfig(ctx, path))
	assert.Equal(t, []string{"blender"}, mgr2.ListServers())

	// absent file loads an empty set
	mgr3 := mcpservers.NewManager(tools.NewRegistry(), mcpservers.WithDialFunc(dial))
	require.NoError(t, mgr3.LoadConfig(ctx, filepath.Join(t.TempDir(), "none.yaml")))
	assert.Empty(t, mgr3.ListServers())
}
