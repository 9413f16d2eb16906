package mcpservers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	mcpgolang "github.com/metoro-io/mcp-golang"

	"github.com/amd/gaia/pkg/metricskey"
	"github.com/amd/gaia/tools"
)

var logger = xlog.NewPackageLogger("github.com/amd/gaia", "mcpservers")

// ToolNamePrefix namespaces server tools in the shared registry:
// mcp_<server>_<tool>.
const ToolNamePrefix = "mcp_"

// ServerClient is the per-server connection as the Manager sees it.
// *Client is the production implementation.
type ServerClient interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	ListTools(ctx context.Context) ([]mcpgolang.ToolRetType, error)
	CallTool(ctx context.Context, name string, args any) (string, error)
	Close() error
}

// DialFunc builds the client for a named server. Replaceable in tests.
type DialFunc func(name string, cfg ServerConfig) ServerClient

type serverEntry struct {
	cfg       ServerConfig
	client    ServerClient
	toolNames []string
}

// Manager owns a named set of server clients and reconciles their tools
// into the shared registry.
type Manager struct {
	registry       *tools.Registry
	dial           DialFunc
	configPath     string
	connectTimeout time.Duration
	callTimeout    time.Duration

	mu      sync.Mutex
	servers map[string]*serverEntry
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

func WithDialFunc(dial DialFunc) ManagerOption {
	return func(m *Manager) {
		m.dial = dial
	}
}

// WithConfigPath enables incremental persistence: the server set is
// written back to the YAML file after every successful add or remove.
func WithConfigPath(path string) ManagerOption {
	return func(m *Manager) {
		m.configPath = path
	}
}

func WithTimeouts(connect, call time.Duration) ManagerOption {
	return func(m *Manager) {
		m.connectTimeout = connect
		m.callTimeout = call
	}
}

func NewManager(registry *tools.Registry, ops ...ManagerOption) *Manager {
	m := &Manager{
		registry:       registry,
		connectTimeout: DefaultConnectTimeout,
		callTimeout:    DefaultCallTimeout,
		servers:        make(map[string]*serverEntry),
	}
	for _, op := range ops {
		op(m)
	}
	if m.dial == nil {
		m.dial = func(name string, cfg ServerConfig) ServerClient {
			return NewClient(name, cfg,
				WithConnectTimeout(m.connectTimeout),
				WithCallTimeout(m.callTimeout),
			)
		}
	}
	return m
}

// AddServer connects a new server and registers its tools under
// mcp_<name>_<tool>. Configuration problems and duplicate names are
// returned as errors; a connection failure is not an error — it returns
// false so the caller can continue without that server.
func (m *Manager) AddServer(ctx context.Context, name string, cfg ServerConfig) (bool, error) {
	if name == "" {
		return false, errors.WithMessage(ErrInvalidConfig, "server name is required")
	}
	if err := cfg.Validate(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.servers[name]; ok {
		return false, errors.WithMessagef(ErrServerExists, "server %q", name)
	}

	client := m.dial(name, cfg)
	if err := client.Connect(ctx); err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "connect_failed",
			"server", name,
			"err", err.Error(),
		)
		return false, nil
	}

	list, err := client.ListTools(ctx)
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "list_tools_failed",
			"server", name,
			"err", err.Error(),
		)
		_ = client.Close()
		return false, nil
	}

	entry := &serverEntry{
		cfg:    cfg,
		client: client,
	}
	for _, remote := range list {
		spec, err := proxySpec(name, remote, client)
		if err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "tool_skipped",
				"server", name,
				"tool", remote.Name,
				"err", err.Error(),
			)
			continue
		}
		m.registry.Register(spec)
		entry.toolNames = append(entry.toolNames, spec.Name)
	}
	m.servers[name] = entry

	metricskey.StatsServersConnected.IncrCounter(1, name)
	logger.ContextKV(ctx, xlog.INFO,
		"status", "server_added",
		"server", name,
		"tools", len(entry.toolNames),
	)
	m.persistLocked(ctx)
	return true, nil
}

// RemoveServer unregisters exactly the tools the server contributed and
// closes its connection. An unknown name is logged, not an error.
func (m *Manager) RemoveServer(ctx context.Context, name string) {
	m.mu.Lock()
	entry, ok := m.servers[name]
	if ok {
		delete(m.servers, name)
		m.persistLocked(ctx)
	}
	m.mu.Unlock()

	if !ok {
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "server_not_found",
			"server", name,
		)
		return
	}
	m.teardown(ctx, name, entry)
}

// persistLocked writes the server set to the configured path, if any.
// Callers hold m.mu.
func (m *Manager) persistLocked(ctx context.Context) {
	if m.configPath == "" {
		return
	}
	servers := make(map[string]ServerConfig, len(m.servers))
	for name, entry := range m.servers {
		servers[name] = entry.cfg
	}
	if err := SaveServers(m.configPath, servers); err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"status", "persist_failed",
			"path", m.configPath,
			"err", err.Error(),
		)
	}
}

// ListServers returns the server names, sorted.
func (m *Manager) ListServers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetClient returns the client for a named server.
func (m *Manager) GetClient(name string) (ServerClient, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.servers[name]
	if !ok {
		return nil, false
	}
	return entry.client, true
}

// LoadConfig adds every server from the YAML file. Per-entry failures are
// logged and skipped so one bad server cannot block the rest.
func (m *Manager) LoadConfig(ctx context.Context, path string) error {
	servers, err := LoadServers(path)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ok, err := m.AddServer(ctx, name, servers[name])
		if err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "server_skipped",
				"server", name,
				"err", err.Error(),
			)
			continue
		}
		if !ok {
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "server_unavailable",
				"server", name,
			)
		}
	}
	return nil
}

// SaveConfig persists the current server set to the YAML file.
func (m *Manager) SaveConfig(path string) error {
	m.mu.Lock()
	servers := make(map[string]ServerConfig, len(m.servers))
	for name, entry := range m.servers {
		servers[name] = entry.cfg
	}
	m.mu.Unlock()

	return SaveServers(path, servers)
}

// DisconnectAll removes every server. Safe to call multiple times.
func (m *Manager) DisconnectAll(ctx context.Context) {
	m.mu.Lock()
	servers := m.servers
	m.servers = make(map[string]*serverEntry)
	m.mu.Unlock()

	for name, entry := range servers {
		m.teardown(ctx, name, entry)
	}
}

func (m *Manager) teardown(ctx context.Context, name string, entry *serverEntry) {
	for _, toolName := range entry.toolNames {
		m.registry.Unregister(toolName)
	}
	if err := entry.client.Close(); err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "close_failed",
			"server", name,
			"err", err.Error(),
		)
	}
	metricskey.StatsServersDisconnected.IncrCounter(1, name)
	logger.ContextKV(ctx, xlog.INFO,
		"status", "server_removed",
		"server", name,
		"tools", len(entry.toolNames),
	)
}
