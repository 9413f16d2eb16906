package mcpservers

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	mcpgolang "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

const (
	// DefaultConnectTimeout bounds process spawn plus handshake.
	DefaultConnectTimeout = 10 * time.Second
	// DefaultCallTimeout bounds a single tool call.
	DefaultCallTimeout = 30 * time.Second
	// shutdownGrace is how long Close waits after the interrupt signal
	// before killing the process.
	shutdownGrace = 2 * time.Second
)

// Client owns one tool-server process and the JSON-RPC session to it.
// There is no automatic reconnect: once the connection is lost or closed,
// the owner must create and connect a new Client.
type Client struct {
	name           string
	cfg            ServerConfig
	connectTimeout time.Duration
	callTimeout    time.Duration

	mu        sync.Mutex
	cmd       *exec.Cmd
	mc        *mcpgolang.Client
	tools     []mcpgolang.ToolRetType
	connected bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithConnectTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.connectTimeout = d
	}
}

func WithCallTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.callTimeout = d
	}
}

func NewClient(name string, cfg ServerConfig, ops ...ClientOption) *Client {
	c := &Client{
		name:           name,
		cfg:            cfg,
		connectTimeout: DefaultConnectTimeout,
		callTimeout:    DefaultCallTimeout,
	}
	for _, op := range ops {
		op(c)
	}
	return c
}

func (c *Client) Name() string {
	return c.name
}

// Connect spawns the server process, performs the protocol handshake and
// caches the server's tool list. The whole sequence runs under the connect
// timeout; on any failure the process is killed and the client stays
// disconnected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	cmd := exec.Command(c.cfg.Command, c.cfg.Args...)
	cmd.Env = os.Environ()
	for k, v := range c.cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to open stdin pipe"), ErrConnection)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to open stdout pipe"), ErrConnection)
	}
	if err := cmd.Start(); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to start %s", c.cfg.Command), ErrConnection)
	}

	mc := mcpgolang.NewClient(stdio.NewStdioServerTransportWithIO(stdout, stdin))

	hctx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	if _, err := mc.Initialize(hctx); err != nil {
		kill(cmd)
		return errors.Mark(errors.Wrapf(err, "handshake with server %q failed", c.name), ErrConnection)
	}

	var list []mcpgolang.ToolRetType
	var cursor *string
	for {
		resp, err := mc.ListTools(hctx, cursor)
		if err != nil {
			kill(cmd)
			return errors.Mark(errors.Wrapf(err, "failed to list tools on server %q", c.name), ErrConnection)
		}
		list = append(list, resp.Tools...)
		if resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	c.cmd = cmd
	c.mc = mc
	c.tools = list
	c.connected = true

	logger.KV(xlog.INFO,
		"status", "connected",
		"server", c.name,
		"tools", len(list),
	)
	return nil
}

// IsConnected reports the connection state without blocking on the server.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ListTools returns the tool list cached during Connect. The list is not
// refreshed; reconnect to pick up server-side changes.
func (c *Client) ListTools(ctx context.Context) ([]mcpgolang.ToolRetType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil, errors.WithMessagef(ErrNotConnected, "server %q", c.name)
	}
	out := make([]mcpgolang.ToolRetType, len(c.tools))
	copy(out, c.tools)
	return out, nil
}

// CallTool invokes a tool by its server-local name. The call runs under the
// per-call timeout; the text content of the response is concatenated into
// the returned string.
func (c *Client) CallTool(ctx context.Context, name string, args any) (string, error) {
	c.mu.Lock()
	mc := c.mc
	connected := c.connected
	c.mu.Unlock()

	if !connected {
		return "", errors.WithMessagef(ErrNotConnected, "server %q", c.name)
	}

	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := mc.CallTool(cctx, name, args)
	if err != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return "", errors.WithMessagef(ErrTimeout, "tool %q on server %q after %s", name, c.name, c.callTimeout)
		}
		return "", errors.Wrapf(err, "tool %q on server %q", name, c.name)
	}

	var parts []string
	for _, content := range resp.Content {
		if content != nil && content.TextContent != nil {
			parts = append(parts, content.TextContent.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// Close shuts the server process down: interrupt first, kill after the
// grace period. Safe to call multiple times and on a never-connected client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	c.mc = nil
	c.tools = nil

	cmd := c.cmd
	c.cmd = nil
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		kill(cmd)
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		logger.KV(xlog.WARNING,
			"status", "kill_after_grace",
			"server", c.name,
		)
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
	}
	return nil
}

func kill(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
}
