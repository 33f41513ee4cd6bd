package agentbridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/wagiedev/agent-bridge-go/internal/errors"
	"github.com/wagiedev/agent-bridge-go/internal/mcp"
	"github.com/wagiedev/agent-bridge-go/internal/session"
	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

// Version is reported to MCP servers.
const Version = "0.1.0"

// bridge implements Bridge on the internal session.
type bridge struct {
	options  *Options
	registry *tool.Registry
	session  *session.Session
	mcp      *mcp.Client

	// connectMu serializes MCP imports. It is never held together with mu
	// across network I/O.
	connectMu sync.Mutex

	mu            sync.Mutex
	mcpConnected  map[string]bool
	cancelConnect context.CancelFunc
	closed        bool
	closeOnce     sync.Once
}

// Compile-time check that *bridge implements the Bridge interface.
var _ Bridge = (*bridge)(nil)

func newBridge(options *Options) (*bridge, error) {
	if options.Logger == nil {
		options.Logger = NopLogger()
	}

	log := options.Logger.With("component", "bridge")

	registry := tool.NewRegistry()
	for _, t := range options.Tools {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("register tools: %w", err)
		}
	}

	b := &bridge{
		options:      options,
		registry:     registry,
		session:      session.New(options.Logger, options, registry),
		mcpConnected: make(map[string]bool, len(options.MCPServers)),
	}

	if len(options.MCPServers) > 0 {
		b.mcp = mcp.NewClient(options.Logger, "agent-bridge", Version)
	}

	log.Debug("Bridge created", "tools", registry.Len(), "mcp_servers", len(options.MCPServers))

	return b, nil
}

// Start implements Bridge.
func (b *bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()

	if closed {
		return ErrBridgeClosed
	}

	if err := b.connectMCP(ctx); err != nil {
		return err
	}

	return b.session.Start(ctx)
}

// connectMCP registers the tools of every MCP server not connected yet.
// A failed server is retried on the next Start. Close cancels a pending import.
func (b *bridge) connectMCP(ctx context.Context) error {
	if b.mcp == nil {
		return nil
	}

	b.connectMu.Lock()
	defer b.connectMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		return ErrBridgeClosed
	}

	pending := make([]mcp.ServerConfig, 0, len(b.options.MCPServers))
	for _, server := range b.options.MCPServers {
		if !b.mcpConnected[server.Name] {
			pending = append(pending, server)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	b.cancelConnect = cancel
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.cancelConnect = nil
		b.mu.Unlock()

		cancel()
	}()

	for _, server := range pending {
		tools, err := b.mcp.Connect(ctx, server)
		if err != nil {
			return fmt.Errorf("connect mcp server %q: %w", server.Name, err)
		}

		b.mu.Lock()
		closed := b.closed
		b.mu.Unlock()

		if closed {
			// Close may have run before this session was recorded.
			_ = b.mcp.Close()

			return ErrBridgeClosed
		}

		for _, t := range tools {
			if err := b.registry.Register(t); err != nil {
				if stderrors.Is(err, errors.ErrRegistrySealed) {
					return err
				}

				b.options.Logger.Warn("Skipping MCP tool", "server", server.Name, "tool", t.Name(), "error", err)
			}
		}

		b.mu.Lock()
		b.mcpConnected[server.Name] = true
		b.mu.Unlock()
	}

	return nil
}

// Stop implements Bridge.
func (b *bridge) Stop() error {
	return b.session.Stop()
}

// State implements Bridge.
func (b *bridge) State() State {
	return b.session.State()
}

// SessionID implements Bridge.
func (b *bridge) SessionID() string {
	return b.session.ID()
}

// LastError implements Bridge.
func (b *bridge) LastError() error {
	return b.session.LastError()
}

// Wait implements Bridge.
func (b *bridge) Wait() {
	b.session.Wait()
}

// Tools implements Bridge.
func (b *bridge) Tools() []ToolDescriptor {
	return b.registry.DescribeAll()
}

// MCPStatus implements Bridge.
func (b *bridge) MCPStatus() MCPStatus {
	if b.mcp == nil {
		return MCPStatus{MCPServers: []mcp.ServerStatus{}}
	}

	return b.mcp.Status()
}

// Close implements Bridge.
func (b *bridge) Close() error {
	var closeErr error

	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		cancelConnect := b.cancelConnect
		b.mu.Unlock()

		if cancelConnect != nil {
			cancelConnect()
		}

		var errs []error

		if err := b.session.Stop(); err != nil {
			errs = append(errs, err)
		}

		if b.mcp != nil {
			if err := b.mcp.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		closeErr = stderrors.Join(errs...)
	})

	return closeErr
}
