package agentbridge

import "context"

// Bridge owns a tool registry and the session that exposes it to the remote
// peer.
//
// Lifecycle: a Bridge can be started and stopped repeatedly. After Close it
// cannot be reused.
//
// Example usage:
//
//	bridge, err := agentbridge.New(agentbridge.WithTools(tools...))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bridge.Close()
//
//	if err := bridge.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Toggle off.
//	_ = bridge.Stop()
type Bridge interface {
	// Start negotiates a session with the remote peer. It is a no-op while a
	// session is connecting or open. Returns *TransportError on failure.
	// The first Start also connects the configured MCP servers.
	Start(ctx context.Context) error

	// Stop closes the session. Running tools are cancelled and their results
	// discarded. It is a no-op while idle.
	Stop() error

	// State returns the session state.
	State() State

	// SessionID returns the id of the current or most recent session.
	SessionID() string

	// LastError returns the error that ended the most recent session, if any.
	LastError() error

	// Wait blocks until the tools of the most recent session have returned.
	Wait()

	// Tools returns the registered tools in the order they are declared.
	Tools() []ToolDescriptor

	// MCPStatus reports the connected MCP servers.
	MCPStatus() MCPStatus

	// Close stops the session and disconnects MCP servers.
	// It's safe to call Close multiple times.
	Close() error
}

// New creates a bridge with the given options.
//
// Returns an error if two tools share a name or a tool schema is invalid.
func New(opts ...Option) (Bridge, error) {
	return newBridge(applyOptions(opts))
}
