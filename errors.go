package agentbridge

import "github.com/wagiedev/agent-bridge-go/internal/errors"

// Re-export error types from internal package

// BridgeError is the base interface for all bridge errors.
type BridgeError = errors.BridgeError

// TransportError indicates the session could not be negotiated or was lost.
type TransportError = errors.TransportError

// MalformedMessageError indicates an inbound control frame could not be parsed.
type MalformedMessageError = errors.MalformedMessageError

// UnknownToolError indicates an invocation named an unregistered tool.
type UnknownToolError = errors.UnknownToolError

// ToolInvocationError indicates a tool failed while being invoked.
type ToolInvocationError = errors.ToolInvocationError

// CollaboratorError indicates a downstream service used by a tool failed.
type CollaboratorError = errors.CollaboratorError

// Re-export sentinel errors from internal package.
var (
	// ErrDuplicateTool indicates two tools share a name.
	ErrDuplicateTool = errors.ErrDuplicateTool

	// ErrToolNotFound indicates a lookup for an unregistered tool.
	ErrToolNotFound = errors.ErrToolNotFound

	// ErrRegistrySealed indicates a registration after the first Start.
	ErrRegistrySealed = errors.ErrRegistrySealed

	// ErrTransportClosed indicates use of a closed transport.
	ErrTransportClosed = errors.ErrTransportClosed

	// ErrSessionStopped indicates the session was stopped during an operation.
	ErrSessionStopped = errors.ErrSessionStopped

	// ErrBridgeClosed indicates use of a bridge after Close.
	ErrBridgeClosed = errors.ErrBridgeClosed

	// ErrNoButton indicates the page has no button to style.
	ErrNoButton = errors.ErrNoButton
)
