package errors

import (
	"errors"
	"fmt"
)

// BridgeError is the base interface for all bridge errors.
type BridgeError interface {
	error
	IsBridgeError() bool
}

// Compile-time verification that all error types implement BridgeError.
var (
	_ BridgeError = (*TransportError)(nil)
	_ BridgeError = (*MalformedMessageError)(nil)
	_ BridgeError = (*UnknownToolError)(nil)
	_ BridgeError = (*ToolInvocationError)(nil)
	_ BridgeError = (*CollaboratorError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrDuplicateTool indicates a tool with the same name is already registered.
	ErrDuplicateTool = errors.New("duplicate tool name")

	// ErrToolNotFound indicates a lookup for a name that is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrRegistrySealed indicates a registration after the registry was sealed.
	ErrRegistrySealed = errors.New("tool registry is sealed")

	// ErrTransportClosed indicates a send on a transport that has been closed.
	ErrTransportClosed = errors.New("transport closed")

	// ErrTransportNotStarted indicates use of a transport before negotiation.
	ErrTransportNotStarted = errors.New("transport not started")

	// ErrSessionStopped indicates the session was stopped while an operation was pending.
	ErrSessionStopped = errors.New("session stopped")

	// ErrBridgeClosed indicates use of a bridge after Close.
	ErrBridgeClosed = errors.New("bridge closed")

	// ErrProtocolStopped indicates the protocol controller has stopped.
	ErrProtocolStopped = errors.New("protocol controller stopped")

	// ErrNoButton indicates the page has no button element to style.
	ErrNoButton = errors.New("Button element not found") //nolint:staticcheck // surfaced verbatim to the remote peer
)

// TransportError indicates the real-time session could not be negotiated or was lost.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}

	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *TransportError) IsBridgeError() bool { return true }

// MalformedMessageError indicates an inbound control frame could not be parsed.
type MalformedMessageError struct {
	Raw string
	Err error
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("malformed control message: %v", e.Err)
}

func (e *MalformedMessageError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *MalformedMessageError) IsBridgeError() bool { return true }

// UnknownToolError indicates an invocation named a tool absent from the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "unknown tool: " + e.Name
}

// Unwrap lets callers match UnknownToolError with ErrToolNotFound.
func (e *UnknownToolError) Unwrap() error {
	return ErrToolNotFound
}

// IsBridgeError implements BridgeError.
func (e *UnknownToolError) IsBridgeError() bool { return true }

// ToolInvocationError indicates a tool failed or panicked while being invoked.
type ToolInvocationError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("tool %s (call %s) failed: %v", e.Tool, e.CallID, e.Err)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *ToolInvocationError) IsBridgeError() bool { return true }

// CollaboratorError indicates a downstream HTTP service used by a tool failed.
type CollaboratorError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *CollaboratorError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("API request failed with status: %d", e.StatusCode)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *CollaboratorError) IsBridgeError() bool { return true }
