// Package config provides configuration types for the agent bridge.
package config

import "context"

// Transport defines the interface for the real-time session with the remote
// assistant peer.
// Implement this to provide custom transports for testing, mocking,
// or alternative session mechanisms.
//
// The default implementation is rtc.PeerTransport, which negotiates a WebRTC
// peer connection through the signaling endpoint. A Transport is single-use:
// each session start creates a fresh one through Options.NewTransport.
type Transport interface {
	// Start acquires local media, negotiates the session with the remote
	// endpoint and registers the track and message handlers. It returns once
	// negotiation has completed; the control channel may open later.
	Start(ctx context.Context) error

	// Opened returns a channel that is closed when the control channel opens.
	Opened() <-chan struct{}

	// ReadMessages returns channels for receiving raw control frames and errors.
	// The message channel yields one complete frame per receive.
	// The error channel yields a transport failure after which no more
	// frames arrive.
	ReadMessages(ctx context.Context) (<-chan []byte, <-chan error)

	// SendMessage sends one complete frame on the control channel.
	// This method must be safe for concurrent use.
	SendMessage(ctx context.Context, data []byte) error

	// Close stops local media tracks, closes the control channel and the
	// session, and releases resources. It's safe to call Close multiple times.
	Close() error
}
