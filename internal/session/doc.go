// Package session implements the session lifecycle around the transport and
// the protocol controller.
//
// A Session moves through Idle, Connecting, Open and Closing. Start negotiates
// a fresh transport and starts a protocol controller on it; a watcher
// goroutine moves the session to Open when the control channel opens and
// tears it down if the transport is lost. Stop closes everything and returns
// to Idle. Each Start creates a new transport, so a stopped session can be
// started again.
package session
