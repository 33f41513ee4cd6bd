// Package errors defines error types for the agent bridge.
//
// This package provides structured error types for the failure classes of a
// bridge session: transport negotiation, malformed control frames, unknown
// tools, tool faults and downstream collaborator failures. All error types
// support error unwrapping and can be checked using errors.Is and errors.As.
package errors
