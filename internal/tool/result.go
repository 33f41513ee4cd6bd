package tool

import (
	"encoding/json"
	"fmt"
)

// Result is the tagged outcome of a tool invocation.
//
// Wire format for success:
//
//	{"success": true, "payload": <any JSON value>}
//
// Wire format for failure:
//
//	{"success": false, "message": "API request failed with status: 500"}
type Result struct {
	OK      bool   `json:"success"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success creates a successful Result carrying payload.
func Success(payload any) Result {
	return Result{OK: true, Payload: payload}
}

// Failure creates a failed Result carrying message.
func Failure(message string) Result {
	return Result{Message: message}
}

// Failuref creates a failed Result with a formatted message.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

// Encode serializes a Result into the string carried by function_call_output.
//
// A payload that cannot be serialized yields an error; callers are expected to
// fall back to a Failure so the peer always receives valid JSON.
func Encode(r Result) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}

	return string(data), nil
}

// Decode parses a function_call_output string back into a Result.
func Decode(output string) (Result, error) {
	var r Result
	if err := json.Unmarshal([]byte(output), &r); err != nil {
		return Result{}, fmt.Errorf("decode tool result: %w", err)
	}

	if r.OK {
		r.Message = ""
	} else {
		r.Payload = nil
	}

	return r, nil
}
