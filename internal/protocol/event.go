package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

// Control channel event types.
const (
	// EventSessionUpdate configures modalities and tools on the remote peer.
	EventSessionUpdate = "session.update"

	// EventFunctionCallArgumentsDone asks the bridge to invoke a tool.
	EventFunctionCallArgumentsDone = "response.function_call_arguments.done"

	// EventConversationItemCreate carries a tool result back to the peer.
	EventConversationItemCreate = "conversation.item.create"

	// EventResponseCreate asks the peer to continue after a tool result.
	EventResponseCreate = "response.create"

	// EventError is sent by the peer when it rejects a client event.
	EventError = "error"

	// ItemFunctionCallOutput is the item type of a tool result.
	ItemFunctionCallOutput = "function_call_output"
)

// SessionUpdate is the configuration handshake sent when the channel opens.
//
// Wire format:
//
//	{
//	  "type": "session.update",
//	  "session": {
//	    "modalities": ["text", "audio"],
//	    "tools": [{"type": "function", "name": "getPageHTML", ...}]
//	  }
//	}
type SessionUpdate struct {
	EventID string        `json:"event_id,omitempty"` //nolint:tagliatelle // realtime API uses snake_case
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

// SessionConfig is the session object of a SessionUpdate.
type SessionConfig struct {
	Modalities   []string          `json:"modalities"`
	Instructions string            `json:"instructions,omitempty"`
	Voice        string            `json:"voice,omitempty"`
	Tools        []tool.Descriptor `json:"tools"`
}

// FunctionCallArgumentsDone is the inbound invocation request.
//
// Wire format:
//
//	{
//	  "type": "response.function_call_arguments.done",
//	  "name": "changeTextColor",
//	  "call_id": "call_abc",
//	  "arguments": "{\"color\":\"#ff0000\"}"
//	}
type FunctionCallArgumentsDone struct {
	Type        string `json:"type"`
	EventID     string `json:"event_id,omitempty"`     //nolint:tagliatelle // realtime API uses snake_case
	ResponseID  string `json:"response_id,omitempty"`  //nolint:tagliatelle // realtime API uses snake_case
	ItemID      string `json:"item_id,omitempty"`      //nolint:tagliatelle // realtime API uses snake_case
	OutputIndex int    `json:"output_index,omitempty"` //nolint:tagliatelle // realtime API uses snake_case
	CallID      string `json:"call_id"`                //nolint:tagliatelle // realtime API uses snake_case
	Name        string `json:"name"`

	// Arguments is a JSON string holding the encoded argument object.
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ArgumentsText unwraps the arguments string. Missing or null arguments
// yield an empty string.
func (e *FunctionCallArgumentsDone) ArgumentsText() (string, error) {
	trimmed := bytes.TrimSpace(e.Arguments)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return "", fmt.Errorf("parse arguments: expected a JSON string: %w", err)
	}

	return text, nil
}

// ConversationItemCreate carries a tool result back to the peer.
//
// Wire format:
//
//	{
//	  "type": "conversation.item.create",
//	  "item": {
//	    "type": "function_call_output",
//	    "call_id": "call_abc",
//	    "output": "{\"success\":true,\"payload\":{...}}"
//	  }
//	}
type ConversationItemCreate struct {
	EventID string             `json:"event_id,omitempty"` //nolint:tagliatelle // realtime API uses snake_case
	Type    string             `json:"type"`
	Item    FunctionCallOutput `json:"item"`
}

// FunctionCallOutput is the item of a ConversationItemCreate.
type FunctionCallOutput struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"` //nolint:tagliatelle // realtime API uses snake_case
	Output string `json:"output"`
}

// ResponseCreate asks the peer to generate a new response.
type ResponseCreate struct {
	EventID string `json:"event_id,omitempty"` //nolint:tagliatelle // realtime API uses snake_case
	Type    string `json:"type"`
}

// ServerError is an error event sent by the peer.
type ServerError struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitempty"` //nolint:tagliatelle // realtime API uses snake_case
	Error   struct {
		Type    string `json:"type,omitempty"`
		Code    string `json:"code,omitempty"`
		Message string `json:"message"`
		EventID string `json:"event_id,omitempty"` //nolint:tagliatelle // realtime API uses snake_case
	} `json:"error"`
}

// ServerEvent is an inbound event the protocol does not act on.
// It is passed to the observer configured with Config.OnEvent.
type ServerEvent struct {
	Type string
	Raw  json.RawMessage
}

// envelope is decoded first to route a frame by type.
type envelope struct {
	Type string `json:"type"`
}

// newEventID creates a unique client event ID using ULID.
func newEventID() string {
	return "evt_" + ulid.Make().String()
}
