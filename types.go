package agentbridge

import (
	"github.com/wagiedev/agent-bridge-go/internal/config"
	"github.com/wagiedev/agent-bridge-go/internal/consult"
	"github.com/wagiedev/agent-bridge-go/internal/mcp"
	"github.com/wagiedev/agent-bridge-go/internal/page"
	"github.com/wagiedev/agent-bridge-go/internal/protocol"
	"github.com/wagiedev/agent-bridge-go/internal/session"
	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

// Options holds the bridge configuration. Build it with Option functions.
type Options = config.Options

// State is the lifecycle state of the bridge session.
type State = session.State

// Session states.
const (
	StateIdle       = session.StateIdle
	StateConnecting = session.StateConnecting
	StateOpen       = session.StateOpen
	StateClosing    = session.StateClosing
)

// Tool is a locally invocable capability offered to the remote peer.
type Tool = tool.Tool

// ToolHandler is the function signature used by NewTool.
type ToolHandler = tool.Handler

// Result is the outcome of a tool invocation.
type Result = tool.Result

// Param describes one property of an ObjectSchema.
type Param = tool.Param

// ToolDescriptor is the schema of a tool as declared to the peer.
type ToolDescriptor = tool.Descriptor

// ServerEvent is an inbound control event the bridge does not act on.
type ServerEvent = protocol.ServerEvent

// MCPServerConfig configures an MCP server whose tools are registered.
type MCPServerConfig = mcp.ServerConfig

// MCPServerType is the transport used to reach an MCP server.
type MCPServerType = mcp.ServerType

// MCP server types.
const (
	MCPServerTypeStdio = mcp.ServerTypeStdio
	MCPServerTypeHTTP  = mcp.ServerTypeHTTP
)

// MCPStatus reports the connected MCP servers.
type MCPStatus = mcp.Status

// Surface is the page the built-in page tools act on.
type Surface = page.Surface

// Document is an in-memory Surface.
type Document = page.Document

// ConsultConfig configures the consultAPI tool.
type ConsultConfig = consult.Config

// Success returns a successful Result carrying payload.
func Success(payload any) Result {
	return tool.Success(payload)
}

// Failure returns a failed Result carrying message.
func Failure(message string) Result {
	return tool.Failure(message)
}

// NewTool creates a Tool backed by handler. A nil schema means the tool takes
// no arguments.
var NewTool = tool.New

// ObjectSchema builds an object schema from parameter descriptions.
var ObjectSchema = tool.ObjectSchema

// NewDocument creates an in-memory page.
var NewDocument = page.NewDocument

// EncodeResult serializes a Result the way it is sent to the peer.
var EncodeResult = tool.Encode

// DecodeResult parses a Result sent to the peer.
var DecodeResult = tool.Decode
