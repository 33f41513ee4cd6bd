package config

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/wagiedev/agent-bridge-go/internal/mcp"
	"github.com/wagiedev/agent-bridge-go/internal/protocol"
	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

const (
	// DefaultSignalingURL is the relay that exchanges session descriptions.
	DefaultSignalingURL = "http://127.0.0.1:8813"

	// DefaultChannelLabel is the label of the control data channel.
	DefaultChannelLabel = "response"

	// DefaultHTTPTimeout bounds signaling and collaborator requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// TransportFactory creates a fresh Transport for one session.
type TransportFactory func(log *slog.Logger) (Transport, error)

// Options configures the behavior of the agent bridge.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// SignalingURL is the base URL of the signaling relay.
	// The offer is posted to SignalingURL + "/api/rtc-connect".
	SignalingURL string

	// ChannelLabel is the label of the control data channel.
	ChannelLabel string

	// ICEServers lists STUN/TURN URLs for the peer connection.
	ICEServers []string

	// HTTPClient is used for signaling. If nil, a client with HTTPTimeout is used.
	HTTPClient *http.Client

	// HTTPTimeout bounds signaling requests when HTTPClient is nil.
	HTTPTimeout time.Duration

	// OpenTimeout bounds the wait for the control channel to open after
	// negotiation. Zero waits until Stop.
	OpenTimeout time.Duration

	// Modalities declared in the session configuration.
	Modalities []string

	// Instructions and Voice are sent in the session configuration when set.
	Instructions string
	Voice        string

	// AutoRespond asks the peer to continue after every tool result.
	AutoRespond bool

	// Tools are registered in order when the bridge is created.
	Tools []tool.Tool

	// MCPServers lists external MCP servers whose tools are registered too.
	MCPServers []mcp.ServerConfig

	// OnEvent observes inbound control events the bridge does not act on.
	OnEvent func(protocol.ServerEvent)

	// OnTrack handles inbound media tracks. If nil, tracks are drained and
	// discarded.
	OnTrack func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)

	// NewTransport overrides the session transport, mainly for testing.
	// If nil, a WebRTC peer transport is used.
	NewTransport TransportFactory
}
