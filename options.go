package agentbridge

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pion/webrtc/v4"
)

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a new Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithTools registers tools in the given order. May be repeated.
func WithTools(tools ...Tool) Option {
	return func(o *Options) {
		o.Tools = append(o.Tools, tools...)
	}
}

// WithMCPServers registers the tools of the given MCP servers on the first Start.
func WithMCPServers(servers ...MCPServerConfig) Option {
	return func(o *Options) {
		o.MCPServers = append(o.MCPServers, servers...)
	}
}

// ===== Session Configuration =====

// WithModalities sets the modalities declared to the peer.
// Defaults to "text" and "audio".
func WithModalities(modalities ...string) Option {
	return func(o *Options) {
		o.Modalities = modalities
	}
}

// WithInstructions sets the instructions sent in the session configuration.
func WithInstructions(instructions string) Option {
	return func(o *Options) {
		o.Instructions = instructions
	}
}

// WithVoice sets the voice sent in the session configuration.
func WithVoice(voice string) Option {
	return func(o *Options) {
		o.Voice = voice
	}
}

// WithAutoRespond asks the peer to continue its response after every tool result.
func WithAutoRespond(enabled bool) Option {
	return func(o *Options) {
		o.AutoRespond = enabled
	}
}

// WithEventHandler observes inbound control events the bridge does not act on,
// including error events from the peer. The handler runs on the read loop and
// must not block.
func WithEventHandler(fn func(ServerEvent)) Option {
	return func(o *Options) {
		o.OnEvent = fn
	}
}

// ===== Transport Configuration =====

// WithSignalingURL sets the base URL of the signaling relay.
func WithSignalingURL(url string) Option {
	return func(o *Options) {
		o.SignalingURL = url
	}
}

// WithChannelLabel sets the label of the control data channel.
func WithChannelLabel(label string) Option {
	return func(o *Options) {
		o.ChannelLabel = label
	}
}

// WithICEServers sets the STUN/TURN server URLs.
func WithICEServers(urls ...string) Option {
	return func(o *Options) {
		o.ICEServers = urls
	}
}

// WithHTTPClient sets the HTTP client used for signaling.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithHTTPTimeout bounds signaling requests when no HTTP client is set.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.HTTPTimeout = timeout
	}
}

// WithOpenTimeout stops a session whose control channel has not opened
// within timeout after negotiation. The session returns to Idle and LastError
// reports a TransportError. Zero disables the limit.
func WithOpenTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.OpenTimeout = timeout
	}
}

// WithTrackHandler handles inbound media tracks, such as the peer's audio.
// Without a handler, tracks are drained and discarded.
func WithTrackHandler(fn func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)) Option {
	return func(o *Options) {
		o.OnTrack = fn
	}
}

// WithTransportFactory overrides the session transport.
// This is primarily used for testing with mock transports.
func WithTransportFactory(factory TransportFactory) Option {
	return func(o *Options) {
		o.NewTransport = factory
	}
}
