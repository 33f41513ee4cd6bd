package agentbridge

import (
	"log/slog"

	"github.com/wagiedev/agent-bridge-go/internal/config"
	"github.com/wagiedev/agent-bridge-go/internal/rtc"
)

// Transport carries control frames between the bridge and the remote peer.
// Implement this to provide custom transports for testing or alternative
// session mechanisms.
//
// The default implementation is a WebRTC peer connection negotiated through
// the signaling relay. A Transport is single-use; WithTransportFactory
// supplies a new one for every session.
type Transport = config.Transport

// TransportFactory creates the Transport for one session.
type TransportFactory = config.TransportFactory

// NewPeerTransport creates the default WebRTC transport for options.
func NewPeerTransport(log *slog.Logger, options *Options) Transport {
	return rtc.NewPeerTransport(log, options)
}
