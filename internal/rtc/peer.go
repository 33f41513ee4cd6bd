package rtc

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/wagiedev/agent-bridge-go/internal/config"
	"github.com/wagiedev/agent-bridge-go/internal/errors"
)

const (
	// messageBufferSize is the number of inbound frames buffered before the
	// data channel callback blocks.
	messageBufferSize = 64

	// rtpBufferSize fits one RTP packet on a typical MTU.
	rtpBufferSize = 1500
)

// PeerTransport implements config.Transport on a WebRTC peer connection.
type PeerTransport struct {
	log        *slog.Logger
	signaling  *SignalingClient
	label      string
	iceServers []string
	onTrack    func(*webrtc.TrackRemote, *webrtc.RTPReceiver)

	mu      sync.Mutex // Protects pc, dc, audio and the flags below
	pc      *webrtc.PeerConnection
	dc      *webrtc.DataChannel
	audio   *webrtc.TrackLocalStaticSample
	started bool // Whether Start() has been called
	closing bool // Whether Close() has been called (intentional shutdown)

	opened   chan struct{}
	openOnce sync.Once

	messages chan []byte
	errs     chan error
	failOnce sync.Once

	done      chan struct{}
	closeOnce sync.Once
}

// Compile-time verification that PeerTransport implements the Transport interface.
var _ config.Transport = (*PeerTransport)(nil)

// NewPeerTransport creates a transport from the bridge options.
//
// Nothing is negotiated until Start is called.
func NewPeerTransport(log *slog.Logger, options *config.Options) *PeerTransport {
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.HTTPTimeout
		if timeout <= 0 {
			timeout = config.DefaultHTTPTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	signalingURL := options.SignalingURL
	if signalingURL == "" {
		signalingURL = config.DefaultSignalingURL
	}

	label := options.ChannelLabel
	if label == "" {
		label = config.DefaultChannelLabel
	}

	log = log.With("component", "peer_transport")

	return &PeerTransport{
		log:        log,
		signaling:  NewSignalingClient(log, signalingURL, httpClient),
		label:      label,
		iceServers: options.ICEServers,
		onTrack:    options.OnTrack,
		opened:     make(chan struct{}),
		messages:   make(chan []byte, messageBufferSize),
		errs:       make(chan error, 1),
		done:       make(chan struct{}),
	}
}

// Start negotiates the peer connection.
//
// It creates the local audio track and the control data channel, waits for
// ICE gathering to complete so the offer carries every candidate, exchanges
// the offer through the signaling relay and applies the answer. Failures are
// returned as *errors.TransportError and leave nothing running.
func (t *PeerTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()

		return &errors.TransportError{Op: "start", Err: fmt.Errorf("transport already started")}
	}

	if t.closing {
		t.mu.Unlock()

		return &errors.TransportError{Op: "start", Err: errors.ErrTransportClosed}
	}

	t.started = true
	t.mu.Unlock()

	t.log.Info("Starting peer connection", "signaling", t.signaling.Endpoint())

	pc, err := t.setup()
	if err != nil {
		return &errors.TransportError{Op: "setup", Err: err}
	}

	answer, err := t.negotiate(ctx, pc)
	if err != nil {
		_ = pc.Close()

		return &errors.TransportError{Op: "negotiate", Err: err}
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		_ = pc.Close()

		return &errors.TransportError{Op: "negotiate", Err: fmt.Errorf("set remote description: %w", err)}
	}

	t.log.Info("Peer connection negotiated")

	return nil
}

// setup creates the peer connection with its media track, data channel and
// event handlers.
func (t *PeerTransport) setup() (*webrtc.PeerConnection, error) {
	cfg := webrtc.Configuration{}
	if len(t.iceServers) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: t.iceServers}}
	}

	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		"audio", "agent-bridge",
	)
	if err != nil {
		_ = pc.Close()

		return nil, fmt.Errorf("create audio track: %w", err)
	}

	if _, err := pc.AddTransceiverFromTrack(audio, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionSendrecv,
	}); err != nil {
		_ = pc.Close()

		return nil, fmt.Errorf("add audio track: %w", err)
	}

	pc.OnTrack(t.handleTrack)
	pc.OnConnectionStateChange(t.handleConnectionState)

	dc, err := pc.CreateDataChannel(t.label, nil)
	if err != nil {
		_ = pc.Close()

		return nil, fmt.Errorf("create data channel %q: %w", t.label, err)
	}

	dc.OnOpen(func() {
		t.log.Info("Control channel opened", "label", t.label)
		t.openOnce.Do(func() { close(t.opened) })
	})
	dc.OnMessage(t.handleMessage)
	dc.OnClose(func() {
		t.log.Debug("Control channel closed", "label", t.label)
		t.fail(fmt.Errorf("control channel %q closed", t.label))
	})

	t.mu.Lock()
	closing := t.closing
	if !closing {
		t.pc = pc
		t.dc = dc
		t.audio = audio
	}
	t.mu.Unlock()

	if closing {
		_ = pc.Close()

		return nil, errors.ErrTransportClosed
	}

	return pc, nil
}

// negotiate produces the local offer once ICE gathering is complete and
// exchanges it for the remote answer.
func (t *PeerTransport) negotiate(ctx context.Context, pc *webrtc.PeerConnection) (string, error) {
	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return "", fmt.Errorf("create offer: %w", err)
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)

	if err := pc.SetLocalDescription(offer); err != nil {
		return "", fmt.Errorf("set local description: %w", err)
	}

	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.done:
		return "", errors.ErrTransportClosed
	}

	local := pc.LocalDescription()
	if local == nil {
		return "", fmt.Errorf("no local description after gathering")
	}

	t.log.Debug("ICE gathering complete")

	return t.signaling.Exchange(ctx, local.SDP)
}

func (t *PeerTransport) handleMessage(msg webrtc.DataChannelMessage) {
	data := make([]byte, len(msg.Data))
	copy(data, msg.Data)

	select {
	case t.messages <- data:
	case <-t.done:
	}
}

func (t *PeerTransport) handleConnectionState(state webrtc.PeerConnectionState) {
	t.log.Debug("Peer connection state changed", "state", state.String())

	switch state {
	case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
		t.fail(fmt.Errorf("peer connection %s", state.String()))
	default:
	}
}

// handleTrack passes inbound media to the configured sink, or drains it.
func (t *PeerTransport) handleTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
	t.log.Info("Remote track received", "kind", track.Kind().String(), "codec", track.Codec().MimeType)

	if t.onTrack != nil {
		t.onTrack(track, receiver)

		return
	}

	go func() {
		buf := make([]byte, rtpBufferSize)

		for {
			if _, _, err := track.Read(buf); err != nil {
				return
			}
		}
	}()
}

// fail reports the loss of the session once, unless it was closed on purpose.
func (t *PeerTransport) fail(err error) {
	t.mu.Lock()
	closing := t.closing
	t.mu.Unlock()

	if closing {
		return
	}

	t.failOnce.Do(func() {
		t.log.Warn("Session transport lost", "error", err)

		t.errs <- &errors.TransportError{Op: "session", Err: err}
	})
}

// Opened returns a channel that is closed when the control channel opens.
func (t *PeerTransport) Opened() <-chan struct{} {
	return t.opened
}

// ReadMessages returns the inbound frame and failure channels.
//
// The channels are shared by every call and are never closed. A value on the
// error channel means the session is gone.
func (t *PeerTransport) ReadMessages(_ context.Context) (<-chan []byte, <-chan error) {
	return t.messages, t.errs
}

// SendMessage sends one frame as a text message on the control channel.
// This method is safe for concurrent use.
func (t *PeerTransport) SendMessage(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closing {
		return errors.ErrTransportClosed
	}

	if t.dc == nil {
		return errors.ErrTransportNotStarted
	}

	if state := t.dc.ReadyState(); state != webrtc.DataChannelStateOpen {
		return &errors.TransportError{Op: "send", Err: fmt.Errorf("control channel is %s", state.String())}
	}

	if err := t.dc.SendText(string(data)); err != nil {
		return &errors.TransportError{Op: "send", Err: err}
	}

	return nil
}

// AudioTrack returns the local audio track, or nil before Start.
// Callers feed microphone samples with WriteSample.
func (t *PeerTransport) AudioTrack() *webrtc.TrackLocalStaticSample {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.audio
}

// Close closes the control channel and the peer connection.
// It's safe to call Close multiple times.
func (t *PeerTransport) Close() error {
	var err error

	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closing = true
		pc := t.pc
		dc := t.dc
		t.mu.Unlock()

		close(t.done)

		if dc != nil {
			if cerr := dc.Close(); cerr != nil {
				t.log.Debug("Failed to close control channel", "error", cerr)
			}
		}

		if pc != nil {
			if cerr := pc.Close(); cerr != nil {
				err = &errors.TransportError{Op: "close", Err: cerr}
			}
		}

		t.log.Info("Peer transport closed")
	})

	return err
}
