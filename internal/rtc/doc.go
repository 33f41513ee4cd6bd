// Package rtc implements the session transport on a WebRTC peer connection.
//
// PeerTransport creates the control data channel and a local audio track,
// gathers ICE candidates, exchanges the offer for an answer through the
// signaling relay and then carries control frames as data channel text
// messages.
package rtc
