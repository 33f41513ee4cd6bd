//go:build integration

// Package integration runs the bridge against a local WebRTC peer that plays
// the remote assistant.
package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pion/webrtc/v4"
)

// fakeAssistant answers offers and records the frames it receives on the
// control channel. Frames in script are sent once the session is configured.
type fakeAssistant struct {
	t      *testing.T
	script []string

	mu     sync.Mutex
	peers  []*webrtc.PeerConnection
	frames chan map[string]any
}

func newFakeAssistant(t *testing.T, script ...string) (*fakeAssistant, *httptest.Server) {
	t.Helper()

	a := &fakeAssistant{
		t:      t,
		script: script,
		frames: make(chan map[string]any, 32),
	}

	r := chi.NewRouter()
	r.Post("/api/rtc-connect", a.connect)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()

		a.mu.Lock()
		defer a.mu.Unlock()

		for _, pc := range a.peers {
			_ = pc.Close()
		}
	})

	return a, srv
}

func (a *fakeAssistant) connect(w http.ResponseWriter, r *http.Request) {
	offer, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	a.mu.Lock()
	a.peers = append(a.peers, pc)
	a.mu.Unlock()

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			var frame map[string]any
			if err := json.Unmarshal(msg.Data, &frame); err != nil {
				a.t.Errorf("bridge sent invalid JSON: %v", err)

				return
			}

			a.frames <- frame

			if frame["type"] == "session.update" {
				for _, s := range a.script {
					_ = dc.SendText(s)
				}
			}
		})
	})

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  string(offer),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)

	if err := pc.SetLocalDescription(answer); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	<-gatherComplete

	w.Header().Set("Content-Type", "application/sdp")
	_, _ = w.Write([]byte(pc.LocalDescription().SDP))
}
