//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	agentbridge "github.com/wagiedev/agent-bridge-go"
)

func nextFrame(t *testing.T, a *fakeAssistant) map[string]any {
	t.Helper()

	select {
	case frame := <-a.frames:
		return frame
	case <-time.After(20 * time.Second):
		require.FailNow(t, "timed out waiting for a frame")

		return nil
	}
}

func TestSession_EndToEnd(t *testing.T) {
	assistant, srv := newFakeAssistant(t,
		`{"type":"response.function_call_arguments.done","name":"changeTextColor","call_id":"call_1","arguments":"{\"color\":\"#333333\"}"}`,
		`{"type":"response.function_call_arguments.done","name":"getPageHTML","call_id":"call_2","arguments":""}`,
	)

	doc := agentbridge.NewDocument("Integration", "<p>hi</p>", "Start")

	bridge, err := agentbridge.New(
		agentbridge.WithSignalingURL(srv.URL),
		agentbridge.WithHTTPClient(srv.Client()),
		agentbridge.WithTools(agentbridge.PageTools(doc)...),
	)
	require.NoError(t, err)

	defer bridge.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, bridge.Start(ctx))

	update := nextFrame(t, assistant)
	require.Equal(t, "session.update", update["type"])
	require.Equal(t, agentbridge.StateOpen, bridge.State())

	outputs := make(map[string]agentbridge.Result, 2)

	for range 2 {
		frame := nextFrame(t, assistant)
		require.Equal(t, "conversation.item.create", frame["type"])

		item := frame["item"].(map[string]any)

		result, err := agentbridge.DecodeResult(item["output"].(string))
		require.NoError(t, err)

		outputs[item["call_id"].(string)] = result
	}

	require.Equal(t, agentbridge.Success(map[string]any{"color": "#333333"}), outputs["call_1"])
	require.True(t, outputs["call_2"].OK)

	require.NoError(t, bridge.Stop())
	require.Equal(t, agentbridge.StateIdle, bridge.State())
}

func TestSession_SignalingRejected(t *testing.T) {
	bridge, err := agentbridge.New(agentbridge.WithSignalingURL("http://127.0.0.1:1"))
	require.NoError(t, err)

	defer bridge.Close()

	err = bridge.Start(t.Context())

	var transportErr *agentbridge.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, agentbridge.StateIdle, bridge.State())
}
