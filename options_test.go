package agentbridge

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyOptions(t *testing.T) {
	doc := NewDocument("Test", "", "")
	client := &http.Client{}

	options := applyOptions([]Option{
		WithLogger(NopLogger()),
		WithTools(PageTools(doc)...),
		WithTools(ConsultTool(ConsultConfig{})),
		WithMCPServers(MCPServerConfig{Name: "fs", Command: "mcp-fs"}),
		WithModalities("text"),
		WithInstructions("Be brief."),
		WithVoice("alloy"),
		WithAutoRespond(true),
		WithSignalingURL("http://relay:8813"),
		WithChannelLabel("control"),
		WithICEServers("stun:stun.l.google.com:19302"),
		WithHTTPClient(client),
		WithHTTPTimeout(5 * time.Second),
		WithOpenTimeout(3 * time.Second),
		WithEventHandler(func(ServerEvent) {}),
	})

	require.NotNil(t, options.Logger)
	require.Len(t, options.Tools, 5)
	require.Equal(t, "consultAPI", options.Tools[4].Name())
	require.Len(t, options.MCPServers, 1)
	require.Equal(t, []string{"text"}, options.Modalities)
	require.Equal(t, "Be brief.", options.Instructions)
	require.Equal(t, "alloy", options.Voice)
	require.True(t, options.AutoRespond)
	require.Equal(t, "http://relay:8813", options.SignalingURL)
	require.Equal(t, "control", options.ChannelLabel)
	require.Equal(t, []string{"stun:stun.l.google.com:19302"}, options.ICEServers)
	require.Same(t, client, options.HTTPClient)
	require.Equal(t, 5*time.Second, options.HTTPTimeout)
	require.Equal(t, 3*time.Second, options.OpenTimeout)
	require.NotNil(t, options.OnEvent)
	require.Nil(t, options.NewTransport)
}

func TestResultRoundTrip(t *testing.T) {
	for _, r := range []Result{
		Success(map[string]any{"html": "<html></html>"}),
		Success("plain"),
		Failure("Button element not found"),
	} {
		encoded, err := EncodeResult(r)
		require.NoError(t, err)

		decoded, err := DecodeResult(encoded)
		require.NoError(t, err)
		require.Equal(t, r, decoded)
	}
}
