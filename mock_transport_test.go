package agentbridge_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	agentbridge "github.com/wagiedev/agent-bridge-go"
)

// mockTransport implements agentbridge.Transport for testing.
type mockTransport struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool

	opened   chan struct{}
	openOnce sync.Once
	msgChan  chan []byte
	errChan  chan error
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		opened:  make(chan struct{}),
		msgChan: make(chan []byte, 10),
		errChan: make(chan error, 1),
	}
}

func (m *mockTransport) Start(_ context.Context) error { return nil }

func (m *mockTransport) Opened() <-chan struct{} { return m.opened }

func (m *mockTransport) ReadMessages(_ context.Context) (<-chan []byte, <-chan error) {
	return m.msgChan, m.errChan
}

func (m *mockTransport) SendMessage(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return agentbridge.ErrTransportClosed
	}

	m.sent = append(m.sent, data)

	return nil
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func (m *mockTransport) open() {
	m.openOnce.Do(func() { close(m.opened) })
}

func (m *mockTransport) receive(raw string) {
	m.msgChan <- []byte(raw)
}

// waitForFrames waits until at least n frames were sent and decodes them.
func (m *mockTransport) waitForFrames(t *testing.T, n int) []map[string]any {
	t.Helper()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()

		return len(m.sent) >= n
	}, 2*time.Second, 5*time.Millisecond, "expected %d frames", n)

	m.mu.Lock()
	defer m.mu.Unlock()

	frames := make([]map[string]any, 0, len(m.sent))

	for _, data := range m.sent {
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))

		frames = append(frames, frame)
	}

	return frames
}

// mockFactory returns a factory that hands out mock transports.
func mockFactory() (agentbridge.TransportFactory, func() *mockTransport) {
	var (
		mu     sync.Mutex
		latest *mockTransport
	)

	factory := func(_ *slog.Logger) (agentbridge.Transport, error) {
		m := newMockTransport()

		mu.Lock()
		latest = m
		mu.Unlock()

		return m, nil
	}

	current := func() *mockTransport {
		mu.Lock()
		defer mu.Unlock()

		return latest
	}

	return factory, current
}

// outputOf decodes the tool result carried by a conversation.item.create frame.
func outputOf(t *testing.T, frame map[string]any) (string, agentbridge.Result) {
	t.Helper()

	require.Equal(t, "conversation.item.create", frame["type"])

	item, ok := frame["item"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "function_call_output", item["type"])

	output, ok := item["output"].(string)
	require.True(t, ok)

	result, err := agentbridge.DecodeResult(output)
	require.NoError(t, err)

	callID, _ := item["call_id"].(string)

	return callID, result
}
