package protocol

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mockTransport implements Transport for testing.
type mockTransport struct {
	mu       sync.Mutex
	messages [][]byte
	msgChan  chan []byte
	errChan  chan error
	sendErr  error
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		messages: make([][]byte, 0, 10),
		msgChan:  make(chan []byte, 10),
		errChan:  make(chan error, 1),
	}
}

func (m *mockTransport) ReadMessages(_ context.Context) (<-chan []byte, <-chan error) {
	return m.msgChan, m.errChan
}

func (m *mockTransport) SendMessage(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}

	m.messages = append(m.messages, data)

	return nil
}

func (m *mockTransport) getMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([][]byte, len(m.messages))
	copy(result, m.messages)

	return result
}

func (m *mockTransport) sendToController(raw string) {
	m.msgChan <- []byte(raw)
}

// decodedMessages returns every sent frame decoded as a generic map.
func (m *mockTransport) decodedMessages(t *testing.T) []map[string]any {
	t.Helper()

	raw := m.getMessages()
	result := make([]map[string]any, 0, len(raw))

	for _, data := range raw {
		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))

		result = append(result, msg)
	}

	return result
}

// waitForMessages waits until at least n frames have been sent.
func (m *mockTransport) waitForMessages(t *testing.T, n int) []map[string]any {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(m.getMessages()) >= n
	}, 2*time.Second, 5*time.Millisecond, "expected %d sent messages", n)

	return m.decodedMessages(t)
}

// outputsByCallID collects function_call_output items keyed by call_id.
func outputsByCallID(t *testing.T, msgs []map[string]any) map[string]string {
	t.Helper()

	result := make(map[string]string, len(msgs))

	for _, msg := range msgs {
		if msg["type"] != EventConversationItemCreate {
			continue
		}

		item, ok := msg["item"].(map[string]any)
		require.True(t, ok, "item should be an object")
		require.Equal(t, ItemFunctionCallOutput, item["type"])

		callID, _ := item["call_id"].(string)
		output, _ := item["output"].(string)

		_, dup := result[callID]
		require.False(t, dup, "duplicate output for call %s", callID)

		result[callID] = output
	}

	return result
}
