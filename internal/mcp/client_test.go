package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer runs an in-memory MCP server with a few test tools and returns
// the client side of the connection.
func startServer(t *testing.T) mcp.Transport {
	t.Helper()

	server := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "1.0.0"}, nil)

	server.AddTool(&mcp.Tool{
		Name:        "echo",
		Description: "Echo the message back",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"message": {Type: "string"},
			},
			Required: []string{"message"},
		},
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Message string `json:"message"`
		}

		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: args.Message}},
		}, nil
	})

	server.AddTool(&mcp.Tool{
		Name:        "fail",
		Description: "Always fails",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "out of cheese"}},
		}, nil
	})

	clientT, serverT := mcp.NewInMemoryTransports()

	ss, err := server.Connect(t.Context(), serverT, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = ss.Close() })

	return clientT
}

func findTool(t *testing.T, tools []tool.Tool, name string) tool.Tool {
	t.Helper()

	for _, tl := range tools {
		if tl.Name() == name {
			return tl
		}
	}

	require.Failf(t, "tool not found", "no tool named %s", name)

	return nil
}

func TestClient_ImportsTools(t *testing.T) {
	client := NewClient(discardLogger(), "agent-bridge", "test")
	t.Cleanup(func() { _ = client.Close() })

	tools, err := client.ConnectTransport(t.Context(), "test", startServer(t), "docs_")
	require.NoError(t, err)
	require.Len(t, tools, 2)

	echo := findTool(t, tools, "docs_echo")
	require.Equal(t, "Echo the message back", echo.Description())
	require.NotNil(t, echo.Parameters())
	require.Equal(t, "object", echo.Parameters().Type)
	require.Contains(t, echo.Parameters().Properties, "message")

	status := client.Status()
	require.Len(t, status.MCPServers, 1)
	require.Equal(t, ServerStatus{Name: "test", Status: "connected", Tools: 2}, status.MCPServers[0])
}

func TestClient_ImportedToolsRegister(t *testing.T) {
	client := NewClient(discardLogger(), "agent-bridge", "test")
	t.Cleanup(func() { _ = client.Close() })

	tools, err := client.ConnectTransport(t.Context(), "test", startServer(t), "")
	require.NoError(t, err)

	registry := tool.NewRegistry(tools...)
	require.NoError(t, registry.Validate("echo", map[string]any{"message": "hi"}))
	require.Error(t, registry.Validate("echo", map[string]any{}))
}

func TestRemoteTool_Invoke(t *testing.T) {
	client := NewClient(discardLogger(), "agent-bridge", "test")
	t.Cleanup(func() { _ = client.Close() })

	tools, err := client.ConnectTransport(t.Context(), "test", startServer(t), "")
	require.NoError(t, err)

	res, err := findTool(t, tools, "echo").Invoke(t.Context(), map[string]any{"message": "hello"})
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, "hello", res.Payload)
}

func TestRemoteTool_ErrorResultBecomesFailure(t *testing.T) {
	client := NewClient(discardLogger(), "agent-bridge", "test")
	t.Cleanup(func() { _ = client.Close() })

	tools, err := client.ConnectTransport(t.Context(), "test", startServer(t), "")
	require.NoError(t, err)

	res, err := findTool(t, tools, "fail").Invoke(t.Context(), map[string]any{})
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Equal(t, "out of cheese", res.Message)
}

func TestConvertCallToolResult(t *testing.T) {
	tests := []struct {
		name string
		in   *mcp.CallToolResult
		want tool.Result
	}{
		{
			name: "nil result",
			in:   nil,
			want: tool.Success(nil),
		},
		{
			name: "structured content wins",
			in: &mcp.CallToolResult{
				StructuredContent: map[string]any{"n": 1},
				Content:           []mcp.Content{&mcp.TextContent{Text: "ignored"}},
			},
			want: tool.Success(map[string]any{"n": 1}),
		},
		{
			name: "multiple blocks",
			in: &mcp.CallToolResult{
				Content: []mcp.Content{
					&mcp.TextContent{Text: "a"},
					&mcp.ImageContent{Data: []byte("png"), MIMEType: "image/png"},
				},
			},
			want: tool.Success([]map[string]any{
				{"type": "text", "text": "a"},
				{"type": "image", "data": []byte("png"), "mimeType": "image/png"},
			}),
		},
		{
			name: "error joins text",
			in: &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: "a"}, &mcp.TextContent{Text: "b"}},
			},
			want: tool.Failure("a\nb"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, convertCallToolResult(tt.in))
		})
	}
}

func TestServerConfig_Validate(t *testing.T) {
	require.NoError(t, ServerConfig{Name: "fs", Command: "mcp-fs"}.Validate())
	require.NoError(t, ServerConfig{Name: "web", Type: ServerTypeHTTP, URL: "http://localhost:9000/mcp"}.Validate())

	err := ServerConfig{Name: "fs"}.Validate()
	require.ErrorContains(t, err, "command is required")

	err = ServerConfig{Name: "web", Type: ServerTypeHTTP}.Validate()
	require.ErrorContains(t, err, "url is required")

	err = ServerConfig{Name: "x", Type: "sse", URL: "http://x"}.Validate()
	require.ErrorContains(t, err, "unsupported type")

	require.Error(t, ServerConfig{Command: "mcp-fs"}.Validate())
}

func TestConvertSchema_StripsRemoteReferences(t *testing.T) {
	schema, err := convertSchema(map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
	})
	require.NoError(t, err)
	require.Empty(t, schema.Schema)
	require.Equal(t, "object", schema.Type)

	schema, err = convertSchema(nil)
	require.NoError(t, err)
	require.Nil(t, schema)
}
