package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

// Client connects to MCP servers and exposes their tools as tool.Tool values.
type Client struct {
	log  *slog.Logger
	impl *mcp.Client

	mu       sync.Mutex
	sessions []*serverSession
}

// serverSession is one connected MCP server.
type serverSession struct {
	name    string
	session *mcp.ClientSession
	tools   int
}

// NewClient creates a client that identifies itself with name and version.
func NewClient(log *slog.Logger, name, version string) *Client {
	return &Client{
		log:  log.With("component", "mcp_client"),
		impl: mcp.NewClient(&mcp.Implementation{Name: name, Version: version}, nil),
	}
}

// Connect starts the configured server and imports its tools.
func (c *Client) Connect(ctx context.Context, cfg ServerConfig) ([]tool.Tool, error) {
	transport, err := cfg.transport()
	if err != nil {
		return nil, err
	}

	return c.ConnectTransport(ctx, cfg.Name, transport, cfg.Prefix)
}

// ConnectTransport connects over an existing transport and imports the tools
// the server lists. Tool names are prefixed with prefix.
func (c *Client) ConnectTransport(
	ctx context.Context,
	name string,
	transport mcp.Transport,
	prefix string,
) ([]tool.Tool, error) {
	c.log.Debug("Connecting to MCP server", "server", name)

	session, err := c.impl.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect mcp server %q: %w", name, err)
	}

	listed, err := listTools(ctx, session)
	if err != nil {
		_ = session.Close()

		return nil, fmt.Errorf("list tools of mcp server %q: %w", name, err)
	}

	tools := make([]tool.Tool, 0, len(listed))

	for _, t := range listed {
		schema, err := convertSchema(t.InputSchema)
		if err != nil {
			c.log.Warn("Skipping MCP tool with unusable schema", "server", name, "tool", t.Name, "error", err)

			continue
		}

		tools = append(tools, &remoteTool{
			server:      name,
			remoteName:  t.Name,
			name:        prefix + t.Name,
			description: t.Description,
			schema:      schema,
			session:     session,
		})
	}

	c.mu.Lock()
	c.sessions = append(c.sessions, &serverSession{name: name, session: session, tools: len(tools)})
	c.mu.Unlock()

	c.log.Info("Imported MCP tools", "server", name, "tools", len(tools))

	return tools, nil
}

// Status reports every connected server.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{MCPServers: make([]ServerStatus, 0, len(c.sessions))}
	for _, s := range c.sessions {
		status.MCPServers = append(status.MCPServers, ServerStatus{
			Name:   s.name,
			Status: "connected",
			Tools:  s.tools,
		})
	}

	return status
}

// Close disconnects from every server.
func (c *Client) Close() error {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = nil
	c.mu.Unlock()

	var errs []error

	for _, s := range sessions {
		if err := s.session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mcp server %q: %w", s.name, err))
		}
	}

	return stderrors.Join(errs...)
}

// listTools pages through the server's tool list.
func listTools(ctx context.Context, session *mcp.ClientSession) ([]*mcp.Tool, error) {
	var (
		tools  []*mcp.Tool
		cursor string
	)

	for {
		res, err := session.ListTools(ctx, &mcp.ListToolsParams{Cursor: cursor})
		if err != nil {
			return nil, err
		}

		tools = append(tools, res.Tools...)

		if res.NextCursor == "" {
			return tools, nil
		}

		cursor = res.NextCursor
	}
}

// convertSchema turns the schema received from the server into a
// jsonschema.Schema. A nil or empty schema means no parameters.
func convertSchema(raw any) (*jsonschema.Schema, error) {
	if raw == nil {
		return nil, nil
	}

	if s, ok := raw.(*jsonschema.Schema); ok {
		return s, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("unmarshal input schema: %w", err)
	}

	// $schema and $id would make the resolver look for remote documents.
	schema.Schema = ""
	schema.ID = ""

	return &schema, nil
}

// Compile-time verification that remoteTool implements tool.Tool.
var _ tool.Tool = (*remoteTool)(nil)

// remoteTool forwards invocations to a tool on an MCP server.
type remoteTool struct {
	server      string
	remoteName  string
	name        string
	description string
	schema      *jsonschema.Schema
	session     *mcp.ClientSession
}

func (t *remoteTool) Name() string                   { return t.name }
func (t *remoteTool) Description() string            { return t.description }
func (t *remoteTool) Parameters() *jsonschema.Schema { return t.schema }

// Invoke calls the tool on the server. Protocol failures are returned as
// errors; tool-level errors reported by the server become Failure results.
func (t *remoteTool) Invoke(ctx context.Context, args map[string]any) (tool.Result, error) {
	res, err := t.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      t.remoteName,
		Arguments: args,
	})
	if err != nil {
		return tool.Result{}, fmt.Errorf("call %s on mcp server %q: %w", t.remoteName, t.server, err)
	}

	return convertCallToolResult(res), nil
}

// convertCallToolResult converts an MCP CallToolResult into a tool.Result.
//
// Structured content is preferred. Otherwise a single text block becomes a
// string payload and anything else becomes a list of content objects.
func convertCallToolResult(res *mcp.CallToolResult) tool.Result {
	if res == nil {
		return tool.Success(nil)
	}

	if res.IsError {
		return tool.Failure(joinText(res.Content))
	}

	if res.StructuredContent != nil {
		return tool.Success(res.StructuredContent)
	}

	if len(res.Content) == 1 {
		if text, ok := res.Content[0].(*mcp.TextContent); ok {
			return tool.Success(text.Text)
		}
	}

	content := make([]map[string]any, 0, len(res.Content))
	for _, c := range res.Content {
		switch v := c.(type) {
		case *mcp.TextContent:
			content = append(content, map[string]any{
				"type": "text",
				"text": v.Text,
			})
		case *mcp.ImageContent:
			content = append(content, map[string]any{
				"type":     "image",
				"data":     v.Data,
				"mimeType": v.MIMEType,
			})
		case *mcp.AudioContent:
			content = append(content, map[string]any{
				"type":     "audio",
				"data":     v.Data,
				"mimeType": v.MIMEType,
			})
		case *mcp.ResourceLink:
			content = append(content, map[string]any{
				"type": "resource_link",
				"uri":  v.URI,
				"name": v.Name,
			})
		case *mcp.EmbeddedResource:
			if v.Resource != nil {
				content = append(content, map[string]any{
					"type": "resource",
					"resource": map[string]any{
						"uri":      v.Resource.URI,
						"mimeType": v.Resource.MIMEType,
						"text":     v.Resource.Text,
					},
				})
			}
		}
	}

	return tool.Success(content)
}

// joinText concatenates the text blocks of an MCP result.
func joinText(content []mcp.Content) string {
	parts := make([]string, 0, len(content))

	for _, c := range content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}

	return strings.Join(parts, "\n")
}
