package mcp

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerType represents the type of MCP server.
type ServerType string

const (
	// ServerTypeStdio launches the server as a subprocess speaking stdio.
	ServerTypeStdio ServerType = "stdio"
	// ServerTypeHTTP uses the streamable HTTP transport.
	ServerTypeHTTP ServerType = "http"
)

// ServerConfig configures one MCP server whose tools are imported.
type ServerConfig struct {
	Name    string            `yaml:"name" json:"name"`
	Type    ServerType        `yaml:"type,omitempty" json:"type,omitempty"`
	Command string            `yaml:"command,omitempty" json:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	URL     string            `yaml:"url,omitempty" json:"url,omitempty"`

	// Prefix is prepended to every imported tool name.
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// GetType returns the server type, defaulting to stdio.
func (c ServerConfig) GetType() ServerType {
	if c.Type == "" {
		return ServerTypeStdio
	}

	return c.Type
}

// Validate checks that the fields required by the server type are present.
func (c ServerConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("mcp server: name is required")
	}

	switch c.GetType() {
	case ServerTypeStdio:
		if c.Command == "" {
			return fmt.Errorf("mcp server %q: command is required", c.Name)
		}
	case ServerTypeHTTP:
		if c.URL == "" {
			return fmt.Errorf("mcp server %q: url is required", c.Name)
		}
	default:
		return fmt.Errorf("mcp server %q: unsupported type %q", c.Name, c.Type)
	}

	return nil
}

// transport builds the client transport for the server.
func (c ServerConfig) transport() (mcp.Transport, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.GetType() == ServerTypeHTTP {
		return &mcp.StreamableClientTransport{Endpoint: c.URL}, nil
	}

	//nolint:gosec // G204: launching the configured MCP server is the point
	cmd := exec.Command(c.Command, c.Args...)
	cmd.Env = os.Environ()

	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	return &mcp.CommandTransport{Command: cmd}, nil
}
