// Package mcp imports tools from Model Context Protocol servers.
//
// A Client connects to each configured MCP server, lists its tools and wraps
// every one of them as a tool.Tool, so the remote assistant peer can invoke
// them over the control channel like any built-in tool. Invocations are
// forwarded with CallTool and the MCP result is converted into a tool.Result.
package mcp
