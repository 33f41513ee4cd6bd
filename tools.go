package agentbridge

import (
	"github.com/wagiedev/agent-bridge-go/internal/consult"
	"github.com/wagiedev/agent-bridge-go/internal/page"
)

// DefaultTools returns the built-in tool set: the page tools bound to surface
// followed by consultAPI.
func DefaultTools(surface Surface, consultant ConsultConfig) []Tool {
	tools := page.Tools(surface)

	return append(tools, consult.NewClient(consultant).Tool())
}

// PageTools returns only the page tools bound to surface.
func PageTools(surface Surface) []Tool {
	return page.Tools(surface)
}

// ConsultTool returns the consultAPI tool.
func ConsultTool(consultant ConsultConfig) Tool {
	return consult.NewClient(consultant).Tool()
}
