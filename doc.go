// Package agentbridge connects a local tool set to a remote voice/text
// assistant over a WebRTC session.
//
// The bridge negotiates a peer connection through a signaling relay, opens a
// control data channel and declares its tools to the remote peer. The peer
// then invokes tools by name over the channel; the bridge runs them
// concurrently and sends each result back tagged with the call id.
//
// # Basic Usage
//
//	doc := agentbridge.NewDocument("Assistant", "<h1>Hello</h1>", "Start")
//
//	bridge, err := agentbridge.New(
//	    agentbridge.WithLogger(slog.Default()),
//	    agentbridge.WithTools(agentbridge.DefaultTools(doc, agentbridge.ConsultConfig{
//	        Token: os.Getenv("CONSULTANT_TOKEN"),
//	    })...),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bridge.Close()
//
//	if err := bridge.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Tools
//
// A tool is anything implementing Tool. NewTool wraps a plain function:
//
//	greet := agentbridge.NewTool("greet", "Greet someone",
//	    agentbridge.ObjectSchema(map[string]agentbridge.Param{
//	        "name": {Type: "string", Description: "Who to greet"},
//	    }, "name"),
//	    func(ctx context.Context, args map[string]any) (agentbridge.Result, error) {
//	        return agentbridge.Success("Hello, " + args["name"].(string)), nil
//	    },
//	)
//
// Arguments are validated against the schema before the handler runs. A
// returned error or a panic becomes a Failure result sent to the peer; it
// never ends the session. Tools exposed by MCP servers can be registered with
// WithMCPServers.
//
// # Session Lifecycle
//
// Start is idempotent while a session is connecting or open, and Stop is a
// no-op while idle. Stop closes the session even if tools are still running;
// their results are discarded. A transport failure ends the session, which
// returns to StateIdle and reports the cause through LastError.
package agentbridge
