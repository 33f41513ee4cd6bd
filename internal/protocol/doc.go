// Package protocol implements the control-channel protocol between the bridge
// and the remote assistant peer.
//
// The protocol package provides a Controller that translates between raw
// frames on the control channel and typed events. It sends the session
// configuration once the channel opens, parses inbound frames, dispatches
// function-call events to the tool registry and frames each tool result as a
// function_call_output event.
//
// The Controller handles:
//   - Sending the session.update handshake with every registered tool
//   - Dropping malformed frames without disturbing the session
//   - Ignoring event types it does not understand
//   - Running tool invocations concurrently, one goroutine per call
//   - Containing tool errors and panics as Failure results
//   - Refusing every send once stopped, so late results are discarded
//
// Example usage:
//
//	controller := protocol.NewController(log, transport, registry, protocol.Config{
//	    Modalities: []string{"text", "audio"},
//	})
//	controller.Start(ctx)
//
//	// once the transport reports the channel open
//	if err := controller.OnChannelOpen(ctx); err != nil {
//	    return err
//	}
package protocol
