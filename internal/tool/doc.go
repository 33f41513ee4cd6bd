// Package tool defines the locally invocable capabilities exposed to the
// remote assistant peer.
//
// A Tool has a unique name, a description, an optional JSON Schema for its
// parameters and an invocation function. The Registry holds tools in
// registration order and produces the descriptors advertised in the session
// configuration handshake. Result is the tagged outcome of an invocation and
// has a stable JSON encoding used for function_call_output events.
//
// Example usage:
//
//	reg := tool.NewRegistry()
//	err := reg.Register(tool.New("changeTextColor", "Change the text color of the webpage",
//	    tool.ObjectSchema(map[string]tool.Param{
//	        "color": {Type: "string", Description: "Hexadecimal value of the color"},
//	    }),
//	    func(ctx context.Context, args map[string]any) (tool.Result, error) {
//	        color, _ := args["color"].(string)
//	        return tool.Success(map[string]any{"color": color}), nil
//	    },
//	))
package tool
