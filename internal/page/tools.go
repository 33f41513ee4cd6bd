package page

import (
	"context"
	stderrors "errors"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/agent-bridge-go/internal/errors"
	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

// Tool names exposed to the remote peer.
const (
	GetPageHTMLName           = "getPageHTML"
	ChangeBackgroundColorName = "changeBackgroundColor"
	ChangeTextColorName       = "changeTextColor"
	ChangeButtonStyleName     = "changeButtonStyle"
)

// Tools returns every page tool bound to surface, in registration order.
func Tools(surface Surface) []tool.Tool {
	return []tool.Tool{
		ChangeBackgroundColor(surface),
		ChangeTextColor(surface),
		GetPageHTML(surface),
		ChangeButtonStyle(surface),
	}
}

// GetPageHTML returns a tool reporting the full markup of the page.
func GetPageHTML(surface Surface) tool.Tool {
	return tool.New(
		GetPageHTMLName,
		"Get the HTML content of the current page",
		nil,
		func(_ context.Context, _ map[string]any) (tool.Result, error) {
			return tool.Success(map[string]any{"html": surface.HTML()}), nil
		},
	)
}

// ChangeBackgroundColor returns a tool setting the page background color.
func ChangeBackgroundColor(surface Surface) tool.Tool {
	return tool.New(
		ChangeBackgroundColorName,
		"Change the background color of the webpage",
		colorSchema(),
		func(_ context.Context, args map[string]any) (tool.Result, error) {
			color := stringArg(args, "color")
			surface.SetBackgroundColor(color)

			return tool.Success(map[string]any{"color": color}), nil
		},
	)
}

// ChangeTextColor returns a tool setting the page text color.
func ChangeTextColor(surface Surface) tool.Tool {
	return tool.New(
		ChangeTextColorName,
		"Change the text color of the webpage",
		colorSchema(),
		func(_ context.Context, args map[string]any) (tool.Result, error) {
			color := stringArg(args, "color")
			surface.SetTextColor(color)

			return tool.Success(map[string]any{"color": color}), nil
		},
	)
}

// ChangeButtonStyle returns a tool restyling the first button on the page.
// A page without a button yields a Failure result.
func ChangeButtonStyle(surface Surface) tool.Tool {
	return tool.New(
		ChangeButtonStyleName,
		"Change the size and color of the button",
		tool.ObjectSchema(map[string]tool.Param{
			"size": {
				Type:        "string",
				Description: `Font size of the button (e.g., "16px" or "1em")`,
			},
			"color": {
				Type:        "string",
				Description: `Background color of the button (e.g., "#ff0000" or "red")`,
			},
		}),
		func(_ context.Context, args map[string]any) (tool.Result, error) {
			size := stringArg(args, "size")
			color := stringArg(args, "color")

			if err := surface.StyleButton(size, color); err != nil {
				if stderrors.Is(err, errors.ErrNoButton) {
					return tool.Failure(err.Error()), nil
				}

				return tool.Result{}, err
			}

			payload := make(map[string]any, 2)
			if size != "" {
				payload["size"] = size
			}

			if color != "" {
				payload["color"] = color
			}

			return tool.Success(payload), nil
		},
	)
}

func colorSchema() *jsonschema.Schema {
	return tool.ObjectSchema(map[string]tool.Param{
		"color": {Type: "string", Description: "Hexadecimal value of the color"},
	}, "color")
}

// stringArg returns args[key] if it is a string.
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)

	return s
}
