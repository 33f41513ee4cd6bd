package page

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/agent-bridge-go/internal/errors"
	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

func newTestDocument() *Document {
	return NewDocument("Assistant", "<h1>Hello</h1>", "Start")
}

func invoke(t *testing.T, tl tool.Tool, args map[string]any) tool.Result {
	t.Helper()

	res, err := tl.Invoke(t.Context(), args)
	require.NoError(t, err)

	return res
}

func TestDocument_HTML(t *testing.T) {
	doc := newTestDocument()

	html := doc.HTML()
	require.Contains(t, html, "<!DOCTYPE html>")
	require.Contains(t, html, "<title>Assistant</title>")
	require.Contains(t, html, "<h1>Hello</h1>")
	require.Contains(t, html, `<button id="toggleWebRTCButton">Start</button>`)
	require.NotContains(t, html, "style=")
}

func TestDocument_EscapesStyleValues(t *testing.T) {
	doc := newTestDocument()
	doc.SetBackgroundColor(`red;"><script>`)

	html := doc.HTML()
	require.NotContains(t, html, "<script>")
}

func TestTools_Order(t *testing.T) {
	names := make([]string, 0, 4)
	for _, tl := range Tools(newTestDocument()) {
		names = append(names, tl.Name())
	}

	require.Equal(t, []string{
		"changeBackgroundColor",
		"changeTextColor",
		"getPageHTML",
		"changeButtonStyle",
	}, names)
}

func TestGetPageHTML(t *testing.T) {
	doc := newTestDocument()
	tl := GetPageHTML(doc)

	require.Nil(t, tl.Parameters())

	res := invoke(t, tl, map[string]any{})
	require.True(t, res.OK)
	require.Equal(t, map[string]any{"html": doc.HTML()}, res.Payload)
}

func TestChangeBackgroundColor(t *testing.T) {
	doc := newTestDocument()

	res := invoke(t, ChangeBackgroundColor(doc), map[string]any{"color": "#ff0000"})
	require.Equal(t, tool.Success(map[string]any{"color": "#ff0000"}), res)

	background, _, _, _ := doc.Styles()
	require.Equal(t, "#ff0000", background)
	require.Contains(t, doc.HTML(), `<body style="background-color: #ff0000;">`)
}

func TestChangeTextColor(t *testing.T) {
	doc := newTestDocument()

	res := invoke(t, ChangeTextColor(doc), map[string]any{"color": "#00ff00"})
	require.True(t, res.OK)

	_, text, _, _ := doc.Styles()
	require.Equal(t, "#00ff00", text)
}

func TestColorToolsRequireColor(t *testing.T) {
	registry := tool.NewRegistry(Tools(newTestDocument())...)

	require.Error(t, registry.Validate(ChangeBackgroundColorName, map[string]any{}))
	require.Error(t, registry.Validate(ChangeTextColorName, map[string]any{"color": 3}))
	require.NoError(t, registry.Validate(ChangeTextColorName, map[string]any{"color": "#000000"}))
	require.NoError(t, registry.Validate(ChangeButtonStyleName, map[string]any{}))
}

func TestChangeButtonStyle(t *testing.T) {
	doc := newTestDocument()

	res := invoke(t, ChangeButtonStyle(doc), map[string]any{"size": "16px", "color": "red"})
	require.Equal(t, tool.Success(map[string]any{"size": "16px", "color": "red"}), res)

	res = invoke(t, ChangeButtonStyle(doc), map[string]any{"size": "2em"})
	require.Equal(t, tool.Success(map[string]any{"size": "2em"}), res)

	_, _, size, color := doc.Styles()
	require.Equal(t, "2em", size)
	require.Equal(t, "red", color)
	require.Contains(t, doc.HTML(), `style="font-size: 2em; background-color: red;"`)
}

func TestChangeButtonStyle_NoButton(t *testing.T) {
	doc := NewDocument("Empty", "", "")

	res := invoke(t, ChangeButtonStyle(doc), map[string]any{"size": "16px"})
	require.Equal(t, tool.Failure("Button element not found"), res)
	require.ErrorIs(t, doc.StyleButton("1em", ""), errors.ErrNoButton)
}
