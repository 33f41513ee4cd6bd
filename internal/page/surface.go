package page

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	"github.com/wagiedev/agent-bridge-go/internal/errors"
)

// Surface is the user-facing page the tools read and restyle.
type Surface interface {
	// HTML returns the full serialized markup of the page.
	HTML() string

	// SetBackgroundColor sets the page background color.
	SetBackgroundColor(color string)

	// SetTextColor sets the page text color.
	SetTextColor(color string)

	// StyleButton sets the font size and background color of the first
	// button on the page. Empty values leave the property unchanged.
	// Returns errors.ErrNoButton if the page has no button.
	StyleButton(size, color string) error
}

// Compile-time verification that Document implements Surface.
var _ Surface = (*Document)(nil)

// Document is an in-memory Surface that renders itself as HTML.
type Document struct {
	mu sync.RWMutex

	title  string
	body   template.HTML
	button string

	backgroundColor string
	textColor       string
	buttonFontSize  string
	buttonColor     string
}

// NewDocument creates a document with the given title and body markup.
// If buttonLabel is empty the document has no button.
func NewDocument(title string, body template.HTML, buttonLabel string) *Document {
	return &Document{
		title:  title,
		body:   body,
		button: buttonLabel,
	}
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body{{with .BodyStyle}} style="{{.}}"{{end}}>
{{.Body}}
{{- if .HasButton}}
<button id="toggleWebRTCButton"{{with .ButtonStyle}} style="{{.}}"{{end}}>{{.Button}}</button>
{{- end}}
</body>
</html>`))

type documentView struct {
	Title       string
	Body        template.HTML
	BodyStyle   template.CSS
	HasButton   bool
	Button      string
	ButtonStyle template.CSS
}

// HTML implements Surface.
func (d *Document) HTML() string {
	d.mu.RLock()
	view := documentView{
		Title:       d.title,
		Body:        d.body,
		BodyStyle:   style("background-color", d.backgroundColor, "color", d.textColor),
		HasButton:   d.button != "",
		Button:      d.button,
		ButtonStyle: style("font-size", d.buttonFontSize, "background-color", d.buttonColor),
	}
	d.mu.RUnlock()

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return fmt.Sprintf("<!-- render error: %v -->", err)
	}

	return buf.String()
}

// SetBackgroundColor implements Surface.
func (d *Document) SetBackgroundColor(color string) {
	d.mu.Lock()
	d.backgroundColor = color
	d.mu.Unlock()
}

// SetTextColor implements Surface.
func (d *Document) SetTextColor(color string) {
	d.mu.Lock()
	d.textColor = color
	d.mu.Unlock()
}

// StyleButton implements Surface.
func (d *Document) StyleButton(size, color string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.button == "" {
		return errors.ErrNoButton
	}

	if size != "" {
		d.buttonFontSize = size
	}

	if color != "" {
		d.buttonColor = color
	}

	return nil
}

// Styles returns the current page and button styles.
func (d *Document) Styles() (background, text, buttonSize, buttonColor string) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.backgroundColor, d.textColor, d.buttonFontSize, d.buttonColor
}

// style renders property/value pairs, skipping empty values. Values are
// escaped by the template's CSS context.
func style(pairs ...string) template.CSS {
	var buf bytes.Buffer

	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}

		if buf.Len() > 0 {
			buf.WriteString(" ")
		}

		fmt.Fprintf(&buf, "%s: %s;", pairs[i], template.CSSEscaper(pairs[i+1]))
	}

	return template.CSS(buf.String()) //nolint:gosec // values are escaped above
}
