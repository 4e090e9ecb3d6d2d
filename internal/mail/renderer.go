package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// Template names.
const (
	TemplatePasswordReset = "password_reset"
)

// Renderer executes embedded templates named <name>_subject.txt, <name>.html and <name>.txt.
type Renderer struct{}

// NewRenderer returns a renderer over the embedded templates.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render builds a message for to from the named template and data.
func (r *Renderer) Render(name, to string, data interface{}) (Message, error) {
	subject, err := r.renderText(name+"_subject.txt", data)
	if err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	html, err := r.renderHTML(name+".html", data)
	if err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	text, err := r.renderText(name+".txt", data)
	if err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{To: to, Subject: strings.TrimSpace(subject), HTML: html, Text: text}, nil
}

func (r *Renderer) renderHTML(file string, data interface{}) (string, error) {
	t, err := htmltemplate.ParseFS(templateFS, "templates/"+file)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) renderText(file string, data interface{}) (string, error) {
	t, err := texttemplate.ParseFS(templateFS, "templates/"+file)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
