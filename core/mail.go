package core

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"net/mail"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

//go:embed templates/email
var emailFS embed.FS

const emailDir = "templates/email/"

var (
	tmplMu    sync.Mutex
	textTmpls = make(map[string]*texttmpl.Template)
	htmlTmpls = make(map[string]*htmltmpl.Template)
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}

	emailContext struct {
		AppName string
		Data    interface{}
	}
)

// Render fills TextContent and HTMLContent from BodyStr or from the message template.
func (m *EmailMessage) Render(appName string) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}

	text, html, err := emailTemplates(m.TemplateName)
	if err != nil {
		return err
	}
	data := emailContext{AppName: appName, Data: m.TemplateData}

	var buff bytes.Buffer
	if m.TextContent == "" {
		if err = text.Execute(&buff, data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
		m.TextContent = buff.String()
		buff.Reset()
	}
	if err = html.Execute(&buff, data); err != nil {
		return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// emailTemplates parses the layout and the named template once, then serves them from the cache.
func emailTemplates(name string) (*texttmpl.Template, *htmltmpl.Template, error) {
	tmplMu.Lock()
	defer tmplMu.Unlock()

	if text, ok := textTmpls[name]; ok {
		return text, htmlTmpls[name], nil
	}
	text, err := texttmpl.ParseFS(emailFS, emailDir+"layout.txt", emailDir+name+".txt")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s.txt", name)
	}
	html, err := htmltmpl.ParseFS(emailFS, emailDir+"layout.gohtml", emailDir+name+".gohtml")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s.gohtml", name)
	}
	text, html = text.Option("missingkey=error"), html.Option("missingkey=error")
	textTmpls[name], htmlTmpls[name] = text, html
	return text, html, nil
}
