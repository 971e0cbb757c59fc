package emailsvc

import (
	"bytes"
	"io"
	"log"
	"net/mail"
	"strings"
	"testing"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/services/logger"
)

func setup() (*core.Config, core.Logger) {
	conf := &core.Config{
		TestMode: true,
		AppName:  "Masomo",
		Email:    core.EmailConfig{DefaultFromName: "Masomo", DefaultFromEmail: "noreply@localhost"},
	}
	return conf, logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

func newMessage(to ...mail.Address) *core.EmailMessage {
	return &core.EmailMessage{
		To:           to,
		Subject:      "Solicitud procesada",
		TemplateName: "request_processed",
		TemplateData: map[string]string{"Name": "Diego", "Username": "dsoto"},
	}
}

func TestConsoleService_SendMessages(t *testing.T) {
	conf, logger := setup()
	svc := NewConsoleServiceMock(conf, logger)

	diego := mail.Address{Name: "Diego", Address: "dsoto@masomo.mx"}
	svc.SendMessages(
		newMessage(diego),
		newMessage(), // no recipients
		&core.EmailMessage{To: []mail.Address{diego}, TemplateName: "lol"},
	)

	sent := svc.Sent()
	if len(sent) != 1 {
		t.Fatalf("Sent() = %d messages; want 1", len(sent))
	}
	if got := sent[0].To[0].Address; got != diego.Address {
		t.Errorf("To = %s; want %s", got, diego.Address)
	}
	if !strings.Contains(sent[0].TextContent, "dsoto") || !strings.Contains(sent[0].HTMLContent, "<strong>dsoto</strong>") {
		t.Errorf("message not rendered: %+v", sent[0])
	}
}

func TestConsoleService_output(t *testing.T) {
	conf, logger := setup()
	buf := new(bytes.Buffer)
	svc := NewConsoleService(conf, log.New(buf, "", 0), logger)
	svc.synchronous = true

	svc.SendMessages(newMessage(mail.Address{Name: "Diego", Address: "dsoto@masomo.mx"}))

	out := buf.String()
	for _, want := range []string{
		"From: \"Masomo\" <noreply@localhost>",
		"Subject: [Masomo] Solicitud procesada",
		"To: \"Diego\" <dsoto@masomo.mx>",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Type: text/html; charset=utf-8",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output = %q; want it to contain %q", out, want)
		}
	}
}

func TestSendgridService_prepare(t *testing.T) {
	conf, logger := setup()
	svc := NewSendgridService(conf, logger).(*sendgridService)

	msg := newMessage(mail.Address{Name: "Diego", Address: "dsoto@masomo.mx"})
	if err := msg.Render(conf.AppName); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	m := svc.prepare(*msg)

	if m.From.Address != "noreply@localhost" {
		t.Errorf("From = %s; want noreply@localhost", m.From.Address)
	}
	if len(m.Personalizations) != 1 || m.Personalizations[0].Subject != "[Masomo] Solicitud procesada" {
		t.Errorf("Personalizations = %+v", m.Personalizations)
	}
	if len(m.Content) != 2 || m.Content[0].Type != "text/plain" || m.Content[1].Type != "text/html" {
		t.Errorf("Content = %+v", m.Content)
	}
}
