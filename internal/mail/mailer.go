// Package mail delivers confirmation emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/chertoha/contacthub/internal/auth"
	"github.com/chertoha/contacthub/internal/config"
)

//go:embed templates/*.html
var templates embed.FS

// Mailer sends an email confirmation message. Callers treat it as
// fire-and-forget: delivery failures are logged, not surfaced to the user.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, username string) error
}

// SMTPMailer implements Mailer on a plain SMTP server. It issues the
// confirmation token itself so the link and the token lifetime stay in one
// place.
type SMTPMailer struct {
	tokens   *auth.EmailTokenService
	tmpl     *template.Template
	server   string
	port     int
	username string
	password string
	from     string
	fromName string
	baseURL  string
}

func NewSMTPMailer(cfg *config.Config, tokens *auth.EmailTokenService) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &SMTPMailer{
		tokens:   tokens,
		tmpl:     tmpl,
		server:   cfg.MailServer,
		port:     cfg.MailPort,
		username: cfg.MailUsername,
		password: cfg.MailPassword,
		from:     cfg.MailFrom,
		fromName: cfg.MailFromName,
		baseURL:  cfg.BaseURL,
	}, nil
}

// SendConfirmation issues a confirmation token for email and delivers the
// verification message.
func (m *SMTPMailer) SendConfirmation(ctx context.Context, email, username string) error {
	token, err := m.tokens.Issue(email)
	if err != nil {
		return fmt.Errorf("issue email token: %w", err)
	}

	body, err := m.renderBody(username, token)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject("Confirm your email")
	msg.SetBodyString(mail.TypeTextHTML, body)

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.server, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) renderBody(username, token string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Host     string
		Username string
		Token    string
	}{
		Host:     m.baseURL,
		Username: username,
		Token:    token,
	}
	if err := m.tmpl.ExecuteTemplate(&buf, "verify_email.html", data); err != nil {
		return "", fmt.Errorf("render mail body: %w", err)
	}
	return buf.String(), nil
}
