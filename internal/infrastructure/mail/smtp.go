package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/orgodyssey/odyssey/internal/core/ports"
	"github.com/orgodyssey/odyssey/internal/infrastructure/config"
)

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	sender string
}

func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.UseSSL {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, sender: cfg.Sender}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg ports.Message) error {
	out, err := newMessage(m.sender, msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func newMessage(sender string, msg ports.Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(sender); err != nil {
		return nil, fmt.Errorf("sender %q: %w", sender, err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("recipients: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return out, nil
}
