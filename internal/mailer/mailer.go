// Package mailer is the outbound email transport.  Messages are plain data
// (so they can travel through the notification queue) and are turned into
// go-mail messages only at send time.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/iliyamo/festival-registration/internal/config"
)

// ErrNotConfigured is returned by Send when no SMTP host is set.
var ErrNotConfigured = errors.New("mail transport not configured")

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data"`
}

// Message is one HTML email.
type Message struct {
	To          []string     `json:"to"`
	ReplyTo     string       `json:"replyTo,omitempty"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Mailer sends messages.  Configured reports whether a transport exists; it
// says nothing about whether delivery will succeed.
type Mailer interface {
	Send(ctx context.Context, msgs ...Message) error
	Configured() bool
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer { return &SMTPMailer{cfg: cfg} }

func (m *SMTPMailer) Configured() bool { return m.cfg.Host != "" }

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

func (m *SMTPMailer) build(in Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return nil, fmt.Errorf("from %q: %w", m.cfg.From, err)
	}
	if err := msg.To(in.To...); err != nil {
		return nil, fmt.Errorf("to %v: %w", in.To, err)
	}
	if in.ReplyTo != "" {
		if err := msg.ReplyTo(in.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to %q: %w", in.ReplyTo, err)
		}
	}
	msg.Subject(in.Subject)
	msg.SetBodyString(mail.TypeTextHTML, in.HTML)
	for _, a := range in.Attachments {
		var opts []mail.FileOption
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if err := msg.AttachReader(a.Filename, bytes.NewReader(a.Data), opts...); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}
	return msg, nil
}

// Send dials once and delivers every message over the same connection.
func (m *SMTPMailer) Send(ctx context.Context, msgs ...Message) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	if len(msgs) == 0 {
		return nil
	}
	out := make([]*mail.Msg, 0, len(msgs))
	for _, in := range msgs {
		msg, err := m.build(in)
		if err != nil {
			return err
		}
		out = append(out, msg)
	}
	c, err := m.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return c.DialAndSendWithContext(ctx, out...)
}
