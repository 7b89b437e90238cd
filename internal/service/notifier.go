package service

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-registration/internal/mailer"
	"github.com/iliyamo/festival-registration/internal/model"
)

// Notification kinds, also used as the queue event kind.
const (
	KindReservationCreated    = "reservation.created"
	KindReservationPaid       = "reservation.paid"
	KindRegistrationConfirmed = "registration.confirmed"
	KindContactMessage        = "contact.message"
)

// Notifier renders and dispatches the emails that follow a persisted state
// change.  Its methods never return errors: failures are logged and the
// caller's operation stands.
type Notifier struct {
	Mailer   mailer.Mailer
	Dispatch Dispatcher
	Operator string // operator copy recipient; empty disables operator copies
	Event    string
	Currency string
	Log      echo.Logger
}

// Configured reports whether a mail transport exists.  This is what the API
// reports as emailsSent.
func (n *Notifier) Configured() bool { return n.Mailer != nil && n.Mailer.Configured() }

func (n *Notifier) render(tpl string, data map[string]any) (string, bool) {
	data["Event"] = n.Event
	html, err := mailer.Render(tpl, data)
	if err != nil {
		n.Log.Errorf("render %s: %v", tpl, err)
		return "", false
	}
	return html, true
}

func (n *Notifier) send(ctx context.Context, kind string, msgs []mailer.Message) {
	if len(msgs) == 0 {
		return
	}
	if err := n.Dispatch.Dispatch(ctx, kind, msgs...); err != nil {
		n.Log.Warnf("notify %s: %v", kind, err)
	}
}

func (n *Notifier) currency(r model.Reservation) string {
	if r.Currency != "" {
		return r.Currency
	}
	return n.Currency
}

// pair builds the operator copy and the payer/participant copy.
func (n *Notifier) pair(opTpl, opSubject, userTpl, userSubject, userEmail string, data map[string]any) []mailer.Message {
	var msgs []mailer.Message
	if n.Operator != "" {
		if html, ok := n.render(opTpl, data); ok {
			msgs = append(msgs, mailer.Message{To: []string{n.Operator}, ReplyTo: userEmail, Subject: opSubject, HTML: html})
		}
	}
	if userEmail != "" {
		if html, ok := n.render(userTpl, data); ok {
			msgs = append(msgs, mailer.Message{To: []string{userEmail}, Subject: userSubject, HTML: html})
		}
	}
	return msgs
}

// ReservationCreated sends the operator copy and the payment instructions.
func (n *Notifier) ReservationCreated(ctx context.Context, r model.Reservation) {
	data := map[string]any{"Reservation": r, "Currency": n.currency(r)}
	n.send(ctx, KindReservationCreated, n.pair(
		mailer.TplReservationOperator, "New reservation "+r.ID,
		mailer.TplReservationPayer, n.Event+": payment instructions for "+r.ID,
		r.Email, data))
}

// ReservationPaid sends the payment confirmation pair.
func (n *Notifier) ReservationPaid(ctx context.Context, r model.Reservation) {
	data := map[string]any{"Reservation": r, "Currency": n.currency(r)}
	n.send(ctx, KindReservationPaid, n.pair(
		mailer.TplPaymentOperator, "Reservation paid "+r.ID,
		mailer.TplPaymentPayer, n.Event+": payment received",
		r.Email, data))
}

// RegistrationConfirmed sends the operator copy and the participant email
// with the PDF attached when one was rendered.
func (n *Notifier) RegistrationConfirmed(ctx context.Context, reg model.Registration, pdf []byte, filename string) {
	data := map[string]any{"Registration": reg}
	msgs := n.pair(
		mailer.TplRegistrationOperator, "New registration "+reg.RegistrationNumber,
		mailer.TplRegistrationPerson, n.Event+": registration "+reg.RegistrationNumber,
		reg.Email, data)
	if len(pdf) > 0 {
		for i := range msgs {
			msgs[i].Attachments = []mailer.Attachment{{Filename: filename, ContentType: "application/pdf", Data: pdf}}
		}
	}
	n.send(ctx, KindRegistrationConfirmed, msgs)
}

// ContactReceived forwards a contact form message to the operator with the
// visitor as reply-to.
func (n *Notifier) ContactReceived(ctx context.Context, in ContactInput) {
	if n.Operator == "" {
		n.Log.Warnf("contact message from %s dropped: no operator address", in.Email)
		return
	}
	html, ok := n.render(mailer.TplContactOperator, map[string]any{"Contact": in})
	if !ok {
		return
	}
	subject := "Contact: " + in.Name
	if in.Subject != "" {
		subject = "Contact: " + in.Subject
	}
	n.send(ctx, KindContactMessage, []mailer.Message{{
		To: []string{n.Operator}, ReplyTo: in.Email, Subject: subject, HTML: html,
	}})
}
