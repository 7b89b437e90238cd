package mailer

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"time"
)

// Template names understood by Render.
const (
	TplReservationOperator  = "reservation_operator"
	TplReservationPayer     = "reservation_payer"
	TplPaymentOperator      = "payment_operator"
	TplPaymentPayer         = "payment_payer"
	TplRegistrationOperator = "registration_operator"
	TplRegistrationPerson   = "registration_participant"
	TplContactOperator      = "contact_operator"
)

var funcs = template.FuncMap{
	"money": Money,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("02 Jan 2006 15:04 MST")
	},
	"deref": func(f *float64) float64 {
		if f == nil {
			return 0
		}
		return *f
	},
}

// Money formats an amount with thousands separators and no decimals when the
// amount is whole, e.g. 150000 -> "150,000".
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

const layout = `{{define "header"}}<div style="font-family:Arial,sans-serif;max-width:600px;margin:auto">
<h2 style="color:#b71c1c">{{.Event}}</h2>{{end}}
{{define "footer"}}<p style="color:#777;font-size:12px">{{.Event}} team</p></div>{{end}}`

const bodies = `
{{define "reservation_operator"}}{{template "header" .}}
<p>New reservation <strong>{{.Reservation.ID}}</strong>.</p>
<table>
<tr><td>Name</td><td>{{.Reservation.Name}}</td></tr>
<tr><td>Email</td><td>{{.Reservation.Email}}</td></tr>
{{if .Reservation.RegistrationNumber}}<tr><td>Registration</td><td>{{.Reservation.RegistrationNumber}}</td></tr>{{end}}
<tr><td>Total</td><td>{{money .Reservation.PricingTotal}} {{.Currency}}</td></tr>
<tr><td>Details</td><td>{{.Reservation.PricingDetails}}</td></tr>
<tr><td>Expires</td><td>{{date .Reservation.ExpiresAt}}</td></tr>
</table>{{template "footer" .}}{{end}}

{{define "reservation_payer"}}{{template "header" .}}
<p>Hello {{.Reservation.Name}},</p>
<p>Your reservation is on hold until <strong>{{date .Reservation.ExpiresAt}}</strong>.</p>
<p>To confirm it, pay <strong>{{money .Reservation.PricingTotal}} {{.Currency}}</strong> using
<strong>{{.Reservation.ID}}</strong> as the account number.</p>
<p>{{.Reservation.PricingDetails}}</p>{{template "footer" .}}{{end}}

{{define "payment_operator"}}{{template "header" .}}
<p>Reservation <strong>{{.Reservation.ID}}</strong> is now paid.</p>
<table>
<tr><td>Name</td><td>{{.Reservation.Name}}</td></tr>
<tr><td>Amount</td><td>{{money (deref .Reservation.AmountPaid)}} {{.Currency}}</td></tr>
<tr><td>Method</td><td>{{.Reservation.PaymentMethod}}</td></tr>
{{if .Reservation.PaymentReference}}<tr><td>Reference</td><td>{{.Reservation.PaymentReference}}</td></tr>{{end}}
{{if .Reservation.PayerMsisdn}}<tr><td>Payer</td><td>{{.Reservation.PayerMsisdn}}</td></tr>{{end}}
</table>{{template "footer" .}}{{end}}

{{define "payment_payer"}}{{template "header" .}}
<p>Hello {{.Reservation.Name}},</p>
<p>We received your payment of <strong>{{money (deref .Reservation.AmountPaid)}} {{.Currency}}</strong>
for reservation <strong>{{.Reservation.ID}}</strong>. See you at the festival!</p>{{template "footer" .}}{{end}}

{{define "registration_operator"}}{{template "header" .}}
<p>New registration <strong>{{.Registration.RegistrationNumber}}</strong>.</p>
<table>
<tr><td>Name</td><td>{{.Registration.FullName}}</td></tr>
<tr><td>Email</td><td>{{.Registration.Email}}</td></tr>
<tr><td>Phone</td><td>{{.Registration.Phone}}</td></tr>
<tr><td>Vehicle</td><td>{{.Registration.VehicleMake}} {{.Registration.VehicleModel}}{{if .Registration.VehicleYear}} ({{.Registration.VehicleYear}}){{end}}</td></tr>
<tr><td>Category</td><td>{{.Registration.VehicleCategory}}</td></tr>
</table>{{template "footer" .}}{{end}}

{{define "registration_participant"}}{{template "header" .}}
<p>Hello {{.Registration.FirstName}},</p>
<p>Your registration number is <strong>{{.Registration.RegistrationNumber}}</strong>.
Your confirmation is attached; bring it to the gate.</p>{{template "footer" .}}{{end}}

{{define "contact_operator"}}{{template "header" .}}
<p>Message from <strong>{{.Contact.Name}}</strong> &lt;{{.Contact.Email}}&gt;</p>
{{if .Contact.Subject}}<p><em>{{.Contact.Subject}}</em></p>{{end}}
<p style="white-space:pre-wrap">{{.Contact.Message}}</p>{{template "footer" .}}{{end}}
`

var templates = template.Must(template.Must(template.New("mail").Funcs(funcs).Parse(layout)).Parse(bodies))

// Render executes the named template with data.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
