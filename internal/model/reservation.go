package model

import "time"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Valid reports whether s is one of the four known literals.  Comparison is
// exact; "PAID" is not a valid status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether no transition out of s is implemented.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusExpired
}

// CanTransition decides whether a reservation in state from may be moved to
// state to.  In permissive mode any valid target is accepted from any state,
// including re-applying the current state or leaving a terminal state.  In
// strict mode only pending records may move, and only to a terminal state.
func CanTransition(from, to Status, strict bool) bool {
	if !to.Valid() {
		return false
	}
	if !strict {
		return true
	}
	return from == StatusPending && to.Terminal()
}

// Reservation is a time-boxed hold on festival selections pending payment.
// The JSON layout is the on-disk format of the reservations document and the
// API response format.
//
// Fields:
//  ID                 – RES-<base36>-<suffix>; also the payment account number.
//  RegistrationNumber – optional link to a vehicle registration (not validated).
//  ExpiresAt          – CreatedAt + reservation TTL, fixed at creation.
//  PaidAt..Currency   – only populated on transition to paid.
type Reservation struct {
	ID                 string     `json:"id"`
	RegistrationNumber string     `json:"registrationNumber,omitempty"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	PricingTotal       float64    `json:"pricingTotal"`
	PricingDetails     string     `json:"pricingDetails"`
	Status             Status     `json:"status"`
	CreatedAt          time.Time  `json:"createdAt"`
	ExpiresAt          time.Time  `json:"expiresAt"`
	PaidAt             *time.Time `json:"paidAt,omitempty"`
	PaymentMethod      string     `json:"paymentMethod,omitempty"`
	PaymentReference   string     `json:"paymentReference,omitempty"`
	AmountPaid         *float64   `json:"amountPaid,omitempty"`
	Currency           string     `json:"currency,omitempty"`
	PayerMsisdn        string     `json:"payerMsisdn,omitempty"`
}

// FindReservation returns the index of the first reservation whose id equals
// ref, falling back to the first whose registration number equals ref.  Both
// comparisons are exact.  It returns -1 when nothing matches.
func FindReservation(list []Reservation, ref string) int {
	for i := range list {
		if list[i].ID == ref {
			return i
		}
	}
	for i := range list {
		if list[i].RegistrationNumber != "" && list[i].RegistrationNumber == ref {
			return i
		}
	}
	return -1
}
