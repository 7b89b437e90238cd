package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-registration/internal/model"
	"github.com/iliyamo/festival-registration/internal/repository"
	"github.com/iliyamo/festival-registration/internal/utils"
)

var (
	ErrMissingFields        = errors.New("missing required fields")
	ErrMissingReference     = errors.New("missing reference")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPaidAt        = errors.New("invalid paidAt")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

// acceptedProviderStatuses are the payment-provider statuses that mark a
// reservation paid.  Compared after lower-casing.
var acceptedProviderStatuses = map[string]bool{"success": true, "paid": true, "completed": true}

const (
	defaultPaymentMethod = "mobile_money"
	manualPaymentMethod  = "manual"
)

// ReservationService implements the reservation lifecycle on top of a
// whole-collection store.  Every mutation is a read-modify-write cycle
// wrapped by Lock; notifications run after the write has completed.
type ReservationService struct {
	Store           repository.ReservationStore
	Lock            Locker
	Notify          *Notifier
	TTL             time.Duration
	DefaultCurrency string
	Strict          bool
	Now             func() time.Time
	Log             echo.Logger
}

func (s *ReservationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// mutate runs one locked read-modify-write cycle.  fn returns the new
// collection and whether it must be written.
func (s *ReservationService) mutate(ctx context.Context, fn func([]model.Reservation) ([]model.Reservation, bool, error)) error {
	unlock, err := s.Lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	list, err := s.Store.ReadAll(ctx)
	if err != nil {
		return err
	}
	list, changed, err := fn(list)
	if err != nil || !changed {
		return err
	}
	return s.Store.WriteAll(ctx, list)
}

// CreateReservationInput is the public reservation request.
type CreateReservationInput struct {
	RegistrationNumber string  `json:"registrationNumber"`
	FirstName          string  `json:"firstName"`
	LastName           string  `json:"lastName"`
	Email              string  `json:"email"`
	PricingTotal       float64 `json:"pricingTotal"`
	PricingDetails     string  `json:"pricingDetails"`
}

// CreateResult is returned to the requester.
type CreateResult struct {
	ReservationID  string    `json:"reservationId"`
	ExpiresAt      time.Time `json:"expiresAt"`
	PricingTotal   float64   `json:"pricingTotal"`
	PricingDetails string    `json:"pricingDetails"`
	EmailsSent     bool      `json:"emailsSent"`
}

func idTaken(list []model.Reservation, id string) bool {
	for i := range list {
		if list[i].ID == id {
			return true
		}
	}
	return false
}

// Create persists a new pending reservation and sends payment instructions.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (CreateResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return CreateResult{}, ErrMissingFields
	}

	var rec model.Reservation
	err := s.mutate(ctx, func(list []model.Reservation) ([]model.Reservation, bool, error) {
		now := s.now()
		id := utils.NewReservationID(now)
		for idTaken(list, id) {
			id = utils.NewReservationID(now)
		}
		rec = model.Reservation{
			ID:                 id,
			RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
			Name:               in.FirstName + " " + in.LastName,
			Email:              in.Email,
			PricingTotal:       in.PricingTotal,
			PricingDetails:     in.PricingDetails,
			Status:             model.StatusPending,
			CreatedAt:          now,
			ExpiresAt:          now.Add(s.TTL),
		}
		return append(list, rec), true, nil
	})
	if err != nil {
		return CreateResult{}, err
	}

	s.Notify.ReservationCreated(ctx, rec)
	return CreateResult{
		ReservationID:  rec.ID,
		ExpiresAt:      rec.ExpiresAt,
		PricingTotal:   rec.PricingTotal,
		PricingDetails: rec.PricingDetails,
		EmailsSent:     s.Notify.Configured(),
	}, nil
}

// List returns the whole collection.
func (s *ReservationService) List(ctx context.Context) ([]model.Reservation, error) {
	return s.Store.ReadAll(ctx)
}

// WebhookPayload is the normalized payment-provider callback.
type WebhookPayload struct {
	Reference     string
	Amount        *float64
	Status        string
	TransactionID string
	Channel       string
	PayerMsisdn   string
	Provider      string
}

// WebhookResult tells the caller whether the reservation was marked paid.
type WebhookResult struct {
	Updated     bool
	Reservation model.Reservation
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ConfirmWebhook applies a provider callback.  The reference matches an id
// first, then a registration number.  Statuses outside the accepted set are
// acknowledged without touching the record.  Repeated calls re-apply the
// mutation and re-send notifications.
func (s *ReservationService) ConfirmWebhook(ctx context.Context, p WebhookPayload) (WebhookResult, error) {
	p.Reference = strings.TrimSpace(p.Reference)
	if p.Reference == "" {
		return WebhookResult{}, ErrMissingReference
	}
	accepted := acceptedProviderStatuses[strings.ToLower(strings.TrimSpace(p.Status))]

	var res WebhookResult
	err := s.mutate(ctx, func(list []model.Reservation) ([]model.Reservation, bool, error) {
		i := model.FindReservation(list, p.Reference)
		if i < 0 {
			return nil, false, ErrReservationNotFound
		}
		r := &list[i]
		res.Reservation = *r
		if !accepted || !model.CanTransition(r.Status, model.StatusPaid, s.Strict) {
			return list, false, nil
		}
		now := s.now()
		r.Status = model.StatusPaid
		r.PaidAt = &now
		r.PaymentMethod = firstNonEmpty(p.Channel, r.PaymentMethod, p.Provider, defaultPaymentMethod)
		if p.TransactionID != "" {
			r.PaymentReference = p.TransactionID
		}
		if p.Amount != nil {
			amt := *p.Amount
			r.AmountPaid = &amt
		}
		if r.Currency == "" {
			r.Currency = s.DefaultCurrency
		}
		if p.PayerMsisdn != "" {
			r.PayerMsisdn = p.PayerMsisdn
		}
		res.Updated = true
		res.Reservation = *r
		return list, true, nil
	})
	if err != nil {
		return WebhookResult{}, err
	}
	if res.Updated {
		s.Notify.ReservationPaid(ctx, res.Reservation)
	} else {
		s.Log.Infof("webhook for %s acknowledged without change (status=%q)", p.Reference, p.Status)
	}
	return res, nil
}

// PatchInput is the manual status update submitted by staff.
type PatchInput struct {
	Status           string   `json:"status"`
	PaymentMethod    string   `json:"paymentMethod"`
	PaymentReference string   `json:"paymentReference"`
	AmountPaid       *float64 `json:"amountPaid"`
	PaidAt           string   `json:"paidAt"`
}

// UpdateStatus applies a manual status change to the reservation with id.
// Only a transition to paid fills the payment fields and notifies.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, in PatchInput) (model.Reservation, error) {
	status := model.Status(in.Status)
	if !status.Valid() {
		return model.Reservation{}, ErrInvalidStatus
	}
	var paidAt *time.Time
	if status == model.StatusPaid && strings.TrimSpace(in.PaidAt) != "" {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(in.PaidAt))
		if err != nil {
			return model.Reservation{}, ErrInvalidPaidAt
		}
		t = t.UTC()
		paidAt = &t
	}

	var out model.Reservation
	err := s.mutate(ctx, func(list []model.Reservation) ([]model.Reservation, bool, error) {
		i := -1
		for j := range list {
			if list[j].ID == id {
				i = j
				break
			}
		}
		if i < 0 {
			return nil, false, ErrReservationNotFound
		}
		r := &list[i]
		if !model.CanTransition(r.Status, status, s.Strict) {
			return nil, false, ErrTransitionNotAllowed
		}
		r.Status = status
		if status == model.StatusPaid {
			r.PaymentMethod = firstNonEmpty(in.PaymentMethod, r.PaymentMethod, manualPaymentMethod)
			r.PaymentReference = firstNonEmpty(in.PaymentReference, r.PaymentReference)
			switch {
			case in.AmountPaid != nil:
				amt := *in.AmountPaid
				r.AmountPaid = &amt
			case r.AmountPaid == nil:
				amt := r.PricingTotal
				r.AmountPaid = &amt
			}
			switch {
			case paidAt != nil:
				r.PaidAt = paidAt
			case r.PaidAt == nil:
				now := s.now()
				r.PaidAt = &now
			}
		}
		out = *r
		return list, true, nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	if status == model.StatusPaid {
		s.Notify.ReservationPaid(ctx, out)
	}
	return out, nil
}

// SweepExpired marks pending reservations whose hold window has passed as
// expired.  It returns the number of records changed; nothing is written
// when none changed.
func (s *ReservationService) SweepExpired(ctx context.Context) (int, error) {
	n := 0
	err := s.mutate(ctx, func(list []model.Reservation) ([]model.Reservation, bool, error) {
		now := s.now()
		for i := range list {
			if list[i].Status == model.StatusPending && !list[i].ExpiresAt.IsZero() && now.After(list[i].ExpiresAt) {
				list[i].Status = model.StatusExpired
				n++
			}
		}
		return list, n > 0, nil
	})
	return n, err
}
