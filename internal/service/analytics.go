package service

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/festival-registration/internal/model"
	"github.com/iliyamo/festival-registration/internal/repository"
)

// DayCount is one bucket of the registrations-per-day series.
type DayCount struct {
	Day   string `json:"day"` // YYYY-MM-DD, UTC
	Count int    `json:"count"`
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	ReservationsTotal       int                  `json:"reservationsTotal"`
	ReservationsByStatus    map[model.Status]int `json:"reservationsByStatus"`
	PendingValue            float64              `json:"pendingValue"`
	AmountCollected         float64              `json:"amountCollected"`
	RegistrationsTotal      int                  `json:"registrationsTotal"`
	RegistrationsByCategory map[string]int       `json:"registrationsByCategory"`
	RegistrationsByDay      []DayCount           `json:"registrationsByDay"`
	GeneratedAt             time.Time            `json:"generatedAt"`
}

// AnalyticsService aggregates both stores.
type AnalyticsService struct {
	Reservations  repository.ReservationStore
	Registrations repository.RegistrationStore
	Now           func() time.Time
}

// Summary computes the dashboard figures.  Paid reservations without a
// recorded amount count at their quoted total.
func (s *AnalyticsService) Summary(ctx context.Context) (Analytics, error) {
	out := Analytics{
		ReservationsByStatus: map[model.Status]int{
			model.StatusPending: 0, model.StatusPaid: 0, model.StatusCancelled: 0, model.StatusExpired: 0,
		},
		RegistrationsByCategory: map[string]int{},
		RegistrationsByDay:      []DayCount{},
	}
	if s.Now != nil {
		out.GeneratedAt = s.Now().UTC()
	} else {
		out.GeneratedAt = time.Now().UTC()
	}

	list, err := s.Reservations.ReadAll(ctx)
	if err != nil {
		return Analytics{}, err
	}
	out.ReservationsTotal = len(list)
	for _, r := range list {
		out.ReservationsByStatus[r.Status]++
		switch r.Status {
		case model.StatusPending:
			out.PendingValue += r.PricingTotal
		case model.StatusPaid:
			if r.AmountPaid != nil {
				out.AmountCollected += *r.AmountPaid
			} else {
				out.AmountCollected += r.PricingTotal
			}
		}
	}

	regs, err := s.Registrations.List(ctx)
	if err != nil {
		return Analytics{}, err
	}
	out.RegistrationsTotal = len(regs)
	days := map[string]int{}
	for _, reg := range regs {
		cat := reg.VehicleCategory
		if cat == "" {
			cat = "unspecified"
		}
		out.RegistrationsByCategory[cat]++
		if !reg.CreatedAt.IsZero() {
			days[reg.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}
	for d, c := range days {
		out.RegistrationsByDay = append(out.RegistrationsByDay, DayCount{Day: d, Count: c})
	}
	sort.Slice(out.RegistrationsByDay, func(i, j int) bool {
		return out.RegistrationsByDay[i].Day < out.RegistrationsByDay[j].Day
	})
	return out, nil
}
