package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/festival-registration/internal/model"
	"github.com/iliyamo/festival-registration/internal/repository"
)

type listOnlyRegistrations struct {
	repository.RegistrationStore
	regs []model.Registration
}

func (l listOnlyRegistrations) List(context.Context) ([]model.Registration, error) { return l.regs, nil }

func TestAnalyticsSummary(t *testing.T) {
	paid := 120.0
	store := &memStore{list: []model.Reservation{
		{ID: "1", Status: model.StatusPending, PricingTotal: 100},
		{ID: "2", Status: model.StatusPending, PricingTotal: 50},
		{ID: "3", Status: model.StatusPaid, PricingTotal: 150, AmountPaid: &paid},
		{ID: "4", Status: model.StatusPaid, PricingTotal: 80},
		{ID: "5", Status: model.StatusCancelled, PricingTotal: 999},
	}}
	d1 := time.Date(2025, 5, 1, 23, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 5, 3, 1, 0, 0, 0, time.UTC)
	regs := listOnlyRegistrations{regs: []model.Registration{
		{VehicleCategory: "classic", CreatedAt: d2},
		{VehicleCategory: "classic", CreatedAt: d1},
		{VehicleCategory: "4x4", CreatedAt: d1},
		{Email: "only@email.com"},
	}}
	svc := &AnalyticsService{Reservations: store, Registrations: regs}

	a, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, a.ReservationsTotal)
	assert.Equal(t, 2, a.ReservationsByStatus[model.StatusPending])
	assert.Equal(t, 0, a.ReservationsByStatus[model.StatusExpired])
	assert.Equal(t, 150.0, a.PendingValue)
	assert.Equal(t, 200.0, a.AmountCollected)
	assert.Equal(t, 4, a.RegistrationsTotal)
	assert.Equal(t, map[string]int{"classic": 2, "4x4": 1, "unspecified": 1}, a.RegistrationsByCategory)
	assert.Equal(t, []DayCount{{Day: "2025-05-01", Count: 2}, {Day: "2025-05-03", Count: 1}}, a.RegistrationsByDay)
}
