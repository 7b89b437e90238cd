package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusCancelled, StatusExpired} {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range []Status{"", "PAID", "refunded", "completed"} {
		assert.False(t, s.Valid(), s)
	}
}

func TestCanTransitionPermissive(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusPaid, false))
	assert.True(t, CanTransition(StatusPaid, StatusCancelled, false))
	assert.True(t, CanTransition(StatusExpired, StatusPending, false))
	assert.True(t, CanTransition(StatusPaid, StatusPaid, false))
	assert.False(t, CanTransition(StatusPending, "bogus", false))
}

func TestCanTransitionStrict(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusPaid, true))
	assert.True(t, CanTransition(StatusPending, StatusCancelled, true))
	assert.True(t, CanTransition(StatusPending, StatusExpired, true))
	assert.False(t, CanTransition(StatusPending, StatusPending, true))
	assert.False(t, CanTransition(StatusPaid, StatusCancelled, true))
	assert.False(t, CanTransition(StatusCancelled, StatusPaid, true))
}

func TestFindReservationPrefersID(t *testing.T) {
	list := []Reservation{
		{ID: "RES-A-0001", RegistrationNumber: "RES-B-0002"},
		{ID: "RES-B-0002"},
		{ID: "RES-C-0003", RegistrationNumber: "AF-2025-XYZ"},
	}
	assert.Equal(t, 1, FindReservation(list, "RES-B-0002"))
	assert.Equal(t, 2, FindReservation(list, "AF-2025-XYZ"))
	assert.Equal(t, -1, FindReservation(list, "af-2025-xyz"))
	assert.Equal(t, -1, FindReservation(list, ""))
}

func TestRegistrationFullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", Registration{FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.Equal(t, "Doe", Registration{LastName: "Doe"}.FullName())
}
