package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/festival-registration/internal/model"
)

func TestJSONFileStoreEnsureCreatesEmptyDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewJSONFileStore(dir)

	require.NoError(t, s.Ensure(context.Background()))

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"reservations":[]}`, string(b))
}

func TestJSONFileStoreEnsureKeepsExisting(t *testing.T) {
	s := NewJSONFileStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, s.WriteAll(ctx, []model.Reservation{{ID: "RES-1-AAAA", Status: model.StatusPending}}))

	require.NoError(t, s.Ensure(ctx))

	list, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestJSONFileStoreReadMissingIsEmpty(t *testing.T) {
	s := NewJSONFileStore(t.TempDir())
	list, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestJSONFileStoreReadMalformed(t *testing.T) {
	s := NewJSONFileStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.ReadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse reservations")
}

func TestJSONFileStoreRoundTrip(t *testing.T) {
	s := NewJSONFileStore(t.TempDir())
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	paid := created.Add(time.Hour)
	amount := 150000.0
	in := []model.Reservation{
		{ID: "RES-A-0001", Name: "Jane Doe", Email: "jane@x.com", PricingTotal: 150000,
			Status: model.StatusPaid, CreatedAt: created, ExpiresAt: created.Add(168 * time.Hour),
			PaidAt: &paid, AmountPaid: &amount, PaymentMethod: "manual"},
		{ID: "RES-A-0002", Status: model.StatusPending, CreatedAt: created, ExpiresAt: created.Add(168 * time.Hour)},
	}
	require.NoError(t, s.WriteAll(ctx, in))

	out, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "manual", out[0].PaymentMethod)
	require.NotNil(t, out[0].AmountPaid)
	assert.Equal(t, 150000.0, *out[0].AmountPaid)
	assert.True(t, paid.Equal(*out[0].PaidAt))
	assert.Nil(t, out[1].PaidAt)
}

func TestJSONFileStoreLastWriterWins(t *testing.T) {
	s := NewJSONFileStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, s.WriteAll(ctx, []model.Reservation{{ID: "A", Status: model.StatusPending}, {ID: "B", Status: model.StatusPending}}))

	// Two read-modify-write cycles that overlap: both read before either writes.
	first, err := s.ReadAll(ctx)
	require.NoError(t, err)
	second, err := s.ReadAll(ctx)
	require.NoError(t, err)

	first[0].Status = model.StatusPaid
	require.NoError(t, s.WriteAll(ctx, first))
	second[1].Status = model.StatusCancelled
	require.NoError(t, s.WriteAll(ctx, second))

	final, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, final[0].Status, "update from the first cycle is lost")
	assert.Equal(t, model.StatusCancelled, final[1].Status)
}
