package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/festival-registration/internal/model"
	"github.com/iliyamo/festival-registration/internal/repository"
)

// racyStore reports that an email is free but rejects the insert, as when
// two registrations for the same address race.
type racyStore struct{ repository.RegistrationStore }

func (racyStore) EmailExists(context.Context, string) (bool, error) { return false, nil }
func (racyStore) Create(context.Context, *model.Registration) error {
	return repository.ErrEmailExists
}

// takenNumberStore rejects the first n inserts as registration number
// collisions and records the numbers it saw.
type takenNumberStore struct {
	repository.RegistrationStore
	collisions int
	seen       []string
}

func (*takenNumberStore) EmailExists(context.Context, string) (bool, error) { return false, nil }
func (s *takenNumberStore) Create(_ context.Context, reg *model.Registration) error {
	s.seen = append(s.seen, reg.RegistrationNumber)
	if len(s.seen) <= s.collisions {
		return repository.ErrDuplicateNumber
	}
	return nil
}

func newRegistrationService(t *testing.T, store repository.RegistrationStore, m *fakeMailer) *RegistrationService {
	t.Helper()
	return &RegistrationService{
		Store:     store,
		Notify:    newNotifier(m),
		EventName: "Auto Festival",
		Now:       func() time.Time { return time.Date(2025, 5, 4, 9, 0, 0, 0, time.UTC) },
		Log:       quietLogger(),
	}
}

func validRegistration() RegistrationInput {
	return RegistrationInput{
		FirstName: "Jane", LastName: "Doe", Email: "Jane@X.com",
		VehicleMake: "Toyota", VehicleModel: "Land Cruiser", VehicleYear: 1984,
		VehicleCategory: "Classic", PlateNumber: "t 123 abc",
	}
}

func TestRegisterSendsPDF(t *testing.T) {
	m := &fakeMailer{configured: true}
	store := repository.NewFileRegistrationStore(t.TempDir())
	svc := newRegistrationService(t, store, m)

	res, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Regexp(t, `^AF-2025-[A-Z0-9]{6}$`, res.RegistrationNumber)
	assert.True(t, res.EmailsSent)

	msgs := m.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"jane@x.com"}, msgs[1].To)
	require.Len(t, msgs[1].Attachments, 1)
	att := msgs[1].Attachments[0]
	assert.Equal(t, "registration-jane-doe.pdf", att.Filename)
	assert.True(t, bytes.HasPrefix(att.Data, []byte("%PDF")))

	ok, err := store.EmailExists(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	m := &fakeMailer{configured: true}
	svc := newRegistrationService(t, repository.NewFileRegistrationStore(t.TempDir()), m)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	sent := len(m.messages())

	in := validRegistration()
	in.Email = "JANE@x.com "
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Len(t, m.messages(), sent)
}

func TestRegisterRaceMapsToAlreadyRegistered(t *testing.T) {
	svc := newRegistrationService(t, racyStore{}, &fakeMailer{configured: true})
	_, err := svc.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistrationPDFNotFoundInFileStore(t *testing.T) {
	svc := newRegistrationService(t, repository.NewFileRegistrationStore(t.TempDir()), &fakeMailer{})
	_, _, err := svc.PDF(context.Background(), "AF-2025-ABCDEF")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegisterRetriesNumberCollision(t *testing.T) {
	store := &takenNumberStore{collisions: 1}
	svc := newRegistrationService(t, store, &fakeMailer{})

	res, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	require.Len(t, store.seen, 2)
	assert.Equal(t, store.seen[1], res.RegistrationNumber)
}

func TestRegisterNumberCollisionIsNotAlreadyRegistered(t *testing.T) {
	store := &takenNumberStore{collisions: numberAttempts}
	svc := newRegistrationService(t, store, &fakeMailer{})

	_, err := svc.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, repository.ErrDuplicateNumber)
	assert.NotErrorIs(t, err, ErrAlreadyRegistered)
	assert.Len(t, store.seen, numberAttempts)
}
