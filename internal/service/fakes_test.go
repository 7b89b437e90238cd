package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/festival-registration/internal/mailer"
	"github.com/iliyamo/festival-registration/internal/model"
	"github.com/iliyamo/festival-registration/internal/queue"
)

func quietLogger() echo.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

// memStore is an in-memory ReservationStore that counts accesses.
type memStore struct {
	mu      sync.Mutex
	list    []model.Reservation
	reads   int
	writes  int
	readErr error
}

func (m *memStore) Ensure(context.Context) error { return nil }

func (m *memStore) ReadAll(context.Context) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([]model.Reservation, len(m.list))
	copy(out, m.list)
	return out, nil
}

func (m *memStore) WriteAll(_ context.Context, list []model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.list = append([]model.Reservation(nil), list...)
	return nil
}

func (m *memStore) snapshot() []model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Reservation(nil), m.list...)
}

// fakeMailer records messages.
type fakeMailer struct {
	mu         sync.Mutex
	configured bool
	err        error
	sent       []mailer.Message
}

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) Send(_ context.Context, msgs ...mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msgs...)
	return nil
}

func (f *fakeMailer) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

// fakePublisher records queue events.
type fakePublisher struct {
	events []queue.EmailEvent
	err    error
}

func (f *fakePublisher) PublishEmail(_ context.Context, ev queue.EmailEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

var errSMTPDown = errors.New("smtp down")

func newNotifier(m *fakeMailer) *Notifier {
	return &Notifier{
		Mailer:   m,
		Dispatch: &InlineDispatcher{Mailer: m, Timeout: time.Second},
		Operator: "ops@festival.test",
		Event:    "Auto Festival",
		Currency: "TZS",
		Log:      quietLogger(),
	}
}
