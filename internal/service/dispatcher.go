package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-registration/internal/mailer"
	"github.com/iliyamo/festival-registration/internal/queue"
)

// Dispatcher hands rendered messages to whatever delivers them.  A returned
// error is informational only: callers log it and never fail the operation
// that triggered the notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind string, msgs ...mailer.Message) error
}

// InlineDispatcher sends through the mailer within the calling request.
// Each message gets its own timeout and is detached from request
// cancellation, so a client disconnecting after the write has been
// persisted does not abort delivery.
type InlineDispatcher struct {
	Mailer  mailer.Mailer
	Timeout time.Duration
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, kind string, msgs ...mailer.Message) error {
	var errs []error
	for _, m := range msgs {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.Timeout)
		if err := d.Mailer.Send(sendCtx, m); err != nil {
			errs = append(errs, fmt.Errorf("%s to %s: %w", kind, strings.Join(m.To, ","), err))
		}
		cancel()
	}
	return errors.Join(errs...)
}

// EmailPublisher is satisfied by *Publisher.
type EmailPublisher interface {
	PublishEmail(ctx context.Context, ev queue.EmailEvent) error
}

// QueueDispatcher publishes every message as an EmailEvent; the queue
// consumer performs the actual SMTP delivery.
type QueueDispatcher struct {
	Publisher EmailPublisher
	Now       func() time.Time
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, kind string, msgs ...mailer.Message) error {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	var errs []error
	for _, m := range msgs {
		ev := queue.EmailEvent{ID: uuid.NewString(), Kind: kind, Message: m, CreatedAt: now().UTC()}
		if err := d.Publisher.PublishEmail(context.WithoutCancel(ctx), ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DropDispatcher discards messages.  It is used when no mail transport is
// configured.
type DropDispatcher struct {
	Log echo.Logger
}

func (d *DropDispatcher) Dispatch(ctx context.Context, kind string, msgs ...mailer.Message) error {
	d.Log.Debugf("mail not configured; dropped %d %s message(s)", len(msgs), kind)
	return nil
}

// NewDispatcher picks the dispatcher for mode ("inline" or "queue").
func NewDispatcher(mode string, m mailer.Mailer, timeout time.Duration, pub EmailPublisher, log echo.Logger) Dispatcher {
	if !m.Configured() {
		return &DropDispatcher{Log: log}
	}
	if mode == "queue" && pub != nil {
		return &QueueDispatcher{Publisher: pub}
	}
	return &InlineDispatcher{Mailer: m, Timeout: timeout}
}
