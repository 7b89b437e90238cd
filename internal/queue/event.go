// Package queue defines the notification payload exchanged over RabbitMQ and
// the consumer that delivers it.
package queue

import (
    "time"

    "github.com/iliyamo/festival-registration/internal/mailer"
)

// EmailQueue is the durable queue carrying outbound email.
const EmailQueue = "notifications.email"

// EmailEvent is published for every notification when NOTIFY_MODE=queue.  It
// carries the fully rendered message so the consumer needs no access to the
// stores or templates.
type EmailEvent struct {
    ID        string         `json:"id"`
    Kind      string         `json:"kind"` // e.g. reservation.paid, registration.confirmed
    Message   mailer.Message `json:"message"`
    CreatedAt time.Time      `json:"created_at"`
}
