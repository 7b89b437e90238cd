package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/labstack/echo/v4"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/festival-registration/internal/mailer"
)

// sendTimeout bounds one SMTP delivery attempt.
const sendTimeout = 30 * time.Second

// StartEmailConsumer connects to RabbitMQ, declares the notifications.email
// queue (durable) and delivers each event through m.  It runs a reconnect
// loop with exponential backoff and returns only when ctx is cancelled.
// Messages that fail to decode or deliver are logged and rejected without
// requeue so a poison message cannot stall the queue.
func StartEmailConsumer(ctx context.Context, url string, m mailer.Mailer, log echo.Logger) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warnf("email-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, m, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warnf("email-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, m mailer.Mailer, log echo.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // SMTP is slow; keep few unacked deliveries in flight.
    if err := ch.Qos(5, 0, false); err != nil {
        log.Warnf("email-consumer: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(EmailQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(EmailQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := HandleMessage(ctx, d.Body, m); err != nil {
                log.Errorf("email-consumer: handle message %s failed: %v", d.MessageId, err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one EmailEvent and sends it.
func HandleMessage(ctx context.Context, body []byte, m mailer.Mailer) error {
    var ev EmailEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if len(ev.Message.To) == 0 {
        return errors.New("event has no recipients")
    }
    sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
    defer cancel()
    if err := m.Send(sendCtx, ev.Message); err != nil {
        return fmt.Errorf("send %s: %w", ev.Kind, err)
    }
    return nil
}
