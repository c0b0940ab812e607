package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/sports-complex/internal/config"
)

// MailConsumer drains the mail queue.  This repository has no SMTP relay:
// each request is appended as one line to <LogDir>/mail.log, which is what
// operators and tests read.
type MailConsumer struct {
    URL    string
    Queue  string
    LogDir string
}

// Run connects, declares the queue (durable) and consumes until ctx is
// cancelled.  Broker outages are retried with capped exponential backoff;
// a message that cannot be handled is rejected without requeue so the
// consumer keeps going.
func (c MailConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Printf("mail-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("mail-consumer: consume loop ended: %v; reconnecting", err)
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

func (c MailConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("mail-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
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
            if err := c.handleMessage(d.Body); err != nil {
                log.Printf("mail-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// redacted lists data keys whose values are credentials and never logged.
var redacted = map[string]bool{"token": true, "link": true}

func (c MailConsumer) handleMessage(body []byte) error {
    var ev MailRequestedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.To == "" || ev.Template == "" {
        return errors.New("mail request without recipient or template")
    }
    dir := c.LogDir
    if dir == "" {
        dir = "logs"
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(dir, "mail.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev MailRequestedEvent) string {
    keys := make([]string, 0, len(ev.Data))
    for k := range ev.Data {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    fields := make([]string, 0, len(keys))
    for _, k := range keys {
        v := ev.Data[k]
        if redacted[k] {
            v = "<redacted>"
        }
        fields = append(fields, fmt.Sprintf("%s=%q", k, v))
    }
    return fmt.Sprintf("[%s] Mail requested | id=%s | template=%s | to=%s | subject=%q | data={%s}\n",
        ev.RequestedAt.UTC().Format(time.RFC3339), ev.ID, ev.Template, ev.To, ev.Subject, strings.Join(fields, " "))
}

// StartMailConsumer runs a MailConsumer configured from cfg until ctx ends.
func StartMailConsumer(ctx context.Context, cfg config.MailConfig) error {
    return MailConsumer{URL: cfg.AMQPURL, Queue: cfg.Queue, LogDir: cfg.LogDir}.Run(ctx)
}
