// Package mail publishes mail requests to RabbitMQ.  Errors are logged and
// returned so callers can decide to carry on without interrupting the main
// request flow.
package mail

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/sports-complex/internal/config"
    "github.com/iliyamo/sports-complex/internal/queue"
    "github.com/iliyamo/sports-complex/internal/service"
)

// Publisher implements service.Mailer on top of a durable queue.  Each Send
// dials its own connection; mail volume is a handful of messages per
// administrative action.
type Publisher struct {
    url   string
    queue string
    from  string
    now   func() time.Time
}

func NewPublisher(cfg config.MailConfig) *Publisher {
    q := cfg.Queue
    if q == "" {
        q = queue.MailQueueName
    }
    return &Publisher{url: cfg.AMQPURL, queue: q, from: cfg.From, now: func() time.Time { return time.Now().UTC() }}
}

// Event converts a service mail into the wire payload.
func (p *Publisher) Event(m service.Mail) queue.MailRequestedEvent {
    return queue.MailRequestedEvent{
        ID:          uuid.NewString(),
        From:        p.from,
        To:          m.To,
        Subject:     m.Subject,
        Template:    m.Template,
        Data:        m.Data,
        RequestedAt: p.now(),
    }
}

// Send publishes m as a persistent JSON message on the mail queue.
func (p *Publisher) Send(ctx context.Context, m service.Mail) error {
    ev := p.Event(m)
    body, err := json.Marshal(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal mail event failed: %v", err)
        return err
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // idempotent; durable so requests survive broker restarts
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Timestamp:    ev.RequestedAt,
        Type:         ev.Template,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

var _ service.Mailer = (*Publisher)(nil)
