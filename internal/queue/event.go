// Package queue defines message payloads exchanged over the message broker
// and the consumer that drains them.
package queue

import "time"

// MailQueueName is the default queue for outbound mail requests.
const MailQueueName = "mail.requested"

// MailRequestedEvent asks the mail worker to deliver one templated message.
// Data never carries a plaintext password.
type MailRequestedEvent struct {
    ID          string            `json:"id"`
    From        string            `json:"from"`
    To          string            `json:"to"`
    Subject     string            `json:"subject"`
    Template    string            `json:"template"`
    Data        map[string]string `json:"data,omitempty"`
    RequestedAt time.Time         `json:"requested_at"`
}
