// Package notify delivers revealed spin results to an external webhook.
package notify

import "context"

// Lead identifies the customer in a result message.
type Lead struct {
	Name     string `json:"name"`
	WhatsApp string `json:"whatsapp"`
}

// Campaign identifies the campaign in a result message.
type Campaign struct {
	Slug         string `json:"slug"`
	ValidityDays int    `json:"validity_days"`
}

// Prize identifies the won prize in a result message.
type Prize struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is the body posted to the result webhook.
type Message struct {
	Lead     Lead     `json:"lead"`
	Campaign Campaign `json:"campaign"`
	Prize    Prize    `json:"prize"`
	Template string   `json:"template"`
	Message  string   `json:"message"`
}

// Notifier sends a result message. Delivery is best effort.
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// Noop drops every message.
type Noop struct{}

func (Noop) Send(context.Context, *Message) error { return nil }
