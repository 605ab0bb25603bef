package core

import (
	"context"
	"time"
)

// Button is one inline keyboard button. Cmd carries the typed command the
// button triggers; the transport binding serializes it to its own callback
// payload format (see transport.FormatCallback).
type Button struct {
	Text string
	Cmd  Command
}

// Message is an outbound chat message with an optional inline keyboard laid
// out as button rows. How rows render is the transport binding's concern.
type Message struct {
	Text    string
	Buttons [][]Button
}

// Invoice is a payment request. Amount is in minor currency units.
type Invoice struct {
	Title       string
	Description string
	Payload     string
	Currency    string
	Amount      int
}

// Messenger is the outbound boundary to the chat transport. Implementations
// must be safe for concurrent use across users.
type Messenger interface {
	Send(ctx context.Context, chatID string, msg Message) error
	SendLocation(ctx context.Context, chatID string, c Coordinates) error
}

// Payments is the payment-provider boundary. CreateInvoice issues the payment
// request to the user's chat; Confirm answers a pre-authorization query.
// Successful payment arrives back through the transport as a PaymentDone
// command carrying the invoice payload.
type Payments interface {
	CreateInvoice(ctx context.Context, chatID string, inv Invoice) error
	Confirm(ctx context.Context, preCheckoutID string, ok bool) error
}

// Geocoder resolves free-text addresses to coordinates. Unresolvable input
// yields an error with Validation kind (see ErrUnresolved).
type Geocoder interface {
	Resolve(ctx context.Context, address string) (Coordinates, error)
}

// Notifier schedules one-shot deferred messages. Fire-and-forget: deliveries
// are in-memory timers, not persisted, not cancellable.
type Notifier interface {
	Schedule(delay time.Duration, chatID string, text string)
}
