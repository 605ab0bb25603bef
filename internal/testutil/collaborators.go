package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ordermesh/ordermesh/core"
)

// SentMessage records one outbound message with its destination.
type SentMessage struct {
	ChatID string
	Msg    core.Message
}

// SentLocation records one outbound location share.
type SentLocation struct {
	ChatID string
	Point  core.Coordinates
}

// FakeMessenger records every outbound send.
type FakeMessenger struct {
	mu        sync.Mutex
	Messages  []SentMessage
	Locations []SentLocation
	// SendErr, when set, is returned by Send.
	SendErr error
}

// Send implements core.Messenger.
func (f *FakeMessenger) Send(ctx context.Context, chatID string, msg core.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Messages = append(f.Messages, SentMessage{ChatID: chatID, Msg: msg})
	return nil
}

// SendLocation implements core.Messenger.
func (f *FakeMessenger) SendLocation(ctx context.Context, chatID string, c core.Coordinates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Locations = append(f.Locations, SentLocation{ChatID: chatID, Point: c})
	return nil
}

// LastTo returns the most recent message sent to chatID, or false.
func (f *FakeMessenger) LastTo(chatID string) (SentMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Messages) - 1; i >= 0; i-- {
		if f.Messages[i].ChatID == chatID {
			return f.Messages[i], true
		}
	}
	return SentMessage{}, false
}

// AllMessages returns a copy of every recorded message.
func (f *FakeMessenger) AllMessages() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.Messages...)
}

var _ core.Messenger = (*FakeMessenger)(nil)

// FakePayments records issued invoices and pre-checkout confirmations.
type FakePayments struct {
	mu            sync.Mutex
	Invoices      []core.Invoice
	Confirmations []string
}

// CreateInvoice implements core.Payments.
func (f *FakePayments) CreateInvoice(ctx context.Context, chatID string, inv core.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Invoices = append(f.Invoices, inv)
	return nil
}

// Confirm implements core.Payments.
func (f *FakePayments) Confirm(ctx context.Context, preCheckoutID string, ok bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Confirmations = append(f.Confirmations, preCheckoutID)
	return nil
}

// LastInvoice returns the most recent invoice, or false.
func (f *FakePayments) LastInvoice() (core.Invoice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Invoices) == 0 {
		return core.Invoice{}, false
	}
	return f.Invoices[len(f.Invoices)-1], true
}

var _ core.Payments = (*FakePayments)(nil)

// FakeGeocoder resolves addresses from a fixed table; anything else is
// unresolvable.
type FakeGeocoder struct {
	Known map[string]core.Coordinates
}

// Resolve implements core.Geocoder.
func (f *FakeGeocoder) Resolve(ctx context.Context, address string) (core.Coordinates, error) {
	if c, ok := f.Known[address]; ok {
		return c, nil
	}
	return core.Coordinates{}, core.ErrUnresolved
}

var _ core.Geocoder = (*FakeGeocoder)(nil)

// ScheduledNote records one deferred notification request.
type ScheduledNote struct {
	Delay  time.Duration
	ChatID string
	Text   string
}

// FakeNotifier records scheduled follow-ups without arming timers.
type FakeNotifier struct {
	mu    sync.Mutex
	Notes []ScheduledNote
}

// Schedule implements core.Notifier.
func (f *FakeNotifier) Schedule(delay time.Duration, chatID, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Notes = append(f.Notes, ScheduledNote{Delay: delay, ChatID: chatID, Text: text})
}

// Scheduled returns a copy of the recorded notifications.
func (f *FakeNotifier) Scheduled() []ScheduledNote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ScheduledNote(nil), f.Notes...)
}

var _ core.Notifier = (*FakeNotifier)(nil)
