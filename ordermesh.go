// Package ordermesh provides a high-level façade over the conversation
// engine and its services (session store, resource manager, commerce client,
// fulfillment policy, notifications). Most applications interact with this
// package by:
//  1. Creating a Bot via New() with the commerce backend and collaborators
//  2. Feeding platform updates into HandleCallback / HandleText /
//     HandleLocation / HandlePreCheckout / HandlePayment
//
// The façade delegates dispatching to engine.Engine while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments supply a Redis-backed session store and a
// structured logger.
package ordermesh

import (
	"context"
	"time"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/engine"
	"github.com/ordermesh/ordermesh/flow"
	"github.com/ordermesh/ordermesh/fulfillment"
	"github.com/ordermesh/ordermesh/logging"
	"github.com/ordermesh/ordermesh/metrics"
	"github.com/ordermesh/ordermesh/notify"
	"github.com/ordermesh/ordermesh/resource"
	"github.com/ordermesh/ordermesh/session"
	"github.com/ordermesh/ordermesh/transport"
)

// Options configures the Bot instance.
type Options struct {
	// SessionStore holds conversation state. Defaults to the in-memory
	// implementation; production deployments use session.NewRedisStore.
	SessionStore core.SessionStore

	// Geocoder resolves free-text delivery addresses. Optional when every
	// user shares structured locations.
	Geocoder core.Geocoder

	// Notifier schedules deferred follow-ups. Defaults to the in-process
	// timer scheduler over the messenger.
	Notifier core.Notifier

	// Tiers overrides the delivery fee banding.
	Tiers []fulfillment.Tier

	// Currency is the invoice currency code.
	Currency string

	// PageSize is the product menu window size.
	PageSize int

	// FollowUpDelay is the delay before the post-delivery follow-up message.
	FollowUpDelay time.Duration

	// Metrics records dispatch counters. Optional.
	Metrics *metrics.Metrics

	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Bot is the high-level façade aggregating the dispatcher and its services.
type Bot struct {
	opts    Options
	store   core.SessionStore
	engine  *engine.Engine
	machine *flow.Machine
}

// New creates a Bot over the commerce backend and the platform collaborators.
// Any unset service is initialized with a safe default.
func New(backend core.Commerce, messenger core.Messenger, payments core.Payments, optFns ...func(o *Options)) *Bot {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.New(messenger, func(o *notify.Options) {
			o.Logger = opts.Logger
			o.Metrics = opts.Metrics
		})
	}

	resources := resource.New(backend, opts.SessionStore, func(o *resource.Options) {
		o.Logger = opts.Logger
	})

	machine := flow.NewMachine(flow.Services{
		Backend:       backend,
		Resources:     resources,
		Geocoder:      opts.Geocoder,
		Payments:      payments,
		Messenger:     messenger,
		Notifier:      opts.Notifier,
		Tiers:         opts.Tiers,
		PageSize:      opts.PageSize,
		Currency:      opts.Currency,
		FollowUpDelay: opts.FollowUpDelay,
		Logger:        opts.Logger,
	})

	eng := engine.New(opts.SessionStore, machine, payments, messenger, func(o *engine.Options) {
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	return &Bot{opts: opts, store: opts.SessionStore, engine: eng, machine: machine}
}

// Handle dispatches an already-typed command. The specialized Handle*
// helpers below parse platform updates into commands first.
func (b *Bot) Handle(ctx context.Context, userID string, cmd core.Command) error {
	return b.engine.Handle(ctx, userID, cmd)
}

// HandleCallback dispatches an inline-keyboard callback payload. currentQty
// is the quantity rendered on the in-flight product card keyboard; pass 1
// when not applicable.
func (b *Bot) HandleCallback(ctx context.Context, userID, payload string, currentQty int) error {
	cmd, err := transport.ParseCallback(payload, currentQty)
	if err != nil {
		b.opts.Logger.Warn("unparseable callback dropped", "user_id", userID, "error", err)
		return nil
	}
	return b.engine.Handle(ctx, userID, cmd)
}

// HandleText dispatches a free-text message according to the user's current
// state. Text sent in states that don't expect it is dropped.
func (b *Bot) HandleText(ctx context.Context, userID, text string) error {
	state, err := core.NewUserSession(b.store, userID).State(ctx)
	if err != nil {
		return err
	}
	cmd, err := transport.ParseText(state, text)
	if err != nil {
		b.opts.Logger.Debug("text dropped", "user_id", userID, "state", state.String())
		return nil
	}
	return b.engine.Handle(ctx, userID, cmd)
}

// HandleLocation dispatches a shared structured location.
func (b *Bot) HandleLocation(ctx context.Context, userID string, lon, lat float64) error {
	return b.engine.Handle(ctx, userID, core.LocationInput{Point: &core.Coordinates{Lon: lon, Lat: lat}})
}

// HandlePreCheckout answers a payment pre-authorization query.
func (b *Bot) HandlePreCheckout(ctx context.Context, userID, queryID string) error {
	return b.engine.Handle(ctx, userID, core.PreCheckout{QueryID: queryID})
}

// HandlePayment dispatches a provider-confirmed successful payment. payload
// is the invoice payload echoed back by the provider.
func (b *Bot) HandlePayment(ctx context.Context, userID, payload string) error {
	return b.engine.Handle(ctx, userID, core.PaymentDone{Payload: payload})
}
