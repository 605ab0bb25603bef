package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/flow"
	"github.com/ordermesh/ordermesh/logging"
	"github.com/ordermesh/ordermesh/metrics"
)

// maxEnterHops bounds entry-hook chaining so a buggy hook cycle cannot spin
// a dispatch forever.
const maxEnterHops = 4

// retryText is sent when a backend failure leaves the conversation where it
// was; the user's next tap retries naturally.
const retryText = "Something went wrong on our side, please try again."

// Options configures an Engine.
type Options struct {
	// Logger receives dispatch outcomes. Defaults to NoOpLogger.
	Logger logging.Logger
	// Metrics records dispatch counters. Optional.
	Metrics *metrics.Metrics
}

// Engine routes commands to state handlers and owns state persistence.
type Engine struct {
	store     core.SessionStore
	machine   *flow.Machine
	payments  core.Payments
	messenger core.Messenger
	logger    logging.Logger
	metrics   *metrics.Metrics
}

// New constructs an Engine over the shared session store and state machine.
func New(store core.SessionStore, machine *flow.Machine, payments core.Payments, messenger core.Messenger, optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		store:     store,
		machine:   machine,
		payments:  payments,
		messenger: messenger,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// Handle dispatches one command for one user. Illegal commands for the
// current state are dropped (stale keyboards are normal, not errors); backend
// failures keep the state unchanged and tell the user to retry.
func (e *Engine) Handle(ctx context.Context, userID string, cmd core.Command) error {
	start := time.Now()

	// Pre-checkout is answered affirmatively regardless of conversation
	// state; availability checks are the provider's job.
	if pc, ok := cmd.(core.PreCheckout); ok {
		err := e.payments.Confirm(ctx, pc.QueryID, true)
		e.record("", cmd, outcome(err), start)
		return err
	}

	dispatchID := core.NewID()

	sess := core.NewUserSession(e.store, userID)
	state, err := sess.State(ctx)
	if err != nil {
		return fmt.Errorf("load state for %s: %w", userID, err)
	}

	if !core.Allows(state, cmd.Kind()) {
		e.logger.Warn("command rejected", "user_id", userID, "state", state.String(), "command", cmd.Kind().String())
		e.record(state.String(), cmd, "rejected", start)
		return nil
	}

	rc := &flow.Context{
		Context: ctx,
		UserID:  userID,
		State:   state,
		Session: sess,
		Logger:  e.logger,
	}

	next, handleErr := e.machine.Handle(rc, cmd)
	if handleErr == nil {
		next, handleErr = e.settle(rc, next)
	}

	if handleErr != nil {
		kind := core.KindOf(handleErr)
		if e.metrics != nil {
			e.metrics.RecordBackendError(kind.String())
		}
		e.record(state.String(), cmd, "error", start)
		e.logger.Error("dispatch failed", "user_id", userID, "dispatch_id", dispatchID, "state", state.String(),
			"command", cmd.Kind().String(), "kind", kind.String(), "error", handleErr)
		if serr := e.messenger.Send(ctx, userID, core.Message{Text: retryText}); serr != nil {
			e.logger.Warn("retry notice undeliverable", "user_id", userID, "error", serr)
		}
		return handleErr
	}

	if next != state {
		if err := sess.SetState(ctx, next); err != nil {
			return fmt.Errorf("persist state for %s: %w", userID, err)
		}
	}
	e.record(state.String(), cmd, "ok", start)
	e.logger.Info("dispatch completed", "user_id", userID, "dispatch_id", dispatchID, "state", state.String(),
		"command", cmd.Kind().String(), "next_state", next.String(), "duration", time.Since(start))
	return nil
}

// settle runs entry hooks until the state stops moving.
func (e *Engine) settle(rc *flow.Context, next core.State) (core.State, error) {
	for hop := 0; hop < maxEnterHops; hop++ {
		settled, err := e.machine.OnEnter(rc, next)
		if err != nil {
			return next, err
		}
		if settled == next {
			return next, nil
		}
		next = settled
	}
	return next, fmt.Errorf("entry hooks did not settle after %d hops", maxEnterHops)
}

func (e *Engine) record(state string, cmd core.Command, outcome string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordCommand(state, cmd.Kind().String(), outcome, time.Since(start))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
