// Package notify delivers one-shot deferred follow-up messages. Timers live
// in process memory: a scheduled notification fires at least delay after
// scheduling, exactly once, and is neither cancellable nor persisted across
// restarts. Delivery failures are logged and dropped, never propagated.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/logging"
	"github.com/ordermesh/ordermesh/metrics"
)

// Options configures a Scheduler.
type Options struct {
	// SendTimeout bounds the delivery attempt when a timer fires.
	SendTimeout time.Duration
	// Logger receives scheduling and delivery outcomes.
	Logger logging.Logger
	// Metrics counts scheduled follow-ups. Optional.
	Metrics *metrics.Metrics
}

// Scheduler implements core.Notifier over time.AfterFunc.
type Scheduler struct {
	messenger   core.Messenger
	sendTimeout time.Duration
	logger      logging.Logger
	metrics     *metrics.Metrics

	wg sync.WaitGroup
}

// New constructs a Scheduler delivering through the given messenger.
func New(messenger core.Messenger, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		SendTimeout: 10 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scheduler{messenger: messenger, sendTimeout: opts.SendTimeout, logger: opts.Logger, metrics: opts.Metrics}
}

// Schedule arms a one-shot timer delivering text to chatID after delay.
func (s *Scheduler) Schedule(delay time.Duration, chatID, text string) {
	s.logger.Info("follow-up scheduled", "chat_id", chatID, "delay", delay)
	s.metrics.RecordNotification()
	s.wg.Add(1)
	time.AfterFunc(delay, func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
		defer cancel()
		if err := s.messenger.Send(ctx, chatID, core.Message{Text: text}); err != nil {
			s.logger.Warn("follow-up delivery failed", "chat_id", chatID, "error", err)
		}
	})
}

// Wait blocks until all armed timers have fired and delivered. Intended for
// tests and graceful shutdown; new Schedule calls during Wait are racy.
func (s *Scheduler) Wait() { s.wg.Wait() }

var _ core.Notifier = (*Scheduler)(nil)
