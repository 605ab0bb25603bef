package flow

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/fulfillment"
	"github.com/ordermesh/ordermesh/logging"
	"github.com/ordermesh/ordermesh/resource"
)

// Defaults applied by NewMachine when the corresponding Services field is
// unset.
const (
	DefaultPageSize      = 10
	DefaultFollowUpDelay = 5 * time.Second
	DefaultCurrency      = "RUB"
)

// Services bundles the collaborators the handlers act on. All fields except
// Backend, Resources and Messenger are optional; NewMachine fills defaults.
type Services struct {
	Backend   core.Commerce
	Resources *resource.Manager
	Geocoder  core.Geocoder
	Payments  core.Payments
	Messenger core.Messenger
	Notifier  core.Notifier

	// Tiers is the ordered delivery fee banding. Defaults to
	// fulfillment.DefaultTiers.
	Tiers []fulfillment.Tier
	// PageSize is the product menu window size.
	PageSize int
	// Currency is the invoice currency code.
	Currency string
	// FollowUpDelay is how long after a delivery order the follow-up
	// message is scheduled.
	FollowUpDelay time.Duration

	Logger logging.Logger
}

// Context carries one dispatch through a handler. Constructed per command by
// the dispatcher; not reused across dispatches.
type Context struct {
	Context context.Context
	UserID  string
	State   core.State
	Session core.UserSession
	Logger  logging.Logger

	// InvoicePayload is the opaque payload the payment provider echoed back
	// on a successful payment. Set by the payment handler for the
	// fulfilling hook; empty otherwise.
	InvoicePayload string
}

// Machine holds the per-state handlers over a shared service set. Safe for
// concurrent use across users.
type Machine struct {
	svc      Services
	validate *validator.Validate
}

// NewMachine constructs the state machine, applying defaults for unset
// optional services.
func NewMachine(svc Services) *Machine {
	if svc.Tiers == nil {
		svc.Tiers = fulfillment.DefaultTiers
	}
	if svc.PageSize <= 0 {
		svc.PageSize = DefaultPageSize
	}
	if svc.Currency == "" {
		svc.Currency = DefaultCurrency
	}
	if svc.FollowUpDelay <= 0 {
		svc.FollowUpDelay = DefaultFollowUpDelay
	}
	if svc.Logger == nil {
		svc.Logger = logging.NoOpLogger{}
	}
	return &Machine{svc: svc, validate: validator.New()}
}

// Handle runs the handler for the context's state. The dispatcher has already
// verified the command is legal in this state.
func (m *Machine) Handle(rc *Context, cmd core.Command) (core.State, error) {
	switch rc.State {
	case core.StateBrowsing:
		return m.handleBrowsing(rc, cmd)
	case core.StateItemDetail:
		return m.handleItemDetail(rc, cmd)
	case core.StateCartView:
		return m.handleCartView(rc, cmd)
	case core.StateAwaitingEmail:
		return m.handleEmail(rc, cmd)
	case core.StateAwaitingLocation:
		return m.handleLocation(rc, cmd)
	case core.StateDeliveryChoice:
		return m.handleDeliveryChoice(rc, cmd)
	case core.StateAwaitingPayment:
		return m.handlePayment(rc, cmd)
	default:
		return rc.State, nil
	}
}

// OnEnter runs the entry hook for states with entry side effects. Returns the
// state the conversation settles in; states without hooks settle immediately.
func (m *Machine) OnEnter(rc *Context, st core.State) (core.State, error) {
	if st == core.StateFulfilling {
		return m.enterFulfilling(rc)
	}
	return st, nil
}

func (m *Machine) send(rc *Context, msg core.Message) error {
	return m.svc.Messenger.Send(rc.Context, rc.UserID, msg)
}

func (m *Machine) sendText(rc *Context, text string) error {
	return m.send(rc, core.Message{Text: text})
}
