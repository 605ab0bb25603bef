package core

import "github.com/google/uuid"

// CommandKind enumerates the typed user actions the conversation understands.
// Commands are parsed exactly once at the transport boundary; handlers never
// see raw callback payload strings.
type CommandKind int

const (
	// CommandShowMenu requests the paginated product menu (also "back").
	CommandShowMenu CommandKind = iota
	// CommandShowPage requests another window of the product menu.
	CommandShowPage
	// CommandSelectItem opens a product detail card.
	CommandSelectItem
	// CommandAdjustQuantity changes the ephemeral quantity on a product card.
	CommandAdjustQuantity
	// CommandAddToCart adds the selected product with the held quantity.
	CommandAddToCart
	// CommandViewCart renders the cart contents.
	CommandViewCart
	// CommandRemoveItem removes a line item from the cart.
	CommandRemoveItem
	// CommandCheckout starts checkout by asking for an email address.
	CommandCheckout
	// CommandEmailInput carries free-text email input.
	CommandEmailInput
	// CommandLocationInput carries a structured point or free-text address.
	CommandLocationInput
	// CommandChooseDelivery selects delivery at the offered tier fee.
	CommandChooseDelivery
	// CommandChoosePickup selects self-pickup.
	CommandChoosePickup
	// CommandPreCheckout is the payment provider's pre-authorization query.
	CommandPreCheckout
	// CommandPaymentDone is the provider-confirmed successful payment.
	CommandPaymentDone
)

// String returns the string representation of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CommandShowMenu:
		return "show_menu"
	case CommandShowPage:
		return "show_page"
	case CommandSelectItem:
		return "select_item"
	case CommandAdjustQuantity:
		return "adjust_quantity"
	case CommandAddToCart:
		return "add_to_cart"
	case CommandViewCart:
		return "view_cart"
	case CommandRemoveItem:
		return "remove_item"
	case CommandCheckout:
		return "checkout"
	case CommandEmailInput:
		return "email_input"
	case CommandLocationInput:
		return "location_input"
	case CommandChooseDelivery:
		return "choose_delivery"
	case CommandChoosePickup:
		return "choose_pickup"
	case CommandPreCheckout:
		return "pre_checkout"
	case CommandPaymentDone:
		return "payment_done"
	default:
		return "unknown"
	}
}

// Command is the closed set of typed inbound actions. Each variant is a small
// value struct; handlers type-switch on the concrete variant after the
// dispatcher has already guarded on Kind.
type Command interface {
	Kind() CommandKind
}

// ShowMenu requests the first page of the product menu.
type ShowMenu struct{}

// Kind implements Command.
func (ShowMenu) Kind() CommandKind { return CommandShowMenu }

// ShowPage requests the half-open product window [From, To).
type ShowPage struct {
	From int
	To   int
}

// Kind implements Command.
func (ShowPage) Kind() CommandKind { return CommandShowPage }

// SelectItem opens the detail card for a product.
type SelectItem struct {
	ProductID string
}

// Kind implements Command.
func (SelectItem) Kind() CommandKind { return CommandSelectItem }

// AdjustQuantity changes the quantity held on the in-flight product card.
// Current is the quantity currently rendered; Delta is +1 or -1. The quantity
// is ephemeral UI state carried by the transport, never stored in the session.
type AdjustQuantity struct {
	ProductID string
	Current   int
	Delta     int
}

// Kind implements Command.
func (AdjustQuantity) Kind() CommandKind { return CommandAdjustQuantity }

// AddToCart adds Quantity units of a product to the user's cart.
type AddToCart struct {
	ProductID string
	Quantity  int
}

// Kind implements Command.
func (AddToCart) Kind() CommandKind { return CommandAddToCart }

// ViewCart renders the current cart contents.
type ViewCart struct{}

// Kind implements Command.
func (ViewCart) Kind() CommandKind { return CommandViewCart }

// RemoveItem deletes a cart line item by its backend item id.
type RemoveItem struct {
	ItemID string
}

// Kind implements Command.
func (RemoveItem) Kind() CommandKind { return CommandRemoveItem }

// Checkout begins the checkout sequence.
type Checkout struct{}

// Kind implements Command.
func (Checkout) Kind() CommandKind { return CommandCheckout }

// EmailInput carries the raw text the user submitted as their email.
type EmailInput struct {
	Text string
}

// Kind implements Command.
func (EmailInput) Kind() CommandKind { return CommandEmailInput }

// LocationInput carries either a structured point (Point non-nil) or free
// text to be resolved by the geocoder.
type LocationInput struct {
	Text  string
	Point *Coordinates
}

// Kind implements Command.
func (LocationInput) Kind() CommandKind { return CommandLocationInput }

// ChooseDelivery accepts the delivery offer at the quoted tier fee.
type ChooseDelivery struct {
	Fee int
}

// Kind implements Command.
func (ChooseDelivery) Kind() CommandKind { return CommandChooseDelivery }

// ChoosePickup declines delivery in favor of self-pickup.
type ChoosePickup struct{}

// Kind implements Command.
func (ChoosePickup) Kind() CommandKind { return CommandChoosePickup }

// PreCheckout is the provider's pre-authorization query. It is answered
// affirmatively regardless of conversation state; fraud and availability
// checks are the provider's responsibility.
type PreCheckout struct {
	QueryID string
}

// Kind implements Command.
func (PreCheckout) Kind() CommandKind { return CommandPreCheckout }

// PaymentDone is the provider-confirmed payment. Payload is the opaque value
// attached to the invoice (the cart id).
type PaymentDone struct {
	Payload string
}

// Kind implements Command.
func (PaymentDone) Kind() CommandKind { return CommandPaymentDone }

// NewID generates a unique identifier for dispatches and derived resources.
func NewID() string { return uuid.NewString() }
