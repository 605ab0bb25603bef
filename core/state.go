package core

// State is the closed enumeration of conversation states. Exactly one state
// is associated with a session at any time; the transition table below is the
// single source of truth for which commands a state accepts.
type State int

const (
	// StateBrowsing is the initial state: the user is looking at the menu.
	StateBrowsing State = iota
	// StateItemDetail shows a single product with a quantity selector.
	StateItemDetail
	// StateCartView shows the cart with per-line removal and checkout.
	StateCartView
	// StateAwaitingEmail waits for a syntactically valid email address.
	StateAwaitingEmail
	// StateAwaitingLocation waits for coordinates or a resolvable address.
	StateAwaitingLocation
	// StateDeliveryChoice offers delivery at the quoted tier fee or pickup.
	StateDeliveryChoice
	// StateAwaitingPayment waits for the provider-confirmed payment.
	StateAwaitingPayment
	// StateFulfilling finalizes the order: cart release, notifications,
	// deferred follow-up. Terminal per order; re-enters StateBrowsing.
	StateFulfilling
)

// String returns the stable string representation used for session storage.
func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateItemDetail:
		return "item_detail"
	case StateCartView:
		return "cart_view"
	case StateAwaitingEmail:
		return "awaiting_email"
	case StateAwaitingLocation:
		return "awaiting_location"
	case StateDeliveryChoice:
		return "delivery_choice"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateFulfilling:
		return "fulfilling"
	default:
		return "unknown"
	}
}

// ParseState maps a stored string back to its State. Unknown or empty values
// fall back to StateBrowsing so a corrupted session degrades to the menu
// instead of wedging the conversation.
func ParseState(s string) State {
	switch s {
	case "item_detail":
		return StateItemDetail
	case "cart_view":
		return StateCartView
	case "awaiting_email":
		return StateAwaitingEmail
	case "awaiting_location":
		return StateAwaitingLocation
	case "delivery_choice":
		return StateDeliveryChoice
	case "awaiting_payment":
		return StateAwaitingPayment
	case "fulfilling":
		return StateFulfilling
	default:
		return StateBrowsing
	}
}

// Transitions declares, per state, the command kinds whose handlers may run.
// The dispatcher consults this table before invoking any handler, so a
// handler can never execute outside its declared state. PreCheckout is
// intentionally absent: it is answered globally, independent of state.
var Transitions = map[State][]CommandKind{
	StateBrowsing: {
		CommandShowMenu, CommandShowPage, CommandSelectItem, CommandViewCart,
	},
	StateItemDetail: {
		CommandAdjustQuantity, CommandAddToCart, CommandViewCart, CommandShowMenu,
	},
	StateCartView: {
		CommandRemoveItem, CommandViewCart, CommandCheckout, CommandShowMenu,
	},
	StateAwaitingEmail: {
		CommandEmailInput,
	},
	StateAwaitingLocation: {
		CommandLocationInput,
	},
	StateDeliveryChoice: {
		CommandChooseDelivery, CommandChoosePickup, CommandShowMenu,
	},
	StateAwaitingPayment: {
		CommandPaymentDone,
	},
	StateFulfilling: nil,
}

// Allows reports whether the given state accepts the command kind.
func Allows(s State, k CommandKind) bool {
	for _, allowed := range Transitions[s] {
		if allowed == k {
			return true
		}
	}
	return false
}
