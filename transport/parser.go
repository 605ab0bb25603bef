package transport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ordermesh/ordermesh/core"
)

// Callback payload prefixes. The grammar mirrors the deployed inline
// keyboards: `<verb>:<argument>`, with `other_products` carrying a dash
// separated window and `delivery` a triple-colon separated fee.
const (
	payloadMenu        = "main_menu"
	payloadBackToStore = "back_to_store"
	payloadShowCart    = "show_cart"
	payloadCheckout    = "make_order"
	payloadPickup      = "pickup"

	prefixProduct    = "product"
	prefixOtherPage  = "other_products"
	prefixIncrease   = "increase_quantity"
	prefixDecrease   = "reduce_quantity"
	prefixAddToCart  = "add_to_cart"
	prefixRemoveItem = "remove_from_cart"
	prefixDelivery   = "delivery"
)

// latLonPattern matches a "lat lon" literal pair with dot or comma decimals.
var latLonPattern = regexp.MustCompile(`^\s*(-?\d+[.,]\d+)\s+(-?\d+[.,]\d+)\s*$`)

// ParseCallback parses an inline-keyboard payload into a typed command.
// currentQty is the ephemeral quantity rendered on the in-flight product
// card; bindings pass 1 when no card is in flight. Unknown payloads return
// an error so the binding can ignore stale keyboards gracefully.
func ParseCallback(data string, currentQty int) (core.Command, error) {
	if currentQty < 1 {
		currentQty = 1
	}
	switch data {
	case payloadMenu, payloadBackToStore:
		return core.ShowMenu{}, nil
	case payloadShowCart:
		return core.ViewCart{}, nil
	case payloadCheckout:
		return core.Checkout{}, nil
	case payloadPickup:
		return core.ChoosePickup{}, nil
	}

	if fee, ok := strings.CutPrefix(data, prefixDelivery+":::"); ok {
		amount, err := strconv.Atoi(fee)
		if err != nil {
			return nil, fmt.Errorf("malformed delivery payload %q: %w", data, err)
		}
		return core.ChooseDelivery{Fee: amount}, nil
	}

	verb, arg, found := strings.Cut(data, ":")
	if !found {
		return nil, fmt.Errorf("unknown callback payload %q", data)
	}
	switch verb {
	case prefixProduct:
		return core.SelectItem{ProductID: arg}, nil
	case prefixOtherPage:
		from, to, ok := strings.Cut(arg, "-")
		if !ok {
			return nil, fmt.Errorf("malformed page payload %q", data)
		}
		fromN, err := strconv.Atoi(from)
		if err != nil {
			return nil, fmt.Errorf("malformed page payload %q: %w", data, err)
		}
		toN, err := strconv.Atoi(to)
		if err != nil {
			return nil, fmt.Errorf("malformed page payload %q: %w", data, err)
		}
		return core.ShowPage{From: fromN, To: toN}, nil
	case prefixIncrease:
		return core.AdjustQuantity{ProductID: arg, Current: currentQty, Delta: 1}, nil
	case prefixDecrease:
		return core.AdjustQuantity{ProductID: arg, Current: currentQty, Delta: -1}, nil
	case prefixAddToCart:
		return core.AddToCart{ProductID: arg, Quantity: currentQty}, nil
	case prefixRemoveItem:
		return core.RemoveItem{ItemID: arg}, nil
	}
	return nil, fmt.Errorf("unknown callback payload %q", data)
}

// ParseText interprets a free-text message according to the conversation
// state that expects text input.
func ParseText(state core.State, text string) (core.Command, error) {
	switch state {
	case core.StateAwaitingEmail:
		return core.EmailInput{Text: text}, nil
	case core.StateAwaitingLocation:
		if m := latLonPattern.FindStringSubmatch(text); m != nil {
			lat, latErr := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
			lon, lonErr := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", "."), 64)
			if latErr == nil && lonErr == nil {
				return core.LocationInput{Text: text, Point: &core.Coordinates{Lon: lon, Lat: lat}}, nil
			}
		}
		return core.LocationInput{Text: text}, nil
	default:
		return nil, fmt.Errorf("state %s does not accept text input", state)
	}
}

// FormatCallback serializes a command back into the payload grammar, for
// bindings rendering outbound inline keyboards.
func FormatCallback(cmd core.Command) (string, error) {
	switch c := cmd.(type) {
	case core.ShowMenu:
		return payloadMenu, nil
	case core.ViewCart:
		return payloadShowCart, nil
	case core.Checkout:
		return payloadCheckout, nil
	case core.ChoosePickup:
		return payloadPickup, nil
	case core.ChooseDelivery:
		return fmt.Sprintf("%s:::%d", prefixDelivery, c.Fee), nil
	case core.SelectItem:
		return prefixProduct + ":" + c.ProductID, nil
	case core.ShowPage:
		return fmt.Sprintf("%s:%d-%d", prefixOtherPage, c.From, c.To), nil
	case core.AdjustQuantity:
		if c.Delta >= 0 {
			return prefixIncrease + ":" + c.ProductID, nil
		}
		return prefixDecrease + ":" + c.ProductID, nil
	case core.AddToCart:
		return prefixAddToCart + ":" + c.ProductID, nil
	case core.RemoveItem:
		return prefixRemoveItem + ":" + c.ItemID, nil
	default:
		return "", fmt.Errorf("command %s has no callback encoding", cmd.Kind())
	}
}
