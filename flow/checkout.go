package flow

import (
	"fmt"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/fulfillment"
)

func (m *Machine) handleEmail(rc *Context, cmd core.Command) (core.State, error) {
	input, ok := cmd.(core.EmailInput)
	if !ok {
		return rc.State, fmt.Errorf("awaiting email: unhandled command %s", cmd.Kind())
	}

	if err := m.validate.Var(input.Text, "required,email"); err != nil {
		if serr := m.sendText(rc, "That doesn't look like an email address, try again"); serr != nil {
			return rc.State, serr
		}
		return core.StateAwaitingEmail, nil
	}

	if _, err := m.svc.Resources.BindCustomer(rc.Context, rc.UserID, rc.UserID, input.Text); err != nil {
		return rc.State, err
	}

	text := "Your order is in!\nNow, about delivery: send us your address, your coordinates, or share your location."
	if err := m.sendText(rc, text); err != nil {
		return rc.State, err
	}
	return core.StateAwaitingLocation, nil
}

func (m *Machine) handleLocation(rc *Context, cmd core.Command) (core.State, error) {
	input, ok := cmd.(core.LocationInput)
	if !ok {
		return rc.State, fmt.Errorf("awaiting location: unhandled command %s", cmd.Kind())
	}

	coords, err := m.resolveCoordinates(rc, input)
	if err != nil {
		if core.IsValidation(err) {
			text := "I can't make sense of that address!\nYou can simply share your location instead."
			if serr := m.sendText(rc, text); serr != nil {
				return rc.State, serr
			}
			return core.StateAwaitingLocation, nil
		}
		return rc.State, err
	}

	customerID, bound, err := rc.Session.CustomerID(rc.Context)
	if err != nil {
		return rc.State, err
	}
	if bound {
		if err := m.svc.Backend.UpdateCustomerLocation(rc.Context, customerID, coords); err != nil {
			return rc.State, err
		}
	}
	if err := rc.Session.SetCoordinates(rc.Context, coords); err != nil {
		return rc.State, err
	}

	locations, err := m.svc.Backend.ListFulfillmentLocations(rc.Context)
	if err != nil {
		return rc.State, err
	}
	nearest, err := fulfillment.SelectNearest(coords, locations)
	if err != nil {
		return rc.State, err
	}
	if err := rc.Session.SetNearestLocation(rc.Context, nearest); err != nil {
		return rc.State, err
	}

	quote := fulfillment.QuoteFor(nearest.DistanceKm, m.svc.Tiers)
	if !quote.DeliveryOffered {
		text := fmt.Sprintf("You can pick up your order at:\n\n%s", nearest.Address)
		if err := m.sendText(rc, text); err != nil {
			return rc.State, err
		}
		// Too far to deliver: straight to payment, pickup implied.
		if err := m.sendInvoice(rc, 0, false); err != nil {
			return rc.State, err
		}
		return core.StateAwaitingPayment, nil
	}

	meters := int(quote.DistanceKm * 1000)
	var text string
	if quote.Fee == 0 {
		text = fmt.Sprintf(
			"There's a pickup point just %d meters away!\nAddress: %s.\n\nOr we'll deliver for free, happy to help!",
			meters, nearest.Address)
	} else {
		text = fmt.Sprintf(
			"Your order is only %d meters away!\nAddress: %s.\nDelivery costs %d.\n\nOr pick it up yourself!",
			meters, nearest.Address, quote.Fee)
	}
	msg := core.Message{
		Text: text,
		Buttons: [][]core.Button{{
			{Text: "Deliver it", Cmd: core.ChooseDelivery{Fee: quote.Fee}},
			{Text: "I'll pick it up", Cmd: core.ChoosePickup{}},
		}},
	}
	if err := m.send(rc, msg); err != nil {
		return rc.State, err
	}
	return core.StateDeliveryChoice, nil
}

// resolveCoordinates prefers a structured point over free text; free text
// goes through the geocoder.
func (m *Machine) resolveCoordinates(rc *Context, input core.LocationInput) (core.Coordinates, error) {
	if input.Point != nil {
		return *input.Point, nil
	}
	return m.svc.Geocoder.Resolve(rc.Context, input.Text)
}
