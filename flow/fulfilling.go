package flow

import (
	"fmt"
	"strings"

	"github.com/ordermesh/ordermesh/core"
)

// enterFulfilling runs once after a confirmed payment: hand the order off
// (admin notification for delivery, pickup instructions otherwise), release
// the cart and return the conversation to the menu.
func (m *Machine) enterFulfilling(rc *Context) (core.State, error) {
	store := rc.Session.Store()

	flag, _, err := store.Get(rc.Context, core.CartDeliveryKey(rc.InvoicePayload))
	if err != nil {
		return rc.State, err
	}
	isDelivery := flag == "1"

	nearestID, haveNearest, err := rc.Session.NearestLocationID(rc.Context)
	if err != nil {
		return rc.State, err
	}
	if !haveNearest {
		return rc.State, fmt.Errorf("payment confirmed for user %s without a fulfillment location", rc.UserID)
	}

	if isDelivery {
		if err := m.handOffDelivery(rc, nearestID); err != nil {
			return rc.State, err
		}
	} else if err := m.announcePickup(rc, nearestID); err != nil {
		return rc.State, err
	}

	if err := m.svc.Resources.ReleaseCart(rc.Context, rc.UserID); err != nil {
		return rc.State, err
	}
	if err := m.sendMenu(rc, 0, m.svc.PageSize); err != nil {
		return rc.State, err
	}
	return core.StateBrowsing, nil
}

// handOffDelivery notifies the location's admin contact with the order
// contents and the customer's position, confirms to the user and schedules
// the follow-up message.
func (m *Machine) handOffDelivery(rc *Context, locationID string) error {
	store := rc.Session.Store()

	adminID, haveAdmin, err := store.Get(rc.Context, core.LocationAdminKey(locationID))
	if err != nil {
		return err
	}
	if !haveAdmin {
		return fmt.Errorf("no admin contact bound for location %s", locationID)
	}

	cartID, haveCart, err := rc.Session.CartID(rc.Context)
	if err != nil {
		return err
	}
	if haveCart {
		cart, err := m.svc.Backend.GetCart(rc.Context, cartID)
		if err != nil {
			return err
		}
		var sb strings.Builder
		sb.WriteString("New order:\n")
		for _, item := range cart.Items {
			fmt.Fprintf(&sb, "\n%s (%d pcs)", item.Name, item.Quantity)
		}
		if err := m.svc.Messenger.Send(rc.Context, adminID, core.Message{Text: sb.String()}); err != nil {
			return err
		}
	}

	customerID, bound, err := rc.Session.CustomerID(rc.Context)
	if err != nil {
		return err
	}
	if bound {
		customer, err := m.svc.Backend.GetCustomer(rc.Context, customerID)
		if err != nil {
			return err
		}
		if err := m.svc.Messenger.SendLocation(rc.Context, adminID, customer.Coordinates); err != nil {
			return err
		}
	}

	if err := m.sendText(rc, "Your order has been handed off for delivery"); err != nil {
		return err
	}

	followUp := "Enjoy your meal!\nIf your order still hasn't arrived, call us and we'll refund you."
	m.svc.Notifier.Schedule(m.svc.FollowUpDelay, rc.UserID, followUp)
	return nil
}

// announcePickup tells the user where to collect the order and shares the
// location's position.
func (m *Machine) announcePickup(rc *Context, locationID string) error {
	loc, err := m.svc.Backend.GetFulfillmentLocation(rc.Context, locationID)
	if err != nil {
		return err
	}
	if err := m.sendText(rc, "Your order is being prepared and will be ready within the hour. See you soon."); err != nil {
		return err
	}
	return m.svc.Messenger.SendLocation(rc.Context, rc.UserID, loc.Coordinates)
}
