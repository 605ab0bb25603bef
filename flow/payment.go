package flow

import (
	"fmt"
	"strings"

	"github.com/ordermesh/ordermesh/core"
)

func (m *Machine) handleDeliveryChoice(rc *Context, cmd core.Command) (core.State, error) {
	switch c := cmd.(type) {
	case core.ChooseDelivery:
		if err := m.sendInvoice(rc, c.Fee, true); err != nil {
			return rc.State, err
		}
		return core.StateAwaitingPayment, nil
	case core.ChoosePickup:
		if err := m.sendInvoice(rc, 0, false); err != nil {
			return rc.State, err
		}
		return core.StateAwaitingPayment, nil
	case core.ShowMenu:
		if err := m.sendMenu(rc, 0, m.svc.PageSize); err != nil {
			return rc.State, err
		}
		return core.StateBrowsing, nil
	}
	return rc.State, fmt.Errorf("delivery choice: unhandled command %s", cmd.Kind())
}

func (m *Machine) handlePayment(rc *Context, cmd core.Command) (core.State, error) {
	done, ok := cmd.(core.PaymentDone)
	if !ok {
		return rc.State, fmt.Errorf("awaiting payment: unhandled command %s", cmd.Kind())
	}
	rc.InvoicePayload = done.Payload
	return core.StateFulfilling, nil
}

// sendInvoice issues the payment request for the current cart plus the
// delivery fee. The invoice payload is the cart id; the delivery flag is
// stored keyed by cart so the fulfilling hook can read it back from the
// payment confirmation alone.
func (m *Machine) sendInvoice(rc *Context, fee int, isDelivery bool) error {
	cartID, err := m.svc.Resources.EnsureCart(rc.Context, rc.UserID)
	if err != nil {
		return err
	}
	cart, err := m.svc.Backend.GetCart(rc.Context, cartID)
	if err != nil {
		return err
	}

	lines := make([]string, 0, len(cart.Items)+1)
	for _, item := range cart.Items {
		lines = append(lines, fmt.Sprintf("%s - %d", item.Name, item.Quantity))
	}
	if fee > 0 {
		lines = append(lines, fmt.Sprintf("delivery - %d", fee))
	}

	deliveryFlag := "0"
	if isDelivery {
		deliveryFlag = "1"
	}
	if err := rc.Session.Store().Set(rc.Context, core.CartDeliveryKey(cartID), deliveryFlag); err != nil {
		return err
	}

	inv := core.Invoice{
		Title:       "Pizza order",
		Description: strings.Join(lines, ", "),
		Payload:     cartID,
		Currency:    m.svc.Currency,
		Amount:      (cart.Total + fee) * 100,
	}
	return m.svc.Payments.CreateInvoice(rc.Context, rc.UserID, inv)
}
