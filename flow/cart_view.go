package flow

import (
	"fmt"
	"strings"

	"github.com/ordermesh/ordermesh/core"
)

func (m *Machine) handleCartView(rc *Context, cmd core.Command) (core.State, error) {
	switch c := cmd.(type) {
	case core.RemoveItem:
		cartID, err := m.svc.Resources.EnsureCart(rc.Context, rc.UserID)
		if err != nil {
			return rc.State, err
		}
		if err := m.svc.Backend.RemoveItem(rc.Context, cartID, c.ItemID); err != nil && !core.IsNotFound(err) {
			return rc.State, err
		}
		if err := m.sendText(rc, "Item removed from your cart."); err != nil {
			return rc.State, err
		}
		return m.showCart(rc)
	case core.ViewCart:
		return m.showCart(rc)
	case core.Checkout:
		text := "To place your order, send us your email address ✉️"
		if err := m.sendText(rc, text); err != nil {
			return rc.State, err
		}
		return core.StateAwaitingEmail, nil
	case core.ShowMenu:
		if err := m.sendMenu(rc, 0, m.svc.PageSize); err != nil {
			return rc.State, err
		}
		return core.StateBrowsing, nil
	}
	return rc.State, fmt.Errorf("cart view: unhandled command %s", cmd.Kind())
}

// showCart renders the user's cart. An empty cart redirects to the menu
// instead of dead-ending the conversation.
func (m *Machine) showCart(rc *Context) (core.State, error) {
	cartID, err := m.svc.Resources.EnsureCart(rc.Context, rc.UserID)
	if err != nil {
		return rc.State, err
	}
	cart, err := m.svc.Backend.GetCart(rc.Context, cartID)
	if err != nil {
		return rc.State, err
	}
	if cart.Empty() {
		if err := m.sendText(rc, "Your cart is empty"); err != nil {
			return rc.State, err
		}
		if err := m.sendMenu(rc, 0, m.svc.PageSize); err != nil {
			return rc.State, err
		}
		return core.StateBrowsing, nil
	}

	rows := [][]core.Button{{{Text: "💰 PLACE ORDER", Cmd: core.Checkout{}}}}
	var sb strings.Builder
	sb.WriteString("Your cart:\n")
	for _, item := range cart.Items {
		fmt.Fprintf(&sb, "\n%s\nIn cart: %d\nSubtotal: %s\n", item.Name, item.Quantity, item.FormattedPrice)
		rows = append(rows, []core.Button{{
			Text: fmt.Sprintf("Remove %q", item.Name),
			Cmd:  core.RemoveItem{ItemID: item.ID},
		}})
	}
	fmt.Fprintf(&sb, "\nTotal due: %s", cart.FormattedTotal)
	rows = append(rows, []core.Button{{Text: "Back to menu", Cmd: core.ShowMenu{}}})

	if err := m.send(rc, core.Message{Text: sb.String(), Buttons: rows}); err != nil {
		return rc.State, err
	}
	return core.StateCartView, nil
}
