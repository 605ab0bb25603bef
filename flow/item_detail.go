package flow

import (
	"fmt"
	"strconv"

	"github.com/ordermesh/ordermesh/core"
)

func (m *Machine) handleItemDetail(rc *Context, cmd core.Command) (core.State, error) {
	switch c := cmd.(type) {
	case core.AdjustQuantity:
		qty := c.Current + c.Delta
		if qty < 1 {
			qty = 1
		}
		if err := m.sendProductCard(rc, c.ProductID, qty); err != nil {
			return rc.State, err
		}
		return core.StateItemDetail, nil
	case core.AddToCart:
		cartID, err := m.svc.Resources.EnsureCart(rc.Context, rc.UserID)
		if err != nil {
			return rc.State, err
		}
		if err := m.svc.Backend.AddItem(rc.Context, cartID, c.ProductID, c.Quantity); err != nil {
			if werr := m.sendText(rc, "Sorry, that item can't be added to your cart right now."); werr != nil {
				return rc.State, werr
			}
		} else if err := m.sendText(rc, "Added to your cart. Anything else?"); err != nil {
			return rc.State, err
		}
		if err := m.sendMenu(rc, 0, m.svc.PageSize); err != nil {
			return rc.State, err
		}
		return core.StateBrowsing, nil
	case core.ViewCart:
		return m.showCart(rc)
	case core.ShowMenu:
		if err := m.sendMenu(rc, 0, m.svc.PageSize); err != nil {
			return rc.State, err
		}
		return core.StateBrowsing, nil
	}
	return rc.State, fmt.Errorf("item detail: unhandled command %s", cmd.Kind())
}

// sendProductCard renders a product with its pricebook price and the
// quantity stepper. The quantity lives only on the keyboard; the transport
// feeds it back on the next adjust/add command.
func (m *Machine) sendProductCard(rc *Context, productID string, quantity int) error {
	product, err := m.svc.Backend.GetProduct(rc.Context, productID)
	if err != nil {
		return fmt.Errorf("get product %s: %w", productID, err)
	}
	price, err := m.svc.Backend.GetPrice(rc.Context, product.SKU)
	if err != nil {
		return fmt.Errorf("get price for %s: %w", product.SKU, err)
	}

	text := fmt.Sprintf("%s\n%s\n%d %s", product.Name, product.Description, price, m.svc.Currency)
	rows := [][]core.Button{
		{
			{Text: "-", Cmd: core.AdjustQuantity{ProductID: productID, Current: quantity, Delta: -1}},
			{Text: strconv.Itoa(quantity), Cmd: core.AddToCart{ProductID: productID, Quantity: quantity}},
			{Text: "+", Cmd: core.AdjustQuantity{ProductID: productID, Current: quantity, Delta: 1}},
		},
		{{Text: "Add to cart", Cmd: core.AddToCart{ProductID: productID, Quantity: quantity}}},
		{{Text: "🛒 My cart", Cmd: core.ViewCart{}}},
		{{Text: "Back", Cmd: core.ShowMenu{}}},
	}
	return m.send(rc, core.Message{Text: text, Buttons: rows})
}
