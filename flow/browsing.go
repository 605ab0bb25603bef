package flow

import (
	"fmt"

	"github.com/ordermesh/ordermesh/core"
)

func (m *Machine) handleBrowsing(rc *Context, cmd core.Command) (core.State, error) {
	switch c := cmd.(type) {
	case core.ShowMenu:
		if err := m.sendMenu(rc, 0, m.svc.PageSize); err != nil {
			return rc.State, err
		}
		return core.StateBrowsing, nil
	case core.ShowPage:
		if err := m.sendMenu(rc, c.From, c.To); err != nil {
			return rc.State, err
		}
		return core.StateBrowsing, nil
	case core.SelectItem:
		if err := m.sendProductCard(rc, c.ProductID, 1); err != nil {
			return rc.State, err
		}
		return core.StateItemDetail, nil
	case core.ViewCart:
		return m.showCart(rc)
	}
	return rc.State, fmt.Errorf("browsing: unhandled command %s", cmd.Kind())
}

// sendMenu renders the product window [from, to) as one button per product,
// with navigation buttons when more products exist on either side. An empty
// window falls back to the first page so stale keyboards from a shrunken
// catalog keep working.
func (m *Machine) sendMenu(rc *Context, from, to int) error {
	products, err := m.svc.Backend.ListProducts(rc.Context)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	if from < 0 {
		from = 0
	}
	if to > len(products) {
		to = len(products)
	}
	if from >= to {
		from, to = 0, min(m.svc.PageSize, len(products))
	}

	var rows [][]core.Button
	for _, p := range products[from:to] {
		rows = append(rows, []core.Button{{Text: p.Name, Cmd: core.SelectItem{ProductID: p.ID}}})
	}

	var nav []core.Button
	if from > 0 {
		prev := from - m.svc.PageSize
		if prev < 0 {
			prev = 0
		}
		nav = append(nav, core.Button{Text: "⬅️ previous", Cmd: core.ShowPage{From: prev, To: from}})
	}
	if len(products) > to {
		nav = append(nav, core.Button{Text: "next ➡️", Cmd: core.ShowPage{From: to, To: to + m.svc.PageSize}})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []core.Button{{Text: "🛒 My cart", Cmd: core.ViewCart{}}})

	return m.send(rc, core.Message{Text: "Pick a pizza", Buttons: rows})
}
