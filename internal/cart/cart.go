package cart

import (
	"github.com/shopspring/decimal"

	"shekinah-backend/internal/domain"
)

// State is the session-local cart: an ordered item list plus the drawer
// visibility flag. It lives in memory only and is lost with the session.
type State struct {
	Items []domain.CartItem `json:"items"`
	Open  bool              `json:"open"`
}

// ActionType enumerates the reducer operations.
type ActionType string

const (
	AddItem        ActionType = "ADD_ITEM"
	RemoveItem     ActionType = "REMOVE_ITEM"
	UpdateQuantity ActionType = "UPDATE_QUANTITY"
	ToggleCart     ActionType = "TOGGLE_CART"
	CloseCart      ActionType = "CLOSE_CART"
	ClearCart      ActionType = "CLEAR_CART"
)

// Action is one reducer input. Product is read for AddItem, ID for RemoveItem
// and UpdateQuantity, Quantity for UpdateQuantity.
type Action struct {
	Type     ActionType
	Product  domain.Product
	ID       string
	Quantity int
}

// Reduce applies an action to a state and returns the next state. It is pure:
// the input state is never mutated, and no stock constraint is enforced here.
// Callers clamp quantities against stock before dispatching.
func Reduce(s State, a Action) State {
	switch a.Type {
	case AddItem:
		items := copyItems(s.Items)
		for i := range items {
			if items[i].ID == a.Product.ID {
				items[i].Quantity++
				return State{Items: items, Open: true}
			}
		}
		items = append(items, domain.CartItem{Product: a.Product, Quantity: 1})
		return State{Items: items, Open: true}

	case RemoveItem:
		return State{Items: withoutItem(s.Items, a.ID), Open: s.Open}

	case UpdateQuantity:
		if a.Quantity < 1 {
			return State{Items: withoutItem(s.Items, a.ID), Open: s.Open}
		}
		items := copyItems(s.Items)
		for i := range items {
			if items[i].ID == a.ID {
				items[i].Quantity = a.Quantity
			}
		}
		return State{Items: items, Open: s.Open}

	case ToggleCart:
		return State{Items: s.Items, Open: !s.Open}

	case CloseCart:
		return State{Items: s.Items, Open: false}

	case ClearCart:
		return State{Items: nil, Open: false}

	default:
		return s
	}
}

// Subtotal is the sum of price times quantity over all items.
func Subtotal(s State) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func copyItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

func withoutItem(items []domain.CartItem, id string) []domain.CartItem {
	var out []domain.CartItem
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}
