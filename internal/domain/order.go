package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the lifecycle states of an order. Transitions are not
// validated: the back-office is allowed to set any status from any other, e.g.
// to re-open a cancelled order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (OrderStatus, error) {
	switch OrderStatus(raw) {
	case StatusPending, StatusPaid, StatusShipped, StatusCancelled:
		return OrderStatus(raw), nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// OrderItem is the sanitized snapshot of a cart item taken at checkout.
// It carries primitive fields only and stays immutable even if the product it
// was copied from is later edited or deleted.
type OrderItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type Order struct {
	ID              string          `json:"id"`
	CustomerName    string          `json:"customerName"`
	CustomerAddress string          `json:"customerAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	Date            time.Time       `json:"date"`
}
