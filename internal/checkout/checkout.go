package checkout

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shekinah-backend/internal/domain"
)

type orderAdder interface {
	AddOrder(ctx context.Context, o domain.Order) (string, error)
}

type stockDecrementer interface {
	PurchaseItems(ctx context.Context, items []domain.CartItem) error
}

// Flow orchestrates a checkout. The WhatsApp handoff is the authoritative
// fulfillment channel: failures recording the order or adjusting stock are
// logged and the customer-facing flow proceeds.
type Flow struct {
	orders  orderAdder
	catalog stockDecrementer
	logger  *zap.Logger
	phone   string
}

func New(orders orderAdder, catalog stockDecrementer, phone string, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{orders: orders, catalog: catalog, phone: phone, logger: logger}
}

// Input carries the customer details captured at checkout.
type Input struct {
	CustomerName    string
	CustomerAddress string
	PaymentMethod   string
}

// Result reports the handoff link plus which best-effort steps succeeded.
type Result struct {
	WhatsAppURL   string
	Total         decimal.Decimal
	OrderRecorded bool
	StockAdjusted bool
}

// Submit runs the checkout sequence: sanitize the cart into a primitive
// snapshot, persist the order, build the messaging deep link, decrement stock.
// Steps two and four are fire-and-forget; only an empty cart aborts.
func (f *Flow) Submit(ctx context.Context, in Input, items []domain.CartItem) (Result, error) {
	if len(items) == 0 {
		return Result{}, fmt.Errorf("cart is empty")
	}

	snapshot := SanitizeItems(items)
	total := decimal.Zero
	for _, item := range snapshot {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	recorded := true
	_, err := f.orders.AddOrder(ctx, domain.Order{
		CustomerName:    in.CustomerName,
		CustomerAddress: in.CustomerAddress,
		PaymentMethod:   in.PaymentMethod,
		Items:           snapshot,
		Total:           total,
		Status:          domain.StatusPending,
	})
	if err != nil {
		f.logger.Warn("checkout: order not recorded", zap.Error(err))
		recorded = false
	}

	link := f.messageLink(in, items, total)

	adjusted := true
	if err := f.catalog.PurchaseItems(ctx, items); err != nil {
		f.logger.Warn("checkout: stock not adjusted", zap.Error(err))
		adjusted = false
	}

	return Result{
		WhatsAppURL:   link,
		Total:         total,
		OrderRecorded: recorded,
		StockAdjusted: adjusted,
	}, nil
}

func (f *Flow) messageLink(in Input, items []domain.CartItem, total decimal.Decimal) string {
	query := url.Values{"text": {buildMessage(in, items, total)}}
	return "https://wa.me/" + f.phone + "?" + query.Encode()
}

// SanitizeItems flattens cart items into primitive-only snapshots. Missing or
// malformed fields fall back to safe defaults instead of failing the checkout.
func SanitizeItems(items []domain.CartItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "Sin nombre"
		}
		category := string(item.Category)
		if category == "" {
			category = "General"
		}
		price := item.Price
		if price.IsNegative() {
			price = decimal.Zero
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		out = append(out, domain.OrderItem{
			ID:       item.ID,
			Name:     name,
			Category: category,
			Price:    price,
			Quantity: qty,
		})
	}
	return out
}
