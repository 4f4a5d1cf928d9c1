package checkout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shekinah-backend/internal/domain"
)

// buildMessage renders the order summary sent through the messaging deep
// link. The wording and layout are the retailer's fixed format.
func buildMessage(in Input, items []domain.CartItem, total decimal.Decimal) string {
	var b strings.Builder

	b.WriteString("🏍️ *HOLA SHEKINAH MOTOR'S, QUIERO REALIZAR UN PEDIDO:*\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %dx %s (S/ %s)\n", item.Quantity, item.Name, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\n💰 *TOTAL: S/ %s*\n\n", total.StringFixed(2))

	b.WriteString("👤 *DATOS DEL CLIENTE:*\n")
	fmt.Fprintf(&b, "Nombre: %s\n", in.CustomerName)
	fmt.Fprintf(&b, "Dirección/Ciudad: %s\n", in.CustomerAddress)
	fmt.Fprintf(&b, "Método de Pago: %s\n\n", in.PaymentMethod)

	b.WriteString("Espero su confirmación para realizar el pago. ¡Gracias!")
	return b.String()
}
