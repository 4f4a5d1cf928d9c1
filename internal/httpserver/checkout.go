package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shekinah-backend/internal/cart"
	"shekinah-backend/internal/checkout"
)

type checkoutRequest struct {
	SessionID       string `json:"sessionId" binding:"required"`
	CustomerName    string `json:"customerName" binding:"required"`
	CustomerAddress string `json:"customerAddress" binding:"required"`
	PaymentMethod   string `json:"paymentMethod" binding:"required,oneof=Yape Plin Tarjeta Efectivo"`
}

func checkoutHandler(flow *checkout.Flow, sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		items := sessions.Items(req.SessionID)
		res, err := flow.Submit(c.Request.Context(), checkout.Input{
			CustomerName:    req.CustomerName,
			CustomerAddress: req.CustomerAddress,
			PaymentMethod:   req.PaymentMethod,
		}, items)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "el carrito está vacío"})
			return
		}
		sessions.Dispatch(req.SessionID, cart.Action{Type: cart.ClearCart})
		c.JSON(http.StatusOK, gin.H{
			"whatsappUrl":   res.WhatsAppURL,
			"total":         res.Total.StringFixed(2),
			"orderRecorded": res.OrderRecorded,
			"stockAdjusted": res.StockAdjusted,
		})
	}
}
