package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shekinah-backend/internal/cart"
	"shekinah-backend/internal/store/catalog"
)

type cartResponse struct {
	Items    any    `json:"items"`
	Open     bool   `json:"open"`
	Subtotal string `json:"subtotal"`
}

func toCartResponse(s cart.State) cartResponse {
	return cartResponse{
		Items:    s.Items,
		Open:     s.Open,
		Subtotal: cart.Subtotal(s).StringFixed(2),
	}
}

func createCartHandler(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"sessionId": sessions.New()})
	}
}

func getCartHandler(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, toCartResponse(sessions.Get(c.Param("sid"))))
	}
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func addCartItemHandler(sessions *cart.Sessions, store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, ok := store.Get(req.ProductID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		sid := c.Param("sid")
		if current := quantityOf(sessions.Get(sid), p.ID); current+1 > p.Stock {
			c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
			return
		}
		next := sessions.Dispatch(sid, cart.Action{Type: cart.AddItem, Product: p})
		c.JSON(http.StatusOK, toCartResponse(next))
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func updateCartItemHandler(sessions *cart.Sessions, store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id := c.Param("id")
		if p, ok := store.Get(id); ok && req.Quantity > p.Stock {
			c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
			return
		}
		next := sessions.Dispatch(c.Param("sid"), cart.Action{
			Type:     cart.UpdateQuantity,
			ID:       id,
			Quantity: req.Quantity,
		})
		c.JSON(http.StatusOK, toCartResponse(next))
	}
}

func removeCartItemHandler(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := sessions.Dispatch(c.Param("sid"), cart.Action{
			Type: cart.RemoveItem,
			ID:   c.Param("id"),
		})
		c.JSON(http.StatusOK, toCartResponse(next))
	}
}

func toggleCartHandler(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := sessions.Dispatch(c.Param("sid"), cart.Action{Type: cart.ToggleCart})
		c.JSON(http.StatusOK, toCartResponse(next))
	}
}

func closeCartHandler(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := sessions.Dispatch(c.Param("sid"), cart.Action{Type: cart.CloseCart})
		c.JSON(http.StatusOK, toCartResponse(next))
	}
}

func quantityOf(s cart.State, id string) int {
	for _, it := range s.Items {
		if it.ID == id {
			return it.Quantity
		}
	}
	return 0
}
