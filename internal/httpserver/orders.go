package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shekinah-backend/internal/domain"
	"shekinah-backend/internal/export"
	"shekinah-backend/internal/store/orders"
)

func listOrdersHandler(store *orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"orders": store.Snapshot()})
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func updateOrderStatusHandler(store *orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := store.UpdateStatus(c.Request.Context(), c.Param("id"), status); err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

func deleteOrderHandler(store *orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func exportOrdersHandler(store *orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := export.ExcelReport(store.Snapshot())
		if errors.Is(err, export.ErrNoOrders) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No hay datos para exportar"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		sendAttachment(c, "application/vnd.ms-excel", export.ReportFilename(time.Now()), data)
	}
}

func exportWeeklyHandler(store *orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := export.WeeklyCSV(store.Snapshot(), time.Now())
		if errors.Is(err, export.ErrNoOrders) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No hay ventas en los últimos 7 días para exportar."})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		sendAttachment(c, "text/csv; charset=utf-8", export.WeeklyFilename(time.Now()), data)
	}
}

func writeOrderError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func sendAttachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
