package httpserver

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"shekinah-backend/internal/domain"
	"shekinah-backend/internal/imaging"
	"shekinah-backend/internal/store/catalog"
)

func listProductsHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"products": store.Snapshot(),
			"loading":  store.Loading(),
		})
	}
}

func getProductHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := store.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type productRequest struct {
	Category    string          `json:"category" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description []string        `json:"description"`
	Badge       string          `json:"badge"`
	Image       string          `json:"image"`
	// ImageData is the base64 of a freshly uploaded file. When set it wins
	// over Image and goes through the downscale pipeline.
	ImageData string `json:"imageData"`
}

func (r productRequest) validate() error {
	if !domain.Category(r.Category).Valid() {
		return errors.New("unknown category")
	}
	if r.Price.IsNegative() {
		return errors.New("price must not be negative")
	}
	if r.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	return nil
}

func (r productRequest) imageBytes() ([]byte, error) {
	if r.ImageData == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(r.ImageData)
}

func (r productRequest) toProduct() domain.Product {
	return domain.Product{
		Category:    domain.Category(r.Category),
		Name:        r.Name,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
		Image:       r.Image,
		Badge:       r.Badge,
	}
}

func createProductHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := req.validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		raw, err := req.imageBytes()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "imageData is not valid base64"})
			return
		}
		if err := store.AddProduct(c.Request.Context(), req.toProduct(), raw); err != nil {
			writeProductError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "created"})
	}
}

func updateProductHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := req.validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		raw, err := req.imageBytes()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "imageData is not valid base64"})
			return
		}
		p := req.toProduct()
		p.ID = c.Param("id")
		if err := store.UpdateProduct(c.Request.Context(), p, raw); err != nil {
			writeProductError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

func deleteProductHandler(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
			writeProductError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func writeProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrNoDocumentRef):
		c.JSON(http.StatusConflict, gin.H{"error": "product has no stored document reference"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "product id already in use"})
	case errors.Is(err, imaging.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large after compression"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
