package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the retailer's fixed product categories.
type Category string

const (
	CategoryAccesoriosGenerales Category = "Accesorios generales"
	CategoryAccesoriosLujo      Category = "Accesorios de lujo"
	CategoryProteccionPersonal  Category = "Protección personal"
	CategoryParrillasSliders    Category = "Parrillas y sliders"
	CategoryCascosFundas        Category = "Cascos y fundas"
	CategoryStickersResinados   Category = "Stickers resinados"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryAccesoriosGenerales,
		CategoryAccesoriosLujo,
		CategoryProteccionPersonal,
		CategoryParrillasSliders,
		CategoryCascosFundas,
		CategoryStickersResinados,
	}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	// ID is the business identifier. Legacy seed rows carry small numeric ids,
	// records created through the admin API carry generated string tokens; both
	// are normalized to strings here.
	ID string `json:"id"`
	// DocID is the backing document reference. Resolved from storage, never
	// exposed to clients.
	DocID       string          `json:"-"`
	Category    Category        `json:"category"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description []string        `json:"description"`
	Image       string          `json:"image,omitempty"`
	Badge       string          `json:"badge,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CartItem is a product selected for purchase within a single session.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}
