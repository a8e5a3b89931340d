package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComboItem componente de un combo: producto, cantidad y unidad.
type ComboItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitType  string `json:"unit_type"` // UNIDAD | PAQUETE
}

// Combo representa una promoción que agrupa varios productos a un precio cerrado.
// Al planear un pedido se toma un snapshot de Items: ediciones posteriores del
// combo no alteran pedidos históricos.
type Combo struct {
	ID        string
	Code      string
	Name      string
	Price     decimal.Decimal
	Items     []ComboItem
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
