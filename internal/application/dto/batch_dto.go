package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterBatchRequest entrada de un lote al almacén.
type RegisterBatchRequest struct {
	ProductID      string          `json:"product_id"`
	Code           string          `json:"code"`
	Quantity       int64           `json:"quantity"` // unidades base
	Cost           decimal.Decimal `json:"cost"`
	ExpirationDate string          `json:"expiration_date"` // YYYY-MM-DD
}

// BatchResponse lote con su cantidad restante.
type BatchResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Code            string          `json:"code"`
	QuantityInitial int64           `json:"quantity_initial"`
	QuantityCurrent int64           `json:"quantity_current"`
	Cost            decimal.Decimal `json:"cost"`
	ExpirationDate  string          `json:"expiration_date"`
	CreatedAt       time.Time       `json:"created_at"`
}
