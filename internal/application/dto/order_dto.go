package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// OrderLineRequest línea de pedido: product_id o combo_id, nunca ambos.
type OrderLineRequest struct {
	ProductID string          `json:"product_id,omitempty"`
	ComboID   string          `json:"combo_id,omitempty"`
	Quantity  int64           `json:"quantity"`
	UnitType  string          `json:"unit_type,omitempty"` // UNIDAD | PAQUETE (solo producto)
	UnitPrice decimal.Decimal `json:"unit_price"`          // 0 = precio de catálogo
}

// CreateOrderRequest alta de pedido con asignación de lotes.
type CreateOrderRequest struct {
	ClientID      string             `json:"client_id"`
	PaymentMethod string             `json:"payment_method"` // CONTADO | CREDITO
	Items         []OrderLineRequest `json:"items"`
}

// OrderItemResponse línea planificada con sus asignaciones de lote.
type OrderItemResponse struct {
	ID            string                   `json:"id"`
	ProductID     string                   `json:"product_id,omitempty"`
	ComboID       string                   `json:"combo_id,omitempty"`
	Description   string                   `json:"description"`
	Quantity      int64                    `json:"quantity"`
	UnitType      string                   `json:"unit_type,omitempty"`
	RequiredBase  int64                    `json:"required_base"`
	ShortfallBase int64                    `json:"shortfall_base,omitempty"`
	UnitPrice     decimal.Decimal          `json:"unit_price"`
	TotalPrice    decimal.Decimal          `json:"total_price"`
	Allocations   []entity.BatchAllocation `json:"allocations"`
}

// OrderResponse pedido creado/listado.
type OrderResponse struct {
	ID              string              `json:"id"`
	ClientID        string              `json:"client_id"`
	ClientName      string              `json:"client_name"`
	ClientDocNumber string              `json:"client_doc_number"`
	ClientAddress   string              `json:"client_address,omitempty"`
	DocType         string              `json:"doc_type"`
	PaymentMethod   string              `json:"payment_method"`
	Status          string              `json:"status"`
	Items           []OrderItemResponse `json:"items"`
	Total           decimal.Decimal     `json:"total"`
	CreatedAt       time.Time           `json:"created_at"`
}
