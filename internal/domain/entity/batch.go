package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote recibido de un producto con su propio costo,
// vencimiento y cantidad restante. Invariante: 0 <= QuantityCurrent <= QuantityInitial.
// Solo lo mutan la asignación (decremento) y la devolución de stock en
// liquidación (incremento). Nunca se elimina una vez creado.
type Batch struct {
	ID              string
	ProductID       string
	Code            string
	QuantityInitial int64 // unidades base
	QuantityCurrent int64 // unidades base
	Cost            decimal.Decimal
	ExpirationDate  time.Time
	CreatedAt       time.Time
}

// BatchAllocation registra cuánto de un lote se consumió para satisfacer una
// línea de pedido/venta. Inmutable una vez creada: una corrección crea un
// nuevo set de asignaciones, no muta el existente.
type BatchAllocation struct {
	BatchID   string `json:"batch_id"`
	BatchCode string `json:"batch_code"`
	Quantity  int64  `json:"quantity"` // unidades base
}

// Estados del set de asignaciones de una línea (guarda contra doble liberación).
const (
	AllocationApplied  = "applied"  // descontada del stock
	AllocationReleased = "released" // devuelta al stock; no puede liberarse otra vez
)
