package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido.
const (
	OrderStatusPending   = "pendiente"
	OrderStatusProcessed = "procesado" // convertido en venta numerada
)

// Métodos de pago.
const (
	PaymentContado = "CONTADO"
	PaymentCredito = "CREDITO"
)

// ComboComponent snapshot de un componente de combo al momento de planear el
// pedido. Ediciones posteriores del combo no alteran pedidos históricos.
type ComboComponent struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int64  `json:"quantity"`
	UnitType       string `json:"unit_type"`
	PackageContent int64  `json:"package_content"`
}

// OrderItem línea de un pedido: producto simple (ProductID) o combo (ComboID).
// RequiredBase es la demanda total en unidades base; Allocations registra los
// lotes consumidos para cubrirla (concatenadas por componente en combos).
type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string // vacío si la línea es un combo
	ComboID         string // vacío si la línea es un producto
	Description     string
	Quantity        int64
	UnitType        string // UNIDAD | PAQUETE (solo producto simple)
	RequiredBase    int64
	ShortfallBase   int64 // demanda no cubierta por falta de lotes (no bloquea el pedido)
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	Components      []ComboComponent  // snapshot del combo; nil en producto simple
	Allocations     []BatchAllocation
	AllocationState string // applied | released
}

// Order representa un pedido pendiente de procesar. Los campos Client* son un
// snapshot tomado al crear el pedido; DocType se clasifica en ese momento
// (RUC de 11 dígitos => FACTURA, si no BOLETA) y nunca se re-deriva.
type Order struct {
	ID              string
	ClientID        string
	ClientName      string
	ClientDocNumber string
	ClientAddress   string
	DocType         string // FACTURA | BOLETA
	PaymentMethod   string // CONTADO | CREDITO
	Status          string
	Items           []OrderItem
	Total           decimal.Decimal
	CreatedAt       time.Time
	CreatedBy       string
}
