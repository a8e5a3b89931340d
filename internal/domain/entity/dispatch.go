package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una hoja de reparto. Terminal una vez liquidada.
const (
	DispatchStatusPending   = "pendiente"
	DispatchStatusCompleted = "completado"
)

// Acciones de liquidación por venta.
const (
	ActionPaid          = "PAID"
	ActionCredit        = "CREDIT"
	ActionVoid          = "VOID"
	ActionPartialReturn = "PARTIAL_RETURN"
)

// DispatchSheet agrupa las ventas asignadas a una ruta/viaje de reparto.
type DispatchSheet struct {
	ID        string
	Route     string
	Driver    string
	Date      time.Time
	SaleIDs   []string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReturnedItem cantidad devuelta de una línea de venta y su valor prorrateado.
type ReturnedItem struct {
	SaleItemID   string          `json:"sale_item_id"`
	ProductID    string          `json:"product_id"`
	Description  string          `json:"description"`
	QuantityBase int64           `json:"quantity_base"`
	Value        decimal.Decimal `json:"value"`
}

// LiquidationDocument disposición final de una venta dentro de una liquidación.
// Invariante de conservación de dinero (epsilon 0.01):
// AmountCollected + AmountCredit + AmountVoid + AmountCreditNote == Sale.Total.
type LiquidationDocument struct {
	SaleID           string
	SaleFullNumber   string
	Action           string
	AmountCollected  decimal.Decimal
	AmountCredit     decimal.Decimal
	AmountVoid       decimal.Decimal
	AmountCreditNote decimal.Decimal
	VoidReason       string
	BalanceMethod    string // CONTADO | CREDITO (solo PARTIAL_RETURN)
	CreditNoteSeries string // asignada en el finalize (antes, placeholder vacío)
	CreditNoteNumber int64
	ReturnedItems    []ReturnedItem
}

// LiquidationTotals agregados de una liquidación.
type LiquidationTotals struct {
	TotalCashCollected    decimal.Decimal
	TotalCreditReceivable decimal.Decimal
	TotalVoided           decimal.Decimal
	TotalReturnsValue     decimal.Decimal
}

// DispatchLiquidation cierre inmutable de una hoja de reparto: se crea una
// vez en el finalize y nunca se muta. Es dueña exclusiva de Documents.
type DispatchLiquidation struct {
	ID                    string
	DispatchSheetID       string
	TotalCashCollected    decimal.Decimal
	TotalCreditReceivable decimal.Decimal
	TotalVoided           decimal.Decimal
	TotalReturnsValue     decimal.Decimal
	Documents             []LiquidationDocument
	CreatedAt             time.Time
	CreatedBy             string
}
