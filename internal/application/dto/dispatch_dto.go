package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// CreateDispatchRequest alta de hoja de reparto.
type CreateDispatchRequest struct {
	Route   string   `json:"route"`
	Driver  string   `json:"driver"`
	Date    string   `json:"date"` // YYYY-MM-DD
	SaleIDs []string `json:"sale_ids"`
}

// DispatchSheetResponse hoja de reparto.
type DispatchSheetResponse struct {
	ID        string    `json:"id"`
	Route     string    `json:"route"`
	Driver    string    `json:"driver"`
	Date      string    `json:"date"`
	SaleIDs   []string  `json:"sale_ids"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ReturnLineRequest cantidad devuelta de una línea, como la ingresa el operador.
type ReturnLineRequest struct {
	SaleItemID string `json:"sale_item_id"`
	Boxes      int64  `json:"boxes"`
	Units      int64  `json:"units"`
}

// DispositionRequest disposición de una venta dentro de la liquidación.
type DispositionRequest struct {
	SaleID        string              `json:"sale_id"`
	Action        string              `json:"action"` // PAID | CREDIT | VOID | PARTIAL_RETURN
	VoidReason    string              `json:"void_reason,omitempty"`
	BalanceMethod string              `json:"balance_method,omitempty"` // CONTADO | CREDITO
	Returns       []ReturnLineRequest `json:"returns,omitempty"`
}

// FinalizeLiquidationRequest cierre de la hoja con todas las disposiciones.
type FinalizeLiquidationRequest struct {
	Dispositions []DispositionRequest `json:"dispositions"`
}

// LiquidationDocumentResponse disposición calculada de una venta.
type LiquidationDocumentResponse struct {
	SaleID           string                `json:"sale_id"`
	SaleFullNumber   string                `json:"sale_full_number"`
	Action           string                `json:"action"`
	AmountCollected  decimal.Decimal       `json:"amount_collected"`
	AmountCredit     decimal.Decimal       `json:"amount_credit"`
	AmountVoid       decimal.Decimal       `json:"amount_void"`
	AmountCreditNote decimal.Decimal       `json:"amount_credit_note"`
	VoidReason       string                `json:"void_reason,omitempty"`
	BalanceMethod    string                `json:"balance_method,omitempty"`
	CreditNote       string                `json:"credit_note,omitempty"` // serie-número asignado al finalizar
	ReturnedItems    []entity.ReturnedItem `json:"returned_items,omitempty"`
}

// LiquidationResponse cierre inmutable de una hoja de reparto.
type LiquidationResponse struct {
	ID                    string                        `json:"id"`
	DispatchSheetID       string                        `json:"dispatch_sheet_id"`
	TotalCashCollected    decimal.Decimal               `json:"total_cash_collected"`
	TotalCreditReceivable decimal.Decimal               `json:"total_credit_receivable"`
	TotalVoided           decimal.Decimal               `json:"total_voided"`
	TotalReturnsValue     decimal.Decimal               `json:"total_returns_value"`
	Documents             []LiquidationDocumentResponse `json:"documents"`
	CreatedAt             time.Time                     `json:"created_at"`
}
