package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessOrdersRequest procesamiento por lote de pedidos a ventas numeradas.
type ProcessOrdersRequest struct {
	OrderIDs []string `json:"order_ids"`
}

// ProcessedSale resumen de una venta emitida en el procesamiento.
type ProcessedSale struct {
	SaleID     string `json:"sale_id"`
	OrderID    string `json:"order_id"`
	DocType    string `json:"doc_type"`
	Series     string `json:"series"`
	Number     int64  `json:"number"`
	FullNumber string `json:"full_number"`
}

// ProcessOrdersResponse resultado del procesamiento por lote.
type ProcessOrdersResponse struct {
	Sales []ProcessedSale `json:"sales"`
}

// SaleResponse comprobante emitido.
type SaleResponse struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	ClientName       string          `json:"client_name"`
	ClientDocNumber  string          `json:"client_doc_number"`
	DocType          string          `json:"doc_type"`
	Series           string          `json:"series"`
	Number           int64           `json:"number"`
	FullNumber       string          `json:"full_number"`
	PaymentMethod    string          `json:"payment_method"`
	Total            decimal.Decimal `json:"total"`
	Balance          decimal.Decimal `json:"balance"`
	PaymentStatus    string          `json:"payment_status"`
	CollectionStatus string          `json:"collection_status"`
	SunatStatus      string          `json:"sunat_status"`
	SunatMessage     string          `json:"sunat_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// RegisterPaymentRequest cobro contra una venta a crédito.
type RegisterPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
