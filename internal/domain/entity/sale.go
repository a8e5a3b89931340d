package entity

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Estados SUNAT del comprobante. El core solo persiste lo que el gateway
// devuelve; el reenvío es una acción manual del usuario.
const (
	SunatStatusPending  = "PENDING"
	SunatStatusAccepted = "ACCEPTED"
	SunatStatusRejected = "REJECTED"
	SunatStatusExcepted = "EXCEPTED"
)

// Estados de pago y cobranza de una venta.
const (
	PaymentStatusPendiente = "pendiente"
	PaymentStatusPagado    = "pagado"
	PaymentStatusAnulado   = "anulado"

	CollectionPendiente = "pendiente"
	CollectionParcial   = "parcial"
	CollectionCobrado   = "cobrado"
)

// SaleItem línea de una venta (copiada del pedido al procesarlo; las
// asignaciones de lote pasan a ser propiedad de la venta).
type SaleItem struct {
	ID              string
	SaleID          string
	ProductID       string
	ComboID         string
	Description     string
	Quantity        int64
	UnitType        string
	QuantityBase    int64 // unidades base vendidas (tope de devoluciones parciales)
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	Components      []ComboComponent
	Allocations     []BatchAllocation
	AllocationState string
}

// Sale comprobante finalizado y numerado (FACTURA o BOLETA).
// Invariante: Balance <= Total; Balance == 0 sii está totalmente cobrada.
type Sale struct {
	ID               string
	OrderID          string
	ClientID         string
	ClientName       string
	ClientDocNumber  string
	ClientAddress    string
	DocType          string // FACTURA | BOLETA
	Series           string
	Number           int64
	PaymentMethod    string // CONTADO | CREDITO
	Total            decimal.Decimal
	Balance          decimal.Decimal
	PaymentStatus    string
	CollectionStatus string
	SunatStatus      string
	SunatMessage     string
	Items            []SaleItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullNumber devuelve el identificador completo del comprobante (ej. "F001-102").
func (s *Sale) FullNumber() string {
	if s.Series == "" {
		return ""
	}
	return s.Series + "-" + strconv.FormatInt(s.Number, 10)
}
