// Package liquidation implementa el reconciliador de liquidación de reparto:
// dado un comprobante de la hoja y la disposición del operador (pagado,
// crédito, anulado o devolución parcial), calcula los montos de la
// disposición preservando la conservación de dinero:
//
//	cobrado + crédito + anulado + nota de crédito == total de la venta (±0.01)
package liquidation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// Epsilon tolerancia de redondeo para la conservación de dinero.
var Epsilon = decimal.NewFromFloat(0.01)

const minVoidReasonLen = 5

// ReturnLine cantidad devuelta de una línea de venta, como la ingresa el
// operador: cajas y unidades sueltas.
type ReturnLine struct {
	SaleItemID string
	Boxes      int64
	Units      int64
}

// Paid disposición PAGADO: todo el total se cobró en efectivo.
func Paid(sale *entity.Sale) entity.LiquidationDocument {
	return entity.LiquidationDocument{
		SaleID:          sale.ID,
		SaleFullNumber:  sale.FullNumber(),
		Action:          entity.ActionPaid,
		AmountCollected: sale.Total,
	}
}

// Credit disposición CREDITO: todo el total queda como cuenta por cobrar.
func Credit(sale *entity.Sale) entity.LiquidationDocument {
	return entity.LiquidationDocument{
		SaleID:         sale.ID,
		SaleFullNumber: sale.FullNumber(),
		Action:         entity.ActionCredit,
		AmountCredit:   sale.Total,
	}
}

// Void disposición ANULADO: exige un motivo de al menos 5 caracteres e implica
// la devolución completa a stock de cada línea, a su valor vendido original.
func Void(sale *entity.Sale, reason string) (entity.LiquidationDocument, error) {
	if len([]rune(reason)) < minVoidReasonLen {
		return entity.LiquidationDocument{}, domain.NewValidation(
			"el motivo de anulación debe tener al menos %d caracteres", minVoidReasonLen)
	}
	doc := entity.LiquidationDocument{
		SaleID:         sale.ID,
		SaleFullNumber: sale.FullNumber(),
		Action:         entity.ActionVoid,
		AmountVoid:     sale.Total,
		VoidReason:     reason,
	}
	for _, item := range sale.Items {
		doc.ReturnedItems = append(doc.ReturnedItems, entity.ReturnedItem{
			SaleItemID:   item.ID,
			ProductID:    item.ProductID,
			Description:  item.Description,
			QuantityBase: item.QuantityBase,
			Value:        item.TotalPrice,
		})
	}
	return doc, nil
}

// PartialReturn disposición DEVOLUCION PARCIAL (flujo de nota de crédito).
//
// Por cada línea devuelta: returnedBase = cajas*PackageContent + unidades;
// no puede exceder lo vendido. El reembolso es proporcional al valor de la
// línea (TotalPrice * returnedBase/quantityBase), no al conteo, para
// prorratear correctamente descuentos de línea. El saldo restante se asigna
// entero a cobrado o a crédito según balanceMethod, nunca se parte.
//
// packageContent mapea ProductID -> unidades base por caja de cada línea
// devuelta (1 si el producto se vende solo por unidad).
func PartialReturn(sale *entity.Sale, packageContent map[string]int64, lines []ReturnLine, balanceMethod string) (entity.LiquidationDocument, error) {
	if balanceMethod != entity.PaymentContado && balanceMethod != entity.PaymentCredito {
		return entity.LiquidationDocument{}, domain.NewValidation(
			"método de pago del saldo inválido: %q (use CONTADO o CREDITO)", balanceMethod)
	}

	itemsByID := make(map[string]*entity.SaleItem, len(sale.Items))
	for i := range sale.Items {
		itemsByID[sale.Items[i].ID] = &sale.Items[i]
	}

	totalRefund := decimal.Zero
	var returned []entity.ReturnedItem
	for _, line := range lines {
		item, ok := itemsByID[line.SaleItemID]
		if !ok {
			return entity.LiquidationDocument{}, domain.ErrNotFound
		}
		content := packageContent[item.ProductID]
		if content <= 0 {
			content = 1
		}
		returnedBase := line.Boxes*content + line.Units
		if returnedBase <= 0 {
			continue
		}
		if returnedBase > item.QuantityBase {
			return entity.LiquidationDocument{}, domain.NewValidation(
				"devolución de %s excede lo vendido: solicitado %d, vendido %d",
				item.Description, returnedBase, item.QuantityBase)
		}
		// Proporcional al valor: prorratea descuentos incluidos en TotalPrice.
		refund := item.TotalPrice.
			Mul(decimal.NewFromInt(returnedBase)).
			Div(decimal.NewFromInt(item.QuantityBase))
		totalRefund = totalRefund.Add(refund)
		returned = append(returned, entity.ReturnedItem{
			SaleItemID:   item.ID,
			ProductID:    item.ProductID,
			Description:  item.Description,
			QuantityBase: returnedBase,
			Value:        refund.Round(2),
		})
	}

	totalRefund = totalRefund.Round(2)
	if totalRefund.IsZero() {
		return entity.LiquidationDocument{}, domain.NewValidation(
			"la devolución parcial no tiene cantidades: seleccione al menos un producto")
	}
	if totalRefund.GreaterThanOrEqual(sale.Total.Round(2)) {
		return entity.LiquidationDocument{}, domain.NewValidation(
			"la devolución (%s) cubre el total del comprobante: use la anulación completa",
			totalRefund.StringFixed(2))
	}

	remainder := sale.Total.Sub(totalRefund).Round(2)
	doc := entity.LiquidationDocument{
		SaleID:           sale.ID,
		SaleFullNumber:   sale.FullNumber(),
		Action:           entity.ActionPartialReturn,
		AmountCreditNote: totalRefund,
		BalanceMethod:    balanceMethod,
		ReturnedItems:    returned,
	}
	if balanceMethod == entity.PaymentContado {
		doc.AmountCollected = remainder
	} else {
		doc.AmountCredit = remainder
	}
	return doc, nil
}

// CheckConservation verifica el invariante de conservación de dinero de una
// disposición contra el total de su venta.
func CheckConservation(doc entity.LiquidationDocument, saleTotal decimal.Decimal) bool {
	sum := doc.AmountCollected.
		Add(doc.AmountCredit).
		Add(doc.AmountVoid).
		Add(doc.AmountCreditNote)
	return sum.Sub(saleTotal).Abs().LessThanOrEqual(Epsilon)
}

// Totals agrega las disposiciones de una liquidación.
func Totals(docs []entity.LiquidationDocument) entity.LiquidationTotals {
	t := entity.LiquidationTotals{
		TotalCashCollected:    decimal.Zero,
		TotalCreditReceivable: decimal.Zero,
		TotalVoided:           decimal.Zero,
		TotalReturnsValue:     decimal.Zero,
	}
	for _, d := range docs {
		t.TotalCashCollected = t.TotalCashCollected.Add(d.AmountCollected)
		t.TotalCreditReceivable = t.TotalCreditReceivable.Add(d.AmountCredit)
		t.TotalVoided = t.TotalVoided.Add(d.AmountVoid)
		t.TotalReturnsValue = t.TotalReturnsValue.Add(d.AmountCreditNote)
	}
	return t
}
