package liquidation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/liquidation"
)

// venta de prueba: dos líneas, total 150.00.
// item-1: 10 unidades base por 60.00; item-2: 6 unidades base por 90.00.
func buildSale() *entity.Sale {
	return &entity.Sale{
		ID:            "sale-1",
		Series:        "F001",
		Number:        102,
		DocType:       entity.DocTypeFactura,
		PaymentMethod: entity.PaymentCredito,
		Total:         decimal.NewFromFloat(150.00),
		Balance:       decimal.NewFromFloat(150.00),
		Items: []entity.SaleItem{
			{
				ID:           "item-1",
				ProductID:    "prod-1",
				Description:  "Gaseosa 500ml",
				QuantityBase: 10,
				TotalPrice:   decimal.NewFromFloat(60.00),
			},
			{
				ID:           "item-2",
				ProductID:    "prod-2",
				Description:  "Galleta soda",
				QuantityBase: 6,
				TotalPrice:   decimal.NewFromFloat(90.00),
			},
		},
	}
}

var packageContent = map[string]int64{"prod-1": 5, "prod-2": 6}

func assertConservation(t *testing.T, doc entity.LiquidationDocument, total decimal.Decimal) {
	t.Helper()
	assert.True(t, liquidation.CheckConservation(doc, total),
		"cobrado+crédito+anulado+NC debe igualar el total de la venta (±0.01)")
}

func TestPaid_TodoElTotalCobrado(t *testing.T) {
	sale := buildSale()
	doc := liquidation.Paid(sale)

	assert.Equal(t, entity.ActionPaid, doc.Action)
	assert.True(t, doc.AmountCollected.Equal(sale.Total))
	assert.True(t, doc.AmountCredit.IsZero())
	assert.True(t, doc.AmountVoid.IsZero())
	assert.True(t, doc.AmountCreditNote.IsZero())
	assertConservation(t, doc, sale.Total)
}

func TestCredit_TodoElTotalACredito(t *testing.T) {
	sale := buildSale()
	doc := liquidation.Credit(sale)

	assert.True(t, doc.AmountCredit.Equal(sale.Total))
	assert.True(t, doc.AmountCollected.IsZero())
	assertConservation(t, doc, sale.Total)
}

func TestVoid_RequiereMotivoDeAlMenos5Caracteres(t *testing.T) {
	sale := buildSale()
	_, err := liquidation.Void(sale, "malo")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "motivo corto debe ser error de validación")

	doc, err := liquidation.Void(sale, "cliente rechazó el pedido")
	require.NoError(t, err)
	assert.True(t, doc.AmountVoid.Equal(sale.Total))
	assertConservation(t, doc, sale.Total)
}

func TestVoid_DevuelveTodasLasLineasCompletas(t *testing.T) {
	sale := buildSale()
	doc, err := liquidation.Void(sale, "local cerrado en ruta")
	require.NoError(t, err)

	require.Len(t, doc.ReturnedItems, 2)
	assert.Equal(t, int64(10), doc.ReturnedItems[0].QuantityBase, "anulación devuelve el 100% de cada línea")
	assert.Equal(t, int64(6), doc.ReturnedItems[1].QuantityBase)
	assert.True(t, doc.ReturnedItems[0].Value.Equal(decimal.NewFromFloat(60.00)))
}

// Escenario fin a fin del flujo de nota de crédito: total 150.00 CREDITO,
// devolución del item de 60.00 completo, saldo 90.00 cobrado en CONTADO.
func TestPartialReturn_EscenarioCompleto(t *testing.T) {
	sale := buildSale()
	doc, err := liquidation.PartialReturn(sale, packageContent, []liquidation.ReturnLine{
		{SaleItemID: "item-1", Boxes: 2, Units: 0}, // 2 cajas x 5 = 10 base = línea completa
	}, entity.PaymentContado)
	require.NoError(t, err)

	assert.True(t, doc.AmountCreditNote.Equal(decimal.NewFromFloat(60.00)), "NC = valor proporcional devuelto")
	assert.True(t, doc.AmountCollected.Equal(decimal.NewFromFloat(90.00)), "saldo entero a CONTADO")
	assert.True(t, doc.AmountCredit.IsZero())
	assert.True(t, doc.AmountVoid.IsZero())
	assertConservation(t, doc, sale.Total)
}

func TestPartialReturn_SaldoACredito(t *testing.T) {
	sale := buildSale()
	doc, err := liquidation.PartialReturn(sale, packageContent, []liquidation.ReturnLine{
		{SaleItemID: "item-1", Boxes: 1, Units: 0}, // 5 de 10 base => 30.00
	}, entity.PaymentCredito)
	require.NoError(t, err)

	assert.True(t, doc.AmountCreditNote.Equal(decimal.NewFromFloat(30.00)))
	assert.True(t, doc.AmountCredit.Equal(decimal.NewFromFloat(120.00)), "saldo entero a CREDITO, nunca partido")
	assert.True(t, doc.AmountCollected.IsZero())
	assertConservation(t, doc, sale.Total)
}

// El reembolso es proporcional al valor (prorratea descuentos de línea),
// no al precio unitario de lista.
func TestPartialReturn_ProporcionalAlValor(t *testing.T) {
	sale := buildSale()
	doc, err := liquidation.PartialReturn(sale, packageContent, []liquidation.ReturnLine{
		{SaleItemID: "item-2", Boxes: 0, Units: 2}, // 2 de 6 base => 90.00 * 2/6 = 30.00
	}, entity.PaymentContado)
	require.NoError(t, err)

	assert.True(t, doc.AmountCreditNote.Equal(decimal.NewFromFloat(30.00)))
	assert.True(t, doc.AmountCollected.Equal(decimal.NewFromFloat(120.00)))
	assertConservation(t, doc, sale.Total)
}

func TestPartialReturn_RechazaCantidadMayorALaVendida(t *testing.T) {
	sale := buildSale()
	_, err := liquidation.PartialReturn(sale, packageContent, []liquidation.ReturnLine{
		{SaleItemID: "item-1", Boxes: 2, Units: 2}, // 12 > 10 vendidas
	}, entity.PaymentContado)

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "Gaseosa 500ml", "el error debe nombrar el producto")
	assert.Contains(t, err.Error(), "12", "el error debe indicar lo solicitado")
	assert.Contains(t, err.Error(), "10", "el error debe indicar lo vendido")
	// sin mutación: la venta queda intacta
	assert.Equal(t, int64(10), sale.Items[0].QuantityBase)
}

func TestPartialReturn_RechazaDevolucionVacia(t *testing.T) {
	sale := buildSale()
	_, err := liquidation.PartialReturn(sale, packageContent, nil, entity.PaymentContado)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = liquidation.PartialReturn(sale, packageContent, []liquidation.ReturnLine{
		{SaleItemID: "item-1", Boxes: 0, Units: 0},
	}, entity.PaymentContado)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestPartialReturn_RechazaReembolsoIgualOMayorAlTotal(t *testing.T) {
	sale := buildSale()
	_, err := liquidation.PartialReturn(sale, packageContent, []liquidation.ReturnLine{
		{SaleItemID: "item-1", Boxes: 2, Units: 0}, // 60.00
		{SaleItemID: "item-2", Boxes: 1, Units: 0}, // 90.00 => 150.00 == total
	}, entity.PaymentContado)

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "anulación", "debe sugerir usar la anulación completa")
}

func TestPartialReturn_LineaDesconocida(t *testing.T) {
	sale := buildSale()
	_, err := liquidation.PartialReturn(sale, packageContent, []liquidation.ReturnLine{
		{SaleItemID: "no-existe", Units: 1},
	}, entity.PaymentContado)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPartialReturn_MetodoDeSaldoInvalido(t *testing.T) {
	sale := buildSale()
	_, err := liquidation.PartialReturn(sale, packageContent, []liquidation.ReturnLine{
		{SaleItemID: "item-1", Units: 1},
	}, "TARJETA")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

// Conservación con redondeo: 3 de 7 base sobre 100.00 produce decimales
// periódicos; el invariante debe sostenerse dentro de 0.01.
func TestPartialReturn_ConservacionConRedondeo(t *testing.T) {
	sale := &entity.Sale{
		ID:     "sale-r",
		Series: "B001",
		Number: 9,
		Total:  decimal.NewFromFloat(100.00),
		Items: []entity.SaleItem{{
			ID:           "item-r",
			ProductID:    "prod-r",
			Description:  "Pack surtido",
			QuantityBase: 7,
			TotalPrice:   decimal.NewFromFloat(100.00),
		}},
	}
	doc, err := liquidation.PartialReturn(sale, map[string]int64{"prod-r": 1}, []liquidation.ReturnLine{
		{SaleItemID: "item-r", Units: 3},
	}, entity.PaymentContado)
	require.NoError(t, err)
	assertConservation(t, doc, sale.Total)
	assert.True(t, doc.AmountCreditNote.Equal(decimal.NewFromFloat(42.86)))
	assert.True(t, doc.AmountCollected.Equal(decimal.NewFromFloat(57.14)))
}

func TestTotals_AgregaLasDisposiciones(t *testing.T) {
	docs := []entity.LiquidationDocument{
		{AmountCollected: decimal.NewFromFloat(90.00), AmountCreditNote: decimal.NewFromFloat(60.00)},
		{AmountCredit: decimal.NewFromFloat(200.00)},
		{AmountVoid: decimal.NewFromFloat(75.50)},
	}
	totals := liquidation.Totals(docs)
	assert.True(t, totals.TotalCashCollected.Equal(decimal.NewFromFloat(90.00)))
	assert.True(t, totals.TotalCreditReceivable.Equal(decimal.NewFromFloat(200.00)))
	assert.True(t, totals.TotalVoided.Equal(decimal.NewFromFloat(75.50)))
	assert.True(t, totals.TotalReturnsValue.Equal(decimal.NewFromFloat(60.00)))
}
