// Package pdf implementa la representación imprimible de la liquidación de
// una hoja de reparto: el documento que el repartidor entrega en caja junto
// con el efectivo cobrado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Liquidación de Reparto │ Ruta + Repartidor + Fecha │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Comprobante | Acción | Cobrado | Crédito | NC       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DEVOLUCIONES: detalle de unidades devueltas por documento  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Efectivo / Por cobrar / Anulado / Devoluciones    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appdispatch "github.com/jhoicas/Distribucion-api/internal/application/dispatch"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ appdispatch.LiquidationPDFGenerator = (*MarotoLiquidationGenerator)(nil)

// MarotoLiquidationGenerator implementa dispatch.LiquidationPDFGenerator
// usando Maroto v2.
type MarotoLiquidationGenerator struct{}

// NewMarotoLiquidationGenerator construye el generador.
func NewMarotoLiquidationGenerator() *MarotoLiquidationGenerator {
	return &MarotoLiquidationGenerator{}
}

// GenerateLiquidationPDF genera el PDF de la liquidación y devuelve sus bytes.
func (g *MarotoLiquidationGenerator) GenerateLiquidationPDF(
	_ context.Context,
	sheet *entity.DispatchSheet,
	liq *entity.DispatchLiquidation,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Liquidación de Reparto", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet, liq))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range documentRows(liq.Documents) {
		m.AddRows(r)
	}

	if returns := returnRows(liq.Documents); len(returns) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New("DEVOLUCIONES A ALMACÉN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)))
		for _, r := range returns {
			m.AddRows(r)
		}
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(liq))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar liquidación: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título + ruta/repartidor (izq) y fecha (der).
func headerRow(sheet *entity.DispatchSheet, liq *entity.DispatchLiquidation) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("LIQUIDACIÓN DE REPARTO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Ruta: %s   |   Repartidor: %s", sheet.Route, sheet.Driver), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Fecha de reparto: "+sheet.Date.Format("02/01/2006"), props.Text{
				Size: 9, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Liquidada: "+liq.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de disposiciones.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Comprobante", 2, align.Left),
		h("Acción", 2, align.Center),
		h("Cobrado", 2, align.Right),
		h("Crédito", 2, align.Right),
		h("Anulado", 2, align.Right),
		h("Nota Crédito", 2, align.Right),
	)
}

// documentRows: una fila por disposición, con la NC al pie cuando existe.
func documentRows(docs []entity.LiquidationDocument) []core.Row {
	result := make([]core.Row, 0, len(docs))
	for _, d := range docs {
		ncCell := money(d.AmountCreditNote)
		if d.CreditNoteSeries != "" {
			ncCell = d.CreditNoteSeries + "-" + strconv.FormatInt(d.CreditNoteNumber, 10) +
				"  " + money(d.AmountCreditNote)
		}
		result = append(result, row.New(7).Add(
			cell(d.SaleFullNumber, 2, align.Left),
			cell(actionLabel(d.Action), 2, align.Center),
			cell(money(d.AmountCollected), 2, align.Right),
			cell(money(d.AmountCredit), 2, align.Right),
			cell(money(d.AmountVoid), 2, align.Right),
			cell(ncCell, 2, align.Right),
		))
	}
	return result
}

// returnRows: detalle de unidades devueltas por devoluciones parciales y anulaciones.
func returnRows(docs []entity.LiquidationDocument) []core.Row {
	var result []core.Row
	for _, d := range docs {
		for _, r := range d.ReturnedItems {
			result = append(result, row.New(6).Add(
				cell(d.SaleFullNumber, 2, align.Left),
				cell(r.Description, 6, align.Left),
				cell(strconv.FormatInt(r.QuantityBase, 10)+" und.", 2, align.Right),
				cell(money(r.Value), 2, align.Right),
			))
		}
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(liq *entity.DispatchLiquidation) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(30).Add(
		col.New(4),
		col.New(4).Add(
			label("Crédito por cobrar:"),
			label("Anulado:"),
			label("Devoluciones:"),
			grandLabel("EFECTIVO A ENTREGAR:"),
		),
		col.New(4).Add(
			value(money(liq.TotalCreditReceivable)),
			value(money(liq.TotalVoided)),
			value(money(liq.TotalReturnsValue)),
			grandValue(money(liq.TotalCashCollected)),
		),
	)
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{
		Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func actionLabel(action string) string {
	switch action {
	case entity.ActionPaid:
		return "Pagado"
	case entity.ActionCredit:
		return "Crédito"
	case entity.ActionVoid:
		return "Anulado"
	case entity.ActionPartialReturn:
		return "Dev. parcial"
	}
	return action
}

func money(d decimal.Decimal) string {
	return "S/ " + d.StringFixed(2)
}
