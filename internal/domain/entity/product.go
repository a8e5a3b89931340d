package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de venta. PAQUETE equivale a PackageContent unidades base.
const (
	UnitUnidad  = "UNIDAD"
	UnitPaquete = "PAQUETE"
)

// Product representa un producto del catálogo de distribución.
// El stock no vive aquí: se maneja por lote en Batch (FIFO por vencimiento).
type Product struct {
	ID             string
	SKU            string
	Name           string
	Description    string
	PackageContent int64           // unidades base por paquete/caja (>= 1)
	PriceUnit      decimal.Decimal // precio de venta por unidad
	PricePackage   decimal.Decimal // precio de venta por paquete
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BaseUnits convierte una cantidad en la unidad dada a unidades base.
func (p *Product) BaseUnits(quantity int64, unitType string) int64 {
	if unitType == UnitPaquete {
		return quantity * p.PackageContent
	}
	return quantity
}
