package entity

import "time"

// Tipos de documento SUNAT que llevan serie y correlativo propio.
const (
	DocTypeFactura     = "FACTURA"
	DocTypeBoleta      = "BOLETA"
	DocTypeGuia        = "GUIA"
	DocTypeNotaCredito = "NOTA_CREDITO"
)

// DocumentSeries serie activa y correlativo de un tipo de documento.
// Solo la muta el paso de numeración, con incremento estricto de a 1:
// sin huecos, sin reuso, nunca dos documentos con el mismo (serie, número).
type DocumentSeries struct {
	ID            string
	Type          string
	Series        string
	CurrentNumber int64
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DefaultSeries devuelve la serie por defecto cuando no hay ninguna
// configurada para el tipo (camino degradado pero no fatal; arranca en 1).
func DefaultSeries(docType string) string {
	switch docType {
	case DocTypeFactura:
		return "F001"
	case DocTypeBoleta:
		return "B001"
	case DocTypeGuia:
		return "T001"
	case DocTypeNotaCredito:
		return "FC01"
	}
	return ""
}
