package dto

// CreateSeriesRequest alta de serie de numeración.
type CreateSeriesRequest struct {
	Type        string `json:"type"`         // FACTURA | BOLETA | GUIA | NOTA_CREDITO
	Series      string `json:"series"`       // ej. F002
	StartNumber int64  `json:"start_number"` // último número usado; el primero emitido será +1
	Active      bool   `json:"active"`
}

// SeriesResponse serie configurada.
type SeriesResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Series        string `json:"series"`
	CurrentNumber int64  `json:"current_number"`
	IsActive      bool   `json:"is_active"`
}
