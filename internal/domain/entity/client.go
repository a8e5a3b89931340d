package entity

import "time"

// Tipos de documento de identidad (SUNAT, Perú).
const (
	ClientDocRUC = "RUC" // 11 dígitos, persona jurídica
	ClientDocDNI = "DNI" // 8 dígitos, persona natural
)

// Client representa un cliente del canal de distribución.
// Los pedidos y ventas guardan un snapshot de estos campos: el registro
// del cliente solo se usa para completar datos faltantes, nunca para
// sobreescribir un snapshot existente.
type Client struct {
	ID        string
	Name      string
	DocType   string // RUC | DNI
	DocNumber string
	Address   string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
