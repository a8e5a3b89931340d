package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest alta de producto.
type CreateProductRequest struct {
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	PackageContent int64           `json:"package_content"`
	PriceUnit      decimal.Decimal `json:"price_unit"`
	PricePackage   decimal.Decimal `json:"price_package"`
}

// ProductResponse producto del catálogo.
type ProductResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	PackageContent int64           `json:"package_content"`
	PriceUnit      decimal.Decimal `json:"price_unit"`
	PricePackage   decimal.Decimal `json:"price_package"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ComboItemRequest componente de un combo.
type ComboItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitType  string `json:"unit_type"`
}

// CreateComboRequest alta de combo/promoción.
type CreateComboRequest struct {
	Code  string             `json:"code"`
	Name  string             `json:"name"`
	Price decimal.Decimal    `json:"price"`
	Items []ComboItemRequest `json:"items"`
}

// ComboResponse combo del catálogo.
type ComboResponse struct {
	ID       string             `json:"id"`
	Code     string             `json:"code"`
	Name     string             `json:"name"`
	Price    decimal.Decimal    `json:"price"`
	Items    []ComboItemRequest `json:"items"`
	IsActive bool               `json:"is_active"`
}

// CreateClientRequest alta de cliente.
type CreateClientRequest struct {
	Name      string `json:"name"`
	DocType   string `json:"doc_type"` // RUC | DNI
	DocNumber string `json:"doc_number"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

// ClientResponse cliente registrado.
type ClientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DocType   string `json:"doc_type"`
	DocNumber string `json:"doc_number"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsActive  bool   `json:"is_active"`
}
