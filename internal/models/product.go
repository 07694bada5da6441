package models

import "time"

// Product is a catalog row. Price and StockQuantity read from here are
// authoritative; client-cached copies are display only.
//
// Virtual products (curated snack boxes) have no stock constraint and are
// exempt from reservation.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	CategoryID    string    `json:"category_id"`
	IsVirtual     bool      `json:"is_virtual"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LineKind tags a cart line variant.
type LineKind string

const (
	// LineKindProduct is a physical item backed by a stock row.
	LineKindProduct LineKind = "product"
	// LineKindBundle is a virtual snack-box bundle with no stock row.
	LineKindBundle LineKind = "bundle"
)

// CartLine is one client-assembled cart entry. Only the identity, kind and
// quantity are meaningful to the server; DisplayName and DisplayPrice are a
// client-side cache and never used as a price source.
type CartLine struct {
	Kind      LineKind `json:"kind"`
	ProductID string   `json:"product_id"`
	BundleID  string   `json:"bundle_id,omitempty"`
	Quantity  int      `json:"quantity"`

	DisplayName  string  `json:"name,omitempty"`
	DisplayPrice float64 `json:"price,omitempty"`
}

// CatalogID returns the catalog row id the line refers to, regardless of
// variant.
func (l CartLine) CatalogID() string {
	if l.Kind == LineKindBundle {
		return l.BundleID
	}
	return l.ProductID
}

// MaxLineQuantity caps the quantity a single cart line may request.
const MaxLineQuantity = 50
