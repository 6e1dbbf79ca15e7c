package models

import "github.com/shopspring/decimal"

// StockItem is one managed product in the field inventory.
type StockItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	MinThreshold int             `json:"minThreshold"`
}

// StockStatus is the mutually exclusive availability class of an item.
type StockStatus string

const (
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StatusLowStock   StockStatus = "LOW_STOCK"
	StatusInStock    StockStatus = "IN_STOCK"
)

// Status classifies the item against its minimum threshold.
func (i StockItem) Status() StockStatus {
	switch {
	case i.Quantity == 0:
		return StatusOutOfStock
	case i.Quantity <= i.MinThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// Value is quantity times unit price.
func (i StockItem) Value() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Direction of a stock movement.
type Direction string

const (
	DirectionEntry Direction = "ENTRY"
	DirectionExit  Direction = "EXIT"
)

// Summary holds the derived inventory aggregates.
type Summary struct {
	Total      int             `json:"total"`
	OutOfStock int             `json:"outOfStock"`
	LowStock   int             `json:"lowStock"`
	InStock    int             `json:"inStock"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// ImportIssue describes a row-level problem found during a lenient import.
type ImportIssue struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Imported int           `json:"imported"`
	Errors   []ImportIssue `json:"errors"`
}
