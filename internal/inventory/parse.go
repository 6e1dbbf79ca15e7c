package inventory

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
)

// Column names of the import/export schema, in export order.
const (
	ColumnName         = "name"
	ColumnQuantity     = "quantity"
	ColumnUnitPrice    = "unitPrice"
	ColumnMinThreshold = "minThreshold"
)

// MaxQuantity bounds quantities, thresholds and movement amounts so that
// stock arithmetic cannot overflow.
const MaxQuantity = math.MaxInt32

// Header is the spreadsheet header row written by ExportAll.
var Header = []string{ColumnName, ColumnQuantity, ColumnUnitPrice, ColumnMinThreshold}

// headerAliases maps normalized header text to a schema column. The Spanish
// names are what field teams already have in their spreadsheets.
var headerAliases = map[string]string{
	"name":         ColumnName,
	"nombre":       ColumnName,
	"quantity":     ColumnQuantity,
	"cantidad":     ColumnQuantity,
	"unitprice":    ColumnUnitPrice,
	"price":        ColumnUnitPrice,
	"precio":       ColumnUnitPrice,
	"minthreshold": ColumnMinThreshold,
	"stockminimo":  ColumnMinThreshold,
}

// Draft is raw user input for a new item.
type Draft struct {
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
	UnitPrice    string `json:"unitPrice"`
	MinThreshold string `json:"minThreshold"`
}

func (d Draft) parse() (models.StockItem, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return models.StockItem{}, domain.Validationf("name is required")
	}

	quantity, err := parseCount(ColumnQuantity, d.Quantity)
	if err != nil {
		return models.StockItem{}, err
	}

	price, err := parsePrice(d.UnitPrice)
	if err != nil {
		return models.StockItem{}, err
	}

	threshold, err := parseCount(ColumnMinThreshold, d.MinThreshold)
	if err != nil {
		return models.StockItem{}, err
	}

	return models.StockItem{
		Name:         name,
		Quantity:     quantity,
		UnitPrice:    price,
		MinThreshold: threshold,
	}, nil
}

func parseCount(field, raw string) (int, error) {
	str := strings.TrimSpace(raw)
	if str == "" {
		return 0, domain.Validationf("%s is required", field)
	}
	value, err := strconv.Atoi(str)
	if err != nil {
		return 0, domain.Validationf("%s must be a whole number, got %q", field, raw)
	}
	if value < 0 {
		return 0, domain.Validationf("%s must not be negative", field)
	}
	if value > MaxQuantity {
		return 0, domain.Validationf("%s must not exceed %d", field, MaxQuantity)
	}
	return value, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	str := strings.TrimSpace(raw)
	if str == "" {
		return decimal.Zero, domain.Validationf("%s is required", ColumnUnitPrice)
	}
	value, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, domain.Validationf("%s must be a decimal number, got %q", ColumnUnitPrice, raw)
	}
	if value.IsNegative() {
		return decimal.Zero, domain.Validationf("%s must not be negative", ColumnUnitPrice)
	}
	return value, nil
}

func parseDelta(raw string) (int, error) {
	str := strings.TrimSpace(raw)
	value, err := strconv.Atoi(str)
	if err != nil || value <= 0 {
		return 0, domain.Validationf("movement quantity must be a positive whole number, got %q", raw)
	}
	if value > MaxQuantity {
		return 0, domain.Validationf("movement quantity must not exceed %d", MaxQuantity)
	}
	return value, nil
}

func normalizeHeader(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(value)))
}

// columnIndex resolves the position of every schema column in header.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(Header))
	for pos, title := range header {
		column, ok := headerAliases[normalizeHeader(title)]
		if !ok {
			continue
		}
		if _, seen := index[column]; !seen {
			index[column] = pos
		}
	}

	var missing []string
	for _, column := range Header {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, domain.Schemaf("spreadsheet is missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

// lenientCount converts an imported cell, falling back to zero.
func lenientCount(raw string) (int, bool) {
	str := strings.TrimSpace(raw)
	if str == "" {
		return 0, false
	}
	if value, err := strconv.Atoi(str); err == nil {
		if value < 0 || value > MaxQuantity {
			return 0, false
		}
		return value, true
	}
	// Numeric cells can come back as "12.0".
	f, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > MaxQuantity {
		return 0, false
	}
	if f < 0 {
		return 0, false
	}
	return int(f), true
}

func lenientPrice(raw string) (decimal.Decimal, bool) {
	str := strings.TrimSpace(raw)
	if str == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(str)
	if err != nil || value.IsNegative() {
		return decimal.Zero, false
	}
	return value, true
}

func cell(row []string, pos int) string {
	if pos < len(row) {
		return row[pos]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
