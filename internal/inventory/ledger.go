package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
)

// Ledger owns the stock collection and keeps its snapshot persisted.
//
// Every mutation is applied in memory first and then the complete collection
// is written. A failed write is reported as a PersistenceError but the
// in-memory state is kept; the next successful mutation persists it.
type Ledger struct {
	mu     sync.Mutex
	items  []models.StockItem
	store  SnapshotStore
	logger *zap.Logger
	newID  func() string
}

// Option customises a Ledger.
type Option func(*Ledger)

// WithIDGenerator overrides id generation.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// Open builds a ledger and loads the persisted snapshot.
func Open(ctx context.Context, store SnapshotStore, logger *zap.Logger, opts ...Option) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Ledger{
		store:  store,
		logger: logger,
		newID:  newItemID,
	}
	for _, opt := range opts {
		opt(l)
	}

	items, err := store.Load(ctx)
	if err != nil {
		return nil, domain.Persistence("load inventory", err)
	}
	if err := checkSnapshot(items); err != nil {
		return nil, domain.Persistence("load inventory", err)
	}
	l.items = items

	logger.Info("inventory loaded", zap.Int("items", len(items)))
	return l, nil
}

// checkSnapshot rejects a stored collection that breaks the item invariants.
func checkSnapshot(items []models.StockItem) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		switch {
		case item.ID == "":
			return fmt.Errorf("item %d has an empty id", i)
		case strings.TrimSpace(item.Name) == "":
			return fmt.Errorf("item %s has an empty name", item.ID)
		case item.Quantity < 0 || item.Quantity > MaxQuantity:
			return fmt.Errorf("item %s has quantity %d out of range", item.ID, item.Quantity)
		case item.MinThreshold < 0 || item.MinThreshold > MaxQuantity:
			return fmt.Errorf("item %s has threshold %d out of range", item.ID, item.MinThreshold)
		case item.UnitPrice.IsNegative():
			return fmt.Errorf("item %s has negative unit price %s", item.ID, item.UnitPrice)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("duplicate item id %s", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// newItemID combines a timestamp with a random suffix so ids stay unique
// even when a bulk import creates many items within the same instant.
func newItemID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix
}

// Items returns a copy of the collection in insertion order.
func (l *Ledger) Items() []models.StockItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.StockItem(nil), l.items...)
}

// Get returns the item with the given id.
func (l *Ledger) Get(id string) (models.StockItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos := l.indexOf(id)
	if pos < 0 {
		return models.StockItem{}, domain.NotFoundf("stock item %s not found", id)
	}
	return l.items[pos], nil
}

// Add validates draft, appends a new item and persists the collection.
func (l *Ledger) Add(ctx context.Context, draft Draft) (models.StockItem, error) {
	item, err := draft.parse()
	if err != nil {
		return models.StockItem{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item.ID = l.newID()
	l.items = append(l.items, item)

	l.logger.Info("stock item added",
		zap.String("id", item.ID),
		zap.String("name", item.Name),
		zap.Int("quantity", item.Quantity))

	return item, l.persist(ctx)
}

// Remove deletes the item with the given id.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos := l.indexOf(id)
	if pos < 0 {
		return domain.NotFoundf("stock item %s not found", id)
	}

	l.items = append(l.items[:pos:pos], l.items[pos+1:]...)
	l.logger.Info("stock item removed", zap.String("id", id))

	return l.persist(ctx)
}

// AdjustStock applies an entry or exit movement to a single item.
func (l *Ledger) AdjustStock(ctx context.Context, id, delta string, direction models.Direction) (models.StockItem, error) {
	amount, err := parseDelta(delta)
	if err != nil {
		return models.StockItem{}, err
	}
	if direction != models.DirectionEntry && direction != models.DirectionExit {
		return models.StockItem{}, domain.Validationf("direction must be %s or %s, got %q", models.DirectionEntry, models.DirectionExit, direction)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos := l.indexOf(id)
	if pos < 0 {
		return models.StockItem{}, domain.NotFoundf("stock item %s not found", id)
	}

	item := l.items[pos]
	switch direction {
	case models.DirectionEntry:
		if item.Quantity > MaxQuantity-amount {
			return models.StockItem{}, domain.Validationf("cannot add %d units of %s: stock would exceed %d", amount, item.Name, MaxQuantity)
		}
		item.Quantity += amount
	case models.DirectionExit:
		if item.Quantity-amount < 0 {
			return models.StockItem{}, domain.InsufficientStockf("cannot remove %d units of %s: only %d in stock", amount, item.Name, item.Quantity)
		}
		item.Quantity -= amount
	}
	l.items[pos] = item

	l.logger.Info("stock movement applied",
		zap.String("id", id),
		zap.String("direction", string(direction)),
		zap.Int("amount", amount),
		zap.Int("quantity", item.Quantity))

	return item, l.persist(ctx)
}

// ImportBulk appends the data rows of a spreadsheet. The first row must be a
// header naming every schema column; rows are converted leniently.
func (l *Ledger) ImportBulk(ctx context.Context, rows [][]string) (models.ImportResult, error) {
	result := models.ImportResult{Errors: []models.ImportIssue{}}
	if len(rows) == 0 {
		return result, domain.Schemaf("spreadsheet is empty: a header row is required")
	}

	index, err := columnIndex(rows[0])
	if err != nil {
		return result, err
	}

	imported := make([]models.StockItem, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNumber := i + 2 // 1-based, header is row 1
		if blankRow(row) {
			continue
		}
		item, issues := convertRow(row, rowNumber, index)
		result.Errors = append(result.Errors, issues...)
		if item == nil {
			continue
		}
		imported = append(imported, *item)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range imported {
		imported[i].ID = l.newID()
	}
	l.items = append(l.items, imported...)
	result.Imported = len(imported)

	l.logger.Info("inventory imported",
		zap.Int("imported", result.Imported),
		zap.Int("issues", len(result.Errors)))

	return result, l.persist(ctx)
}

func convertRow(row []string, rowNumber int, index map[string]int) (*models.StockItem, []models.ImportIssue) {
	var issues []models.ImportIssue

	name := strings.TrimSpace(cell(row, index[ColumnName]))
	if name == "" {
		issues = append(issues, models.ImportIssue{Row: rowNumber, Column: ColumnName, Message: "row skipped: name is empty"})
		return nil, issues
	}

	count := func(column string) int {
		raw := cell(row, index[column])
		value, ok := lenientCount(raw)
		if !ok {
			issues = append(issues, models.ImportIssue{Row: rowNumber, Column: column, Value: raw, Message: "not a non-negative whole number, defaulted to 0"})
		}
		return value
	}

	item := &models.StockItem{
		Name:         name,
		Quantity:     count(ColumnQuantity),
		MinThreshold: count(ColumnMinThreshold),
	}

	rawPrice := cell(row, index[ColumnUnitPrice])
	price, ok := lenientPrice(rawPrice)
	if !ok {
		issues = append(issues, models.ImportIssue{Row: rowNumber, Column: ColumnUnitPrice, Value: rawPrice, Message: "not a non-negative decimal, defaulted to 0"})
	}
	item.UnitPrice = price

	return item, issues
}

// ExportAll returns the header followed by one row per item.
func (l *Ledger) ExportAll() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := make([][]string, 0, len(l.items)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, item := range l.items {
		rows = append(rows, []string{
			item.Name,
			strconv.Itoa(item.Quantity),
			item.UnitPrice.String(),
			strconv.Itoa(item.MinThreshold),
		})
	}
	return rows
}

// Summary derives the inventory aggregates from the current state.
func (l *Ledger) Summary() models.Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary := models.Summary{Total: len(l.items), TotalValue: decimal.Zero}
	for _, item := range l.items {
		switch item.Status() {
		case models.StatusOutOfStock:
			summary.OutOfStock++
		case models.StatusLowStock:
			summary.LowStock++
		default:
			summary.InStock++
		}
		summary.TotalValue = summary.TotalValue.Add(item.Value())
	}
	return summary
}

// LowStock returns the items that are out of stock or at their threshold.
func (l *Ledger) LowStock() []models.StockItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.StockItem
	for _, item := range l.items {
		if item.Status() != models.StatusInStock {
			out = append(out, item)
		}
	}
	return out
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with l.mu held.
func (l *Ledger) persist(ctx context.Context) error {
	snapshot := append([]models.StockItem(nil), l.items...)
	if err := l.store.Save(ctx, snapshot); err != nil {
		l.logger.Error("failed to persist inventory", zap.Int("items", len(snapshot)), zap.Error(err))
		return domain.Persistence(fmt.Sprintf("persist %d stock items", len(snapshot)), err)
	}
	return nil
}
