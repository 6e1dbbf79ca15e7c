package transfer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
	"github.com/mamadbah2/fieldops/internal/inventory"
)

type snapshotStub struct{ items []models.StockItem }

func (s *snapshotStub) Load(context.Context) ([]models.StockItem, error) { return s.items, nil }

func (s *snapshotStub) Save(_ context.Context, items []models.StockItem) error {
	s.items = items
	return nil
}

type SheetsRepoMock struct{ mock.Mock }

func (m *SheetsRepoMock) ReadRows(ctx context.Context, sheetRange string) ([][]string, error) {
	args := m.Called(ctx, sheetRange)
	rows, _ := args.Get(0).([][]string)
	return rows, args.Error(1)
}

func (m *SheetsRepoMock) ReplaceRows(ctx context.Context, sheetRange string, rows [][]string) error {
	args := m.Called(ctx, sheetRange, rows)
	return args.Error(0)
}

func newLedger(t *testing.T) *inventory.Ledger {
	t.Helper()
	l, err := inventory.Open(context.Background(), &snapshotStub{}, nil)
	require.NoError(t, err)
	return l
}

func TestWorkbookExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newLedger(t)
	_, err := source.Add(ctx, inventory.Draft{Name: "Seed Bag", Quantity: "20", UnitPrice: "15.50", MinThreshold: "5"})
	require.NoError(t, err)
	_, err = source.Add(ctx, inventory.Draft{Name: "Fungicide", Quantity: "0", UnitPrice: "99.9", MinThreshold: "2"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewService(source, nil, "", nil).ExportWorkbook(&buf))

	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{SheetName}, book.GetSheetList())
	rows, err := book.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, inventory.Header, rows[0])
	assert.Len(t, rows, 3)
	for _, ref := range []string{"B2", "C2", "D2", "B3", "C3", "D3"} {
		cellType, err := book.GetCellType(SheetName, ref)
		require.NoError(t, err)
		// An absent cell type attribute means a number in OOXML.
		assert.Contains(t, []excelize.CellType{excelize.CellTypeNumber, excelize.CellTypeUnset}, cellType, ref)
	}
	assert.Equal(t, []string{"Seed Bag", "20", "15.5", "5"}, rows[1])
	price, err := book.GetCellValue(SheetName, "C3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "99.9", price)
	require.NoError(t, book.Close())

	target := newLedger(t)
	result, err := NewService(target, nil, "", nil).ImportWorkbook(ctx, "inventario.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)

	imported := target.Items()
	require.Len(t, imported, 2)
	assert.Equal(t, "Seed Bag", imported[0].Name)
	assert.Equal(t, 20, imported[0].Quantity)
	assert.Equal(t, "15.5", imported[0].UnitPrice.String())
	assert.Equal(t, models.StatusOutOfStock, imported[1].Status())
}

func TestImportWorkbookRejectsLegacyAndGarbage(t *testing.T) {
	svc := NewService(newLedger(t), nil, "", nil)
	ctx := context.Background()

	_, err := svc.ImportWorkbook(ctx, "old.xls", strings.NewReader("whatever"))
	assert.ErrorIs(t, err, domain.ErrSchema)

	_, err = svc.ImportWorkbook(ctx, "notes.txt", strings.NewReader("whatever"))
	assert.ErrorIs(t, err, domain.ErrSchema)

	_, err = svc.ImportWorkbook(ctx, "broken.xlsx", strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestImportSheet(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	sheets := new(SheetsRepoMock)
	sheets.On("ReadRows", ctx, "Inventario!A:D").Return([][]string{
		{"nombre", "cantidad", "precio", "stockMinimo"},
		{"Seed Bag", "12", "3.5", "4"},
		{"Shovel", "2", "10.25", "1"},
	}, nil)

	result, err := NewService(ledger, sheets, "Inventario!A:D", nil).ImportSheet(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	items := ledger.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, "10.25", items[1].UnitPrice.String())
	sheets.AssertExpectations(t)
}

func TestImportSheetFailure(t *testing.T) {
	ctx := context.Background()
	sheets := new(SheetsRepoMock)
	sheets.On("ReadRows", ctx, "Inventario!A:D").Return(nil, errors.New("quota exceeded"))

	_, err := NewService(newLedger(t), sheets, "Inventario!A:D", nil).ImportSheet(ctx)
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestExportSheet(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	_, err := ledger.Add(ctx, inventory.Draft{Name: "Seed Bag", Quantity: "20", UnitPrice: "15.50", MinThreshold: "5"})
	require.NoError(t, err)

	expected := [][]string{
		{"name", "quantity", "unitPrice", "minThreshold"},
		{"Seed Bag", "20", "15.5", "5"},
	}
	sheets := new(SheetsRepoMock)
	sheets.On("ReplaceRows", ctx, "Inventario!A:D", expected).Return(nil)

	written, err := NewService(ledger, sheets, "Inventario!A:D", nil).ExportSheet(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	sheets.AssertExpectations(t)
}

func TestSheetsDisabled(t *testing.T) {
	svc := NewService(newLedger(t), nil, "", nil)
	_, err := svc.ImportSheet(context.Background())
	assert.ErrorIs(t, err, domain.ErrExternalService)
	_, err = svc.ExportSheet(context.Background())
	assert.ErrorIs(t, err, domain.ErrExternalService)
}
