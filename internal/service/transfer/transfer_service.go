package transfer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
	"github.com/mamadbah2/fieldops/internal/inventory"
	repo "github.com/mamadbah2/fieldops/internal/repository/sheets"
)

// SheetName is the worksheet written by exports. It matches the download
// name inventario.xlsx.
const SheetName = "Inventario"

// Ledger is the part of the inventory ledger used for transfers.
type Ledger interface {
	ImportBulk(ctx context.Context, rows [][]string) (models.ImportResult, error)
	ExportAll() [][]string
	Items() []models.StockItem
}

// Service moves inventory snapshots between the ledger and spreadsheets.
type Service struct {
	ledger     Ledger
	sheets     repo.Repository
	sheetRange string
	logger     *zap.Logger
}

// NewService wires a transfer service. sheets may be nil when Google Sheets
// is not configured.
func NewService(ledger Ledger, sheets repo.Repository, sheetRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, sheets: sheets, sheetRange: sheetRange, logger: logger}
}

// ImportWorkbook reads the first worksheet of an .xlsx file into the ledger.
func (s *Service) ImportWorkbook(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", "":
	case ".xls":
		return models.ImportResult{}, domain.Schemaf("legacy .xls workbooks are not supported, save the file as .xlsx")
	default:
		return models.ImportResult{}, domain.Schemaf("unsupported file type %q, expected .xlsx", filepath.Ext(filename))
	}

	book, err := excelize.OpenReader(r)
	if err != nil {
		return models.ImportResult{}, domain.Schemaf("cannot read workbook %s: %v", filename, err)
	}
	defer func() { _ = book.Close() }()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return models.ImportResult{}, domain.Schemaf("workbook %s has no sheets", filename)
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return models.ImportResult{}, domain.Schemaf("cannot read sheet %s: %v", sheets[0], err)
	}

	s.logger.Info("importing workbook", zap.String("file", filename), zap.String("sheet", sheets[0]), zap.Int("rows", len(rows)))
	return s.ledger.ImportBulk(ctx, rows)
}

// ExportWorkbook writes the current snapshot as an .xlsx workbook.
func (s *Service) ExportWorkbook(w io.Writer) error {
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()

	if err := book.SetSheetName(book.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	items := s.ledger.Items()
	rows := make([][]interface{}, 0, len(items)+1)
	header := make([]interface{}, len(inventory.Header))
	for j, title := range inventory.Header {
		header[j] = title
	}
	rows = append(rows, header)
	// Counts and price are written as numeric cells.
	for _, item := range items {
		rows = append(rows, []interface{}{
			item.Name,
			item.Quantity,
			item.UnitPrice.InexactFloat64(),
			item.MinThreshold,
		})
	}

	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell reference for row %d: %w", i+1, err)
		}
		if err := book.SetSheetRow(SheetName, ref, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := book.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ImportSheet imports the configured Google Sheets range.
func (s *Service) ImportSheet(ctx context.Context) (models.ImportResult, error) {
	if s.sheets == nil {
		return models.ImportResult{}, domain.ExternalService("google sheets integration is not configured", nil)
	}

	rows, err := s.sheets.ReadRows(ctx, s.sheetRange)
	if err != nil {
		s.logger.Error("failed to read inventory sheet", zap.Error(err))
		return models.ImportResult{}, domain.ExternalService("read google sheet", err)
	}

	s.logger.Info("importing google sheet", zap.String("range", s.sheetRange), zap.Int("rows", len(rows)))
	return s.ledger.ImportBulk(ctx, rows)
}

// ExportSheet overwrites the configured Google Sheets range with the snapshot.
func (s *Service) ExportSheet(ctx context.Context) (int, error) {
	if s.sheets == nil {
		return 0, domain.ExternalService("google sheets integration is not configured", nil)
	}

	rows := s.ledger.ExportAll()
	if err := s.sheets.ReplaceRows(ctx, s.sheetRange, rows); err != nil {
		s.logger.Error("failed to write inventory sheet", zap.Error(err))
		return 0, domain.ExternalService("write google sheet", err)
	}
	return len(rows) - 1, nil
}
