package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
	"github.com/mamadbah2/fieldops/internal/inventory"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Ledger is the inventory surface exposed over HTTP.
type Ledger interface {
	Items() []models.StockItem
	Get(id string) (models.StockItem, error)
	Add(ctx context.Context, draft inventory.Draft) (models.StockItem, error)
	Remove(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id, delta string, direction models.Direction) (models.StockItem, error)
	Summary() models.Summary
}

// Transfer moves the inventory to and from spreadsheets.
type Transfer interface {
	ImportWorkbook(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error)
	ExportWorkbook(w io.Writer) error
	ImportSheet(ctx context.Context) (models.ImportResult, error)
	ExportSheet(ctx context.Context) (int, error)
}

// InventoryHandler exposes the inventory ledger.
type InventoryHandler struct {
	ledger   Ledger
	transfer Transfer
	logger   *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(ledger Ledger, transfer Transfer, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{ledger: ledger, transfer: transfer, logger: logger}
}

type itemView struct {
	models.StockItem
	Status models.StockStatus `json:"status"`
}

func viewOf(item models.StockItem) itemView {
	return itemView{StockItem: item, Status: item.Status()}
}

type addItemRequest struct {
	Name         string     `json:"name"`
	Quantity     flexString `json:"quantity"`
	UnitPrice    flexString `json:"unitPrice"`
	MinThreshold flexString `json:"minThreshold"`
}

type movementRequest struct {
	Quantity  flexString `json:"quantity"`
	Direction string     `json:"direction"`
}

// List returns every item with its stock status.
func (h *InventoryHandler) List(c *gin.Context) {
	items := h.ledger.Items()
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, viewOf(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

// Get returns a single item.
func (h *InventoryHandler) Get(c *gin.Context) {
	item, err := h.ledger.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(item))
}

// Create adds a new item.
func (h *InventoryHandler) Create(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, domain.Validationf("invalid request body: %v", err))
		return
	}

	item, err := h.ledger.Add(c.Request.Context(), inventory.Draft{
		Name:         req.Name,
		Quantity:     string(req.Quantity),
		UnitPrice:    string(req.UnitPrice),
		MinThreshold: string(req.MinThreshold),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(item))
}

// Delete removes an item. The caller must confirm with ?confirm=true.
func (h *InventoryHandler) Delete(c *gin.Context) {
	if !parseBool(c.Query("confirm")) {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "deletion must be confirmed with confirm=true"})
		return
	}

	if err := h.ledger.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Move applies a stock entry or exit.
func (h *InventoryHandler) Move(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, domain.Validationf("invalid request body: %v", err))
		return
	}

	direction := models.Direction(strings.ToUpper(strings.TrimSpace(req.Direction)))
	item, err := h.ledger.AdjustStock(c.Request.Context(), c.Param("id"), string(req.Quantity), direction)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(item))
}

// Summary returns the derived aggregates.
func (h *InventoryHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Summary())
}

// ImportWorkbook ingests an uploaded .xlsx file (multipart field "file").
func (h *InventoryHandler) ImportWorkbook(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, h.logger, domain.Validationf("multipart field \"file\" is required"))
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, h.logger, domain.Validationf("cannot open upload: %v", err))
		return
	}
	defer f.Close()

	result, err := h.transfer.ImportWorkbook(c.Request.Context(), header.Filename, f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportWorkbook downloads the inventory as an .xlsx attachment.
func (h *InventoryHandler) ExportWorkbook(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.transfer.ExportWorkbook(&buf); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="inventario.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportSheet pulls the configured Google Sheets range.
func (h *InventoryHandler) ImportSheet(c *gin.Context) {
	result, err := h.transfer.ImportSheet(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportSheet pushes the snapshot to the configured Google Sheets range.
func (h *InventoryHandler) ExportSheet(c *gin.Context) {
	written, err := h.transfer.ExportSheet(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exported": written})
}
