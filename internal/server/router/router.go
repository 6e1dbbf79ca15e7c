package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/server/handlers"
)

// Handlers groups the HTTP adapters. Reports and Map are optional and their
// routes are only mounted when set.
type Handlers struct {
	Inventory *handlers.InventoryHandler
	Reports   *handlers.ReportHandler
	Map       *handlers.MapHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	inv := api.Group("/inventory")
	inv.GET("", h.Inventory.List)
	inv.POST("", h.Inventory.Create)
	inv.GET("/summary", h.Inventory.Summary)
	inv.POST("/import", h.Inventory.ImportWorkbook)
	inv.GET("/export", h.Inventory.ExportWorkbook)
	inv.POST("/import/sheets", h.Inventory.ImportSheet)
	inv.POST("/export/sheets", h.Inventory.ExportSheet)
	inv.GET("/:id", h.Inventory.Get)
	inv.DELETE("/:id", h.Inventory.Delete)
	inv.POST("/:id/movements", h.Inventory.Move)

	if h.Reports != nil {
		reports := api.Group("/reports")
		reports.POST("", h.Reports.Create)
		reports.GET("/images/:fileId", h.Reports.Image)
		reports.GET("/:id", h.Reports.Get)
	}

	if h.Map != nil {
		api.POST("/map/messages", h.Map.Message)
	}

	if logger != nil {
		logger.Info("router initialized",
			zap.Bool("reports", h.Reports != nil),
			zap.Bool("map", h.Map != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
