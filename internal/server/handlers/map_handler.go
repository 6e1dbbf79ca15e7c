package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
)

// MapBridge answers messages from the embedded map view.
type MapBridge interface {
	Handle(ctx context.Context, msg models.MapMessage) (*models.WeatherResponse, error)
}

// MapHandler relays map bridge messages.
type MapHandler struct {
	bridge MapBridge
	logger *zap.Logger
}

// NewMapHandler constructs the HTTP handler adapter.
func NewMapHandler(bridge MapBridge, logger *zap.Logger) *MapHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapHandler{bridge: bridge, logger: logger}
}

// Message handles one inbound bridge message. Messages without a reply
// are acknowledged with 204.
func (h *MapHandler) Message(c *gin.Context) {
	var msg models.MapMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		respondError(c, h.logger, domain.Validationf("invalid map message: %v", err))
		return
	}

	resp, err := h.bridge.Handle(c.Request.Context(), msg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}
