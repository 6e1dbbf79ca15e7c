package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
	client "github.com/mamadbah2/fieldops/pkg/clients/whatsapp"
)

// StockSource lists the items needing attention.
type StockSource interface {
	LowStock() []models.StockItem
}

// Service sends low-stock notifications through WhatsApp.
type Service struct {
	stock     StockSource
	client    client.Client
	recipient string
	logger    *zap.Logger
}

// NewService wires a new alert service instance.
func NewService(stock StockSource, whatsClient client.Client, recipient string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stock: stock, client: whatsClient, recipient: recipient, logger: logger}
}

// SendLowStockAlert notifies the recipient about out-of-stock and low-stock
// items. It reports whether a message was sent; nothing is sent when every
// item is above its threshold.
func (s *Service) SendLowStockAlert(ctx context.Context) (bool, error) {
	items := s.stock.LowStock()
	if len(items) == 0 {
		s.logger.Debug("no low stock items, skipping alert")
		return false, nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	messageID, err := s.client.Send(ctxWithTimeout, models.OutboundMessageRequest{
		To:      s.recipient,
		Message: BuildMessage(items),
	})
	if err != nil {
		return false, domain.ExternalService("send low stock alert", err)
	}

	s.logger.Info("low stock alert sent", zap.Int("items", len(items)), zap.String("message_id", messageID))
	return true, nil
}

// BuildMessage renders the alert text, out-of-stock items first.
func BuildMessage(items []models.StockItem) string {
	var out, low []string
	for _, item := range items {
		switch item.Status() {
		case models.StatusOutOfStock:
			out = append(out, fmt.Sprintf("- %s", item.Name))
		case models.StatusLowStock:
			low = append(low, fmt.Sprintf("- %s: %d (min %d)", item.Name, item.Quantity, item.MinThreshold))
		}
	}

	var b strings.Builder
	b.WriteString("Inventory alert")
	if len(out) > 0 {
		fmt.Fprintf(&b, "\nOut of stock (%d):\n%s", len(out), strings.Join(out, "\n"))
	}
	if len(low) > 0 {
		fmt.Fprintf(&b, "\nLow stock (%d):\n%s", len(low), strings.Join(low, "\n"))
	}
	return b.String()
}
