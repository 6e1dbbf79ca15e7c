package mapbridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
	"github.com/mamadbah2/fieldops/pkg/clients/weather"
)

// Service answers messages posted by the embedded map view.
type Service struct {
	weather weather.Client
	logger  *zap.Logger
}

// NewService wires a map bridge handler.
func NewService(client weather.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{weather: client, logger: logger}
}

// Handle processes one inbound message. It returns nil when the message kind
// has no outbound reply.
func (s *Service) Handle(ctx context.Context, msg models.MapMessage) (*models.WeatherResponse, error) {
	switch msg.Type {
	case models.MapMessageClicked:
		if msg.Lat == nil || msg.Lng == nil {
			return nil, domain.Validationf("clicked message requires lat and lng")
		}
		if err := checkCoordinate(*msg.Lat, *msg.Lng); err != nil {
			return nil, err
		}
		return s.weatherAt(ctx, *msg.Lat, *msg.Lng), nil

	case models.MapMessageParcelSelected:
		if len(msg.Coords) < 3 {
			return nil, domain.Validationf("parcel needs at least 3 vertices, got %d", len(msg.Coords))
		}
		for _, v := range msg.Coords {
			if err := checkCoordinate(v[0], v[1]); err != nil {
				return nil, err
			}
		}
		s.logger.Info("parcel selected", zap.Int("vertices", len(msg.Coords)), zap.Any("coords", msg.Coords))
		return nil, nil

	default:
		return nil, domain.Validationf("unknown map message type %q", msg.Type)
	}
}

// weatherAt always produces a response; lookup failures are carried in the
// error field so the map can show them in its popup.
func (s *Service) weatherAt(ctx context.Context, lat, lng float64) *models.WeatherResponse {
	resp := &models.WeatherResponse{Type: models.MapMessageWeather, Lat: lat, Lng: lng}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	current, err := s.weather.Current(ctxWithTimeout, lat, lng)
	if err != nil {
		wrapped := domain.ExternalService("weather lookup failed", err)
		s.logger.Warn("weather lookup failed", zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		resp.Error = wrapped.Error()
		return resp
	}

	rain := current.Rain
	resp.Humidity = current.Humidity
	resp.Temp = current.Temp
	resp.WeatherDesc = current.Description
	resp.RainInfo = &rain
	return resp
}

func checkCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Validationf("coordinate %.5f,%.5f is out of range", lat, lng)
	}
	return nil
}
