package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/fieldops/internal/config"
	"github.com/mamadbah2/fieldops/internal/domain/models"
)

// Client exposes current weather lookups.
type Client interface {
	Current(ctx context.Context, lat, lng float64) (*models.Weather, error)
}

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("weather api key not configured")

// APIClient is a resty-backed OpenWeatherMap client.
type APIClient struct {
	httpClient *resty.Client
	apiKey     string
	lang       string
	units      string
}

// NewClient builds an OpenWeatherMap client using the provided configuration values.
func NewClient(cfg config.WeatherConfig) *APIClient {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		apiKey:     cfg.APIKey,
		lang:       cfg.Lang,
		units:      cfg.Units,
	}
}

// currentResponse mirrors the fields we read from /weather.
type currentResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Rain *struct {
		OneHour   *float64 `json:"1h"`
		ThreeHour *float64 `json:"3h"`
	} `json:"rain"`
}

type apiError struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

// Current fetches the current conditions at a coordinate.
func (c *APIClient) Current(ctx context.Context, lat, lng float64) (*models.Weather, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	result := new(currentResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   fmt.Sprintf("%f", lat),
			"lon":   fmt.Sprintf("%f", lng),
			"appid": c.apiKey,
			"units": c.units,
			"lang":  c.lang,
		}).
		SetResult(result).
		SetError(apiErr).
		Get("/weather")
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("weather api error: status=%d, message=%s", resp.StatusCode(), apiErr.Message)
	}

	w := &models.Weather{
		Humidity: result.Main.Humidity,
		Temp:     result.Main.Temp,
	}
	if len(result.Weather) > 0 && result.Weather[0].Description != "" {
		desc := result.Weather[0].Description
		w.Description = &desc
	}
	if result.Rain != nil {
		w.Rain = models.RainInfo{
			Available: true,
			OneHour:   result.Rain.OneHour,
			ThreeHour: result.Rain.ThreeHour,
		}
	}
	return w, nil
}
