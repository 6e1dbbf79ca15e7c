package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fieldops/internal/config"
)

func TestCurrentParsesConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "es", r.URL.Query().Get("lang"))
		assert.Equal(t, "20.500000", r.URL.Query().Get("lat"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"main":{"temp":24.3,"humidity":61},"weather":[{"description":"lluvia ligera"}],"rain":{"1h":0.4}}`))
	}))
	defer srv.Close()

	c := NewClient(config.WeatherConfig{APIKey: "secret", BaseURL: srv.URL, Lang: "es", Units: "metric"})
	got, err := c.Current(context.Background(), 20.5, -103.25)
	require.NoError(t, err)

	require.NotNil(t, got.Humidity)
	assert.Equal(t, 61.0, *got.Humidity)
	assert.Equal(t, 24.3, *got.Temp)
	assert.Equal(t, "lluvia ligera", *got.Description)
	assert.True(t, got.Rain.Available)
	assert.Equal(t, 0.4, *got.Rain.OneHour)
	assert.Nil(t, got.Rain.ThreeHour)
}

func TestCurrentWithoutRain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"main":{"temp":30,"humidity":20},"weather":[]}`))
	}))
	defer srv.Close()

	got, err := NewClient(config.WeatherConfig{APIKey: "k", BaseURL: srv.URL}).Current(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.False(t, got.Rain.Available)
	assert.Nil(t, got.Description)
}

func TestCurrentReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	_, err := NewClient(config.WeatherConfig{APIKey: "bad", BaseURL: srv.URL}).Current(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
	assert.Contains(t, err.Error(), "401")
}

func TestCurrentRequiresKey(t *testing.T) {
	_, err := NewClient(config.WeatherConfig{BaseURL: "http://unused"}).Current(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
