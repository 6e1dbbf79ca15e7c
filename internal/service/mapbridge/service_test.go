package mapbridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
)

type WeatherMock struct{ mock.Mock }

func (m *WeatherMock) Current(ctx context.Context, lat, lng float64) (*models.Weather, error) {
	args := m.Called(ctx, lat, lng)
	w, _ := args.Get(0).(*models.Weather)
	return w, args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func TestClickedReturnsWeather(t *testing.T) {
	wm := new(WeatherMock)
	wm.On("Current", mock.Anything, 20.6, -103.3).Return(&models.Weather{
		Humidity:    ptr(70.0),
		Temp:        ptr(22.5),
		Description: ptr("nubes"),
		Rain:        models.RainInfo{Available: true, ThreeHour: ptr(1.2)},
	}, nil)

	resp, err := NewService(wm, nil).Handle(context.Background(), models.MapMessage{Type: "clicked", Lat: ptr(20.6), Lng: ptr(-103.3)})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, models.MapMessageWeather, resp.Type)
	assert.Equal(t, 70.0, *resp.Humidity)
	assert.Equal(t, "nubes", *resp.WeatherDesc)
	assert.True(t, resp.RainInfo.Available)
	assert.Empty(t, resp.Error)
}

func TestClickedCarriesLookupError(t *testing.T) {
	wm := new(WeatherMock)
	wm.On("Current", mock.Anything, 1.0, 2.0).Return(nil, errors.New("status=500"))

	resp, err := NewService(wm, nil).Handle(context.Background(), models.MapMessage{Type: "clicked", Lat: ptr(1.0), Lng: ptr(2.0)})
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "status=500")
	assert.Nil(t, resp.Humidity)
	assert.Nil(t, resp.RainInfo)
}

func TestInvalidMessages(t *testing.T) {
	svc := NewService(new(WeatherMock), nil)
	ctx := context.Background()

	cases := map[string]models.MapMessage{
		"clicked without coords": {Type: "clicked"},
		"clicked out of range":   {Type: "clicked", Lat: ptr(95.0), Lng: ptr(0.0)},
		"parcel too small":       {Type: "parcel_selected", Coords: [][2]float64{{1, 1}, {2, 2}}},
		"parcel bad vertex":      {Type: "parcel_selected", Coords: [][2]float64{{1, 1}, {2, 2}, {3, 200}}},
		"unknown":                {Type: "zoomed"},
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Handle(ctx, msg)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestParcelSelectedHasNoReply(t *testing.T) {
	resp, err := NewService(new(WeatherMock), nil).Handle(context.Background(), models.MapMessage{
		Type:   "parcel_selected",
		Coords: [][2]float64{{20.1, -103.1}, {20.2, -103.1}, {20.2, -103.2}},
	})
	require.NoError(t, err)
	assert.Nil(t, resp)
}
