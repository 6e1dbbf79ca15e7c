package models

// Map bridge message kinds.
const (
	MapMessageClicked        = "clicked"
	MapMessageParcelSelected = "parcel_selected"
	MapMessageWeather        = "weather_response"
)

// MapMessage is an inbound message posted by the embedded map view.
type MapMessage struct {
	Type   string       `json:"type" binding:"required"`
	Lat    *float64     `json:"lat,omitempty"`
	Lng    *float64     `json:"lng,omitempty"`
	Coords [][2]float64 `json:"coords,omitempty"`
}

// RainInfo carries accumulated precipitation in millimetres.
type RainInfo struct {
	Available bool     `json:"available"`
	OneHour   *float64 `json:"oneHour"`
	ThreeHour *float64 `json:"threeHour"`
}

// WeatherResponse is the outbound answer to a clicked map point.
type WeatherResponse struct {
	Type        string    `json:"type"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Humidity    *float64  `json:"humidity"`
	RainInfo    *RainInfo `json:"rainInfo"`
	Temp        *float64  `json:"temp,omitempty"`
	WeatherDesc *string   `json:"weatherDesc,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Weather is the subset of current conditions the application consumes.
type Weather struct {
	Humidity    *float64
	Temp        *float64
	Description *string
	Rain        RainInfo
}
