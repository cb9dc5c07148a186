package models

// RiskLevel is the API's disaster risk classification for a city.
// Values outside the three known levels are carried through untouched so a
// misbehaving upstream never breaks a consumer.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Known reports whether the level is one of the documented values.
func (r RiskLevel) Known() bool {
	switch r {
	case RiskHigh, RiskMedium, RiskLow:
		return true
	}
	return false
}

// NormalConditions is the disaster_type sentinel meaning no active disaster.
const NormalConditions = "Normal Conditions"

// WeatherRecord is one city's current observation as returned by the risk
// API. City is the identity key for merges, compared case-insensitively.
type WeatherRecord struct {
	City         string    `json:"city"`
	Country      string    `json:"country"`
	Temperature  float64   `json:"temperature"` // °C
	Humidity     float64   `json:"humidity"`    // %
	Pressure     float64   `json:"pressure"`    // hPa
	WindSpeed    float64   `json:"wind_speed"`  // m/s
	Description  string    `json:"description"`
	RiskLevel    RiskLevel `json:"risk_level"`
	DisasterType string    `json:"disaster_type"`
}

// HasDisaster reports whether the record flags an active disaster condition.
func (w WeatherRecord) HasDisaster() bool {
	return w.DisasterType != "" && w.DisasterType != NormalConditions
}

// AlertRecord is a flagged condition for a city. Alerts are fetched
// independently of weather records and are not joined to them.
type AlertRecord struct {
	City         string    `json:"city"`
	DisasterType string    `json:"disaster_type"`
	Message      string    `json:"message"`
	RiskLevel    RiskLevel `json:"risk_level"`
}
